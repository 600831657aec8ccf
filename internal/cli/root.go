package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/teamcutter/midna/internal/config"
	"github.com/teamcutter/midna/internal/domain"
	"github.com/teamcutter/midna/internal/fetcher"
	"github.com/teamcutter/midna/internal/manager"
	"github.com/teamcutter/midna/internal/registry"
	"github.com/teamcutter/midna/internal/runner"
	"github.com/teamcutter/midna/internal/state"
	"github.com/teamcutter/midna/internal/store"
)

type globalFlags struct {
	configPath string
	debug      bool
}

type app struct {
	cfg    *config.Config
	store  *store.Store
	logger *log.Logger
}

func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("✗"), err)
	}
	return err
}

func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "midna",
		Short:         "Alternative AUR package helper",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newUpdateCmd(flags),
		newSearchCmd(flags),
		newInstallCmd(flags),
		newFindCmd(flags),
		newListCmd(flags),
		newCleanCmd(flags),
		newVersionCmd(),
	)
	return rootCmd
}

// newApp loads the config and makes sure the local store exists.
func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "midna"})
	if flags.debug {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := st.EnsureRoot(); err != nil {
		return nil, err
	}

	logger.Debug("store ready", "root", st.Root())
	return &app{cfg: cfg, store: st, logger: logger}, nil
}

// registry returns the AUR client; a non-nil progress writer gets a download
// bar for DownloadIndex.
func (a *app) registry(progress io.Writer) domain.Registry {
	r := registry.New(a.cfg, a.store)
	if progress != nil {
		r.WithProgress(progress)
	}
	return r
}

func (a *app) history() (*state.SQLiteState, error) {
	return state.NewSQLite(a.store.HistoryPath())
}

func newManager(cmd *cobra.Command, a *app, hist domain.History, verbose bool) *manager.Manager {
	f := fetcher.New(a.store, a.cfg.CloneURL, a.logger)
	if verbose {
		f.WithProgress(cmd.OutOrStdout())
	}

	r := runner.New(a.cfg.ElevateCommand, a.logger).
		WithStdio(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())

	return manager.New(a.store, f, r, hist, manager.OptionsFromConfig(a.cfg), a.logger)
}
