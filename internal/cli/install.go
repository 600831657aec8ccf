package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/teamcutter/midna/internal/domain"
)

func newInstallCmd(flags *globalFlags) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "install <name>...",
		Short: "Build and install packages from the AUR",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			var hist domain.History
			if h, err := a.history(); err != nil {
				a.logger.Warn("install history unavailable", "err", err)
			} else {
				defer h.Close()
				hist = h
			}

			out := cmd.OutOrStdout()
			mgr := newManager(cmd, a, hist, verbose)
			mgr.OnStage = func(name string, stage domain.Stage) {
				switch stage {
				case domain.StageFetching:
					fmt.Fprintf(out, " %s %s\n", blue("::"), cyan(fmt.Sprintf("Cloning %s from AUR...", name)))
				case domain.StageBuilding:
					fmt.Fprintf(out, " %s %s %s...\n", blue("::"), cyan("Running"), bold(a.cfg.BuildCommand))
				case domain.StageInstalling:
					fmt.Fprintf(out, " %s %s %s\n", blue("::"), cyan("Installing"),
						yellow("You may be prompted for your password in order to install the package."))
				}
			}

			var failed int
			for _, name := range args {
				fmt.Fprintf(out, "%s %s\n", green("Installing"), bold(name))

				rec, err := mgr.Install(cmd.Context(), name, verbose)
				if err != nil {
					fmt.Fprintf(out, "%s %v\n", red("✗"), err)
					failed++
					continue
				}

				printInstalled(out, rec)
			}

			if failed > 0 {
				return fmt.Errorf("failed to install %d package(s)", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Stream build and install output")
	return cmd
}

func printInstalled(w io.Writer, rec *domain.InstallRecord) {
	version := rec.Version
	if version == "" {
		version = "unknown version"
	}

	line := fmt.Sprintf("%s %s %s", green("✓"), bold(rec.Name), bold(version))
	if rec.Previous != nil {
		line += " " + dim(fmt.Sprintf("(reinstall, was %s)", rec.Previous.Version))
	}
	fmt.Fprintln(w, line)

	if info := rec.Info; info != nil {
		if info.Description != "" {
			fmt.Fprintf(w, "  %s\n", info.Description)
		}
		if info.Base != "" && info.Base != info.Name {
			fmt.Fprintf(w, "  %s %s\n", cyan("base:"), info.Base)
		}
		if info.Arch != "" {
			fmt.Fprintf(w, "  %s %s\n", cyan("arch:"), info.Arch)
		}
		if info.URL != "" {
			fmt.Fprintf(w, "  %s %s\n", cyan("url:"), info.URL)
		}
		if info.Size > 0 {
			fmt.Fprintf(w, "  %s %s\n", cyan("size:"), formatSize(info.Size))
		}
	}
	fmt.Fprintf(w, "  %s %s\n", cyan("artifact:"), rec.Artifact)
}
