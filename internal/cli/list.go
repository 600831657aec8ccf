package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List packages installed with midna",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			hist, err := a.history()
			if err != nil {
				return err
			}
			defer hist.Close()

			recs, err := newManager(cmd, a, hist, false).Installed()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintf(out, "%s No packages installed\n", dim("○"))
				return nil
			}

			fmt.Fprintf(out, "Installed packages:\n\n")
			for _, rec := range recs {
				fmt.Fprintf(out, " %s %s  %s\n", bold(rec.Name), green(rec.Version),
					dim(rec.InstalledAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
}
