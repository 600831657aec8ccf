package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFindCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "find <name>",
		Short: "Look a package up in the local package list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			found, err := a.registry(nil).FindLocal(args[0])
			if err != nil {
				return err
			}

			if found {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is in the AUR package list\n", green("✓"), bold(args[0]))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is not in the AUR package list\n", dim("○"), args[0])
			}
			return nil
		},
	}
}
