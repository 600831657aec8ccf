package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update the local AUR package list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s AUR package list...\n", yellow("Updating"))

			body, err := a.registry(cmd.ErrOrStderr()).DownloadIndex(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to update package list: %w", err)
			}

			fmt.Fprintf(out, "%s AUR package list (%s)\n", green("✓ Updated"), formatSize(int64(len(body))))
			return nil
		},
	}
}
