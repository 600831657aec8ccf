package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCmd(flags *globalFlags) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "clean [name...]",
		Short: "Remove cloned build recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			before, _ := a.store.Size()

			var removed []string
			if len(args) == 0 {
				if removed, err = a.store.Clean(); err != nil {
					return fmt.Errorf("failed to clean store: %w", err)
				}
			} else {
				for _, name := range args {
					if err := a.store.Remove(name); err != nil {
						return err
					}
					removed = append(removed, name)
				}
			}

			after, _ := a.store.Size()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Removed %d cloned package(s) (%s freed)\n",
				green("✓"), len(removed), formatSize(before-after))

			if !forget {
				return nil
			}

			hist, err := a.history()
			if err != nil {
				return err
			}
			defer hist.Close()

			for _, name := range removed {
				if err := hist.Remove(name); err != nil {
					return fmt.Errorf("failed to drop %s from install history: %w", name, err)
				}
			}
			fmt.Fprintf(out, "%s Cleared install history for %d package(s)\n", green("✓"), len(removed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&forget, "history", false, "Also drop the removed packages from the install history")
	return cmd
}
