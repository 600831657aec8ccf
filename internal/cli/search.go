package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/teamcutter/midna/internal/domain"
)

func newSearchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the AUR",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			stop := withSpinner(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("Searching %s...", strings.Join(args, ", ")))
			results, err := a.registry(nil).SearchAll(cmd.Context(), args)
			stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, res := range results {
				if len(args) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "%s %q\n", cyan("::"), args[i])
				}
				printResults(out, args[i], res)
			}

			return nil
		},
	}
}

func printResults(out io.Writer, query string, res *domain.SearchResult) {
	if len(res.Results) == 0 {
		fmt.Fprintf(out, "%s No results found for %q\n", dim("○"), query)
		return
	}

	for _, r := range res.Results {
		line := fmt.Sprintf(" %s/%s %s", cyan("aur"), bold(r.Name), green(r.Version))
		if r.OutOfDate != nil {
			line += " " + red("(out of date)")
		}
		line += " " + dim(fmt.Sprintf("(+%d %.2f)", r.NumVotes, r.Popularity))
		fmt.Fprintln(out, line)

		if r.Description != "" {
			fmt.Fprintf(out, "    %s\n", r.Description)
		}
	}
}
