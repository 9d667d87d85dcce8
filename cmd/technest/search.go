package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/technest/backend/internal/domain"
)

func newSearchCommand(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Search the device catalog",
		Example: `  technest search "pixel 9 vs galaxy s24"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.buildServices(ctx); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results, err := app.search.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No devices found")
				return nil
			}
			fmt.Fprintln(out, renderSearchResults(results))
			return nil
		},
	}
	return cmd
}

func renderSearchResults(results []domain.SearchResult) string {
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			r.Title,
			r.Slug,
			fmt.Sprintf("%.1f", r.Score),
		})
	}
	return renderTable(
		[]string{"#", "Device", "Slug", "Score"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}
