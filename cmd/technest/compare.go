package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/technest/backend/internal/domain"
)

func newCompareCommand(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare <slug-a> <slug-b>",
		Short:   "Compare two devices category by category",
		Example: `  technest compare pixel-9 galaxy-s24`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.buildServices(ctx); err != nil {
				return err
			}

			result, err := app.comparison.Compare(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("compare %s and %s: %w", args[0], args[1], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderComparison(result, app.comparison.Categories()))
			fmt.Fprintln(out)
			fmt.Fprintln(out, result.AISummary)
			return nil
		},
	}
	return cmd
}

// renderComparison prints one row per category with both raw values and the winner
func renderComparison(result *domain.ComparisonResult, categories domain.CategoryTable) string {
	a, b := result.Devices[0], result.Devices[1]
	headers := []string{"Category", a.Info.ModelName, b.Info.ModelName, "Winner"}
	return renderTable(headers, comparisonRows(result, categories), nil)
}

func comparisonRows(result *domain.ComparisonResult, categories domain.CategoryTable) [][]string {
	a, b := result.Devices[0], result.Devices[1]
	specsA := domain.NewSpecCollection(a.Specs)
	specsB := domain.NewSpecCollection(b.Specs)

	rows := make([][]string, 0, len(categories))
	for _, rule := range categories {
		winner, ok := result.Verdicts.Get(rule.Category)
		if !ok {
			continue
		}
		rows = append(rows, []string{
			string(rule.Category),
			displayValue(specsA[rule.SpecKey]),
			displayValue(specsB[rule.SpecKey]),
			winnerLabel(winner, a.Info.ModelName, b.Info.ModelName),
		})
	}
	return rows
}

func winnerLabel(w domain.Winner, nameA, nameB string) string {
	switch w {
	case domain.WinnerSideA:
		return nameA
	case domain.WinnerSideB:
		return nameB
	default:
		return "Tie"
	}
}

func displayValue(raw string) string {
	if raw == "" {
		return "-"
	}
	return raw
}
