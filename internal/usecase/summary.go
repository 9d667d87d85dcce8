package usecase

import (
	"fmt"
	"strings"

	"github.com/technest/backend/internal/domain"
)

// TemplateSummary writes the deterministic comparison paragraph from the category win counts
func TemplateSummary(nameA, nameB string, verdicts domain.VerdictMap) string {
	winsA := verdicts.Wins(domain.WinnerSideA)
	winsB := verdicts.Wins(domain.WinnerSideB)

	var winner, loser string
	switch {
	case winsA > winsB:
		winner, loser = nameA, nameB
	case winsB > winsA:
		winner, loser = nameB, nameA
	default:
		return fmt.Sprintf("It is a remarkably close tie between %s and %s. Both excel in different areas.", nameA, nameB)
	}

	return fmt.Sprintf("Based on raw specifications, the %s edges out the %s with superior hardware metrics in key categories. It is the better choice for power users prioritizing performance.", winner, loser)
}

// BuildComparisonPrompt renders the prompt handed to a text generator.
// Only the per-category outcome is exposed; magnitudes are never re-derived here.
func BuildComparisonPrompt(nameA, nameB string, verdicts domain.VerdictMap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short, neutral paragraph comparing the %s (device A) and the %s (device B).\n", nameA, nameB)
	b.WriteString("Category results from the spec comparison:\n")
	for _, entry := range verdicts {
		var outcome string
		switch entry.Winner {
		case domain.WinnerSideA:
			outcome = nameA + " wins"
		case domain.WinnerSideB:
			outcome = nameB + " wins"
		default:
			outcome = "tie"
		}
		fmt.Fprintf(&b, "- %s: %s\n", entry.Category, outcome)
	}
	b.WriteString("Do not invent numbers. Mention which device is the better overall choice, or call it a tie.")
	return b.String()
}

// SelectWinnerID returns the id of the device with more category wins, or nil on a draw
func SelectWinnerID(deviceA, deviceB domain.Device, verdicts domain.VerdictMap) *int64 {
	winsA := verdicts.Wins(domain.WinnerSideA)
	winsB := verdicts.Wins(domain.WinnerSideB)

	switch {
	case winsA > winsB:
		id := deviceA.ID
		return &id
	case winsB > winsA:
		id := deviceB.ID
		return &id
	}
	return nil
}
