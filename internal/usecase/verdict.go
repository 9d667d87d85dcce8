package usecase

import "github.com/technest/backend/internal/domain"

// GenerateVerdict compares two devices across every category in the table.
// The result has exactly one entry per rule, in table order. A key missing
// from a collection reads as the empty string and is treated as absent.
func GenerateVerdict(specsA, specsB domain.SpecCollection, table domain.CategoryTable) domain.VerdictMap {
	verdicts := make(domain.VerdictMap, 0, len(table))
	for _, rule := range table {
		verdicts = append(verdicts, domain.CategoryVerdict{
			Category: rule.Category,
			Winner:   CompareSpecValues(specsA[rule.SpecKey], specsB[rule.SpecKey], rule.Direction),
		})
	}
	return verdicts
}
