package analysis

import (
	"sort"

	"billsage/internal/domain"
)

// TotalPotentialSavings sums the estimated savings across issues,
// treating an absent value as zero. Always non-negative; an empty list
// yields 0.
func TotalPotentialSavings(issues []domain.Issue) float64 {
	total := 0.0
	for _, issue := range issues {
		if issue.PotentialSavings != nil {
			total += *issue.PotentialSavings
		}
	}
	return total
}

// SortBySeverity orders issues high before medium before low,
// preserving input order within each tier.
func SortBySeverity(issues []domain.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})
}
