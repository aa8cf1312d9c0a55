package analysis

import (
	"fmt"
	"strings"

	"billsage/internal/domain"
)

const (
	// A unit charge above this multiple of the typical-range high end
	// counts as an overcharge.
	overchargeMultiplier = 2.0

	// Severity cutoffs on estimated savings.
	highSeveritySavings   = 1000.0
	mediumSeveritySavings = 250.0
)

// severityForSavings grades an issue by its estimated dollar impact.
func severityForSavings(savings float64) domain.IssueSeverity {
	switch {
	case savings >= highSeveritySavings:
		return domain.SeverityHigh
	case savings >= mediumSeveritySavings:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// DetectRuleIssues runs the deterministic billing checks over extracted
// line items: overcharge against reference pricing, duplicate lines,
// and missing procedure codes. Language-dependent classes (unbundling,
// upcoding, balance billing) are left to the completion pass.
func DetectRuleIssues(items []domain.LineItem, pricing map[string]domain.ReferencePricingRecord) []domain.Issue {
	issues := make([]domain.Issue, 0)
	issues = append(issues, overchargeIssues(items, pricing)...)
	issues = append(issues, duplicateIssues(items)...)
	issues = append(issues, missingCodeIssues(items)...)
	return issues
}

func overchargeIssues(items []domain.LineItem, pricing map[string]domain.ReferencePricingRecord) []domain.Issue {
	var issues []domain.Issue
	for i := range items {
		item := items[i]
		rec, ok := pricing[strings.TrimSpace(item.Code)]
		if !ok || rec.TypicalRangeHigh <= 0 {
			continue
		}
		unit := item.UnitAmount()
		if unit <= overchargeMultiplier*rec.TypicalRangeHigh {
			continue
		}
		refPrice := rec.TypicalRangeHigh
		savings := item.Amount - refPrice*float64(item.EffectiveQuantity())
		if savings < 0 {
			savings = 0
		}
		issues = append(issues, domain.Issue{
			Type:     domain.IssueOvercharge,
			Severity: severityForSavings(savings),
			Title:    fmt.Sprintf("Overcharge on %s", rec.ProcedureName),
			Description: fmt.Sprintf(
				"You were charged $%s for %s (code %s), but hospitals in your area typically charge between $%s and $%s for this service. This charge is more than double the high end of that range.",
				formatMoney(unit), rec.ProcedureName, rec.Code,
				formatMoney(rec.TypicalRangeLow), formatMoney(rec.TypicalRangeHigh)),
			PotentialSavings: &savings,
			Recommendation: fmt.Sprintf(
				"Ask the billing office to justify the charge and request it be reduced toward the typical rate of $%s.",
				formatMoney(refPrice)),
			LineItem:       &item,
			ReferencePrice: &refPrice,
		})
	}
	return issues
}

func duplicateIssues(items []domain.LineItem) []domain.Issue {
	type group struct {
		first domain.LineItem
		extra float64 // charges beyond the first matching line
		count int
	}
	groups := make(map[string]*group)
	var order []string
	for i := range items {
		item := items[i]
		code := strings.TrimSpace(item.Code)
		if code == "" {
			continue
		}
		key := fmt.Sprintf("%s|%s", code, formatMoney(item.Amount))
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{first: item, count: 1}
			order = append(order, key)
			continue
		}
		g.count++
		g.extra += item.Amount
	}

	var issues []domain.Issue
	for _, key := range order {
		g := groups[key]
		if g.count < 2 {
			continue
		}
		savings := g.extra
		item := g.first
		issues = append(issues, domain.Issue{
			Type:     domain.IssueDuplicate,
			Severity: severityForSavings(savings),
			Title:    fmt.Sprintf("Possible duplicate charge for code %s", item.Code),
			Description: fmt.Sprintf(
				"Code %s appears %d times at $%s each. Unless the service was genuinely performed that many times, the repeats may be billing errors.",
				item.Code, g.count, formatMoney(item.Amount)),
			PotentialSavings: &savings,
			Recommendation:   "Request an itemized bill and ask the hospital to confirm each occurrence of this procedure was actually performed.",
			LineItem:         &item,
		})
	}
	return issues
}

func missingCodeIssues(items []domain.LineItem) []domain.Issue {
	var issues []domain.Issue
	for i := range items {
		item := items[i]
		if strings.TrimSpace(item.Code) != "" {
			continue
		}
		issues = append(issues, domain.Issue{
			Type:     domain.IssueMissingCode,
			Severity: domain.SeverityLow,
			Title:    "Charge without a procedure code",
			Description: fmt.Sprintf(
				"The charge %q ($%s) has no procedure code, so it cannot be checked against standard rates.",
				item.Description, formatMoney(item.Amount)),
			Recommendation: "Ask the billing office for the CPT code behind this charge so it can be verified.",
			LineItem:       &item,
		})
	}
	return issues
}
