package analysis

import (
	"context"
	"fmt"
	"strings"

	"billsage/internal/domain"
	"billsage/internal/port"
)

// Detector produces the ordered issue list for a bill. The threshold
// rules run as deterministic predicates; one completion call covers the
// classes that need language understanding (unbundling, upcoding,
// balance billing). Malformed completion output degrades to the
// deterministic issues alone.
type Detector struct {
	client port.CompletionClient
}

// NewDetector creates a detection stage backed by the given client.
func NewDetector(client port.CompletionClient) *Detector {
	return &Detector{client: client}
}

// issuePayload mirrors the JSON contract the detection prompt demands.
type issuePayload struct {
	Type             string           `json:"type"`
	Severity         string           `json:"severity"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	PotentialSavings *float64         `json:"potentialSavings"`
	Recommendation   string           `json:"recommendation"`
	LineItem         *domain.LineItem `json:"lineItem"`
	ReferencePrice   *float64         `json:"referencePrice"`
}

// Detect compares the extracted bill against reference pricing and the
// raw bill text. A transport failure of the completion call is returned
// as an error; everything else degrades.
func (d *Detector) Detect(
	ctx context.Context,
	bill *domain.ExtractedBill,
	billText string,
	pricingContext string,
	pricing map[string]domain.ReferencePricingRecord,
) ([]domain.Issue, error) {
	ruleIssues := DetectRuleIssues(bill.LineItems, pricing)

	raw, err := d.client.Complete(ctx, port.CompletionRequest{
		System: buildDetectionSystemPrompt(pricingContext),
		User:   detectionUserContent(bill, billText),
	})
	if err != nil {
		return nil, fmt.Errorf("detection completion call: %w", err)
	}

	var payload struct {
		Issues []issuePayload `json:"issues"`
	}
	if !decodeOrDegrade("Detector", raw, &payload) {
		payload.Issues = nil
	}

	issues := mergeIssues(ruleIssues, payload.Issues)
	SortBySeverity(issues)
	return issues, nil
}

// mergeIssues appends sanitized completion-sourced issues to the
// deterministic ones, dropping invalid entries and duplicates of issues
// the rules already raised.
func mergeIssues(ruleIssues []domain.Issue, llmIssues []issuePayload) []domain.Issue {
	seen := make(map[string]bool, len(ruleIssues))
	for _, issue := range ruleIssues {
		seen[issueKey(issue.Type, issue.LineItem)] = true
	}

	merged := make([]domain.Issue, 0, len(ruleIssues)+len(llmIssues))
	merged = append(merged, ruleIssues...)
	for _, p := range llmIssues {
		issue, ok := sanitizeIssue(p)
		if !ok {
			continue
		}
		key := issueKey(issue.Type, issue.LineItem)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, issue)
	}
	return merged
}

// sanitizeIssue validates a completion-sourced issue against the closed
// taxonomy and the overcharge invariant (line item and reference price
// both present), clamping savings to non-negative.
func sanitizeIssue(p issuePayload) (domain.Issue, bool) {
	t := domain.IssueType(strings.ToLower(strings.TrimSpace(p.Type)))
	if !t.Valid() {
		return domain.Issue{}, false
	}
	if t == domain.IssueOvercharge && (p.LineItem == nil || p.ReferencePrice == nil) {
		return domain.Issue{}, false
	}

	savings := p.PotentialSavings
	if savings != nil && *savings < 0 {
		savings = nil
	}

	sev := domain.IssueSeverity(strings.ToLower(strings.TrimSpace(p.Severity)))
	if !sev.Valid() {
		amount := 0.0
		if savings != nil {
			amount = *savings
		}
		sev = severityForSavings(amount)
	}
	// Balance billing carries regulatory exposure beyond its dollar figure
	if t == domain.IssueBalanceBilling {
		sev = domain.SeverityHigh
	}

	return domain.Issue{
		Type:             t,
		Severity:         sev,
		Title:            p.Title,
		Description:      p.Description,
		PotentialSavings: savings,
		Recommendation:   p.Recommendation,
		LineItem:         p.LineItem,
		ReferencePrice:   p.ReferencePrice,
	}, true
}

func issueKey(t domain.IssueType, li *domain.LineItem) string {
	code := ""
	if li != nil {
		code = strings.TrimSpace(li.Code)
	}
	return string(t) + "|" + code
}
