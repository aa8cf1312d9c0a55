package domain

// IssueType classifies a detected billing defect. The set is closed;
// unknown values coming back from the completion service are discarded.
type IssueType string

const (
	IssueOvercharge     IssueType = "overcharge"
	IssueDuplicate      IssueType = "duplicate"
	IssueMissingCode    IssueType = "missing_code"
	IssueUnbundling     IssueType = "unbundling"
	IssueUpcoding       IssueType = "upcoding"
	IssueBalanceBilling IssueType = "balance_billing"
)

// Valid reports whether t is one of the supported issue types.
func (t IssueType) Valid() bool {
	switch t {
	case IssueOvercharge, IssueDuplicate, IssueMissingCode,
		IssueUnbundling, IssueUpcoding, IssueBalanceBilling:
		return true
	}
	return false
}

// IssueSeverity grades an issue by savings magnitude and regulatory risk.
type IssueSeverity string

const (
	SeverityHigh   IssueSeverity = "high"
	SeverityMedium IssueSeverity = "medium"
	SeverityLow    IssueSeverity = "low"
)

// Rank returns the display ordering of a severity tier: high sorts
// before medium, medium before low. Unknown severities sort last.
func (s IssueSeverity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	}
	return 3
}

// Valid reports whether s is one of the supported severity tiers.
func (s IssueSeverity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}
