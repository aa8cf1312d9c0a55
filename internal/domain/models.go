package domain

// LineItem is one billed procedure as extracted from a bill. Codes come
// from unstructured input and are not guaranteed to be valid CPT codes.
type LineItem struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Quantity    int     `json:"quantity,omitempty"`
}

// EffectiveQuantity treats an absent quantity as 1.
func (li *LineItem) EffectiveQuantity() int {
	if li.Quantity <= 0 {
		return 1
	}
	return li.Quantity
}

// UnitAmount is the charged amount per unit of the procedure.
func (li *LineItem) UnitAmount() float64 {
	return li.Amount / float64(li.EffectiveQuantity())
}

// ReferencePricingRecord is the benchmark pricing for one procedure code.
type ReferencePricingRecord struct {
	Code             string  `db:"code" json:"code"`
	ProcedureName    string  `db:"procedure_name" json:"procedureName"`
	MedicareRate     float64 `db:"medicare_rate" json:"medicareRate"`
	TypicalRangeLow  float64 `db:"typical_range_low" json:"typicalRangeLow"`
	TypicalRangeHigh float64 `db:"typical_range_high" json:"typicalRangeHigh"`
}

// Issue is one detected billing problem. LineItem and ReferencePrice are
// nil for bill-wide issues; both must be set when Type is IssueOvercharge.
type Issue struct {
	Type             IssueType     `json:"type"`
	Severity         IssueSeverity `json:"severity"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	PotentialSavings *float64      `json:"potentialSavings,omitempty"`
	Recommendation   string        `json:"recommendation"`
	LineItem         *LineItem     `json:"lineItem,omitempty"`
	ReferencePrice   *float64      `json:"referencePrice,omitempty"`
}

// ExtractedBill is the structured view of one bill. Scalar fields are nil
// when the source text did not reveal them; LineItems preserves source order.
type ExtractedBill struct {
	HospitalName    *string    `json:"hospitalName"`
	HospitalAddress *string    `json:"hospitalAddress"`
	PatientInfo     *string    `json:"patientInfo"`
	DateOfService   *string    `json:"dateOfService"`
	TotalBilled     *float64   `json:"totalBilled"`
	LineItems       []LineItem `json:"lineItems"`
}

// EmptyBill returns the degraded extraction result used when the
// completion output cannot be parsed: all scalars unknown, zero items.
func EmptyBill() *ExtractedBill {
	return &ExtractedBill{LineItems: []LineItem{}}
}

// AnalysisResult is the terminal artifact of one analysis run. When
// Success is false only Error carries information.
type AnalysisResult struct {
	Success              bool       `json:"success"`
	HospitalName         *string    `json:"hospitalName,omitempty"`
	HospitalAddress      *string    `json:"hospitalAddress,omitempty"`
	PatientInfo          *string    `json:"patientInfo,omitempty"`
	DateOfService        *string    `json:"dateOfService,omitempty"`
	TotalBilled          *float64   `json:"totalBilled,omitempty"`
	LineItems            []LineItem `json:"lineItems"`
	Issues               []Issue    `json:"issues"`
	PotentialSavings     float64    `json:"potentialSavings"`
	DisputeLetterContent string     `json:"disputeLetterContent,omitempty"`
	Error                string     `json:"error,omitempty"`
}

// FailedResult builds the terminal failure artifact for a run.
func FailedResult(msg string) *AnalysisResult {
	return &AnalysisResult{
		Success:   false,
		LineItems: []LineItem{},
		Issues:    []Issue{},
		Error:     msg,
	}
}
