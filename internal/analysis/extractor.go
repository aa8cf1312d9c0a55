package analysis

import (
	"context"
	"fmt"

	"billsage/internal/domain"
	"billsage/internal/port"
)

// Extractor turns raw bill text into a structured ExtractedBill via one
// completion call.
type Extractor struct {
	client port.CompletionClient
}

// NewExtractor creates an extraction stage backed by the given client.
func NewExtractor(client port.CompletionClient) *Extractor {
	return &Extractor{client: client}
}

// extractedBillPayload mirrors the JSON contract the extraction prompt
// demands from the completion service.
type extractedBillPayload struct {
	HospitalName    *string           `json:"hospitalName"`
	HospitalAddress *string           `json:"hospitalAddress"`
	PatientInfo     *string           `json:"patientInfo"`
	DateOfService   *string           `json:"dateOfService"`
	TotalBilled     *float64          `json:"totalBilled"`
	LineItems       []domain.LineItem `json:"lineItems"`
}

// Extract produces the structured view of billText. A transport or auth
// failure of the completion call is returned as an error; output that
// fails to parse degrades to an empty bill so the run can continue.
func (e *Extractor) Extract(ctx context.Context, billText, pricingContext string) (*domain.ExtractedBill, error) {
	raw, err := e.client.Complete(ctx, port.CompletionRequest{
		System: buildExtractionSystemPrompt(pricingContext),
		User:   extractionUserContent(billText),
	})
	if err != nil {
		return nil, fmt.Errorf("extraction completion call: %w", err)
	}

	var payload extractedBillPayload
	if !decodeOrDegrade("Extractor", raw, &payload) {
		return domain.EmptyBill(), nil
	}

	bill := domain.ExtractedBill(payload)
	if bill.LineItems == nil {
		bill.LineItems = []domain.LineItem{}
	}
	return &bill, nil
}
