package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billsage/internal/domain"
	"billsage/internal/port"
	"billsage/mocks"
)

// Stage matchers keyed on each stage's system prompt persona.
func extractionCall(req port.CompletionRequest) bool {
	return strings.Contains(req.System, "Extract structured information")
}

func detectionCall(req port.CompletionRequest) bool {
	return strings.Contains(req.System, "medical billing auditor")
}

func letterCall(req port.CompletionRequest) bool {
	return strings.Contains(req.System, "patient advocate")
}

func pricingRepoWith(records ...domain.ReferencePricingRecord) *mocks.MockPricingRepo {
	repo := new(mocks.MockPricingRepo)
	repo.On("LoadAll", mock.Anything).Return(records, nil)
	return repo
}

func TestAnalyze_EmptyBillText_NoOutboundCalls(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	repo := new(mocks.MockPricingRepo)

	p := NewPipeline(client, repo)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "   "})

	require.ErrorIs(t, err, domain.ErrNoBillText)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "No bill text provided", result.Error)
	client.AssertNumberOfCalls(t, "Complete", 0)
	repo.AssertNumberOfCalls(t, "LoadAll", 0)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything).Return("", domain.ErrNotConfigured)

	p := NewPipeline(client, pricingRepoWith())
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "some bill"})

	require.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.False(t, result.Success)
	assert.Equal(t, "AI service not configured", result.Error)
}

func TestAnalyze_ExtractionTransportFailureIsTerminal(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).Return("", errors.New("upstream 503"))

	p := NewPipeline(client, pricingRepoWith())
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "some bill"})

	require.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to analyze bill content", result.Error)
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestAnalyze_DetectionTransportFailureIsTerminal(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).Return(`{"lineItems": []}`, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(detectionCall)).Return("", errors.New("upstream 503"))

	p := NewPipeline(client, pricingRepoWith())
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "some bill"})

	require.ErrorIs(t, err, domain.ErrDetectionFailed)
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to analyze billing issues", result.Error)
}

func TestAnalyze_UnparseableExtractionStillRunsDetection(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).Return("sorry, no JSON here", nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(detectionCall)).Return(`{"issues": []}`, nil)

	p := NewPipeline(client, pricingRepoWith())
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "some bill"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []domain.LineItem{}, result.LineItems)
	assert.Nil(t, result.HospitalName)
	client.AssertNumberOfCalls(t, "Complete", 2)
}

func TestAnalyze_CleanBillSkipsLetterSynthesis(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).
		Return(`{"hospitalName": "General Hospital", "lineItems": [{"code": "99213", "description": "Office Visit", "amount": 120}]}`, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(detectionCall)).Return(`{"issues": []}`, nil)

	p := NewPipeline(client, pricingRepoWith(domain.ReferencePricingRecord{
		Code: "99213", ProcedureName: "Office Visit", MedicareRate: 110, TypicalRangeLow: 90, TypicalRangeHigh: 150,
	}))
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "CPT 99213: Office Visit - $120"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 0.0, result.PotentialSavings)
	assert.Empty(t, result.DisputeLetterContent)
	// extraction + detection only: no letter call for a clean bill
	client.AssertNumberOfCalls(t, "Complete", 2)
}

func TestAnalyze_OverchargeEndToEnd(t *testing.T) {
	extractionJSON := "```json\n" +
		`{"hospitalName": "General Hospital", "totalBilled": 450,
		  "lineItems": [{"code": "99213", "description": "Office Visit", "amount": 450}]}` +
		"\n```"

	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).Return(extractionJSON, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(detectionCall)).Return(`{"issues": []}`, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(letterCall)).
		Return("Dear Billing Department,\n\nI formally dispute the $450 charge for CPT 99213...", nil)

	p := NewPipeline(client, pricingRepoWith(domain.ReferencePricingRecord{
		Code: "99213", ProcedureName: "Office Visit", MedicareRate: 110, TypicalRangeLow: 90, TypicalRangeHigh: 150,
	}))
	result, err := p.Analyze(context.Background(), AnalyzeRequest{
		BillText: "CPT 99213: Office Visit - $450",
		FileName: "bill.pdf",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, result.LineItems, 1)
	assert.Equal(t, "99213", result.LineItems[0].Code)
	assert.InDelta(t, 450.0, result.LineItems[0].Amount, 0.01)

	require.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, domain.IssueOvercharge, issue.Type)
	require.NotNil(t, issue.ReferencePrice)
	assert.InDelta(t, 150.0, *issue.ReferencePrice, 0.01)
	require.NotNil(t, issue.PotentialSavings)
	assert.Greater(t, *issue.PotentialSavings, 0.0)

	assert.Greater(t, result.PotentialSavings, 0.0)
	assert.Contains(t, result.DisputeLetterContent, "99213")

	// The letter request carries the issue figures and placeholders
	letterReq := client.Calls[2].Arguments.Get(1).(port.CompletionRequest)
	assert.Contains(t, letterReq.User, "General Hospital")
	assert.Contains(t, letterReq.User, "[HOSPITAL ADDRESS]")
	assert.Contains(t, letterReq.User, "Total Potential Savings: $300.00")
}

func TestAnalyze_LetterFailureIsNonTerminal(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).
		Return(`{"lineItems": [{"code": "99213", "description": "Office Visit", "amount": 450}]}`, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(detectionCall)).Return(`{"issues": []}`, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(letterCall)).Return("", errors.New("upstream 500"))

	p := NewPipeline(client, pricingRepoWith(domain.ReferencePricingRecord{
		Code: "99213", ProcedureName: "Office Visit", MedicareRate: 110, TypicalRangeLow: 90, TypicalRangeHigh: 150,
	}))
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "CPT 99213: Office Visit - $450"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotEmpty(t, result.Issues)
	assert.Empty(t, result.DisputeLetterContent)
}

func TestAnalyze_PricingLoadFailureDegrades(t *testing.T) {
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).
		Return(`{"lineItems": [{"code": "99213", "description": "Office Visit", "amount": 450}]}`, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(detectionCall)).Return(`{"issues": []}`, nil)

	repo := new(mocks.MockPricingRepo)
	repo.On("LoadAll", mock.Anything).Return(nil, errors.New("connection refused"))

	p := NewPipeline(client, repo)
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "CPT 99213: Office Visit - $450"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	// No benchmarks to compare against: the overcharge rule cannot fire
	assert.Empty(t, result.Issues)
}

func TestAnalyze_SavingsEqualsSumOfIssueSavings(t *testing.T) {
	llmJSON := `{"issues": [
		{"type": "upcoding", "severity": "medium", "title": "t", "description": "d", "recommendation": "r", "potentialSavings": 100.25},
		{"type": "missing_code", "severity": "low", "title": "t", "description": "d", "recommendation": "r"}
	]}`
	client := new(mocks.MockCompletionClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(extractionCall)).Return(`{"lineItems": []}`, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(detectionCall)).Return(llmJSON, nil)
	client.On("Complete", mock.Anything, mock.MatchedBy(letterCall)).Return("letter", nil)

	p := NewPipeline(client, pricingRepoWith())
	result, err := p.Analyze(context.Background(), AnalyzeRequest{BillText: "bill"})

	require.NoError(t, err)
	require.Len(t, result.Issues, 2)
	assert.InDelta(t, TotalPotentialSavings(result.Issues), result.PotentialSavings, 0.001)
	assert.InDelta(t, 100.25, result.PotentialSavings, 0.001)
}
