package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"billsage/internal/domain"
	"billsage/internal/port"
)

// User-facing failure messages. Internal causes are logged, never
// surfaced across the API boundary.
const (
	msgNoBillText       = "No bill text provided"
	msgNotConfigured    = "AI service not configured"
	msgExtractionFailed = "Failed to analyze bill content"
	msgDetectionFailed  = "Failed to analyze billing issues"
)

// AnalyzeRequest is one bill submitted for analysis.
type AnalyzeRequest struct {
	BillText string
	FileName string
}

// Pipeline orchestrates the bill analysis stages: extraction, issue
// detection, savings aggregation, and letter synthesis. Stages run
// strictly in sequence; concurrent Analyze calls are independent and
// share only the read-only pricing store.
type Pipeline struct {
	pricing   port.PricingRepository
	extractor *Extractor
	detector  *Detector
	letters   *LetterWriter
}

// NewPipeline assembles the pipeline around a completion client and the
// reference pricing store. A nil pricing repository is tolerated: runs
// proceed with no benchmarks to cite.
func NewPipeline(client port.CompletionClient, pricing port.PricingRepository) *Pipeline {
	return &Pipeline{
		pricing:   pricing,
		extractor: NewExtractor(client),
		detector:  NewDetector(client),
		letters:   NewLetterWriter(client),
	}
}

// Analyze runs one bill through the pipeline. The returned result is
// always non-nil; a non-nil error accompanies every Success=false
// result and classifies the failure for the transport layer
// (domain.ErrNoBillText, domain.ErrNotConfigured, or a stage error).
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisResult, error) {
	if strings.TrimSpace(req.BillText) == "" {
		return domain.FailedResult(msgNoBillText), domain.ErrNoBillText
	}

	name := req.FileName
	if name == "" {
		name = "pasted text"
	}
	log.Printf("analysis.Pipeline: analyzing bill (%s)", name)

	records := p.loadPricing(ctx)
	pricingContext := FormatPricingContext(records)
	pricingIndex := IndexPricing(records)

	bill, err := p.extractor.Extract(ctx, req.BillText, pricingContext)
	if err != nil {
		log.Printf("analysis.Pipeline: extraction failed: %v", err)
		if errors.Is(err, domain.ErrNotConfigured) {
			return domain.FailedResult(msgNotConfigured), err
		}
		return domain.FailedResult(msgExtractionFailed), fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	issues, err := p.detector.Detect(ctx, bill, req.BillText, pricingContext, pricingIndex)
	if err != nil {
		log.Printf("analysis.Pipeline: detection failed: %v", err)
		if errors.Is(err, domain.ErrNotConfigured) {
			return domain.FailedResult(msgNotConfigured), err
		}
		return domain.FailedResult(msgDetectionFailed), fmt.Errorf("%w: %v", domain.ErrDetectionFailed, err)
	}

	totalSavings := TotalPotentialSavings(issues)

	letter := ""
	if len(issues) > 0 {
		letter, err = p.letters.Compose(ctx, bill, issues, totalSavings)
		if err != nil {
			// Letter synthesis failure does not fail the run
			log.Printf("analysis.Pipeline: letter synthesis failed, continuing without letter: %v", err)
			letter = ""
		}
	}

	log.Printf("analysis.Pipeline: analysis complete, %d issue(s) found", len(issues))

	return &domain.AnalysisResult{
		Success:              true,
		HospitalName:         bill.HospitalName,
		HospitalAddress:      bill.HospitalAddress,
		PatientInfo:          bill.PatientInfo,
		DateOfService:        bill.DateOfService,
		TotalBilled:          bill.TotalBilled,
		LineItems:            bill.LineItems,
		Issues:               issues,
		PotentialSavings:     totalSavings,
		DisputeLetterContent: letter,
	}, nil
}

// loadPricing reads the reference pricing table, degrading to an empty
// set when the store is unavailable.
func (p *Pipeline) loadPricing(ctx context.Context) []domain.ReferencePricingRecord {
	if p.pricing == nil {
		return nil
	}
	records, err := p.pricing.LoadAll(ctx)
	if err != nil {
		log.Printf("analysis.Pipeline: %v, proceeding without benchmarks: %v", domain.ErrPricingUnavailable, err)
		return nil
	}
	return records
}
