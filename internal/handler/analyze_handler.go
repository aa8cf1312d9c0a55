package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"billsage/internal/analysis"
	"billsage/internal/domain"
)

// BillAnalyzer runs one bill through the analysis pipeline.
type BillAnalyzer interface {
	Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*domain.AnalysisResult, error)
}

// AnalyzeHandler handles bill analysis requests.
type AnalyzeHandler struct {
	analyzer BillAnalyzer
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analyzer BillAnalyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

type analyzeRequest struct {
	BillText string `json:"billText"`
	FileName string `json:"fileName"`
}

// Analyze handles POST /api/v1/analyze. The response body is the flat
// AnalysisResult in every case; only the status code varies: 400 for a
// missing bill text, 500 for configuration or upstream failures, 200
// otherwise (with or without issues found).
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.FailedResult("No bill text provided"))
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), analysis.AnalyzeRequest{
		BillText: req.BillText,
		FileName: req.FileName,
	})
	if err != nil {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] analyze failed: %v", requestID, err)
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, domain.ErrNoBillText):
		c.JSON(http.StatusBadRequest, result)
	default:
		c.JSON(http.StatusInternalServerError, result)
	}
}
