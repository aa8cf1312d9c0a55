package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billsage/internal/analysis"
	"billsage/internal/domain"
	"billsage/internal/handler"
)

// stubAnalyzer scripts the pipeline result for handler tests.
type stubAnalyzer struct {
	result *domain.AnalysisResult
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ analysis.AnalyzeRequest) (*domain.AnalysisResult, error) {
	s.calls++
	return s.result, s.err
}

func performAnalyze(t *testing.T, analyzer handler.BillAnalyzer, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewAnalyzeHandler(analyzer)
	r.POST("/api/v1/analyze", h.Analyze)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) domain.AnalysisResult {
	t.Helper()
	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestAnalyze_Success(t *testing.T) {
	hospital := "General Hospital"
	stub := &stubAnalyzer{
		result: &domain.AnalysisResult{
			Success:          true,
			HospitalName:     &hospital,
			LineItems:        []domain.LineItem{{Code: "99213", Description: "Office Visit", Amount: 450}},
			Issues:           []domain.Issue{{Type: domain.IssueOvercharge, Severity: domain.SeverityMedium}},
			PotentialSavings: 300,
		},
	}

	w := performAnalyze(t, stub, `{"billText": "CPT 99213: Office Visit - $450", "fileName": "bill.pdf"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	result := decodeResult(t, w)
	assert.True(t, result.Success)
	require.NotNil(t, result.HospitalName)
	assert.Equal(t, "General Hospital", *result.HospitalName)
	assert.Len(t, result.Issues, 1)
	assert.Equal(t, 300.0, result.PotentialSavings)
}

func TestAnalyze_MissingBillText(t *testing.T) {
	stub := &stubAnalyzer{
		result: domain.FailedResult("No bill text provided"),
		err:    domain.ErrNoBillText,
	}

	w := performAnalyze(t, stub, `{"fileName": "bill.pdf"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	result := decodeResult(t, w)
	assert.False(t, result.Success)
	assert.Equal(t, "No bill text provided", result.Error)
}

func TestAnalyze_MalformedBody(t *testing.T) {
	stub := &stubAnalyzer{}

	w := performAnalyze(t, stub, `{"billText": 12`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	result := decodeResult(t, w)
	assert.False(t, result.Success)
	assert.Equal(t, "No bill text provided", result.Error)
	assert.Equal(t, 0, stub.calls)
}

func TestAnalyze_NotConfigured(t *testing.T) {
	stub := &stubAnalyzer{
		result: domain.FailedResult("AI service not configured"),
		err:    domain.ErrNotConfigured,
	}

	w := performAnalyze(t, stub, `{"billText": "some bill"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	result := decodeResult(t, w)
	assert.False(t, result.Success)
	assert.Equal(t, "AI service not configured", result.Error)
}

func TestAnalyze_StageFailure(t *testing.T) {
	stub := &stubAnalyzer{
		result: domain.FailedResult("Failed to analyze billing issues"),
		err:    domain.ErrDetectionFailed,
	}

	w := performAnalyze(t, stub, `{"billText": "some bill"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	result := decodeResult(t, w)
	assert.Equal(t, "Failed to analyze billing issues", result.Error)
}

func TestAnalyze_CORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// mirror the router's middleware order for the preflight path
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
		}
	})
	h := handler.NewAnalyzeHandler(&stubAnalyzer{})
	r.POST("/api/v1/analyze", h.Analyze)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.Bytes())
}
