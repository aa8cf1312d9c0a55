package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"billsage/internal/port"
)

// PricingHandler exposes the reference pricing benchmarks the analysis
// compares charges against.
type PricingHandler struct {
	repo port.PricingRepository
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(repo port.PricingRepository) *PricingHandler {
	return &PricingHandler{repo: repo}
}

// List handles GET /api/v1/pricing.
func (h *PricingHandler) List(c *gin.Context) {
	if h.repo == nil {
		RespondError(c, http.StatusServiceUnavailable, "PRICING_UNAVAILABLE", "reference pricing is not available")
		return
	}
	records, err := h.repo.LoadAll(c.Request.Context())
	if err != nil {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] loading reference pricing: %v", requestID, err)
		RespondError(c, http.StatusServiceUnavailable, "PRICING_UNAVAILABLE", "reference pricing is not available")
		return
	}
	RespondOK(c, records)
}
