package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/facturio/facturio/internal/tax/domain"
)

type taxPreviewRequest struct {
	CountryCode string            `json:"country_code" binding:"required"`
	TaxRateKey  string            `json:"tax_rate_key"`
	Lines       []lineItemRequest `json:"lines" binding:"required"`
}

type taxAmountRequest struct {
	CountryCode string  `json:"country_code" binding:"required"`
	TaxRateKey  string  `json:"tax_rate_key"`
	Amount      float64 `json:"amount" binding:"required"`
}

type lineTotalsRequest struct {
	CountryCode string  `json:"country_code" binding:"required"`
	TaxRateKey  string  `json:"tax_rate_key"`
	Quantity    float64 `json:"quantity" binding:"required"`
	UnitPrice   float64 `json:"unit_price"`
}

func (s *Server) ListTaxRegimes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"regimes": s.taxSvc.Regimes(c.Request.Context())})
}

func (s *Server) GetTaxRegime(c *gin.Context) {
	regime, err := domain.Lookup(c.Param("country"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, regime)
}

// PreviewTaxAmount applies a regime's rate to a raw amount without rounding.
func (s *Server) PreviewTaxAmount(c *gin.Context) {
	var req taxAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := s.taxSvc.TaxAmount(c.Request.Context(), req.Amount, req.CountryCode, req.TaxRateKey)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tax_amount": amount})
}

// PreviewLineTotals computes the rounded totals of a single line.
func (s *Server) PreviewLineTotals(c *gin.Context) {
	var req lineTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	totals, err := s.taxSvc.LineTotals(c.Request.Context(), req.Quantity, req.UnitPrice, req.CountryCode, req.TaxRateKey)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// PreviewTaxTotals computes document totals without persisting anything, so
// clients can show live amounts while a document is being drafted.
func (s *Server) PreviewTaxTotals(c *gin.Context) {
	var req taxPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lines := make([]domain.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, domain.LineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	totals, err := s.taxSvc.DocumentTotals(c.Request.Context(), lines, req.CountryCode, req.TaxRateKey)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
