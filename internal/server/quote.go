package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/facturio/facturio/internal/quote/domain"
)

type lineItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	UnitPrice   float64 `json:"unit_price"`
}

type createQuoteRequest struct {
	ProjectID   string            `json:"project_id" binding:"required"`
	CountryCode string            `json:"country_code" binding:"required"`
	TaxRateKey  string            `json:"tax_rate_key"`
	Lines       []lineItemRequest `json:"lines" binding:"required"`
	Notes       *string           `json:"notes"`
	PaymentType *string           `json:"payment_type"`
}

type updateQuoteRequest struct {
	CountryCode *string           `json:"country_code"`
	TaxRateKey  *string           `json:"tax_rate_key"`
	Lines       []lineItemRequest `json:"lines"`
	Notes       *string           `json:"notes"`
	PaymentType *string           `json:"payment_type"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type sendDocumentRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

func toQuoteLines(lines []lineItemRequest) []domain.LineItemInput {
	if lines == nil {
		return nil
	}
	out := make([]domain.LineItemInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, domain.LineItemInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}
	return out
}

func (s *Server) ListQuotes(c *gin.Context) {
	quotes, err := s.quoteSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.quoteSvc.Create(c.Request.Context(), domain.CreateQuoteRequest{
		ProjectID:   req.ProjectID,
		CountryCode: req.CountryCode,
		TaxRateKey:  req.TaxRateKey,
		Lines:       toQuoteLines(req.Lines),
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quote)
}

func (s *Server) GetQuoteByID(c *gin.Context) {
	quote, err := s.quoteSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (s *Server) UpdateQuote(c *gin.Context) {
	var req updateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.quoteSvc.Update(c.Request.Context(), c.Param("id"), domain.UpdateQuoteRequest{
		CountryCode: req.CountryCode,
		TaxRateKey:  req.TaxRateKey,
		Lines:       toQuoteLines(req.Lines),
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (s *Server) DeleteQuote(c *gin.Context) {
	if err := s.quoteSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) SetQuoteStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.quoteSvc.SetStatus(c.Request.Context(), c.Param("id"), domain.QuoteStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (s *Server) SendQuote(c *gin.Context) {
	var req sendDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.quoteSvc.SendEmail(c.Request.Context(), c.Param("id"), req.Recipient); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (s *Server) ConvertQuote(c *gin.Context) {
	invoice, err := s.invoiceSvc.ConvertFromQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}
