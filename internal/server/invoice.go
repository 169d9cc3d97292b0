package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/facturio/facturio/internal/invoice/domain"
)

type createInvoiceRequest struct {
	ProjectID   string            `json:"project_id" binding:"required"`
	CountryCode string            `json:"country_code" binding:"required"`
	TaxRateKey  string            `json:"tax_rate_key"`
	Lines       []lineItemRequest `json:"lines" binding:"required"`
	Notes       *string           `json:"notes"`
	PaymentType *string           `json:"payment_type"`
	DueAt       *time.Time        `json:"due_at"`
}

type updateInvoiceRequest struct {
	CountryCode *string           `json:"country_code"`
	TaxRateKey  *string           `json:"tax_rate_key"`
	Lines       []lineItemRequest `json:"lines"`
	Notes       *string           `json:"notes"`
	PaymentType *string           `json:"payment_type"`
	DueAt       *time.Time        `json:"due_at"`
}

func toInvoiceLines(lines []lineItemRequest) []domain.LineItemInput {
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

func (s *Server) ListInvoices(c *gin.Context) {
	invoices, err := s.invoiceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), domain.CreateInvoiceRequest{
		ProjectID:   req.ProjectID,
		CountryCode: req.CountryCode,
		TaxRateKey:  req.TaxRateKey,
		Lines:       toInvoiceLines(req.Lines),
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
		DueAt:       req.DueAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.Update(c.Request.Context(), c.Param("id"), domain.UpdateInvoiceRequest{
		CountryCode: req.CountryCode,
		TaxRateKey:  req.TaxRateKey,
		Lines:       toInvoiceLines(req.Lines),
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
		DueAt:       req.DueAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) SetInvoiceStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.SetStatus(c.Request.Context(), c.Param("id"), domain.InvoiceStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) SendInvoice(c *gin.Context) {
	var req sendDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.invoiceSvc.SendEmail(c.Request.Context(), c.Param("id"), req.Recipient); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
