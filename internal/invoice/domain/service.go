package domain

import (
	"context"
	"time"
)

// LineItemInput is a caller-supplied invoice line before totals computation.
type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateInvoiceRequest struct {
	ProjectID   string
	Lines       []LineItemInput
	CountryCode string
	TaxRateKey  string
	Notes       *string
	PaymentType *string
	// DueAt defaults to 30 days after issuance when nil.
	DueAt *time.Time
}

// UpdateInvoiceRequest patches an invoice. A nil Lines slice preserves the
// existing line items and totals; a non-nil slice replaces all lines and
// recomputes.
type UpdateInvoiceRequest struct {
	Lines       []LineItemInput
	CountryCode *string
	TaxRateKey  *string
	Notes       *string
	PaymentType *string
	DueAt       *time.Time
}

type InvoiceWithItems struct {
	Invoice
	Items []InvoiceItem `json:"items"`
}

type Service interface {
	List(ctx context.Context) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (InvoiceWithItems, error)
	Create(ctx context.Context, req CreateInvoiceRequest) (InvoiceWithItems, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (InvoiceWithItems, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status InvoiceStatus) (Invoice, error)
	SendEmail(ctx context.Context, id string, recipient string) error

	// ConvertFromQuote issues an invoice from an accepted quote, copying its
	// lines and totals verbatim and linking back through QuoteID.
	ConvertFromQuote(ctx context.Context, quoteID string) (InvoiceWithItems, error)
}
