package domain

import "context"

// LineItemInput is a caller-supplied quote line before totals computation.
type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type CreateQuoteRequest struct {
	ProjectID   string
	Lines       []LineItemInput
	CountryCode string
	TaxRateKey  string
	Notes       *string
	PaymentType *string
}

// UpdateQuoteRequest patches a quote. A nil Lines slice preserves the existing
// line items and totals; a non-nil slice replaces all lines and recomputes.
type UpdateQuoteRequest struct {
	Lines       []LineItemInput
	CountryCode *string
	TaxRateKey  *string
	Notes       *string
	PaymentType *string
}

type QuoteWithItems struct {
	Quote
	Items []QuoteItem `json:"items"`
}

type Service interface {
	List(ctx context.Context) ([]Quote, error)
	GetByID(ctx context.Context, id string) (QuoteWithItems, error)
	Create(ctx context.Context, req CreateQuoteRequest) (QuoteWithItems, error)
	Update(ctx context.Context, id string, req UpdateQuoteRequest) (QuoteWithItems, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status QuoteStatus) (Quote, error)
	SendEmail(ctx context.Context, id string, recipient string) error
}
