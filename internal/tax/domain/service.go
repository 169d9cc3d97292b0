package domain

import "context"

// LineInput is one document line for totals computation.
type LineInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Totals carries the three monetary aggregates of a line or a document,
// rounded to two decimals.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// Service exposes the calculator for preview use by the HTTP layer.
type Service interface {
	TaxAmount(ctx context.Context, amount float64, countryCode, rateKey string) (float64, error)
	LineTotals(ctx context.Context, quantity, unitPrice float64, countryCode, rateKey string) (Totals, error)
	DocumentTotals(ctx context.Context, lines []LineInput, countryCode, rateKey string) (Totals, error)
	Regimes(ctx context.Context) []TaxRegime
}
