package pdf

import "context"

// DocumentData is the presentation payload for a rendered quote or invoice.
// Monetary values arrive preformatted with the regime's currency symbol.
type DocumentData struct {
	Title      string
	Number     string
	IssueDate  string
	DueDate    string
	ClientName string
	Recipient  string

	Items []LineRow

	Subtotal  string
	TaxAmount string
	Total     string
	Notes     string
}

type LineRow struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

type Renderer interface {
	Render(ctx context.Context, data DocumentData) ([]byte, error)
}

type NoOpRenderer struct{}

func (r *NoOpRenderer) Render(ctx context.Context, data DocumentData) ([]byte, error) {
	return nil, nil
}
