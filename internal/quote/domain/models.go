// Package domain contains persistence models for quotes.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// QuoteStatus represents quote lifecycle states. Transitions are externally
// driven status-set operations; any valid status may be set from any other.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRefused  QuoteStatus = "refused"
	QuoteStatusExpired  QuoteStatus = "expired"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRefused, QuoteStatusExpired:
		return true
	default:
		return false
	}
}

// Quote is a priced proposal attached to a project. Monetary aggregates are
// the sums of the line items' already-rounded fields.
type Quote struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_quotes_owner_number" json:"owner_id"`
	Number      string       `gorm:"type:text;not null;uniqueIndex:ux_quotes_owner_number" json:"number"`
	ClientID    snowflake.ID `gorm:"not null;index" json:"client_id"`
	ProjectID   snowflake.ID `gorm:"not null;index" json:"project_id"`
	Status      QuoteStatus  `gorm:"type:text;not null;default:'draft'" json:"status"`
	CountryCode string       `gorm:"type:char(2);not null" json:"country_code"`
	TaxRateKey  string       `gorm:"type:text" json:"tax_rate_key,omitempty"`
	Subtotal    float64      `gorm:"not null;default:0" json:"subtotal"`
	TaxAmount   float64      `gorm:"not null;default:0" json:"tax_amount"`
	Total       float64      `gorm:"not null;default:0" json:"total"`
	Notes       *string      `gorm:"type:text" json:"notes,omitempty"`
	PaymentType *string      `gorm:"type:text" json:"payment_type,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Quote) TableName() string { return "quotes" }

// QuoteItem is one line on a quote, exclusively owned by it. The full line set
// is replaced on every update that supplies new lines.
type QuoteItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteID     snowflake.ID `gorm:"not null;index" json:"quote_id"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Quantity    float64      `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"not null" json:"unit_price"`
	Subtotal    float64      `gorm:"not null" json:"subtotal"`
	TaxAmount   float64      `gorm:"not null" json:"tax_amount"`
	Total       float64      `gorm:"not null" json:"total"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (QuoteItem) TableName() string { return "quote_items" }
