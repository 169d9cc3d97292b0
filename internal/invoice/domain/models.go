// Package domain contains persistence models for invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states. A paid invoice is frozen:
// updates and deletes are rejected, only status changes remain possible.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Invoice is a billable document attached to a project. QuoteID links back to
// the source quote when the invoice was produced by conversion.
type Invoice struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_invoices_owner_number" json:"owner_id"`
	Number      string        `gorm:"type:text;not null;uniqueIndex:ux_invoices_owner_number" json:"number"`
	ClientID    snowflake.ID  `gorm:"not null;index" json:"client_id"`
	ProjectID   snowflake.ID  `gorm:"not null;index" json:"project_id"`
	QuoteID     *snowflake.ID `gorm:"index" json:"quote_id,omitempty"`
	Status      InvoiceStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	CountryCode string        `gorm:"type:char(2);not null" json:"country_code"`
	TaxRateKey  string        `gorm:"type:text" json:"tax_rate_key,omitempty"`
	Subtotal    float64       `gorm:"not null;default:0" json:"subtotal"`
	TaxAmount   float64       `gorm:"not null;default:0" json:"tax_amount"`
	Total       float64       `gorm:"not null;default:0" json:"total"`
	Notes       *string       `gorm:"type:text" json:"notes,omitempty"`
	PaymentType *string       `gorm:"type:text" json:"payment_type,omitempty"`
	DueAt       time.Time     `gorm:"not null" json:"due_at"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line on an invoice. Converted invoices carry verbatim
// copies of the source quote's lines, monetary fields included.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Quantity    float64      `gorm:"not null" json:"quantity"`
	UnitPrice   float64      `gorm:"not null" json:"unit_price"`
	Subtotal    float64      `gorm:"not null" json:"subtotal"`
	TaxAmount   float64      `gorm:"not null" json:"tax_amount"`
	Total       float64      `gorm:"not null" json:"total"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
