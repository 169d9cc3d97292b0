package domain

import "errors"

var (
	ErrInvalidOwner     = errors.New("invalid_owner")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("invoice_not_found")
	ErrProjectForbidden = errors.New("project_forbidden")
	ErrNoLines          = errors.New("no_line_items")
	ErrInvalidLine      = errors.New("invalid_line_item")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidRecipient = errors.New("invalid_recipient")

	// ErrInvoicePaid guards the frozen state: a paid invoice cannot be
	// modified or deleted.
	ErrInvoicePaid = errors.New("invoice_paid")

	// Conversion preconditions.
	ErrQuoteNotAccepted = errors.New("quote_not_accepted")
	ErrQuoteTooOld      = errors.New("quote_too_old")
)
