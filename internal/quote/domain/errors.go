package domain

import "errors"

var (
	ErrInvalidOwner     = errors.New("invalid_owner")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("quote_not_found")
	ErrProjectForbidden = errors.New("project_forbidden")
	ErrNoLines          = errors.New("missing_lines")
	ErrInvalidLine      = errors.New("invalid_line")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidRecipient = errors.New("invalid_recipient")
)
