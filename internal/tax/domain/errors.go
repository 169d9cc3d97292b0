package domain

import "errors"

var (
	ErrUnsupportedCountry = errors.New("unsupported_country")
)
