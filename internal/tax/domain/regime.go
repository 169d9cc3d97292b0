// Package domain holds the immutable tax regime table.
package domain

import (
	"sort"
	"strings"
)

// Facturio official rate keys (v1).
// These keys are ENGINE-CONSTANTS.
// Do NOT rename or repurpose once used in documents.
const (
	RateKeyStandard     = "STANDARD"
	RateKeyIntermediate = "INTERMEDIATE"
	RateKeyReduced      = "REDUCED"
	RateKeySuperReduced = "SUPER_REDUCED"
)

// TaxRegime is the named tax configuration for one country.
// Rates are percentages (20 means 20%).
type TaxRegime struct {
	CountryCode    string             `json:"country_code"`
	Name           string             `json:"name"`
	CurrencyCode   string             `json:"currency_code"`
	CurrencySymbol string             `json:"currency_symbol"`
	DefaultRate    float64            `json:"default_rate"`
	Rates          map[string]float64 `json:"rates"`
}

// regimes is loaded once at process start and never mutated, so concurrent
// reads need no synchronization.
var regimes = map[string]TaxRegime{
	"FR": {
		CountryCode:    "FR",
		Name:           "France",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    20,
		Rates: map[string]float64{
			RateKeyStandard:     20,
			RateKeyIntermediate: 10,
			RateKeyReduced:      5.5,
			RateKeySuperReduced: 2.1,
		},
	},
	"MC": {
		CountryCode:    "MC",
		Name:           "Monaco",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    0,
		Rates:          map[string]float64{},
	},
	"BE": {
		CountryCode:    "BE",
		Name:           "Belgique",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    21,
		Rates: map[string]float64{
			RateKeyStandard: 21,
			RateKeyReduced:  6,
		},
	},
	"LU": {
		CountryCode:    "LU",
		Name:           "Luxembourg",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    17,
		Rates: map[string]float64{
			RateKeyStandard:     17,
			RateKeyReduced:      8,
			RateKeySuperReduced: 3,
		},
	},
	"DE": {
		CountryCode:    "DE",
		Name:           "Allemagne",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    19,
		Rates: map[string]float64{
			RateKeyStandard: 19,
			RateKeyReduced:  7,
		},
	},
	"ES": {
		CountryCode:    "ES",
		Name:           "Espagne",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    21,
		Rates: map[string]float64{
			RateKeyStandard:     21,
			RateKeyReduced:      10,
			RateKeySuperReduced: 4,
		},
	},
	"IT": {
		CountryCode:    "IT",
		Name:           "Italie",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    22,
		Rates: map[string]float64{
			RateKeyStandard:     22,
			RateKeyReduced:      10,
			RateKeySuperReduced: 4,
		},
	},
	"PT": {
		CountryCode:    "PT",
		Name:           "Portugal",
		CurrencyCode:   "EUR",
		CurrencySymbol: "€",
		DefaultRate:    23,
		Rates: map[string]float64{
			RateKeyStandard:     23,
			RateKeyIntermediate: 13,
			RateKeyReduced:      6,
		},
	},
	"CH": {
		CountryCode:    "CH",
		Name:           "Suisse",
		CurrencyCode:   "CHF",
		CurrencySymbol: "CHF",
		DefaultRate:    8.1,
		Rates: map[string]float64{
			RateKeyStandard: 8.1,
			RateKeyReduced:  2.6,
		},
	},
}

// Lookup resolves the regime for a country code.
func Lookup(countryCode string) (TaxRegime, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	regime, ok := regimes[code]
	if !ok {
		return TaxRegime{}, ErrUnsupportedCountry
	}
	return regime, nil
}

// All returns every registered regime sorted by country code.
func All() []TaxRegime {
	out := make([]TaxRegime, 0, len(regimes))
	for _, regime := range regimes {
		out = append(out, regime)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out
}
