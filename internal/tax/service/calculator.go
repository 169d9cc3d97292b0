package service

import (
	"github.com/facturio/facturio/internal/tax/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RateFor resolves the percentage to apply: the regime's rate for rateKey when
// registered, otherwise the regime's default rate.
func RateFor(countryCode, rateKey string) (float64, error) {
	regime, err := domain.Lookup(countryCode)
	if err != nil {
		return 0, err
	}
	if rateKey != "" {
		if rate, ok := regime.Rates[rateKey]; ok {
			return rate, nil
		}
	}
	return regime.DefaultRate, nil
}

// TaxAmount computes amount * rate / 100 without rounding. Rounding happens in
// LineTotals so stored values stay consistent with what gets summed.
func TaxAmount(amount float64, countryCode, rateKey string) (float64, error) {
	rate, err := RateFor(countryCode, rateKey)
	if err != nil {
		return 0, err
	}
	return amount * rate / 100, nil
}

// LineTotals computes the rounded subtotal, tax and total for one line.
// Each field is rounded half-up at the cent; the total is the sum of the two
// already-rounded fields, so total == subtotal + taxAmount always holds on the
// persisted values.
func LineTotals(quantity, unitPrice float64, countryCode, rateKey string) (domain.Totals, error) {
	rate, err := RateFor(countryCode, rateKey)
	if err != nil {
		return domain.Totals{}, err
	}

	subtotal := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	tax := subtotal.Mul(decimal.NewFromFloat(rate)).Div(hundred)

	subtotalR := subtotal.Round(2)
	taxR := tax.Round(2)
	totalR := subtotalR.Add(taxR)

	return domain.Totals{
		Subtotal:  subtotalR.InexactFloat64(),
		TaxAmount: taxR.InexactFloat64(),
		Total:     totalR.InexactFloat64(),
	}, nil
}

// DocumentTotals sums per-line rounded totals independently, then rounds each
// sum again. Document totals are deliberately not derived by re-taxing the raw
// subtotal: the per-line-then-per-document rounding can drift a cent from a
// single-stage computation, and that drift is the contract.
func DocumentTotals(lines []domain.LineInput, countryCode, rateKey string) (domain.Totals, error) {
	subtotal := decimal.Zero
	tax := decimal.Zero
	total := decimal.Zero

	for _, line := range lines {
		lt, err := LineTotals(line.Quantity, line.UnitPrice, countryCode, rateKey)
		if err != nil {
			return domain.Totals{}, err
		}
		subtotal = subtotal.Add(decimal.NewFromFloat(lt.Subtotal))
		tax = tax.Add(decimal.NewFromFloat(lt.TaxAmount))
		total = total.Add(decimal.NewFromFloat(lt.Total))
	}

	return domain.Totals{
		Subtotal:  subtotal.Round(2).InexactFloat64(),
		TaxAmount: tax.Round(2).InexactFloat64(),
		Total:     total.Round(2).InexactFloat64(),
	}, nil
}
