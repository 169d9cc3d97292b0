package service

import (
	"context"

	"github.com/facturio/facturio/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{log: p.Log.Named("tax.service")}
}

func (s *Service) TaxAmount(ctx context.Context, amount float64, countryCode, rateKey string) (float64, error) {
	_ = ctx
	return TaxAmount(amount, countryCode, rateKey)
}

func (s *Service) LineTotals(ctx context.Context, quantity, unitPrice float64, countryCode, rateKey string) (domain.Totals, error) {
	_ = ctx
	return LineTotals(quantity, unitPrice, countryCode, rateKey)
}

func (s *Service) DocumentTotals(ctx context.Context, lines []domain.LineInput, countryCode, rateKey string) (domain.Totals, error) {
	_ = ctx
	return DocumentTotals(lines, countryCode, rateKey)
}

func (s *Service) Regimes(ctx context.Context) []domain.TaxRegime {
	_ = ctx
	return domain.All()
}
