// Package migration creates the schema on startup so the service is usable
// out of the box for local and self-hosted environments.
package migration

import (
	clientdomain "github.com/facturio/facturio/internal/client/domain"
	invoicedomain "github.com/facturio/facturio/internal/invoice/domain"
	projectdomain "github.com/facturio/facturio/internal/project/domain"
	quotedomain "github.com/facturio/facturio/internal/quote/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(db *gorm.DB, log *zap.Logger) error {
	log.Info("running schema migration")

	return db.AutoMigrate(
		&clientdomain.Client{},
		&projectdomain.Project{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	)
}
