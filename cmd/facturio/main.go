package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/facturio/facturio/internal/client"
	"github.com/facturio/facturio/internal/clock"
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/invoice"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/migration"
	"github.com/facturio/facturio/internal/numbering"
	"github.com/facturio/facturio/internal/project"
	"github.com/facturio/facturio/internal/providers"
	"github.com/facturio/facturio/internal/quote"
	"github.com/facturio/facturio/internal/seed"
	"github.com/facturio/facturio/internal/server"
	"github.com/facturio/facturio/internal/tax"
	"github.com/facturio/facturio/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains
		numbering.Module,
		providers.Module,
		tax.Module,
		client.Module,
		project.Module,
		quote.Module,
		invoice.Module,

		seed.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
