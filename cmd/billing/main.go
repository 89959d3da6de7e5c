package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/clock"
	"github.com/citylights/billing/internal/concept"
	"github.com/citylights/billing/internal/config"
	"github.com/citylights/billing/internal/delinquency"
	"github.com/citylights/billing/internal/dues"
	"github.com/citylights/billing/internal/invoice"
	"github.com/citylights/billing/internal/migration"
	"github.com/citylights/billing/internal/observability"
	"github.com/citylights/billing/internal/payment"
	"github.com/citylights/billing/internal/payroll"
	"github.com/citylights/billing/internal/providers"
	"github.com/citylights/billing/internal/report"
	"github.com/citylights/billing/internal/scheduler"
	"github.com/citylights/billing/internal/server"
	"github.com/citylights/billing/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		providers.Module,

		concept.Module,
		dues.Module,
		delinquency.Module,
		payment.Module,
		payroll.Module,
		invoice.Module,
		report.Module,

		scheduler.Module,
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
