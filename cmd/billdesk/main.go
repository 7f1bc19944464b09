package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice"
	"github.com/smallbiznis/billdesk/internal/migration"
	"github.com/smallbiznis/billdesk/internal/observability"
	"github.com/smallbiznis/billdesk/internal/providers"
	"github.com/smallbiznis/billdesk/internal/ratelimit"
	"github.com/smallbiznis/billdesk/internal/server"
	"github.com/smallbiznis/billdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,

		// Functional Domains
		providers.Module,
		invoice.Module,
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
