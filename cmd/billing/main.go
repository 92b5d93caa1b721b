package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/klinikita/billing/internal/config"
	"github.com/klinikita/billing/internal/migration"
	"github.com/klinikita/billing/internal/observability"
	"github.com/klinikita/billing/internal/server"
	"github.com/klinikita/billing/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE_ID"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	return snowflake.NewNode(nodeID)
}
