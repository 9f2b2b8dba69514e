package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/migration"
	"github.com/questx-lab/raffle/pkg/logger"
	"github.com/questx-lab/raffle/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GenesisTime is the wall clock of a mocked chain.
var GenesisTime = time.Unix(1_700_000_000, 0)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection to :memory: opens a new empty database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Default()
	cfg.Database = config.DatabaseConfigs{Driver: "sqlite", DSN: ":memory:"}
	cfg.Storage.BaseDir = ""

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.Migrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithNetwork(network string) context.Context {
	ctx := MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.Network = network
	return xcontext.WithConfigs(ctx, cfg)
}
