package migration

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

//go:embed mysql/*.sql
var mysqlFS embed.FS

// Migrators are one-off migrations which can be run by version from the
// migrate command.
var Migrators = map[string]func(context.Context) error{
	"0000": migrate0000,
	"0001": migrate0001,
}

// Migrate brings the database schema up to date. MySQL uses the versioned
// SQL files, other drivers fall back to gorm AutoMigrate.
func Migrate(ctx context.Context) error {
	if xcontext.Configs(ctx).Database.Driver != "mysql" {
		return migrate0000(ctx)
	}

	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(mysqlFS, "mysql")
	if err != nil {
		return err
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, xcontext.Configs(ctx).Database.Database, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
