package xcontext

import (
	"context"

	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey  struct{}
	loggerKey   struct{}
	dbKey       struct{}
	dbTxKey     struct{}
	operatorKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, _ := ctx.Value(configsKey{}).(config.Configs)
	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return logger.NewNopLogger()
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

func DB(ctx context.Context) *gorm.DB {
	db, _ := ctx.Value(dbKey{}).(*gorm.DB)
	return db
}

type dbTx struct {
	tx   *gorm.DB
	done bool
}

// WithDBTransaction begins a transaction on the current database and returns
// a context whose DB is the transaction. It must be closed by either
// WithCommitDBTransaction or WithRollbackDBTransaction.
func WithDBTransaction(ctx context.Context) context.Context {
	tx := DB(ctx).Begin()
	ctx = context.WithValue(ctx, dbTxKey{}, &dbTx{tx: tx})
	return WithDB(ctx, tx)
}

func WithCommitDBTransaction(ctx context.Context) error {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || t.done {
		return nil
	}

	t.done = true
	return t.tx.Commit().Error
}

// WithRollbackDBTransaction is a no-op if the transaction was committed.
func WithRollbackDBTransaction(ctx context.Context) {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || t.done {
		return
	}

	t.done = true
	t.tx.Rollback()
}

// InDBTransaction reports whether the context carries an open transaction.
func InDBTransaction(ctx context.Context) bool {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	return ok && !t.done
}

func WithOperator(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, operatorKey{}, subject)
}

func Operator(ctx context.Context) string {
	s, _ := ctx.Value(operatorKey{}).(string)
	return s
}
