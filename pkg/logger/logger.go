package logger

import (
	"go.uber.org/zap"
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a Logger with the given level name (DEBUG, INFO, WARN,
// ERROR). Unknown levels fall back to INFO.
func NewZapLogger(level string, isProduction bool) *zapLogger {
	cfg := zap.NewDevelopmentConfig()
	if isProduction {
		cfg = zap.NewProductionConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}

	return &zapLogger{sugar: l.Sugar()}
}

func NewNopLogger() *zapLogger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debugf(msg string, a ...any) {
	l.sugar.Debugf(msg, a...)
}

func (l *zapLogger) Infof(msg string, a ...any) {
	l.sugar.Infof(msg, a...)
}

func (l *zapLogger) Warnf(msg string, a ...any) {
	l.sugar.Warnf(msg, a...)
}

func (l *zapLogger) Errorf(msg string, a ...any) {
	l.sugar.Errorf(msg, a...)
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}
