// Package zaplog bridges go.uber.org/zap into the go-attribution logger
// contract.
package zaplog

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-attribution/pkg/interfaces/logger"
)

// Logger forwards to a zap.Logger.
type Logger struct {
	zl *zap.Logger
}

var _ logger.Logger = (*Logger)(nil)

// New wraps the given zap logger. A nil logger falls back to zap.NewNop.
func New(zl *zap.Logger) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{zl: zl}
}

// NewDevelopment builds a console logger for demos and local runs.
func NewDevelopment() (*Logger, error) {
	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return New(zl), nil
}

func (l *Logger) With(fields ...logger.Field) logger.Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{zl: l.zl.With(convert(fields)...)}
}

func (l *Logger) Debug(msg string, fields ...logger.Field) { l.zl.Debug(msg, convert(fields)...) }
func (l *Logger) Info(msg string, fields ...logger.Field)  { l.zl.Info(msg, convert(fields)...) }
func (l *Logger) Warn(msg string, fields ...logger.Field)  { l.zl.Warn(msg, convert(fields)...) }
func (l *Logger) Error(msg string, fields ...logger.Field) { l.zl.Error(msg, convert(fields)...) }

func convert(fields []logger.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
