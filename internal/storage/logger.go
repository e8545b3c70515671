package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ilog "github.com/p2ppsr/metanet-desktop/internal/log"
)

// GormLogger routes gorm's logging onto the process logger.
type GormLogger struct {
	LogLevel logger.LogLevel
}

// NewGormLogger returns a logger at warn level; the KV store is on a
// hot path and per-query info logging is noise.
func NewGormLogger() *GormLogger {
	return &GormLogger{LogLevel: logger.Warn}
}

// LogMode sets the log level.
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		ilog.L().Info().Any("data", data).Msg(msg)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		ilog.L().Warn().Any("data", data).Msg(msg)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		ilog.L().Error().Any("data", data).Msg(msg)
	}
}

// Trace logs slow and failing statements only.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= logger.Error:
		sql, rows := fc()
		ilog.L().Error().Err(err).Str("sql", sql).Int64("rows", rows).Msg("sql error")
	case elapsed > time.Second && l.LogLevel >= logger.Warn:
		sql, rows := fc()
		ilog.L().Warn().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("slow sql")
	}
}
