package database

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowThreshold = 200 * time.Millisecond

// gormLogger forwards gorm messages to zap. Failed statements are logged at
// debug level since callers report them with more context. Slow statements
// are logged as warnings.
type gormLogger struct {
	log   *zap.SugaredLogger
	level logger.LogLevel
}

func NewLogger(log *zap.SugaredLogger) logger.Interface {
	return &gormLogger{log: log.Named("gorm"), level: logger.Warn}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	nl := *l
	nl.level = level
	return &nl
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.log.Debugw("Statement failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warnw("Slow statement", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debugw("Statement", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
