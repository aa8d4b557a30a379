package db

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold mirrors the teacher's zapGORMLogger threshold.
const slowQueryThreshold = 200 * time.Millisecond

// zapGORMLogger adapts a *zap.Logger to gorm's logger.Interface.
type zapGORMLogger struct {
	logger         *zap.Logger
	level          gormlogger.LogLevel
	ignoreNotFound bool
}

func newZapGORMLogger(logger *zap.Logger) gormlogger.Interface {
	return &zapGORMLogger{logger: logger, level: gormlogger.Warn, ignoreNotFound: true}
}

func (l *zapGORMLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *zapGORMLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, args...)
	}
}

func (l *zapGORMLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, args...)
	}
}

func (l *zapGORMLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, args...)
	}
}

func (l *zapGORMLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && l.level >= gormlogger.Error {
		if l.ignoreNotFound && errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		l.logger.Error("gorm query error", zap.Error(err), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("took", elapsed))
		return
	}

	if elapsed > slowQueryThreshold && l.level >= gormlogger.Warn {
		l.logger.Warn("slow gorm query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("took", elapsed))
		return
	}

	if l.level >= gormlogger.Info {
		l.logger.Debug("gorm query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("took", elapsed))
	}
}
