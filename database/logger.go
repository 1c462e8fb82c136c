package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/dataflow/logger"
)

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// gormLogger routes GORM logging through the dataflow logger.
type gormLogger struct {
	log           *logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger, slowThreshold time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{
		log:           log.WithComponent("gorm"),
		level:         level,
		slowThreshold: slowThreshold,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{log: l.log, level: level, slowThreshold: l.slowThreshold}
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	l.printf(gormlogger.Info, l.log.Info, msg, data)
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	l.printf(gormlogger.Warn, l.log.Warn, msg, data)
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	l.printf(gormlogger.Error, l.log.Error, msg, data)
}

func (l *gormLogger) printf(at gormlogger.LogLevel, emit func(string, ...map[string]interface{}), msg string, data []interface{}) {
	if l.level >= at {
		emit(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	var emit func(string, ...map[string]interface{})
	switch {
	case failed && l.level >= gormlogger.Error:
		emit = l.log.WithError(err).Error
	case slow && l.level >= gormlogger.Warn:
		emit = l.log.Warn
	case l.level >= gormlogger.Info:
		emit = l.log.Debug
	default:
		return
	}
	stmt, rows := fc()
	emit("Statement", map[string]interface{}{
		"sql":                stmt,
		"rows":               rows,
		"slow":               slow,
		logger.FieldDuration: elapsed.Milliseconds(),
	})
}
