package relational

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowStatementThreshold = 200 * time.Millisecond

// gormLogger forwards gorm's own log lines to the package Logger.
// Rendered statements are logged at debug level, slow ones as warnings.
type gormLogger struct {
	logger Logger
	level  gormlogger.LogLevel
}

func newGormLogger(l Logger) *gormLogger {
	return &gormLogger{logger: l, level: gormlogger.Warn}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.logger.Info(fmt.Sprintf(msg, args...), nil)
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.logger.Warn(fmt.Sprintf(msg, args...), nil)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.logger.Error(fmt.Sprintf(msg, args...), nil)
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	statement, rows := fc()
	fields := map[string]interface{}{
		"sql":         statement,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		g.logger.Error("gorm statement failed", err, fields)
	case elapsed > slowStatementThreshold && g.level >= gormlogger.Warn:
		g.logger.Warn("gorm slow statement", nil, fields)
	case g.level >= gormlogger.Info:
		g.logger.Debug("gorm statement", nil, fields)
	}
}
