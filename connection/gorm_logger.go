package connection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	gormlogger "gorm.io/gorm/logger"
)

// slogGormLogger 把 GORM 日志桥接到 log/slog
type slogGormLogger struct {
	slogger       *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(slogger *slog.Logger, level string) (gormlogger.Interface, error) {
	parsed, err := parseGormLogLevel(level)
	if err != nil {
		return nil, err
	}
	return &slogGormLogger{
		slogger:       slogger,
		level:         parsed,
		slowThreshold: 200 * time.Millisecond,
	}, nil
}

func parseGormLogLevel(level string) (gormlogger.LogLevel, error) {
	switch level {
	case "", "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "warn":
		return gormlogger.Warn, nil
	case "info":
		return gormlogger.Info, nil
	}
	return 0, errors.Errorf("unsupported log level: %s", level)
}

func (l *slogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *slogGormLogger) Info(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.slogger.InfoContext(ctx, fmt.Sprintf(format, args...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.slogger.WarnContext(ctx, fmt.Sprintf(format, args...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.slogger.ErrorContext(ctx, fmt.Sprintf(format, args...))
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	switch {
	case err != nil && l.level >= gormlogger.Error:
		l.slogger.ErrorContext(ctx, "sql failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.slogger.WarnContext(ctx, "slow sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		l.slogger.InfoContext(ctx, "sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
