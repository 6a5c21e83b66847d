package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultSlowQuery = 200 * time.Millisecond
	shortSQLLimit    = 240
)

// GormConfig tunes the statement log
type GormConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// FullSQL keeps the whole statement; otherwise it is clipped
	FullSQL bool
}

// GormLogger writes GORM statements to zap, tagged with the request and
// trace ids carried by ctx.
type GormLogger struct {
	log *zap.Logger
	cfg GormConfig
}

func NewGormLogger(base *zap.Logger, cfg GormConfig) *GormLogger {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = defaultSlowQuery
	}
	return &GormLogger{log: base.Named("gorm"), cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.cfg.Level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, level gormlogger.LogLevel, msg string, data []any) {
	if l.cfg.Level < level {
		return
	}
	sugar := WithLogger(ctx, l.log).Zap().Sugar()
	switch level {
	case gormlogger.Error:
		sugar.Errorf(msg, data...)
	case gormlogger.Warn:
		sugar.Warnf(msg, data...)
	default:
		sugar.Infof(msg, data...)
	}
}

// Trace logs a finished statement. Failures log at error, statements slower
// than the threshold at warn and the rest at debug. A missing row is not a
// failure.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		level gormlogger.LogLevel
		msg   string
	)
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		level, msg = gormlogger.Error, "query failed"
	case elapsed >= l.cfg.SlowThreshold:
		level, msg = gormlogger.Warn, "slow query"
	default:
		level, msg = gormlogger.Info, "query"
	}
	if l.cfg.Level < level {
		return
	}

	stmt, rows := fc()
	fields := []zap.Field{
		zap.String("sql", l.clip(stmt)),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}

	switch level {
	case gormlogger.Error:
		l.log.Error(msg, append(fields, zap.Error(err))...)
	case gormlogger.Warn:
		l.log.Warn(msg, append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))...)
	default:
		l.log.Debug(msg, fields...)
	}
}

func (l *GormLogger) clip(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if l.cfg.FullSQL || len(stmt) <= shortSQLLimit {
		return stmt
	}
	return stmt[:shortSQLLimit] + "..."
}

// GormLevel converts an application log level name to GORM's scale
func GormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
