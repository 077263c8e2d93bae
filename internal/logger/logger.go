// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The site writes lifecycle, request, and submission events to one JSON log
// per day under `<dir>/YYYY-MM-DD.log`.  When running in an interactive TTY
// the same events are teed, colorized, to stdout.  Rotation, compression,
// and retention are handled by Lumberjack.
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Log.Dir, runningInTTY(), cfg.Log.Level)
//	if err != nil { … }
//	log.Infow("listening", "addr", addr)
//
// Request-scoped loggers travel in context.Context:
//
//	ctx = logger.WithContext(ctx, log.With("form", id))
//	logger.FromContext(ctx).Debugw("submit started")
//
// Notes
// -----
//   - ISO-8601 timestamps and lowercase levels.
//   - FromContext falls back to the global logger (zap.S()), so packages never
//     need a nil check.
package logger

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a *zap.SugaredLogger that writes JSON to <dir>/YYYY-MM-DD.log.
// When tee == true a colored console core is also attached.  level accepts
// zap level names ("debug", "info", …); unknown values mean info.  The
// logger is installed as the process-wide default via zap.ReplaceGlobals.
func New(dir string, tee bool, level string) (*zap.SugaredLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	lvl := zap.InfoLevel
	if level != "" {
		if l, err := zapcore.ParseLevel(level); err == nil {
			lvl = l
		}
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, time.Now().Format("2006-01-02")+".log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), lvl),
	}
	if tee {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(os.Stdout),
			lvl,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", tee, "level", lvl.String())
	return z, nil
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Lookup returns the logger stored by WithContext, if any.
func Lookup(ctx context.Context) (*zap.SugaredLogger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger)
	return l, ok && l != nil
}

// FromContext returns the logger stored by WithContext, or the global one.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := Lookup(ctx); ok {
		return l
	}
	return zap.S()
}
