// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log provides leveled, context-aware logging. The context passed to
// every call contributes its log tags (see github.com/cockroachdb/logtags) as
// a bracketed prefix of the message. Messages are emitted through a zap
// logger configured with Init.
//
// Arguments are redactable: values that are not marked safe (with
// redact.Safe or by implementing redact.SafeValue) are elided from the
// output when Config.Redact is set.
package log

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the process-wide logger.
type Config struct {
	// Verbosity is the level up to which V and VEventf are enabled.
	Verbosity int32
	// Format is "text" (the default) or "json".
	Format string
	// Redact elides unsafe arguments from messages.
	Redact bool
	// Output is where entries are written. It defaults to os.Stderr.
	Output io.Writer
}

type loggerT struct {
	zl     *zap.Logger
	redact bool
}

var (
	mainLog   atomic.Pointer[loggerT]
	verbosity atomic.Int32
)

func init() {
	l, err := newLogger(Config{})
	if err != nil {
		panic(err)
	}
	mainLog.Store(l)
}

func newLogger(cfg Config) (*loggerT, error) {
	encCfg := zap.NewDevelopmentEncoderConfig()
	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "text":
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, errors.Newf("unknown log format %q", cfg.Format)
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), zapcore.DebugLevel)
	return &loggerT{zl: zap.New(core), redact: cfg.Redact}, nil
}

// Init replaces the process-wide logger according to cfg.
func Init(cfg Config) error {
	l, err := newLogger(cfg)
	if err != nil {
		return err
	}
	verbosity.Store(cfg.Verbosity)
	mainLog.Store(l)
	return nil
}

// SetZapLogger makes log output go to zl. It returns a function restoring the
// previous logger, for use in tests.
func SetZapLogger(zl *zap.Logger) (restore func()) {
	prev := mainLog.Load()
	mainLog.Store(&loggerT{zl: zl, redact: prev.redact})
	return func() { mainLog.Store(prev) }
}

// SetVerbosity sets the verbosity level and returns the previous one.
func SetVerbosity(level int32) int32 {
	return verbosity.Swap(level)
}

// V returns whether messages at the given verbosity level are enabled.
func V(level int32) bool {
	return level <= verbosity.Load()
}

// Flush writes out any buffered entries.
func Flush() {
	_ = mainLog.Load().zl.Sync()
}

// Infof logs to the INFO severity.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, zapcore.InfoLevel, format, args)
}

// Warningf logs to the WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, zapcore.WarnLevel, format, args)
}

// Errorf logs to the ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, zapcore.ErrorLevel, format, args)
}

// Fatalf logs to the FATAL severity and terminates the process.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, zapcore.FatalLevel, format, args)
}

// VEventf logs at the INFO severity if the verbosity level is at least
// level. The entry is emitted at zap's debug level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		addStructured(ctx, zapcore.DebugLevel, format, args)
	}
}
