// Copyright (c) 2025 The SupplyWorks developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	root.Store(l.(*logger))
	slog.SetDefault(l.(*logger).inner)
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

// New returns a logger with the given context and the root handler.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

// WithContext returns a logger carrying the given context that resolves the
// default logger per call, so package-level loggers created before SetDefault
// still pick up the configured handler.
func WithContext(ctx ...any) Logger {
	return &ctxLogger{ctx: ctx}
}

type ctxLogger struct {
	ctx []any
}

func (l *ctxLogger) merged(ctx []any) []any {
	if len(l.ctx) == 0 {
		return ctx
	}
	out := make([]any, 0, len(l.ctx)+len(ctx))
	out = append(out, l.ctx...)
	return append(out, ctx...)
}

func (l *ctxLogger) With(ctx ...any) Logger { return &ctxLogger{ctx: l.merged(ctx)} }

func (l *ctxLogger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *ctxLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.Write(level, msg, ctx...)
}

func (l *ctxLogger) Write(level slog.Level, msg string, attrs ...any) {
	Root().Write(level, msg, l.merged(attrs)...)
}

func (l *ctxLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}

func (l *ctxLogger) Handler() slog.Handler { return Root().Handler() }

func (l *ctxLogger) Trace(msg string, ctx ...any) { l.Write(LevelTrace, msg, ctx...) }

func (l *ctxLogger) Debug(msg string, ctx ...any) { l.Write(LevelDebug, msg, ctx...) }

func (l *ctxLogger) Info(msg string, ctx ...any) { l.Write(LevelInfo, msg, ctx...) }

func (l *ctxLogger) Warn(msg string, ctx ...any) { l.Write(LevelWarn, msg, ctx...) }

func (l *ctxLogger) Error(msg string, ctx ...any) { l.Write(LevelError, msg, ctx...) }

func (l *ctxLogger) Crit(msg string, ctx ...any) {
	l.Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

// Trace is a convenient alias for Root().Trace.
func Trace(msg string, ctx ...any) { Root().Write(LevelTrace, msg, ctx...) }

// Debug is a convenient alias for Root().Debug.
func Debug(msg string, ctx ...any) { Root().Write(LevelDebug, msg, ctx...) }

// Info is a convenient alias for Root().Info.
func Info(msg string, ctx ...any) { Root().Write(LevelInfo, msg, ctx...) }

// Warn is a convenient alias for Root().Warn.
func Warn(msg string, ctx ...any) { Root().Write(LevelWarn, msg, ctx...) }

// Error is a convenient alias for Root().Error.
func Error(msg string, ctx ...any) { Root().Write(LevelError, msg, ctx...) }

// Crit is a convenient alias for Root().Crit.
func Crit(msg string, ctx ...any) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}
