// Package logging provides the debug trace used across relkit. It wraps a
// logrus logger that can travel inside a context.Context; user-facing
// output goes through the printer package instead.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	// G is a convenience alias for FromContext.
	G = FromContext

	// L is the global logger entry used when the context carries none.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableTimestamp: true,
	}
	return l
}

// WithLogger attaches entry to ctx.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry.WithContext(ctx))
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L.WithContext(ctx)
}

// Configure sets the global level from the --verbose flag.
func Configure(verbose bool) {
	if verbose {
		L.Logger.SetLevel(logrus.DebugLevel)
		return
	}
	L.Logger.SetLevel(logrus.WarnLevel)
}

// SetLogLevel parses level and applies it to the global logger.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	L.Logger.SetLevel(lvl)
	return nil
}

// SetOutput sets the destination of the global logger.
func SetOutput(w io.Writer) {
	L.Logger.SetOutput(w)
}
