package dcontext

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger   *logrus.Entry = logrus.NewEntry(logrus.StandardLogger())
	defaultLoggerMu sync.RWMutex
)

// Logger provides the leveled-logging interface every clib package logs
// through, rather than calling logrus (or the standard log package)
// directly.
type Logger interface {
	Print(args ...any)
	Printf(format string, args ...any)
	Println(args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Fatalln(args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)
	Debugln(args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)
	Errorln(args ...any)

	Info(args ...any)
	Infof(format string, args ...any)
	Infoln(args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)
	Warnln(args ...any)
}

type loggerKey struct{}

// WithLogger creates a new context with the provided logger.
func WithLogger(ctx Context, logger Logger) Context {
	return WithValue(ctx, loggerKey{}, logger)
}

// SetDefaultLogger sets the base logger new, logger-less contexts fall
// back to. Used by cmd/clib to wire the CLI's --verbose flag into
// every package's logging without threading a logger through every
// constructor.
func SetDefaultLogger(logger *logrus.Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()

	defaultLogger = logrus.NewEntry(logger)
}

// GetLoggerWithFields returns a logger instance with the specified fields,
// without affecting ctx.
func GetLoggerWithFields(ctx Context, fields map[string]any) Logger {
	return getLogrusLogger(ctx).WithFields(logrus.Fields(fields))
}

// GetLogger returns the logger carried by ctx, falling back to the
// process default if none was attached with WithLogger. Secret values
// (tokens) must never be passed as a field here.
func GetLogger(ctx Context) Logger {
	if lgr, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return lgr
	}

	return getLogrusLogger(ctx)
}

func getLogrusLogger(ctx Context) *logrus.Entry {
	if v := ctx.Value(loggerKey{}); v != nil {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}

		if lgr, ok := v.(Logger); ok {
			if wrapped, ok := lgr.(*logrus.Entry); ok {
				return wrapped
			}
		}
	}

	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()

	return defaultLogger
}
