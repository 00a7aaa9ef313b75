// Package log provides structured logging for tsreg on top of zerolog.
//
// Components obtain a named logger once and attach context with With:
//
//	logger := log.GetLoggerWithName("linear").With(
//		log.ModelNameKey, "LinearRegression",
//		log.ComponentKey, "linear",
//	)
//	logger.Info("Training started", log.SamplesKey, 100)
//
// Code that wants zerolog's chained API directly can use GetLogger.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the key/value logging interface used across tsreg.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out named loggers sharing one configuration.
type LoggerProvider interface {
	GetLoggerWithName(name string) Logger
}

var (
	mu     sync.RWMutex
	global = newZerolog(os.Stderr, zerolog.InfoLevel)
)

func newZerolog(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ToLogLevel parses a level name, defaulting to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogger configures the global logger to write JSON to stderr at level.
func SetupLogger(level string) {
	SetOutput(os.Stderr, level)
}

// SetupConsoleLogger configures human readable output, for local runs.
func SetupConsoleLogger(level string) {
	SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

// SetOutput redirects the global logger.
func SetOutput(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	global = newZerolog(w, ToLogLevel(level))
}

// GetLogger returns the global zerolog logger.
func GetLogger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := global
	return &l
}

// GetLoggerWithName returns a Logger tagged with the component name.
func GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: GetLogger().With().Str(NameKey, name).Logger()}
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	GetLogger().Error().Err(err).Msg(msg)
}

type zerologProvider struct {
	zl zerolog.Logger
}

// NewZerologProvider returns a provider writing to stderr at level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	return &zerologProvider{zl: newZerolog(os.Stderr, level)}
}

// NewZerologProviderWithWriter returns a provider writing to w at level.
func NewZerologProviderWithWriter(w io.Writer, level zerolog.Level) LoggerProvider {
	return &zerologProvider{zl: newZerolog(w, level)}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.zl.With().Str(NameKey, name).Logger()}
}

// FromZerolog adapts an existing zerolog logger.
func FromZerolog(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	ctx := l.zl.With()
	each(fields, func(key string, val interface{}) {
		if err, ok := val.(error); ok {
			ctx = ctx.AnErr(key, err)
			return
		}
		ctx = ctx.Interface(key, val)
	})
	return &zerologLogger{zl: ctx.Logger()}
}

func emit(e *zerolog.Event, msg string, fields []interface{}) {
	if e == nil {
		return
	}
	each(fields, func(key string, val interface{}) {
		switch v := val.(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		case int64:
			e = e.Int64(key, v)
		case float64:
			e = e.Float64(key, v)
		case bool:
			e = e.Bool(key, v)
		case time.Duration:
			e = e.Dur(key, v)
		default:
			e = e.Interface(key, v)
		}
	})
	e.Msg(msg)
}

// each walks alternating key/value fields. A bare error is logged under
// ErrorKey without consuming a value; a dangling key gets a nil value.
func each(fields []interface{}, fn func(key string, val interface{})) {
	for i := 0; i < len(fields); {
		if err, ok := fields[i].(error); ok {
			fn(ErrorKey, err)
			i++
			continue
		}
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		var val interface{}
		if i+1 < len(fields) {
			val = fields[i+1]
		}
		fn(key, val)
		i += 2
	}
}
