// Package log provides package-level structured logging helpers on top of
// zerolog. Init must be called once at startup; until then the logger writes
// errors only to stderr.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

var (
	log   zerolog.Logger
	level = LogLevelError

	// logTestWriter and logTestWriterName allow tests and benchmarks to
	// capture the output.
	logTestWriter     io.Writer
	logTestWriterName = "log_test"

	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Init(LogLevelError, "stderr", nil)
}

// invalidCharChecker panics if the log line contains invalid UTF-8, which
// zerolog escapes as \ufffd.
type invalidCharChecker struct{}

func (*invalidCharChecker) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte(`\ufffd`)) {
		panic(fmt.Sprintf("log line with invalid chars: %q", p))
	}
	return len(p), nil
}

// errorLevelWriter only forwards warnings and errors.
type errorLevelWriter struct {
	io.Writer
}

func (w *errorLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Init initializes the logger. Output can be stdout, stderr or a file path.
// If errorOutput is not nil, warnings and errors are also written there.
func Init(logLevel, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(filepath.Clean(output), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	if output != logTestWriterName {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339Nano,
		}
	}
	outputs := []io.Writer{out}
	if errorOutput != nil {
		outputs = append(outputs, &errorLevelWriter{zerolog.ConsoleWriter{
			Out:        errorOutput,
			TimeFormat: time.RFC3339Nano,
			NoColor:    true,
		}})
	}
	if panicOnInvalidChars {
		outputs = append(outputs, &invalidCharChecker{})
	}

	log = zerolog.New(zerolog.MultiLevelWriter(outputs...)).With().
		Timestamp().CallerWithSkipFrameCount(3).Logger()
	setLevel(logLevel)
	log.Info().Msgf("logger construction succeeded at level %s with output %s", level, output)
}

func setLevel(l string) {
	switch strings.ToLower(l) {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", l))
	}
	level = strings.ToLower(l)
}

// Level returns the current log level.
func Level() string {
	return level
}

// Logger returns the underlying zerolog logger.
func Logger() *zerolog.Logger {
	return &log
}

func Debug(args ...any) {
	log.Debug().Msg(fmt.Sprint(args...))
}

func Info(args ...any) {
	log.Info().Msg(fmt.Sprint(args...))
}

func Warn(args ...any) {
	log.Warn().Msg(fmt.Sprint(args...))
}

func Error(args ...any) {
	log.Error().Msg(fmt.Sprint(args...))
}

func Fatal(args ...any) {
	log.Fatal().Msg(fmt.Sprint(args...))
}

func Debugf(template string, args ...any) {
	log.Debug().Msgf(template, args...)
}

func Infof(template string, args ...any) {
	log.Info().Msgf(template, args...)
}

func Warnf(template string, args ...any) {
	log.Warn().Msgf(template, args...)
}

func Errorf(template string, args ...any) {
	log.Error().Msgf(template, args...)
}

func Fatalf(template string, args ...any) {
	log.Fatal().Msgf(template, args...)
}

// Debugw logs a message with some additional context. The variadic
// key-value pairs are treated as in zerolog's Fields.
func Debugw(msg string, keyvalues ...any) {
	log.Debug().Fields(keyvalues).Msg(msg)
}

func Infow(msg string, keyvalues ...any) {
	log.Info().Fields(keyvalues).Msg(msg)
}

func Warnw(msg string, keyvalues ...any) {
	log.Warn().Fields(keyvalues).Msg(msg)
}

func Errorw(err error, msg string) {
	log.Error().Err(err).Msg(msg)
}
