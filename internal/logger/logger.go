// Package logger wraps logrus with component-scoped entries.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields is an alias-style map for structured log fields.
type Fields map[string]interface{}

// Log wraps logrus.Logger.
type Log struct {
	*logrus.Logger
}

// Entry wraps logrus.Entry so chained calls keep returning our type.
type Entry struct {
	*logrus.Entry
}

var globalLogger *Log

func init() {
	globalLogger = New()
}

// New returns a text logger on stderr at the LOG_LEVEL level (default info).
// Stdout is left to the report.
func New() *Log {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil {
		l.SetLevel(lvl)
	}
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return &Log{Logger: l}
}

// GetLogger returns the process-wide logger.
func GetLogger() *Log {
	return globalLogger
}

func (l *Log) WithComponent(component string) *Entry {
	return &Entry{Entry: l.Logger.WithField("component", component)}
}

func (e *Entry) WithComponent(component string) *Entry {
	return &Entry{Entry: e.Entry.WithField("component", component)}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{Entry: e.Entry.WithFields(logrus.Fields(fields))}
}

func (e *Entry) WithError(err error) *Entry {
	return &Entry{Entry: e.Entry.WithError(err)}
}

// Configure applies the log section of the config. output is "stderr" or a
// file path; stdout carries the report and is refused. Files rotate through
// lumberjack when maxAge (days) is positive.
func (l *Log) Configure(level, format, output string, maxAge int) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log.level %q: %w", level, err)
	}
	formatter, err := formatterFor(format)
	if err != nil {
		return err
	}
	w, err := writerFor(output, maxAge)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	l.SetFormatter(formatter)
	l.Logger.SetOutput(w)
	return nil
}

func formatterFor(format string) (logrus.Formatter, error) {
	switch format {
	case "text", "":
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}, nil
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		}, nil
	}
	return nil, fmt.Errorf("log.format %q: want text or json", format)
}

func writerFor(output string, maxAge int) (io.Writer, error) {
	switch {
	case output == "stderr" || output == "":
		return os.Stderr, nil
	case output == "stdout":
		return nil, fmt.Errorf("log.output: stdout is reserved for the report")
	case maxAge > 0:
		return &lumberjack.Logger{Filename: output, MaxAge: maxAge, Compress: true}, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
