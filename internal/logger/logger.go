// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the structured, leveled logging used across this
// module: five severities (TRACE, DEBUG, INFO, WARNING, ERROR) on top
// of log/slog, in either text or JSON form, plus an OFF level that silences
// everything.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/widecolumnfs/blockdir/cfg"
)

// Severity levels, spaced out the way slog's own Level constants are so
// intermediate values stay available without renumbering everything.
const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = -4
	LevelInfo  slog.Level = 0
	LevelWarn  slog.Level = 4
	LevelError slog.Level = 8
	LevelOff   slog.Level = 12
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

// loggerFactory owns the process-wide logger configuration as a package
// singleton rather than threading a logger through every call site.
type loggerFactory struct {
	writer io.Writer
	format string
	level  slog.Level
}

func (f *loggerFactory) createHandler(w io.Writer, programLevel *slog.LevelVar) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: programLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				level := a.Value.Any().(slog.Level)
				a.Key = "severity"
				a.Value = slog.StringValue(severityName(level))
			case slog.MessageKey:
				if f.format == "text" {
					a.Key = "message"
				}
			case slog.TimeKey:
				if f.format == "text" {
					a.Value = slog.StringValue(a.Value.Time().Format(time.DateTime))
				} else {
					a.Key = "timestamp"
				}
			}
			return a
		},
	}

	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func severityName(level slog.Level) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return level.String()
}

var (
	defaultLoggerFactory = &loggerFactory{writer: os.Stderr, format: "text", level: LevelInfo}
	programLevel         = new(slog.LevelVar)
	defaultLogger        = slog.New(defaultLoggerFactory.createHandler(os.Stderr, programLevel))
)

// Init wires the package-level loggers to the given logging configuration,
// since a package-level init() can't see flag/config values.
func Init(cfg cfg.LoggingConfig) error {
	defaultLoggerFactory = &loggerFactory{writer: os.Stderr, format: cfg.Format}
	setLoggingLevel(string(cfg.Severity))
	defaultLogger = slog.New(defaultLoggerFactory.createHandler(defaultLoggerFactory.writer, programLevel))
	return nil
}

func setLoggingLevel(severity string) {
	switch severity {
	case "TRACE":
		programLevel.Set(LevelTrace)
	case "DEBUG":
		programLevel.Set(LevelDebug)
	case "INFO", "":
		programLevel.Set(LevelInfo)
	case "WARNING":
		programLevel.Set(LevelWarn)
	case "ERROR":
		programLevel.Set(LevelError)
	case "OFF":
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

// Logger is a named logger for one component (store, directory, bufferedio,
// ...), built on the package-level default logger plus a component name
// attached via slog's With. The default logger is looked up on every call,
// so a Logger created before Init follows the configuration Init installs.
type Logger struct {
	name string
}

// ForComponent returns a Logger that tags every record with component=name.
func ForComponent(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) log(ctx context.Context, level slog.Level, format string, v ...interface{}) {
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	defaultLogger.With("component", l.name).Log(ctx, level, fmt.Sprintf(format, v...))
}

func (l *Logger) Tracef(format string, v ...interface{}) {
	l.log(context.Background(), LevelTrace, format, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.log(context.Background(), LevelDebug, format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.log(context.Background(), LevelInfo, format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.log(context.Background(), LevelWarn, format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.log(context.Background(), LevelError, format, v...)
}

// Package-level convenience functions so call sites that don't need a
// component tag can just import logger and call logger.Infof directly.
func Tracef(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelDebug, fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelInfo, fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelWarn, fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelError, fmt.Sprintf(format, v...))
}
