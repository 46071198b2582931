/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package slog is the parse engine's internal leveled logger: a
// trimmed-down descendant of the ingest package's structured logger,
// kept to exactly what the core needs to narrate its own decisions
// (strategy selection, SIMD capability, schema-compile stats) at DEBUG
// without dragging in log relaying, rotation, or host introspection.
package slog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

// Level orders log severities; OFF disables output entirely.
type Level uint8

const (
	OFF Level = iota
	DEBUG
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "OFF"
	}
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.User | rfc5424.Debug
	case INFO:
		return rfc5424.User | rfc5424.Info
	case WARN:
		return rfc5424.User | rfc5424.Warning
	case ERROR:
		return rfc5424.User | rfc5424.Error
	default:
		return rfc5424.User | rfc5424.Info
	}
}

// Logger writes RFC5424-framed messages at or above its configured
// level. The zero value discards everything, mirroring the teacher's
// NewDiscardLogger default for callers that never configure a sink.
type Logger struct {
	mtx sync.Mutex
	wtr io.Writer
	lvl Level

	appname string
}

// New wraps wtr as a Logger at level lvl. A nil wtr discards output.
func New(wtr io.Writer, lvl Level) *Logger {
	return &Logger{wtr: wtr, lvl: lvl, appname: "skiptape"}
}

// NewDiscard returns a Logger that drops every message; a nil *Logger
// drops every message the same way.
func NewDiscard() *Logger { return New(nil, OFF) }

// NewStderr returns a Logger writing to os.Stderr at lvl.
func NewStderr(lvl Level) *Logger { return New(os.Stderr, lvl) }

func (l *Logger) enabled(lvl Level) bool {
	return l != nil && l.wtr != nil && l.lvl != OFF && lvl >= l.lvl
}

// Debugf logs a formatted DEBUG message.
func (l *Logger) Debugf(format string, args ...any) { l.logf(DEBUG, format, args...) }

// Infof logs a formatted INFO message.
func (l *Logger) Infof(format string, args ...any) { l.logf(INFO, format, args...) }

// Warnf logs a formatted WARN message.
func (l *Logger) Warnf(format string, args ...any) { l.logf(WARN, format, args...) }

func (l *Logger) logf(lvl Level, format string, args ...any) {
	if !l.enabled(lvl) {
		return
	}
	l.write(lvl, fmt.Sprintf(format, args...), nil)
}

// Debug logs msg at DEBUG with structured fields rendered as RFC5424
// SD-PARAMs, for call sites that want queryable fields instead of a
// pre-formatted string.
func (l *Logger) Debug(msg string, fields ...Field) { l.log(DEBUG, msg, fields) }

// Field is one structured-data parameter attached to a Debug/Info call.
type Field struct {
	Name  string
	Value string
}

// F builds a Field; a non-string value is rendered with fmt.Sprint.
func F(name string, value any) Field { return Field{Name: name, Value: fmt.Sprint(value)} }

func (l *Logger) log(lvl Level, msg string, fields []Field) {
	if !l.enabled(lvl) {
		return
	}
	l.write(lvl, msg, fields)
}

func (l *Logger) write(lvl Level, msg string, fields []Field) {
	m := rfc5424.Message{
		Priority:  lvl.priority(),
		Timestamp: time.Now(),
		Hostname:  "-",
		AppName:   l.appname,
		Message:   []byte(msg),
	}
	if len(fields) > 0 {
		params := make([]rfc5424.SDParam, len(fields))
		for i, f := range fields {
			params[i] = rfc5424.SDParam{Name: f.Name, Value: f.Value}
		}
		m.StructuredData = []rfc5424.StructuredData{
			{ID: "skiptape@0", Parameters: params},
		}
	}
	b, err := m.MarshalBinary()
	if err != nil {
		return
	}
	b = append(b, '\n')

	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.wtr.Write(b)
}
