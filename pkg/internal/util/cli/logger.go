/*
Copyright 2024 The Siddar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cli contains helpers for siddar's CLI: the standard logger
// implementation, a terminal spinner and status lines
package cli

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/2e8/siddar/pkg/internal/util/env"
	"github.com/2e8/siddar/pkg/log"
)

// Logger is the siddar cli's log.Logger implementation
type Logger struct {
	Verbosity log.Level
	writer    io.Writer
	writeMu   sync.Mutex
}

var _ log.Logger = &Logger{}

// NewLogger returns a new Logger with the given verbosity
func NewLogger(writer io.Writer, verbosity log.Level) *Logger {
	return &Logger{
		Verbosity: verbosity,
		writer:    writer,
	}
}

// SetWriter sets the output writer
func (l *Logger) SetWriter(w io.Writer) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	l.writer = w
}

// ColorEnabled returns true if the logger is writing to a terminal smart
// enough for VT escape codes
func (l *Logger) ColorEnabled() bool {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return env.IsSmartTerminal(l.writer)
}

func (l *Logger) getVerbosity() log.Level {
	return l.Verbosity
}

// SetVerbosity sets the loggers verbosity
func (l *Logger) SetVerbosity(verbosity log.Level) {
	l.Verbosity = verbosity
}

// synchronized write to the inner writer
func (l *Logger) write(p []byte) (n int, err error) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.writer.Write(p)
}

// writeBuffer writes buf with write, ensuring there is a trailing newline
func (l *Logger) writeBuffer(buf *bytes.Buffer) {
	// ensure trailing newline
	if buf.Len() == 0 || buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	// TODO: should we handle this somehow??
	// Who logs for the logger? 🤔
	_, _ = l.write(buf.Bytes())
}

// print writes a simple string to the log writer
func (l *Logger) print(message string) {
	buf := bytes.NewBufferString(message)
	l.writeBuffer(buf)
}

// printf is roughly fmt.Fprintf against the log writer
func (l *Logger) printf(format string, args ...interface{}) {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, format, args...)
	l.writeBuffer(buf)
}

// Warn is part of the log.Logger interface
func (l *Logger) Warn(message string) {
	l.print(message)
}

// Warnf is part of the log.Logger interface
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(format, args...)
}

// Error is part of the log.Logger interface
func (l *Logger) Error(message string) {
	l.print(message)
}

// Errorf is part of the log.Logger interface
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(format, args...)
}

// V is part of the log.Logger interface
func (l *Logger) V(level log.Level) log.InfoLogger {
	return infoLogger{
		logger:  l,
		enabled: level <= l.getVerbosity(),
	}
}

// infoLogger implements log.InfoLogger for Logger
type infoLogger struct {
	logger  *Logger
	enabled bool
}

// Enabled is part of the log.InfoLogger interface
func (i infoLogger) Enabled() bool {
	return i.enabled
}

// Info is part of the log.InfoLogger interface
func (i infoLogger) Info(message string) {
	if !i.enabled {
		return
	}
	i.logger.print(message)
}

// Infof is part of the log.InfoLogger interface
func (i infoLogger) Infof(format string, args ...interface{}) {
	if !i.enabled {
		return
	}
	i.logger.printf(format, args...)
}
