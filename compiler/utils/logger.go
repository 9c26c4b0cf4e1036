//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"fmt"
	"io"
	"strings"
)

// Diagnostic is a user diagnostic error. It is raised only for
// genuinely invalid or unsupported compiler input.
type Diagnostic struct {
	Loc Point
	Msg string
}

func (d *Diagnostic) Error() string {
	if d.Loc.Undefined() {
		return fmt.Sprintf("%s: %s", d.Loc.Source, d.Msg)
	}
	return fmt.Sprintf("%s: %s", d.Loc, d.Msg)
}

// Logger implements compiler logging facility.
type Logger struct {
	out      io.Writer
	errors   int
	warnings int
}

// NewLogger creates a new logger outputting to the argument io.Writer.
func NewLogger(out io.Writer) *Logger {
	return &Logger{
		out: out,
	}
}

// Errorf logs an error message and returns it as a *Diagnostic. Only
// the first line of the message is kept in the returned error.
func (l *Logger) Errorf(loc Point, format string, a ...interface{}) error {
	l.errors++
	msg := l.write(loc, "", format, a...)

	idx := strings.IndexRune(msg, '\n')
	if idx > 0 {
		msg = msg[:idx]
	}
	return &Diagnostic{
		Loc: loc,
		Msg: msg,
	}
}

// Warningf logs a warning message.
func (l *Logger) Warningf(loc Point, format string, a ...interface{}) {
	l.warnings++
	l.write(loc, "warning: ", format, a...)
}

// Errors returns the number of errors logged.
func (l *Logger) Errors() int {
	return l.errors
}

// Warnings returns the number of warnings logged.
func (l *Logger) Warnings() int {
	return l.warnings
}

func (l *Logger) write(loc Point, prefix, format string,
	a ...interface{}) string {

	msg := fmt.Sprintf(format, a...)
	if len(msg) > 0 && msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	if loc.Undefined() {
		fmt.Fprintf(l.out, "%s: %s%s", loc.Source, prefix, msg)
	} else {
		fmt.Fprintf(l.out, "%s: %s%s", loc, prefix, msg)
	}
	return msg
}
