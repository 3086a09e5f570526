package sr

import (
	"context"
	"fmt"
	"log/slog"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Level maps the severity onto a slog level.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// Diagnostic is a non-fatal condition found while processing a tree.
type Diagnostic struct {
	Severity Severity
	Position string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Position == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: content item %s: %s", d.Severity, d.Position, d.Message)
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	return ds.Count(SeverityError) > 0
}

// Count returns the number of diagnostics with severity s.
func (ds Diagnostics) Count(s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// reporter collects diagnostics and forwards them to a logger.
type reporter struct {
	logger *slog.Logger
	diags  Diagnostics
}

func newReporter(logger *slog.Logger) *reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &reporter{logger: logger}
}

func (r *reporter) report(s Severity, position, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.diags = append(r.diags, Diagnostic{Severity: s, Position: position, Message: msg})
	attrs := []slog.Attr{}
	if position != "" {
		attrs = append(attrs, slog.String("position", position))
	}
	r.logger.LogAttrs(context.Background(), s.Level(), msg, attrs...)
}

func (r *reporter) debug(position, format string, args ...any) {
	r.report(SeverityDebug, position, format, args...)
}

func (r *reporter) warn(position, format string, args ...any) {
	r.report(SeverityWarning, position, format, args...)
}

func (r *reporter) error(position, format string, args ...any) {
	r.report(SeverityError, position, format, args...)
}
