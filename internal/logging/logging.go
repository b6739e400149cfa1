// Package logging holds the slog plumbing shared by the library packages.
//
// Libraries are silent by default. Callers opt in with a *slog.Logger;
// everything else gets a logger whose handler drops every record, so
// internal code can log without nil checks.
package logging

import (
	"context"
	"log/slog"
)

// OrDiscard returns l, or a logger that discards all output if l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Discard()
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
