// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the structured, leveled logger used throughout the
// bridge. Call sites pass a message plus an alternating key/value context,
// matching the convention the rest of the module's ancestry uses:
//
//	log.Warn("Dropping stale header", "number", h.Number, "hash", h.Hash)
//
// The default Logger is backed by log/slog; tests can substitute a Logger
// that discards or records output without touching call sites.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the interface every package in the bridge depends on instead of
// a concrete implementation, so tests can inject a silent or capturing one.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
	With(ctx ...interface{}) Logger
}

// levelTrace sits one notch below slog's built-in Debug so "Trace" calls
// remain distinguishable from "Debug" ones in filtered output.
const levelTrace = slog.LevelDebug - 4

type slogLogger struct {
	l *slog.Logger
}

// New builds a Logger that writes leveled, key/value structured text to w.
func New(w *os.File) Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelTrace})
	return &slogLogger{l: slog.New(h)}
}

// NewNop returns a Logger that discards everything, for tests that care
// about behavior but not log output.
func NewNop() Logger {
	h := slog.NewTextHandler(nopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 64})
	return &slogLogger{l: slog.New(h)}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func (s *slogLogger) Trace(msg string, ctx ...interface{}) {
	s.l.Log(context.Background(), levelTrace, msg, ctx...)
}

func (s *slogLogger) Debug(msg string, ctx ...interface{}) {
	s.l.Debug(msg, ctx...)
}

func (s *slogLogger) Info(msg string, ctx ...interface{}) {
	s.l.Info(msg, ctx...)
}

func (s *slogLogger) Warn(msg string, ctx ...interface{}) {
	s.l.Warn(msg, ctx...)
}

func (s *slogLogger) Error(msg string, ctx ...interface{}) {
	s.l.Error(msg, ctx...)
}

// Crit logs at error level and then terminates the process, mirroring the
// teacher's log.Crit semantics: a Crit call marks a fault the bridge cannot
// recover from, not merely a noteworthy error.
func (s *slogLogger) Crit(msg string, ctx ...interface{}) {
	s.l.Error(msg, ctx...)
	os.Exit(1)
}

func (s *slogLogger) With(ctx ...interface{}) Logger {
	return &slogLogger{l: s.l.With(ctx...)}
}

var root Logger = New(os.Stderr)

// Root returns the package-level default Logger.
func Root() Logger { return root }

// SetRoot replaces the package-level default Logger, for process
// initialization that wants a different sink or level.
func SetRoot(l Logger) { root = l }

func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }
