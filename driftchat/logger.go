package driftchat

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Logger is a minimal logging interface accepted by the SDK. The SDK
// never writes anywhere on its own; plug in an adapter for your logging
// backend, or StdLogger for quick debugging.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// noopLogger discards all logs.
type noopLogger struct{}

func (noopLogger) Debug(string, map[string]any) {}
func (noopLogger) Info(string, map[string]any)  {}
func (noopLogger) Warn(string, map[string]any)  {}
func (noopLogger) Error(string, map[string]any) {}

// StdLogger writes through a standard library logger.
type StdLogger struct {
	L *log.Logger
}

func (s StdLogger) Debug(msg string, fields map[string]any) { s.print("DEBUG", msg, fields) }
func (s StdLogger) Info(msg string, fields map[string]any)  { s.print("INFO", msg, fields) }
func (s StdLogger) Warn(msg string, fields map[string]any)  { s.print("WARN", msg, fields) }
func (s StdLogger) Error(msg string, fields map[string]any) { s.print("ERROR", msg, fields) }

func (s StdLogger) print(level, msg string, fields map[string]any) {
	l := s.L
	if l == nil {
		l = log.Default()
	}
	if len(fields) == 0 {
		l.Printf("%s %s", level, msg)
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	l.Printf("%s %s%s", level, msg, b.String())
}
