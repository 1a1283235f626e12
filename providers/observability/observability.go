// Package observability defines the logging and metrics interfaces used
// across the orchestrator. Components receive a Provider by injection and
// treat a nil provider as "observability disabled" with zero overhead;
// nothing in this module reaches into ambient global state.
package observability

import (
	"context"
	"time"
)

// Provider is the main interface for observability (metrics and logging).
type Provider interface {
	Metrics
	Logger
}

// --- METRICS ---

// Metrics provides metrics collection capabilities.
type Metrics interface {
	// Counter creates or retrieves a counter metric.
	Counter(name string) Counter
	// Histogram creates or retrieves a histogram metric.
	Histogram(name string) Histogram
}

// Counter is a monotonically increasing metric.
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram records distribution of values.
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// --- LOGGING (Structured Logging) ---

// Logger provides structured logging capabilities.
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// --- ATTRIBUTES (Key-Value pairs) ---

// Attribute represents a key-value pair for metadata.
type Attribute struct {
	Key   string
	Value any
}

// Shared attribute keys used across packages.
const (
	AttrStatus   = "status"
	AttrDuration = "duration"
)

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// StringSlice creates a string slice attribute.
func StringSlice(key string, value []string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error creates an error attribute.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: "error", Value: ""}
	}
	return Attribute{Key: "error", Value: err.Error()}
}
