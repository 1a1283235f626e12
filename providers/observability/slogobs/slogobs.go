// Package slogobs implements observability.Provider on top of the standard
// library's log/slog, giving structured logs and lightweight in-process
// metrics without external dependencies.
package slogobs

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/saharlajmi1/recmooc4all/providers/observability"
)

// Observer routes log events through a structured slog.Logger and keeps
// counters and histograms in an in-process store.
type Observer struct {
	logger  *slog.Logger
	metrics *metricsStore
}

// Ensure Observer implements observability.Provider.
var _ observability.Provider = (*Observer)(nil)

// New creates a slog-based observer. With no options it logs text to stderr
// at INFO level.
//
// Example:
//
//	observer := slogobs.New(
//	    slogobs.WithLevel(slog.LevelDebug),
//	)
func New(opts ...Option) *Observer {
	cfg := applyOptions(opts...)

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(cfg.output, &slog.HandlerOptions{
			Level: cfg.level,
		}))
	}

	return &Observer{
		logger:  logger,
		metrics: newMetricsStore(),
	}
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs []observability.Attribute) {
	if !o.logger.Enabled(ctx, level) {
		return
	}

	logAttrs := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	o.logger.LogAttrs(ctx, level, msg, logAttrs...)
}

// Debug logs a message at DEBUG level.
func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info logs a message at INFO level.
func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs a message at WARN level.
func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs a message at ERROR level.
func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

// Counter creates or retrieves a named counter.
func (o *Observer) Counter(name string) observability.Counter {
	return o.metrics.counter(name)
}

// Histogram creates or retrieves a named histogram.
func (o *Observer) Histogram(name string) observability.Histogram {
	return o.metrics.histogram(name)
}

// --- metrics store ---

// metricsStore keeps counters and histogram summaries in memory. Values are
// exposed through the Snapshot helpers for tests and debugging endpoints.
type metricsStore struct {
	mu         sync.Mutex
	counters   map[string]*slogCounter
	histograms map[string]*slogHistogram
}

func newMetricsStore() *metricsStore {
	return &metricsStore{
		counters:   make(map[string]*slogCounter),
		histograms: make(map[string]*slogHistogram),
	}
}

func (store *metricsStore) counter(name string) *slogCounter {
	store.mu.Lock()
	defer store.mu.Unlock()

	counter, exists := store.counters[name]
	if !exists {
		counter = &slogCounter{}
		store.counters[name] = counter
	}
	return counter
}

func (store *metricsStore) histogram(name string) *slogHistogram {
	store.mu.Lock()
	defer store.mu.Unlock()

	histogram, exists := store.histograms[name]
	if !exists {
		histogram = &slogHistogram{}
		store.histograms[name] = histogram
	}
	return histogram
}

type slogCounter struct {
	mu    sync.Mutex
	total int64
}

func (counter *slogCounter) Add(_ context.Context, value int64, _ ...observability.Attribute) {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	counter.total += value
}

// Total returns the accumulated counter value.
func (counter *slogCounter) Total() int64 {
	counter.mu.Lock()
	defer counter.mu.Unlock()
	return counter.total
}

type slogHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
}

func (histogram *slogHistogram) Record(_ context.Context, value float64, _ ...observability.Attribute) {
	histogram.mu.Lock()
	defer histogram.mu.Unlock()
	histogram.count++
	histogram.sum += value
}

// Summary returns the number of recordings and their sum.
func (histogram *slogHistogram) Summary() (count int64, sum float64) {
	histogram.mu.Lock()
	defer histogram.mu.Unlock()
	return histogram.count, histogram.sum
}

// --- options ---

type config struct {
	logger *slog.Logger
	level  slog.Leveler
	output *os.File
}

// Option configures the Observer.
type Option func(*config)

func applyOptions(opts ...Option) *config {
	cfg := &config{
		level:  slog.LevelInfo,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithLogger uses an existing slog.Logger instead of constructing one.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithLevel sets the minimum log level for the default handler.
func WithLevel(level slog.Leveler) Option {
	return func(cfg *config) {
		cfg.level = level
	}
}

// WithOutput redirects the default handler's output.
func WithOutput(output *os.File) Option {
	return func(cfg *config) {
		cfg.output = output
	}
}
