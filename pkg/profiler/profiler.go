// Package profiler records named spans around rendering steps.
package profiler

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Profiler starts and stops named spans. Stopping a span that was never
// started is ignored.
type Profiler interface {
	Start(name string)
	Stop(name string)
}

// Noop discards every span.
type Noop struct{}

func (Noop) Start(string) {}
func (Noop) Stop(string)  {}

// Span is a completed measurement.
type Span struct {
	Name     string
	Duration time.Duration
}

// Option configures a Log profiler.
type Option func(*Log)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithRequestID sets the correlation id attached to every log record.
func WithRequestID(id string) Option {
	return func(l *Log) {
		if id != "" {
			l.id = id
		}
	}
}

// WithLevel sets the level span records are logged at.
func WithLevel(level slog.Level) Option {
	return func(l *Log) {
		l.level = level
	}
}

// Log is a Profiler that writes each completed span to a slog.Logger and
// keeps the totals for inspection.
type Log struct {
	mu     sync.Mutex
	logger *slog.Logger
	level  slog.Level
	id     string
	now    func() time.Time
	open   map[string][]time.Time
	spans  []Span
}

var _ Profiler = (*Log)(nil)

// New returns a Log profiler. A nil logger discards records but spans are
// still collected.
func New(logger *slog.Logger, options ...Option) *Log {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Log{
		logger: logger,
		level:  slog.LevelDebug,
		id:     uuid.NewString(),
		now:    time.Now,
		open:   make(map[string][]time.Time),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// RequestID returns the correlation id for this profiler.
func (l *Log) RequestID() string {
	return l.id
}

func (l *Log) Start(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open[name] = append(l.open[name], l.now())
}

func (l *Log) Stop(name string) {
	l.mu.Lock()
	starts := l.open[name]
	if len(starts) == 0 {
		l.mu.Unlock()
		return
	}
	started := starts[len(starts)-1]
	if len(starts) == 1 {
		delete(l.open, name)
	} else {
		l.open[name] = starts[:len(starts)-1]
	}
	span := Span{Name: name, Duration: l.now().Sub(started)}
	l.spans = append(l.spans, span)
	l.mu.Unlock()

	l.logger.Log(context.Background(), l.level, "profile span",
		"request_id", l.id,
		"span", span.Name,
		"duration", span.Duration,
	)
}

// Spans returns completed spans in completion order.
func (l *Log) Spans() []Span {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Span(nil), l.spans...)
}

// Totals sums durations per span name.
func (l *Log) Totals() map[string]time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]time.Duration, len(l.spans))
	for _, span := range l.spans {
		out[span.Name] += span.Duration
	}
	return out
}

// Open lists spans that were started but not stopped, sorted by name.
func (l *Log) Open() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.open))
	for name := range l.open {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
