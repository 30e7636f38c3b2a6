package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/continuum/internal/domain"
)

// DefaultLatency is the fixed delay before a task delivers its insights.
const DefaultLatency = time.Second

// ErrUnknownKind is returned for an unsupported analysis kind.
var ErrUnknownKind = errors.New("unknown insight kind")

// Kind selects one of the four analyzers.
type Kind string

const (
	KindPatterns     Kind = "patterns"
	KindBiases       Kind = "biases"
	KindImprovements Kind = "improvements"
	KindSentiment    Kind = "sentiment"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindPatterns, KindBiases, KindImprovements, KindSentiment}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Title is the heading of a report of this kind.
func (k Kind) Title() string {
	switch k {
	case KindPatterns:
		return "Pattern Analysis"
	case KindBiases:
		return "Cognitive Bias Detection"
	case KindImprovements:
		return "Improvement Suggestions"
	case KindSentiment:
		return "Sentiment Analysis"
	}
	return string(k)
}

// Generator runs analyzers as deferred tasks.
type Generator struct {
	analyzer *Analyzer
	latency  time.Duration
	logger   *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLatency sets the delay before results are delivered. Zero delivers
// on the next scheduling opportunity.
func WithLatency(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.latency = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a Generator over analyzer.
func NewGenerator(analyzer *Analyzer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		analyzer: analyzer,
		latency:  DefaultLatency,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Analyze runs the analyzer for kind synchronously.
func (g *Generator) Analyze(kind Kind, records []domain.Decision) ([]domain.Insight, error) {
	switch kind {
	case KindPatterns:
		return g.analyzer.Patterns(records), nil
	case KindBiases:
		return g.analyzer.Biases(records), nil
	case KindImprovements:
		return g.analyzer.Improvements(records), nil
	case KindSentiment:
		return g.analyzer.Sentiment(records), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Run schedules the analyzer for kind after the configured latency. The
// records are copied, so later changes by the caller do not affect the result.
// Tasks share no state; callers discard results they no longer want.
func (g *Generator) Run(kind Kind, records []domain.Decision) (*Task, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	snapshot := make([]domain.Decision, len(records))
	for i, d := range records {
		snapshot[i] = d.Clone()
	}

	t := &Task{
		ID:      uuid.New().String(),
		Kind:    kind,
		Records: len(snapshot),
		done:    make(chan struct{}),
	}
	log := g.logger.With(zap.String("task", t.ID), zap.String("kind", string(kind)))
	log.Debug("insight task scheduled", zap.Int("records", t.Records), zap.Duration("latency", g.latency))

	time.AfterFunc(g.latency, func() {
		// Analyze cannot fail here: kind was validated above.
		insights, _ := g.Analyze(kind, snapshot)
		t.insights = insights
		close(t.done)
		log.Debug("insight task finished", zap.Int("insights", len(insights)))
	})
	return t, nil
}

// Task is a single-shot deferred analysis. It has no timeout or retry and
// always completes with a full result.
type Task struct {
	ID      string
	Kind    Kind
	Records int

	done     chan struct{}
	insights []domain.Insight
}

// Done is closed once the insights are available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the insights are ready or ctx ends. Ending ctx stops the
// wait only; the task itself still completes.
func (t *Task) Wait(ctx context.Context) ([]domain.Insight, error) {
	select {
	case <-t.done:
		return t.insights, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel is a no-op: a scheduled task always runs to completion.
func (t *Task) Cancel() {}
