// Package journal wires the decision store, tagging, querying and insight
// analysis into the operations the CLI and HTTP API expose.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/continuum/internal/classifier"
	"github.com/pbaille/continuum/internal/domain"
	"github.com/pbaille/continuum/internal/insight"
	"github.com/pbaille/continuum/internal/metrics"
	"github.com/pbaille/continuum/internal/query"
	"github.com/pbaille/continuum/internal/store"
)

// recentCount is how many decisions the overview lists.
const recentCount = 5

// Journal serializes access to the record store; callers may share one
// Journal across goroutines.
type Journal struct {
	mu sync.Mutex

	records      *store.RecordStore
	classifier   *classifier.Classifier
	generator    *insight.Generator
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
	itemsPerPage int
	lastID       int64
}

// Option configures a Journal.
type Option func(*Journal)

func WithClassifier(c *classifier.Classifier) Option {
	return func(j *Journal) { j.classifier = c }
}

func WithGenerator(g *insight.Generator) Option {
	return func(j *Journal) { j.generator = g }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(j *Journal) { j.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

func WithItemsPerPage(n int) Option {
	return func(j *Journal) { j.itemsPerPage = n }
}

// New creates a Journal over records.
func New(records *store.RecordStore, opts ...Option) *Journal {
	j := &Journal{
		records:      records,
		logger:       zap.NewNop(),
		now:          time.Now,
		itemsPerPage: query.DefaultItemsPerPage,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.classifier == nil {
		j.classifier = classifier.New(nil)
	}
	if j.generator == nil {
		j.generator = insight.NewGenerator(insight.NewAnalyzer(insight.DefaultRules(), nil), insight.WithLogger(j.logger))
	}
	if j.metrics == nil {
		j.metrics = metrics.New()
	}
	return j
}

// Capture records a new decision. Tags are the user's tags plus the classifier's.
func (j *Journal) Capture(draft domain.Draft) (domain.Decision, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	existing, err := j.records.List()
	if err != nil {
		return domain.Decision{}, err
	}

	id := j.nextID(existing)
	d := domain.Decision{
		ID:             id,
		Title:          strings.TrimSpace(draft.Title),
		Intent:         strings.TrimSpace(draft.Intent),
		Constraints:    strings.TrimSpace(draft.Constraints),
		Alternatives:   strings.TrimSpace(draft.Alternatives),
		FinalDecision:  strings.TrimSpace(draft.FinalDecision),
		Reasoning:      strings.TrimSpace(draft.Reasoning),
		EmotionalState: domain.DefaultEmotionalState,
		Timestamp:      id,
		Date:           domain.FormatDate(id),
	}
	if draft.EmotionalState != nil {
		d.EmotionalState = domain.ClampEmotion(*draft.EmotionalState)
	}
	d.Tags = j.classifier.Enrich(draft.Tags, d.Constraints, d.Reasoning)

	if err := j.records.Add(d); err != nil {
		return domain.Decision{}, fmt.Errorf("capture decision: %w", err)
	}
	j.lastID = id
	j.metrics.DecisionsTotal.WithLabelValues("captured").Inc()
	j.logger.Info("decision captured", zap.Int64("id", id), zap.String("title", d.Title), zap.Strings("tags", d.Tags))
	return d, nil
}

// nextID returns a millisecond timestamp greater than every id seen so far.
func (j *Journal) nextID(existing []domain.Decision) int64 {
	id := j.now().UnixMilli()
	floor := j.lastID
	for _, d := range existing {
		floor = max(floor, d.ID)
	}
	if id <= floor {
		id = floor + 1
	}
	return id
}

// Edit merges patch over the decision with id.
func (j *Journal) Edit(id int64, patch domain.Patch) (domain.Decision, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	d, err := j.records.Update(id, patch)
	if err != nil {
		return domain.Decision{}, err
	}
	j.metrics.DecisionsTotal.WithLabelValues("edited").Inc()
	j.logger.Info("decision edited", zap.Int64("id", id))
	return d, nil
}

// Delete removes the decision with id. There is no undo.
func (j *Journal) Delete(id int64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	removed, err := j.records.Remove(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	j.metrics.DecisionsTotal.WithLabelValues("deleted").Inc()
	j.logger.Info("decision deleted", zap.Int64("id", id))
	return nil
}

// Get returns the decision with id.
func (j *Journal) Get(id int64) (domain.Decision, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	d, ok, err := j.records.GetByID(id)
	if err != nil {
		return domain.Decision{}, err
	}
	if !ok {
		return domain.Decision{}, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	return d, nil
}

// List returns every decision in stored order.
func (j *Journal) List() ([]domain.Decision, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.records.List()
}

// Search filters, sorts and paginates the collection. perPage <= 0 uses the
// configured page size.
func (j *Journal) Search(filter domain.Filter, term string, page, perPage int) (query.Page, error) {
	start := time.Now()
	defer j.metrics.ObserveQuery(start)

	all, err := j.List()
	if err != nil {
		return query.Page{}, err
	}
	if perPage <= 0 {
		perPage = j.itemsPerPage
	}
	return query.Paginate(query.Run(all, filter, term, j.now()), page, perPage), nil
}

// StartInsights schedules the analyzer for kind over the whole collection.
func (j *Journal) StartInsights(kind insight.Kind) (*insight.Task, error) {
	all, err := j.List()
	if err != nil {
		return nil, err
	}
	task, err := j.generator.Run(kind, all)
	if err != nil {
		return nil, err
	}
	j.metrics.InsightRuns.WithLabelValues(string(kind)).Inc()
	return task, nil
}

// Insights runs the analyzer for kind and waits for its result.
func (j *Journal) Insights(ctx context.Context, kind insight.Kind) ([]domain.Insight, error) {
	task, err := j.StartInsights(kind)
	if err != nil {
		return nil, err
	}
	insights, err := task.Wait(ctx)
	if err != nil {
		return nil, err
	}
	j.metrics.InsightsProduced.WithLabelValues(string(kind)).Add(float64(len(insights)))
	j.logger.Debug("insights delivered", zap.String("task", task.ID), zap.String("kind", string(kind)), zap.Int("count", len(insights)))
	return insights, nil
}

// Overview gathers the summary figures shown alongside the journal.
type Overview struct {
	Statistics insight.Statistics   `json:"statistics"`
	Quick      insight.QuickStats   `json:"quick"`
	Monthly    []insight.MonthCount `json:"monthly"`
	Recent     []domain.Decision    `json:"recent"`
}

// Overview summarizes the collection.
func (j *Journal) Overview() (Overview, error) {
	all, err := j.List()
	if err != nil {
		return Overview{}, err
	}
	now := j.now()
	return Overview{
		Statistics: insight.Categorize(all),
		Quick:      insight.Quick(all, now),
		Monthly:    insight.Monthly(all, now, 6),
		Recent:     insight.Recent(all, recentCount),
	}, nil
}

// Tags lists the tags in use with their counts.
func (j *Journal) Tags() ([]insight.TagCount, error) {
	all, err := j.List()
	if err != nil {
		return nil, err
	}
	return insight.Tags(all), nil
}

// Review returns notes about the decision with id.
func (j *Journal) Review(id int64) ([]string, error) {
	d, err := j.Get(id)
	if err != nil {
		return nil, err
	}
	return insight.Review(d), nil
}

// Export renders the collection and names the file after today's date.
func (j *Journal) Export() (string, []byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := j.records.Export()
	if err != nil {
		return "", nil, err
	}
	return store.ExportFilename(j.now()), data, nil
}

// Import merges an export document and returns how many decisions were added.
func (j *Journal) Import(data []byte) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	added, err := j.records.Import(data)
	if err != nil {
		if errors.Is(err, store.ErrInvalidImport) {
			j.metrics.ImportFailures.Inc()
		}
		j.logger.Warn("import rejected", zap.Error(err))
		return 0, err
	}
	j.metrics.DecisionsTotal.WithLabelValues("imported").Add(float64(added))
	j.logger.Info("decisions imported", zap.Int("added", added))
	return added, nil
}
