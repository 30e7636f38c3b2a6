package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/continuum/internal/domain"
)

// DefaultKey is the storage key holding the decision collection.
const DefaultKey = "continuumDecisions"

var (
	ErrNotFound    = errors.New("decision not found")
	ErrDuplicateID = errors.New("decision id already exists")
)

// RecordStore is CRUD over the full decision collection. Every call reads and
// writes the whole collection through the Storage collaborator.
type RecordStore struct {
	storage Storage
	key     string
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *RecordStore) { s.key = key }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *RecordStore) { s.logger = l }
}

// WithClock sets the clock used to stamp edits.
func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) { s.now = now }
}

// NewRecordStore creates a RecordStore over storage
func NewRecordStore(storage Storage, opts ...Option) *RecordStore {
	s := &RecordStore{
		storage: storage,
		key:     DefaultKey,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns a copy of every record in persisted order.
// A malformed persisted value reads as an empty collection.
func (s *RecordStore) List() ([]domain.Decision, error) {
	data, ok, err := s.storage.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("load decisions: %w", err)
	}
	if !ok || len(data) == 0 {
		return []domain.Decision{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("stored decisions are malformed, treating as empty",
			zap.String("key", s.key), zap.Error(err))
		return []domain.Decision{}, nil
	}

	records := make([]domain.Decision, 0, len(raw))
	for i, item := range raw {
		var sd storedDecision
		if err := json.Unmarshal(item, &sd); err != nil {
			s.logger.Warn("skipping unreadable stored decision", zap.Int("index", i), zap.Error(err))
			continue
		}
		d, err := sd.toDomain()
		if err != nil {
			s.logger.Warn("skipping invalid stored decision", zap.Int("index", i), zap.Error(err))
			continue
		}
		records = append(records, d)
	}
	return records, nil
}

// Save replaces the whole collection.
func (s *RecordStore) Save(records []domain.Decision) error {
	if records == nil {
		records = []domain.Decision{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode decisions: %w", err)
	}
	if err := s.storage.Set(s.key, data); err != nil {
		return fmt.Errorf("save decisions: %w", err)
	}
	return nil
}

// Add appends a record. The record is validated, its emotional state clamped
// and its tags deduplicated; an id already in the collection is rejected.
func (s *RecordStore) Add(d domain.Decision) error {
	if err := d.Validate(); err != nil {
		return err
	}
	records, err := s.List()
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.ID == d.ID {
			return fmt.Errorf("%w: %d", ErrDuplicateID, d.ID)
		}
	}

	d = normalize(d)
	if err := s.Save(append(records, d)); err != nil {
		return err
	}
	s.logger.Debug("decision added", zap.Int64("id", d.ID), zap.Strings("tags", d.Tags))
	return nil
}

// Remove deletes the record with id and reports whether one was removed.
func (s *RecordStore) Remove(id int64) (bool, error) {
	records, err := s.List()
	if err != nil {
		return false, err
	}
	kept := records[:0]
	removed := false
	for _, r := range records {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return false, nil
	}
	if err := s.Save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Update merges patch over the record with id and stamps it with a new
// timestamp. It returns ErrNotFound, without writing, when id is absent.
func (s *RecordStore) Update(id int64, patch domain.Patch) (domain.Decision, error) {
	records, err := s.List()
	if err != nil {
		return domain.Decision{}, err
	}
	for i, r := range records {
		if r.ID != id {
			continue
		}
		merged := patch.Apply(r)
		if err := merged.Validate(); err != nil {
			return domain.Decision{}, err
		}
		now := s.now().UnixMilli()
		merged.Timestamp = now
		merged.Date = domain.FormatDate(now)
		records[i] = normalize(merged)
		if err := s.Save(records); err != nil {
			return domain.Decision{}, err
		}
		return records[i].Clone(), nil
	}
	return domain.Decision{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// GetByID returns the record with id.
func (s *RecordStore) GetByID(id int64) (domain.Decision, bool, error) {
	records, err := s.List()
	if err != nil {
		return domain.Decision{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return domain.Decision{}, false, nil
}

// Import merges the records of an exported document into the collection.
// Records whose id already exists are dropped; it returns how many were added.
func (s *RecordStore) Import(data []byte) (int, error) {
	incoming, err := decodeCollection(data)
	if err != nil {
		return 0, err
	}
	records, err := s.List()
	if err != nil {
		return 0, err
	}

	known := make(map[int64]bool, len(records))
	for _, r := range records {
		known[r.ID] = true
	}
	added := 0
	for _, d := range incoming {
		if known[d.ID] {
			continue
		}
		known[d.ID] = true
		records = append(records, normalize(d))
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.Save(records); err != nil {
		return 0, err
	}
	return added, nil
}

// Export renders the whole collection as an export document.
func (s *RecordStore) Export() ([]byte, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	return Encode(records)
}

func normalize(d domain.Decision) domain.Decision {
	d.EmotionalState = domain.ClampEmotion(d.EmotionalState)
	d.Tags = domain.MergeTags(d.Tags)
	if d.Timestamp == 0 {
		d.Timestamp = d.ID
	}
	if d.Date == "" {
		d.Date = domain.FormatDate(d.Timestamp)
	}
	return d
}
