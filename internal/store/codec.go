package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pbaille/continuum/internal/domain"
)

// ErrInvalidImport is returned when an import document is structurally unusable.
var ErrInvalidImport = errors.New("invalid import document")

// storedDecision is the wire shape of a record. Pointer fields tell a missing
// field apart from an empty one so defaults can be applied here and nowhere else.
type storedDecision struct {
	ID             *int64   `json:"id"`
	Title          *string  `json:"title"`
	Intent         *string  `json:"intent"`
	Constraints    *string  `json:"constraints"`
	Alternatives   *string  `json:"alternatives"`
	FinalDecision  *string  `json:"finalDecision"`
	Reasoning      *string  `json:"reasoning"`
	EmotionalState *float64 `json:"emotionalState"`
	Tags           []string `json:"tags"`
	Timestamp      *int64   `json:"timestamp"`
	Date           *string  `json:"date"`
}

func (s storedDecision) toDomain() (domain.Decision, error) {
	if s.ID == nil {
		return domain.Decision{}, fmt.Errorf("%w: id is required", domain.ErrInvalidRecord)
	}
	missing := []string{}
	for name, v := range map[string]*string{
		"title":         s.Title,
		"intent":        s.Intent,
		"constraints":   s.Constraints,
		"finalDecision": s.FinalDecision,
		"reasoning":     s.Reasoning,
	} {
		if v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return domain.Decision{}, fmt.Errorf("%w: record %d missing %s", domain.ErrInvalidRecord, *s.ID, strings.Join(missing, ", "))
	}
	if strings.TrimSpace(*s.Title) == "" {
		return domain.Decision{}, fmt.Errorf("%w: record %d has an empty title", domain.ErrInvalidRecord, *s.ID)
	}

	d := domain.Decision{
		ID:             *s.ID,
		Title:          *s.Title,
		Intent:         *s.Intent,
		Constraints:    *s.Constraints,
		FinalDecision:  *s.FinalDecision,
		Reasoning:      *s.Reasoning,
		EmotionalState: domain.DefaultEmotionalState,
		Tags:           domain.MergeTags(s.Tags),
		Timestamp:      *s.ID,
	}
	if s.Alternatives != nil {
		d.Alternatives = *s.Alternatives
	}
	if s.EmotionalState != nil {
		d.EmotionalState = domain.ClampEmotion(int(math.Round(*s.EmotionalState)))
	}
	if s.Timestamp != nil {
		d.Timestamp = *s.Timestamp
	}
	if s.Date != nil && *s.Date != "" {
		d.Date = *s.Date
	} else {
		d.Date = domain.FormatDate(d.Timestamp)
	}
	return d, nil
}

// decodeCollection parses a persisted or imported document into records.
// It fails when the top-level value is not an array or any entry is unusable.
func decodeCollection(data []byte) ([]domain.Decision, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: top-level value must be an array: %v", ErrInvalidImport, err)
	}

	records := make([]domain.Decision, 0, len(raw))
	for i, item := range raw {
		var sd storedDecision
		if err := json.Unmarshal(item, &sd); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidImport, i, err)
		}
		d, err := sd.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidImport, i, err)
		}
		records = append(records, d)
	}
	return records, nil
}

// Encode renders records as the pretty-printed JSON array used for export.
func Encode(records []domain.Decision) ([]byte, error) {
	if records == nil {
		records = []domain.Decision{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode decisions: %w", err)
	}
	return data, nil
}

// ExportFilename names an export file after the export date.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("continuum-decisions-%s.json", now.UTC().Format("2006-01-02"))
}
