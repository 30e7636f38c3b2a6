package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultEmotionalState is used when a record carries no emotional state.
const DefaultEmotionalState = 5

const (
	MinEmotionalState = 0
	MaxEmotionalState = 10
)

// DateLayout renders a record timestamp the way the journal displays it.
const DateLayout = "Monday, January 2, 2006"

// ErrInvalidRecord is returned when a record misses a required field.
var ErrInvalidRecord = errors.New("invalid decision record")

// Decision is one journaled choice with its rationale and metadata.
type Decision struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Intent         string   `json:"intent"`
	Constraints    string   `json:"constraints"`
	Alternatives   string   `json:"alternatives"`
	FinalDecision  string   `json:"finalDecision"`
	Reasoning      string   `json:"reasoning"`
	EmotionalState int      `json:"emotionalState"`
	Tags           []string `json:"tags"`
	Timestamp      int64    `json:"timestamp"`
	Date           string   `json:"date"`
}

// Clone returns a copy that shares no slices with d.
func (d Decision) Clone() Decision {
	c := d
	c.Tags = append(make([]string, 0, len(d.Tags)), d.Tags...)
	return c
}

// HasTag reports whether the record carries tag, ignoring case.
func (d Decision) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Time returns the record timestamp as a time.Time.
func (d Decision) Time() time.Time {
	return time.UnixMilli(d.Timestamp)
}

// Validate checks the required text fields.
func (d Decision) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"title", d.Title},
		{"intent", d.Intent},
		{"constraints", d.Constraints},
		{"finalDecision", d.FinalDecision},
		{"reasoning", d.Reasoning},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRecord, f.name)
		}
	}
	return nil
}

// Draft holds the user-provided fields of a decision being captured.
type Draft struct {
	Title          string   `json:"title"`
	Intent         string   `json:"intent"`
	Constraints    string   `json:"constraints"`
	Alternatives   string   `json:"alternatives,omitempty"`
	FinalDecision  string   `json:"finalDecision"`
	Reasoning      string   `json:"reasoning"`
	EmotionalState *int     `json:"emotionalState,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Patch holds the fields of an edit. Nil fields keep their current value.
type Patch struct {
	Title          *string   `json:"title,omitempty"`
	Intent         *string   `json:"intent,omitempty"`
	Constraints    *string   `json:"constraints,omitempty"`
	Alternatives   *string   `json:"alternatives,omitempty"`
	FinalDecision  *string   `json:"finalDecision,omitempty"`
	Reasoning      *string   `json:"reasoning,omitempty"`
	EmotionalState *int      `json:"emotionalState,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
}

// Apply merges p over d and returns the result. Timestamps are left to the caller.
func (p Patch) Apply(d Decision) Decision {
	out := d.Clone()
	setString(&out.Title, p.Title)
	setString(&out.Intent, p.Intent)
	setString(&out.Constraints, p.Constraints)
	setString(&out.Alternatives, p.Alternatives)
	setString(&out.FinalDecision, p.FinalDecision)
	setString(&out.Reasoning, p.Reasoning)
	if p.EmotionalState != nil {
		out.EmotionalState = ClampEmotion(*p.EmotionalState)
	}
	if p.Tags != nil {
		out.Tags = MergeTags(*p.Tags)
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// ClampEmotion forces an emotional state into the 0..10 range.
func ClampEmotion(v int) int {
	if v < MinEmotionalState {
		return MinEmotionalState
	}
	if v > MaxEmotionalState {
		return MaxEmotionalState
	}
	return v
}

// FormatDate renders an epoch-millisecond timestamp for display.
func FormatDate(ts int64) string {
	return time.UnixMilli(ts).Format(DateLayout)
}

// Severity grades an insight.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Insight is a short heuristic observation over the decision history.
type Insight struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Confidence int      `json:"confidence"`
	Severity   Severity `json:"severity"`
}

// Timeframe is a recency window applied to the collection.
type Timeframe string

const (
	TimeframeAll   Timeframe = "all"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// Days returns the window length in days, or 0 when the timeframe does not filter.
func (t Timeframe) Days() float64 {
	switch t {
	case TimeframeWeek:
		return 7
	case TimeframeMonth:
		return 30
	case TimeframeYear:
		return 365
	default:
		return 0
	}
}

// ParseTimeframe accepts "", all, week, month and year.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case "", TimeframeAll:
		return TimeframeAll, nil
	case TimeframeWeek, TimeframeMonth, TimeframeYear:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
}

// Filter narrows a query. Empty or "all" values do not filter.
type Filter struct {
	Timeframe Timeframe `json:"timeframe,omitempty"`
	Tag       string    `json:"tag,omitempty"`
}
