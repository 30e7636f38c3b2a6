package insight

import (
	"sort"
	"strings"
	"time"

	"github.com/pbaille/continuum/internal/domain"
)

// Statistics counts decisions by broad category.
type Statistics struct {
	Total       int `json:"total"`
	TimeRelated int `json:"timeRelated"`
	Financial   int `json:"financial"`
	Learning    int `json:"learning"`
}

// Categorize counts time-related, financial and learning decisions.
// A record can fall in several categories.
func Categorize(records []domain.Decision) Statistics {
	s := Statistics{Total: len(records)}
	for _, d := range records {
		constraints := strings.ToLower(d.Constraints)
		reasoning := strings.ToLower(d.Reasoning)
		if containsAny(constraints, "time", "deadline") || d.HasTag("time-sensitive") || d.HasTag("urgent") {
			s.TimeRelated++
		}
		if containsAny(constraints, "money", "budget", "cost") || d.HasTag("financial") {
			s.Financial++
		}
		if containsAny(reasoning, "learn", "growth", "experience") || d.HasTag("learning") {
			s.Learning++
		}
	}
	return s
}

// QuickStats summarizes the journal at a glance.
type QuickStats struct {
	Total          int     `json:"total"`
	ThisMonth      int     `json:"thisMonth"`
	AverageEmotion float64 `json:"averageEmotion"`
}

// Quick computes QuickStats; ThisMonth uses now's calendar month and location.
func Quick(records []domain.Decision, now time.Time) QuickStats {
	q := QuickStats{Total: len(records)}
	if len(records) == 0 {
		return q
	}
	sum := 0
	for _, d := range records {
		sum += d.EmotionalState
		t := d.Time().In(now.Location())
		if t.Year() == now.Year() && t.Month() == now.Month() {
			q.ThisMonth++
		}
	}
	q.AverageEmotion = float64(sum) / float64(len(records))
	return q
}

// MonthCount is the number of decisions in one calendar month.
type MonthCount struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Count int        `json:"count"`
}

// Monthly counts decisions for the last n calendar months, oldest first,
// ending with now's month.
func Monthly(records []domain.Decision, now time.Time, n int) []MonthCount {
	out := make([]MonthCount, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := n - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		out = append(out, MonthCount{Year: m.Year(), Month: m.Month(), Label: m.Format("Jan")})
	}
	for _, d := range records {
		t := d.Time().In(now.Location())
		for i := range out {
			if out[i].Year == t.Year() && out[i].Month == t.Month() {
				out[i].Count++
				break
			}
		}
	}
	return out
}

// Recent returns the n newest records.
func Recent(records []domain.Decision, n int) []domain.Decision {
	sorted := newestFirst(records)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TagCount is how many records carry a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Tags lists distinct tags (case-insensitive) by descending use, then name.
func Tags(records []domain.Decision) []TagCount {
	index := map[string]int{}
	out := []TagCount{}
	for _, d := range records {
		for _, t := range domain.MergeTags(d.Tags) {
			key := strings.ToLower(t)
			if i, ok := index[key]; ok {
				out[i].Count++
				continue
			}
			index[key] = len(out)
			out = append(out, TagCount{Tag: t, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Tag) < strings.ToLower(out[j].Tag)
	})
	return out
}

// Review returns notes about a single decision.
func Review(d domain.Decision) []string {
	var notes []string
	if len([]rune(d.Reasoning)) < 100 {
		notes = append(notes, "Brief reasoning - consider documenting more details for future reference.")
	}
	if d.EmotionalState <= 3 {
		notes = append(notes, "Made under emotional stress - this might affect decision quality.")
	}
	constraints := strings.ToLower(d.Constraints)
	if strings.Contains(constraints, "time") && !strings.Contains(constraints, "enough time") {
		notes = append(notes, "Time-constrained decision - evaluate if time pressure led to optimal choice.")
	}
	if d.HasTag("learning") {
		notes = append(notes, "Learning-focused decision - good for long-term growth.")
	}
	if d.HasTag("financial") {
		notes = append(notes, "Financial decision - consider tracking outcomes for ROI analysis.")
	}
	if len(notes) == 0 {
		notes = append(notes, "Well-documented decision with balanced considerations.")
	}
	return notes
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
