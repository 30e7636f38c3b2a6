// Package sentiment scores text positivity against fixed word lists.
package sentiment

import "strings"

const (
	Neutral = 50.0
	step    = 5.0
	floor   = 0.0
	ceiling = 100.0
)

// Lexicon holds the words that move a score up or down.
type Lexicon struct {
	Positive []string `json:"positive" mapstructure:"positive"`
	Negative []string `json:"negative" mapstructure:"negative"`
}

// DefaultLexicon is the built-in word list.
var DefaultLexicon = Lexicon{
	Positive: []string{"good", "great", "excellent", "positive", "happy", "satisfied", "confident", "optimistic", "success", "win"},
	Negative: []string{"bad", "poor", "negative", "unhappy", "stressed", "anxious", "worried", "failure", "lose", "difficult"},
}

// Scorer computes 0-100 sentiment scores.
type Scorer struct {
	lexicon Lexicon
}

// New creates a Scorer. A lexicon with no words falls back to DefaultLexicon.
// Words are trimmed and lower-cased; blank ones are dropped.
func New(lexicon Lexicon) *Scorer {
	if len(lexicon.Positive) == 0 && len(lexicon.Negative) == 0 {
		lexicon = DefaultLexicon
	}
	return &Scorer{lexicon: Lexicon{
		Positive: normalize(lexicon.Positive),
		Negative: normalize(lexicon.Negative),
	}}
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Score starts at 50 and moves 5 points for every lexicon word found as a
// substring of the lower-cased text, clamped to [0, 100].
func (s *Scorer) Score(text string) float64 {
	text = strings.ToLower(text)
	score := Neutral
	for _, w := range s.lexicon.Positive {
		if strings.Contains(text, w) {
			score += step
		}
	}
	for _, w := range s.lexicon.Negative {
		if strings.Contains(text, w) {
			score -= step
		}
	}
	return clamp(score)
}

// ScoreAll averages the clamped per-text scores. No texts scores Neutral.
func (s *Scorer) ScoreAll(texts []string) float64 {
	if len(texts) == 0 {
		return Neutral
	}
	total := 0.0
	for _, t := range texts {
		total += s.Score(t)
	}
	return total / float64(len(texts))
}

func clamp(v float64) float64 {
	if v < floor {
		return floor
	}
	if v > ceiling {
		return ceiling
	}
	return v
}
