package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	s := New(Lexicon{})

	tests := []struct {
		text string
		want float64
	}{
		{"", 50},
		{"good great excellent", 65},
		{"GOOD", 55},
		{"this was bad", 45},
		{"good but difficult", 50},
		// "unhappy" contains "happy" as well as "unhappy".
		{"unhappy", 50},
		{"stressed out", 45},
		{strings.Join(DefaultLexicon.Positive, " "), 100},
		// "unhappy" also lifts the score through "happy".
		{strings.Join(DefaultLexicon.Negative, " "), 5},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.text))
		})
	}
}

func TestScoreClamps(t *testing.T) {
	s := New(Lexicon{Positive: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}})
	assert.Equal(t, 100.0, s.Score("abcdefghijk"))

	s = New(Lexicon{Negative: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}})
	assert.Equal(t, 0.0, s.Score("abcdefghijk"))
}

func TestScoreAll(t *testing.T) {
	s := New(DefaultLexicon)

	assert.Equal(t, 50.0, s.ScoreAll(nil))
	assert.Equal(t, 50.0, s.ScoreAll([]string{}))
	assert.Equal(t, 55.0, s.ScoreAll([]string{"good great excellent", "bad"}))
}

func TestScoreAllAveragesClampedItems(t *testing.T) {
	s := New(Lexicon{Positive: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}})
	// 105 is clamped to 100 before averaging with 50.
	assert.Equal(t, 75.0, s.ScoreAll([]string{"abcdefghijk", ""}))
}

func TestConfiguredWordsAreNormalized(t *testing.T) {
	s := New(Lexicon{Positive: []string{"  Good ", "GREAT", ""}, Negative: []string{"Bad"}})

	assert.Equal(t, 60.0, s.Score("a good and great day"))
	assert.Equal(t, 45.0, s.Score("BAD"))
	assert.Equal(t, 50.0, s.Score("nothing here"))
}
