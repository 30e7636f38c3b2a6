package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name        string
		constraints string
		reasoning   string
		want        []string
	}{
		{"nothing", "", "", []string{}},
		{"deadline", "Hard DEADLINE on friday", "", []string{"time-sensitive"}},
		{"substring match", "", "networking", []string{"work"}},
		{"several families in rule order", "tight budget", "good for my career and family", []string{"financial", "work", "personal"}},
		{"one tag per family", "time time urgent deadline", "", []string{"time-sensitive"}},
		{"learning", "", "I want to grow my skill set", []string{"learning"}},
		{"emotional", "stressful week", "", []string{"emotional"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.constraints, tt.reasoning))
		})
	}
}

func TestEnrichKeepsUserTags(t *testing.T) {
	c := New(nil)

	got := c.Enrich([]string{"Work", "follow-up"}, "my job", "")
	assert.Equal(t, []string{"Work", "follow-up"}, got)

	got = c.Enrich([]string{"custom"}, "budget", "")
	assert.Equal(t, []string{"custom", "financial"}, got)
}

func TestCustomRules(t *testing.T) {
	rules := append(New(nil).Rules(), Rule{Tag: "health", Keywords: []string{"doctor", "gym"}})
	c := New(rules)

	assert.Equal(t, []string{"health"}, c.Classify("", "joined a gym"))
	assert.Len(t, c.Rules(), len(DefaultRules)+1)
	assert.Len(t, DefaultRules, 6, "extending must not touch the default table")
}
