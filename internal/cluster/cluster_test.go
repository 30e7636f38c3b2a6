package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pbaille/continuum/internal/domain"
)

func rec(title string, tags ...string) domain.Decision {
	return domain.Decision{Title: title, Tags: tags}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Decision
		want int
	}{
		{"nothing shared", rec("Buy a car", "financial"), rec("Move city", "personal"), 0},
		{"two tags one word", rec("New laptop", "financial", "work"), rec("Laptop repair", "work", "financial"), 25},
		{"one tag", rec("Buy laptop", "financial"), rec("Pay rent", "financial"), 10},
		{"tags ignore case", rec("x", "Work"), rec("y", "work"), 10},
		{"punctuation splits words", rec("Job: accept offer?", ""), rec("offer/job", ""), 10},
		{"repeated words count once", rec("go go go"), rec("go go"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Similarity(tt.a, tt.b))
		})
	}
}

func TestFindThreshold(t *testing.T) {
	together := []domain.Decision{
		rec("New laptop", "financial", "work"),
		rec("Laptop repair", "work", "financial"),
	}
	assert.Equal(t, []Cluster{{0, 1}}, Find(together))

	apart := []domain.Decision{
		rec("Buy laptop", "financial"),
		rec("Pay rent", "financial"),
	}
	assert.Empty(t, Find(apart))
}

func TestFindEmpty(t *testing.T) {
	assert.Empty(t, Find(nil))
	assert.NotNil(t, Find(nil))
}

func TestFindIsGreedyAndOrderDependent(t *testing.T) {
	records := []domain.Decision{
		rec("alpha", "a"),            // 0
		rec("alpha beta", "a"),       // 1: 10 + 5 with 0
		rec("beta gamma", "b"),       // 2: unrelated to 0
		rec("beta gamma delta", "b"), // 3: 10 + 10 with 2
		rec("alpha", "a"),            // 4: joins 0
	}
	assert.Equal(t, []Cluster{{0, 1, 4}, {2, 3}}, Find(records))
}

func TestFindSkipsAssignedRecords(t *testing.T) {
	records := []domain.Decision{
		rec("trip", "x", "y"),
		rec("trip", "x", "y"),
		rec("trip", "x", "y"),
	}
	// 1 and 2 both join 0; 1 never seeds its own cluster.
	assert.Equal(t, []Cluster{{0, 1, 2}}, Find(records))
}
