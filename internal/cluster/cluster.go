// Package cluster groups related decisions with a greedy similarity pass.
package cluster

import (
	"regexp"
	"strings"

	"github.com/pbaille/continuum/internal/domain"
)

const (
	TagWeight       = 10
	TitleWordWeight = 5
	Threshold       = 15
)

var nonWord = regexp.MustCompile(`\W+`)

// Cluster is an ordered set of indices into the clustered slice.
type Cluster []int

// Similarity scores how related b is to a: 10 per shared tag plus 5 per
// distinct word of b's title found among a's title words. The title term is
// computed from b towards a, not symmetrically.
func Similarity(a, b domain.Decision) int {
	score := 0

	bTags := make(map[string]bool, len(b.Tags))
	for _, t := range b.Tags {
		bTags[strings.ToLower(t)] = true
	}
	for _, t := range domain.MergeTags(a.Tags) {
		if bTags[strings.ToLower(t)] {
			score += TagWeight
		}
	}

	aWords := titleWords(a.Title)
	for w := range titleWords(b.Title) {
		if aWords[w] {
			score += TitleWordWeight
		}
	}
	return score
}

// Find runs a single greedy pass: each unassigned record, in index order,
// collects every later unassigned record scoring at least Threshold against it.
// Only clusters with two or more members are returned.
func Find(records []domain.Decision) []Cluster {
	clusters := []Cluster{}
	assigned := make([]bool, len(records))

	for i := range records {
		if assigned[i] {
			continue
		}
		c := Cluster{i}
		for j := i + 1; j < len(records); j++ {
			if assigned[j] {
				continue
			}
			if Similarity(records[i], records[j]) >= Threshold {
				c = append(c, j)
				assigned[j] = true
			}
		}
		if len(c) > 1 {
			assigned[i] = true
			clusters = append(clusters, c)
		}
	}
	return clusters
}

func titleWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range nonWord.Split(strings.ToLower(title), -1) {
		if w != "" {
			words[w] = true
		}
	}
	return words
}
