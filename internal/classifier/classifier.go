// Package classifier derives heuristic tags from decision text.
package classifier

import (
	"strings"

	"github.com/pbaille/continuum/internal/domain"
)

// Rule yields Tag when any of its keywords occurs in the text.
type Rule struct {
	Tag      string   `json:"tag" mapstructure:"tag"`
	Keywords []string `json:"keywords" mapstructure:"keywords"`
}

// DefaultRules is the built-in keyword table.
var DefaultRules = []Rule{
	{Tag: "time-sensitive", Keywords: []string{"time", "deadline", "urgent"}},
	{Tag: "financial", Keywords: []string{"money", "budget", "cost", "paid"}},
	{Tag: "learning", Keywords: []string{"learn", "experience", "growth", "skill"}},
	{Tag: "emotional", Keywords: []string{"stress", "emotional", "feeling", "anxiety"}},
	{Tag: "work", Keywords: []string{"work", "job", "career"}},
	{Tag: "personal", Keywords: []string{"personal", "life", "family"}},
}

// Classifier tags text by substring keyword matching
type Classifier struct {
	rules []Rule
}

// New creates a Classifier. An empty rule list falls back to DefaultRules.
func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	cp := make([]Rule, len(rules))
	for i, r := range rules {
		cp[i] = Rule{Tag: r.Tag, Keywords: append([]string(nil), r.Keywords...)}
	}
	return &Classifier{rules: cp}
}

// Rules returns a copy of the active rule table.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the tags whose keywords appear in the constraints or reasoning,
// in rule order.
func (c *Classifier) Classify(constraints, reasoning string) []string {
	text := strings.ToLower(constraints + " " + reasoning)

	tags := []string{}
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(text, kw) {
				tags = append(tags, rule.Tag)
				break
			}
		}
	}
	return domain.MergeTags(tags)
}

// Enrich unions user tags with classifier tags. User tags come first and are never removed.
func (c *Classifier) Enrich(userTags []string, constraints, reasoning string) []string {
	return domain.MergeTags(userTags, c.Classify(constraints, reasoning))
}
