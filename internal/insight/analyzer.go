// Package insight turns the decision history into heuristic observations.
package insight

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pbaille/continuum/internal/cluster"
	"github.com/pbaille/continuum/internal/domain"
	"github.com/pbaille/continuum/internal/query"
	"github.com/pbaille/continuum/internal/sentiment"
)

// recentWindow is how many of the newest records count as "recent".
const recentWindow = 5

// Analyzer runs the pattern, bias, improvement and sentiment heuristics.
// Every method is pure and returns an empty slice when nothing triggers.
type Analyzer struct {
	rules  Rules
	scorer *sentiment.Scorer
}

// NewAnalyzer creates an Analyzer. A nil scorer uses the default lexicon.
func NewAnalyzer(rules Rules, scorer *sentiment.Scorer) *Analyzer {
	if scorer == nil {
		scorer = sentiment.New(sentiment.DefaultLexicon)
	}
	return &Analyzer{rules: rules.withDefaults(), scorer: scorer}
}

// newestFirst copies records sorted by timestamp descending.
func newestFirst(records []domain.Decision) []domain.Decision {
	out := make([]domain.Decision, len(records))
	copy(out, records)
	query.SortNewestFirst(out)
	return out
}

// Patterns reports time pressure, low mood, recurring clusters and growth focus.
// Clusters are found over records in stored order.
func (a *Analyzer) Patterns(records []domain.Decision) []domain.Insight {
	insights := []domain.Insight{}
	n := len(records)
	if n == 0 {
		return insights
	}

	timed := count(records, func(d domain.Decision) bool {
		return containsFold(d.Constraints, a.rules.TimeKeyword) || d.HasTag(a.rules.TimeTag)
	})
	if timed*100 > n*30 {
		insights = append(insights, domain.Insight{
			Title:      "Time Pressure Pattern",
			Message:    fmt.Sprintf("You make time-sensitive decisions in %d%% of cases. Consider if artificial deadlines are helping or hurting decision quality.", percent(timed, n)),
			Confidence: 85,
			Severity:   domain.SeverityInfo,
		})
	}

	if avg := meanEmotion(records); avg < 4 {
		insights = append(insights, domain.Insight{
			Title:      "Emotional State Alert",
			Message:    fmt.Sprintf("Your average emotional state during decisions is %.1f/10. Lower emotional states can lead to risk-averse or impulsive choices.", avg),
			Confidence: 90,
			Severity:   domain.SeverityWarning,
		})
	}

	if clusters := cluster.Find(records); len(clusters) > 0 {
		insights = append(insights, domain.Insight{
			Title:      "Recurring Decision Patterns",
			Message:    fmt.Sprintf("Found %d clusters of similar decisions. This suggests recurring themes in your life that might benefit from standardized decision frameworks.", len(clusters)),
			Confidence: 75,
			Severity:   domain.SeverityInfo,
		})
	}

	learning := count(records, func(d domain.Decision) bool {
		return containsFold(d.Reasoning, a.rules.LearningKeyword) || d.HasTag(a.rules.LearningTag)
	})
	if learning*100 > n*40 {
		insights = append(insights, domain.Insight{
			Title:      "Growth Mindset Detected",
			Message:    fmt.Sprintf("%d%% of your decisions prioritize learning and growth. This is a strong indicator of long-term thinking.", percent(learning, n)),
			Confidence: 88,
			Severity:   domain.SeverityInfo,
		})
	}

	return insights
}

// Biases reports confirmation bias, sunk cost language, emotional extremes and availability bias.
func (a *Analyzer) Biases(records []domain.Decision) []domain.Insight {
	insights := []domain.Insight{}
	n := len(records)
	if n == 0 {
		return insights
	}
	records = newestFirst(records)

	explored := count(records, func(d domain.Decision) bool {
		return utf8.RuneCountInString(d.Alternatives) > 50
	})
	if explored*100 < n*50 {
		insights = append(insights, domain.Insight{
			Title:      "Potential Confirmation Bias",
			Message:    fmt.Sprintf("Only %d%% of decisions thoroughly consider alternatives. This might indicate confirmation bias - seeking information that confirms pre-existing views.", percent(explored, n)),
			Confidence: 80,
			Severity:   domain.SeverityWarning,
		})
	}

	sunk := count(records, func(d domain.Decision) bool {
		return containsAnyFold(d.Reasoning, a.rules.SunkCostPhrases)
	})
	if sunk > 0 {
		insights = append(insights, domain.Insight{
			Title:      "Sunk Cost Fallacy Alert",
			Message:    fmt.Sprintf("Found %d decisions with language suggesting sunk cost thinking. Remember: past investments shouldn't dictate future decisions if better alternatives exist.", sunk),
			Confidence: 70,
			Severity:   domain.SeverityDanger,
		})
	}

	extreme := count(records, func(d domain.Decision) bool {
		return d.EmotionalState <= 3 || d.EmotionalState >= 8
	})
	if extreme*100 > n*25 {
		insights = append(insights, domain.Insight{
			Title:      "Emotional Decision Making",
			Message:    fmt.Sprintf("%d%% of decisions were made in high-emotion states. Consider implementing a \"cooling off\" period for important decisions.", percent(extreme, n)),
			Confidence: 82,
			Severity:   domain.SeverityWarning,
		})
	}

	if availabilityShift(records) {
		insights = append(insights, domain.Insight{
			Title:      "Availability Bias Warning",
			Message:    "Your most recent decisions show different patterns than historical ones. This could be availability bias - overweighting recent, memorable information.",
			Confidence: 75,
			Severity:   domain.SeverityInfo,
		})
	}

	return insights
}

// availabilityShift compares the recent window against the rest of a
// newest-first history: mood must move by more than 2 points and fewer than
// half of the recent tags may appear historically.
func availabilityShift(records []domain.Decision) bool {
	recentN := min(recentWindow, len(records))
	if recentN < 3 || len(records) < 10 {
		return false
	}
	recent, history := records[:recentN], records[recentN:]

	recentTags := tagSet(recent)
	historyTags := tagSet(history)
	overlap := 0
	for t := range recentTags {
		if historyTags[t] {
			overlap++
		}
	}
	similarity := float64(overlap) / float64(max(len(recentTags), 1))

	return math.Abs(meanEmotion(recent)-meanEmotion(history)) > 2 && similarity < 0.5
}

// Improvements suggests better documentation, follow-ups, frameworks and pacing.
func (a *Analyzer) Improvements(records []domain.Decision) []domain.Insight {
	insights := []domain.Insight{}
	n := len(records)
	if n == 0 {
		return insights
	}

	totalReasoning := 0
	for _, d := range records {
		totalReasoning += utf8.RuneCountInString(d.Reasoning)
	}
	if avg := float64(totalReasoning) / float64(n); avg < 100 {
		insights = append(insights, domain.Insight{
			Title:      "Improve Documentation",
			Message:    fmt.Sprintf("Your average reasoning length is %d characters. More detailed reasoning improves future recall and learning. Aim for at least 200 characters.", int(math.Round(avg))),
			Confidence: 85,
			Severity:   domain.SeverityInfo,
		})
	}

	followed := count(records, func(d domain.Decision) bool { return d.HasTag(a.rules.FollowUpTag) })
	if followed*100 < n*10 {
		insights = append(insights, domain.Insight{
			Title:      "Add Decision Follow-ups",
			Message:    fmt.Sprintf("Only a few decisions have follow-up tracking. Consider adding '%s' tags to important decisions to review outcomes later.", a.rules.FollowUpTag),
			Confidence: 90,
			Severity:   domain.SeverityInfo,
		})
	}

	framed := count(records, func(d domain.Decision) bool {
		return containsAnyFold(d.Reasoning, a.rules.FrameworkKeywords)
	})
	if framed*100 < n*20 {
		insights = append(insights, domain.Insight{
			Title:      "Use Decision Frameworks",
			Message:    fmt.Sprintf("Only %d%% of decisions mention using a framework. Structured approaches like Cost-Benefit Analysis or Pro/Con lists can improve consistency.", percent(framed, n)),
			Confidence: 88,
			Severity:   domain.SeverityInfo,
		})
	}

	quick := count(records, func(d domain.Decision) bool {
		return containsAnyFold(d.Constraints, a.rules.QuickKeywords)
	})
	if quick*100 > n*40 {
		insights = append(insights, domain.Insight{
			Title:      "Balance Decision Speed",
			Message:    fmt.Sprintf("%d%% of decisions are made under time pressure. Consider if some decisions deserve more deliberate thinking time.", percent(quick, n)),
			Confidence: 83,
			Severity:   domain.SeverityInfo,
		})
	}

	return insights
}

// Sentiment compares recent and overall language, work and personal mood, and constraint tone.
func (a *Analyzer) Sentiment(records []domain.Decision) []domain.Insight {
	insights := []domain.Insight{}
	if len(records) == 0 {
		return insights
	}
	records = newestFirst(records)

	recent := a.scorer.ScoreAll(decisionTexts(records[:min(recentWindow, len(records))]))
	overall := a.scorer.ScoreAll(decisionTexts(records))
	switch {
	case recent > overall+10:
		insights = append(insights, domain.Insight{
			Title:      "Improving Decision Sentiment",
			Message:    "Your recent decisions show more positive language than your historical average. This could indicate growing confidence or satisfaction.",
			Confidence: 78,
			Severity:   domain.SeverityInfo,
		})
	case recent < overall-10:
		insights = append(insights, domain.Insight{
			Title:      "Declining Decision Sentiment",
			Message:    "Your recent decisions show more negative language than your historical average. Consider if external factors are affecting your decision-making mood.",
			Confidence: 76,
			Severity:   domain.SeverityWarning,
		})
	}

	work := filter(records, func(d domain.Decision) bool { return d.HasTag(a.rules.WorkTag) })
	personal := filter(records, func(d domain.Decision) bool { return d.HasTag(a.rules.PersonalTag) })
	if len(work) > 0 && len(personal) > 0 {
		workMood, personalMood := meanEmotion(work), meanEmotion(personal)
		if math.Abs(workMood-personalMood) > 2 {
			insights = append(insights, domain.Insight{
				Title:      "Work/Personal Emotion Gap",
				Message:    fmt.Sprintf("Significant emotion difference between work decisions (%.1f/10) and personal decisions (%.1f/10).", workMood, personalMood),
				Confidence: 82,
				Severity:   domain.SeverityInfo,
			})
		}
	}

	var constraints []string
	for _, d := range records {
		if utf8.RuneCountInString(d.Constraints) > 100 {
			constraints = append(constraints, d.Constraints)
		}
	}
	if len(constraints) > 0 && a.scorer.ScoreAll(constraints) < 40 {
		insights = append(insights, domain.Insight{
			Title:      "Negative Constraint Language",
			Message:    "Your constraint descriptions tend to use negative language. Reframing constraints as challenges or parameters might improve decision mindset.",
			Confidence: 79,
			Severity:   domain.SeverityWarning,
		})
	}

	return insights
}

func decisionTexts(records []domain.Decision) []string {
	texts := make([]string, len(records))
	for i, d := range records {
		texts[i] = d.Reasoning + " " + d.Constraints
	}
	return texts
}

func count(records []domain.Decision, pred func(domain.Decision) bool) int {
	n := 0
	for _, d := range records {
		if pred(d) {
			n++
		}
	}
	return n
}

func filter(records []domain.Decision, pred func(domain.Decision) bool) []domain.Decision {
	var out []domain.Decision
	for _, d := range records {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out
}

func meanEmotion(records []domain.Decision) float64 {
	if len(records) == 0 {
		return domain.DefaultEmotionalState
	}
	sum := 0
	for _, d := range records {
		sum += d.EmotionalState
	}
	return float64(sum) / float64(len(records))
}

func tagSet(records []domain.Decision) map[string]bool {
	set := make(map[string]bool)
	for _, d := range records {
		for _, t := range d.Tags {
			set[strings.ToLower(t)] = true
		}
	}
	return set
}

func percent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func containsFold(text, keyword string) bool {
	return keyword != "" && strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

func containsAnyFold(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsFold(text, kw) {
			return true
		}
	}
	return false
}
