package insight

// Rules holds the keyword and phrase tables the analyzers match against.
// Thresholds and confidences are fixed; only the vocabulary is configurable.
type Rules struct {
	TimeKeyword       string   `mapstructure:"time_keyword"`
	TimeTag           string   `mapstructure:"time_tag"`
	LearningKeyword   string   `mapstructure:"learning_keyword"`
	LearningTag       string   `mapstructure:"learning_tag"`
	SunkCostPhrases   []string `mapstructure:"sunk_cost_phrases"`
	FollowUpTag       string   `mapstructure:"follow_up_tag"`
	FrameworkKeywords []string `mapstructure:"framework_keywords"`
	QuickKeywords     []string `mapstructure:"quick_keywords"`
	WorkTag           string   `mapstructure:"work_tag"`
	PersonalTag       string   `mapstructure:"personal_tag"`
}

// DefaultRules returns the built-in tables.
func DefaultRules() Rules {
	return Rules{
		TimeKeyword:       "time",
		TimeTag:           "time-sensitive",
		LearningKeyword:   "learn",
		LearningTag:       "learning",
		SunkCostPhrases:   []string{"already invested", "too late to change", "can't waste"},
		FollowUpTag:       "follow-up",
		FrameworkKeywords: []string{"framework", "process", "method"},
		QuickKeywords:     []string{"quick", "immediate"},
		WorkTag:           "work",
		PersonalTag:       "personal",
	}
}

// withDefaults fills unset fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.TimeKeyword == "" {
		r.TimeKeyword = d.TimeKeyword
	}
	if r.TimeTag == "" {
		r.TimeTag = d.TimeTag
	}
	if r.LearningKeyword == "" {
		r.LearningKeyword = d.LearningKeyword
	}
	if r.LearningTag == "" {
		r.LearningTag = d.LearningTag
	}
	if len(r.SunkCostPhrases) == 0 {
		r.SunkCostPhrases = d.SunkCostPhrases
	}
	if r.FollowUpTag == "" {
		r.FollowUpTag = d.FollowUpTag
	}
	if len(r.FrameworkKeywords) == 0 {
		r.FrameworkKeywords = d.FrameworkKeywords
	}
	if len(r.QuickKeywords) == 0 {
		r.QuickKeywords = d.QuickKeywords
	}
	if r.WorkTag == "" {
		r.WorkTag = d.WorkTag
	}
	if r.PersonalTag == "" {
		r.PersonalTag = d.PersonalTag
	}
	return r
}
