package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for New()
// ============================================================================
// The prompt heuristics (cleaning-intent keywords, highlight verbs, color
// words) are configuration, not hard-coded logic, so deployments can tune
// them without code changes.
// ============================================================================

// Option configures executor behavior via functional options pattern.
type Option func(*config)

type config struct {
	CleaningKeywords []string          // prompt substrings implying a generic cleaning pass
	HighlightVerbs   []string          // prompt substrings implying conditional highlighting
	ColorWords       map[string]string // color word → hex fill
	CurrencyDecimals int               // rounding precision for currency cleaning
}

// WithCleaningKeywords replaces the prompt keywords that trigger the default
// cleaning sequence.
func WithCleaningKeywords(keywords ...string) Option {
	return func(c *config) {
		c.CleaningKeywords = keywords
	}
}

// WithHighlightVerbs replaces the prompt verbs that trigger conditional
// format synthesis when the plan omitted a payload.
func WithHighlightVerbs(verbs ...string) Option {
	return func(c *config) {
		c.HighlightVerbs = verbs
	}
}

// WithColorWords replaces the color-word to hex-fill mapping used by the
// conditional format fallback.
func WithColorWords(words map[string]string) Option {
	return func(c *config) {
		c.ColorWords = words
	}
}

// WithCurrencyDecimals sets the rounding precision for currency cleaning.
func WithCurrencyDecimals(n int) Option {
	return func(c *config) {
		c.CurrencyDecimals = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		CleaningKeywords: []string{"clean", "tidy", "remove duplicates", "deduplicate", "dedupe", "fix the data", "normalize"},
		HighlightVerbs:   []string{"highlight", "mark", "flag", "color", "colour"},
		ColorWords: map[string]string{
			"red":    "#EF4444",
			"green":  "#10B981",
			"blue":   "#3B82F6",
			"yellow": "#FACC15",
			"orange": "#F97316",
			"purple": "#8B5CF6",
			"pink":   "#EC4899",
			"gray":   "#9CA3AF",
			"grey":   "#9CA3AF",
			"amber":  "#FBBF24",
		},
		CurrencyDecimals: 2,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
