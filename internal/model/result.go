package model

// MatchMethod identifies which matcher produced a result.
type MatchMethod string

// Match method constants.
const (
	MethodExact   MatchMethod = "exact"
	MethodFuzzy   MatchMethod = "fuzzy"
	MethodKeyword MatchMethod = "keyword"
	MethodPattern MatchMethod = "pattern"
	MethodNone    MatchMethod = "none"
)

// Decision is the outcome of comparing a confidence against the per-method
// thresholds.
type Decision string

// Decision constants.
const (
	DecisionAuto    Decision = "auto"
	DecisionSuggest Decision = "suggest"
	DecisionNone    Decision = "none"
)

// Diagnostics carries optional debugging detail about how a match was made.
type Diagnostics struct {
	MatchedPattern  string   `json:"matched_pattern,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	TotalKeywords   int      `json:"total_keywords,omitempty"`
	Similarity      float64  `json:"similarity,omitempty"`
}

// MatchResult is the engine's output for one description.
type MatchResult struct {
	Diagnostics   *Diagnostics `json:"diagnostics,omitempty"`
	MatchedRuleID *int64       `json:"matched_rule_id,omitempty"`
	Category      string       `json:"category,omitempty"`
	Method        MatchMethod  `json:"method"`
	Decision      Decision     `json:"decision"`
	Confidence    float64      `json:"confidence"`
}

// NoMatch returns the canonical unclassified result.
func NoMatch() MatchResult {
	return MatchResult{
		Method:   MethodNone,
		Decision: DecisionNone,
	}
}
