package match

import (
	"fmt"

	"github.com/ledgerline/opmatch/internal/model"
)

// MethodThresholds holds the auto-assign and suggest cutoffs for one
// matching method. Both bounds are inclusive: a confidence exactly equal to
// Auto is an auto decision.
type MethodThresholds struct {
	Auto    float64
	Suggest float64
}

// Thresholds is the full per-method threshold configuration. Exact matches
// always auto-assign and carry no thresholds of their own.
type Thresholds struct {
	Fuzzy   MethodThresholds
	Keyword MethodThresholds
	Pattern MethodThresholds
}

// DefaultThresholds returns the stock threshold configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Fuzzy:   MethodThresholds{Auto: 95, Suggest: 85},
		Keyword: MethodThresholds{Auto: 80, Suggest: 70},
		Pattern: MethodThresholds{Auto: 75, Suggest: 65},
	}
}

// For returns the thresholds for the given method.
func (t Thresholds) For(method model.MatchMethod) (MethodThresholds, bool) {
	switch method {
	case model.MethodFuzzy:
		return t.Fuzzy, true
	case model.MethodKeyword:
		return t.Keyword, true
	case model.MethodPattern:
		return t.Pattern, true
	default:
		return MethodThresholds{}, false
	}
}

// Validate checks that every threshold is in range and that no suggest cutoff
// exceeds its auto cutoff.
func (t Thresholds) Validate() error {
	check := func(name string, mt MethodThresholds) error {
		if mt.Auto < 0 || mt.Auto > 100 {
			return fmt.Errorf("%s auto threshold must be between 0 and 100, got %v", name, mt.Auto)
		}
		if mt.Suggest < 0 || mt.Suggest > 100 {
			return fmt.Errorf("%s suggest threshold must be between 0 and 100, got %v", name, mt.Suggest)
		}
		if mt.Suggest > mt.Auto {
			return fmt.Errorf("%s suggest threshold %v exceeds auto threshold %v", name, mt.Suggest, mt.Auto)
		}
		return nil
	}

	if err := check("fuzzy", t.Fuzzy); err != nil {
		return err
	}
	if err := check("keyword", t.Keyword); err != nil {
		return err
	}
	return check("pattern", t.Pattern)
}

// decide applies the threshold policy to a confidence for one method.
func (t Thresholds) decide(method model.MatchMethod, confidence float64) model.Decision {
	mt, ok := t.For(method)
	if !ok {
		return model.DecisionNone
	}

	switch {
	case confidence >= mt.Auto:
		return model.DecisionAuto
	case confidence >= mt.Suggest:
		return model.DecisionSuggest
	default:
		return model.DecisionNone
	}
}
