// ==============================================================================
// RULE EVALUATOR - internal/rules/evaluator.go
// ==============================================================================
package rules

import (
	"sort"

	"onboard/internal/domain"
)

// CompiledRule is a scoring rule with its condition parsed ahead of time.
// ParseErr is retained so a malformed rule still shows up in every execution
// trace instead of failing silently at load.
type CompiledRule struct {
	Name      string
	Condition string
	Category  string
	Priority  int
	Points    int
	Enabled   bool

	Parsed   Comparison
	ParseErr error
}

// Config is an immutable, compiled snapshot of a scoring configuration.
// Evaluations run against the snapshot they captured at invocation time;
// a reload never mutates an existing Config.
type Config struct {
	Version    string
	Checksum   string
	MaxScore   int
	Thresholds []domain.RatingThreshold
	Rules      []CompiledRule
}

// Compile parses every rule condition in the raw configuration and returns an
// evaluation-ready snapshot. Compile never fails: malformed rules carry their
// parse error into the snapshot and degrade to zero points at evaluation.
func Compile(cfg *domain.ScoringConfig) *Config {
	compiled := &Config{
		Version:    cfg.Version,
		Checksum:   cfg.Checksum,
		MaxScore:   cfg.MaxScore,
		Thresholds: append([]domain.RatingThreshold(nil), cfg.Thresholds...),
		Rules:      make([]CompiledRule, 0, len(cfg.Rules)),
	}

	for _, rule := range cfg.Rules {
		cr := CompiledRule{
			Name:      rule.Name,
			Condition: rule.Condition,
			Category:  rule.Category,
			Priority:  rule.Priority,
			Points:    rule.Points,
			Enabled:   rule.Enabled,
		}
		cr.Parsed, cr.ParseErr = ParseCondition(rule.Condition)
		compiled.Rules = append(compiled.Rules, cr)
	}

	// Deterministic evaluation order: priority ascending, ties break by name.
	sort.SliceStable(compiled.Rules, func(i, j int) bool {
		if compiled.Rules[i].Priority != compiled.Rules[j].Priority {
			return compiled.Rules[i].Priority < compiled.Rules[j].Priority
		}
		return compiled.Rules[i].Name < compiled.Rules[j].Name
	})

	// Thresholds sorted so rating lookup scans ranges in order.
	sort.SliceStable(compiled.Thresholds, func(i, j int) bool {
		return compiled.Thresholds[i].Min < compiled.Thresholds[j].Min
	})

	return compiled
}

// Execution is one entry of the rule execution trace. The full trace is
// serialized into the risk profile for audit.
type Execution struct {
	RuleName      string `json:"rule_name"`
	Condition     string `json:"condition"`
	Category      string `json:"category"`
	Fired         bool   `json:"fired"`
	PointsAwarded int    `json:"points_awarded"`
	Error         string `json:"error,omitempty"`
}

// Evaluate runs every enabled rule against the input factors and returns the
// clamped total score plus the per-rule trace. It never returns an error:
// rule-level failures are recorded in the trace and contribute zero points.
func Evaluate(cfg *Config, factors domain.InputFactors) (int, []Execution) {
	fields := factors.Fields()
	trace := make([]Execution, 0, len(cfg.Rules))
	total := 0

	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}

		entry := Execution{
			RuleName:  rule.Name,
			Condition: rule.Condition,
			Category:  rule.Category,
		}

		if rule.ParseErr != nil {
			entry.Error = rule.ParseErr.Error()
			trace = append(trace, entry)
			continue
		}

		fired, err := rule.Parsed.Eval(fields)
		if err != nil {
			entry.Error = err.Error()
			trace = append(trace, entry)
			continue
		}

		entry.Fired = fired
		if fired {
			entry.PointsAwarded = rule.Points
			total += rule.Points
		}
		trace = append(trace, entry)
	}

	if cfg.MaxScore > 0 && total > cfg.MaxScore {
		total = cfg.MaxScore
	}
	if total < 0 {
		total = 0
	}

	return total, trace
}

// RatingFor maps a score to a rating via the configured thresholds. The second
// return value reports whether a configured bucket matched; when false the
// caller falls back to hardcoded buckets and should log the configuration gap.
func (c *Config) RatingFor(score int) (domain.RiskRating, bool) {
	for _, t := range c.Thresholds {
		if score >= t.Min && score <= t.Max {
			return t.Rating, true
		}
	}
	return "", false
}

// FallbackRating is the hardcoded score bucketing used only when no configured
// threshold contains the score.
func FallbackRating(score int) domain.RiskRating {
	switch {
	case score <= 25:
		return domain.RiskRatingLow
	case score <= 50:
		return domain.RiskRatingMedium
	default:
		return domain.RiskRatingHigh
	}
}
