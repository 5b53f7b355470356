package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/domain"
)

func scoringConfig(rules ...domain.RiskRule) *domain.ScoringConfig {
	return &domain.ScoringConfig{
		Version:  "v1",
		Checksum: "test",
		Rules:    rules,
		MaxScore: 100,
		Thresholds: []domain.RatingThreshold{
			{Min: 0, Max: 25, Rating: domain.RiskRatingLow},
			{Min: 26, Max: 50, Rating: domain.RiskRatingMedium},
			{Min: 51, Max: 100, Rating: domain.RiskRatingHigh},
		},
	}
}

func TestEvaluateScenario(t *testing.T) {
	// EDD escalation plus high AML risk: 20 + 50 = 70 within thresholds -> High
	cfg := Compile(scoringConfig(
		domain.RiskRule{Name: "EddEscalated", Condition: "RequiresEdd == true", Category: "kyc", Priority: 10, Points: 20, Enabled: true},
		domain.RiskRule{Name: "HighAmlRisk", Condition: "AmlRiskLevel == High", Category: "aml", Priority: 20, Points: 50, Enabled: true},
	))

	factors := domain.InputFactors{RequiresEdd: true, AmlRiskLevel: "High"}
	total, trace := Evaluate(cfg, factors)

	assert.Equal(t, 70, total)
	require.Len(t, trace, 2)
	assert.True(t, trace[0].Fired)
	assert.Equal(t, 20, trace[0].PointsAwarded)
	assert.True(t, trace[1].Fired)
	assert.Equal(t, 50, trace[1].PointsAwarded)

	rating, ok := cfg.RatingFor(total)
	require.True(t, ok)
	assert.Equal(t, domain.RiskRatingHigh, rating)
}

func TestEvaluateDisabledRulesNeverContribute(t *testing.T) {
	cfg := Compile(scoringConfig(
		domain.RiskRule{Name: "Disabled", Condition: "RequiresEdd == true", Points: 99, Enabled: false},
		domain.RiskRule{Name: "Enabled", Condition: "RequiresEdd == true", Points: 10, Enabled: true},
	))

	total, trace := Evaluate(cfg, domain.InputFactors{RequiresEdd: true})

	assert.Equal(t, 10, total)
	// Disabled rules do not even appear in the trace
	require.Len(t, trace, 1)
	assert.Equal(t, "Enabled", trace[0].RuleName)
}

func TestEvaluateClampsToMaxScore(t *testing.T) {
	cfg := Compile(scoringConfig(
		domain.RiskRule{Name: "A", Condition: "IsPep == true", Points: 80, Enabled: true},
		domain.RiskRule{Name: "B", Condition: "HasSanctionsHit == true", Points: 80, Enabled: true},
	))

	total, _ := Evaluate(cfg, domain.InputFactors{IsPep: true, HasSanctionsHit: true})

	assert.Equal(t, 100, total)
}

func TestEvaluateOrderingIsDeterministic(t *testing.T) {
	cfg := Compile(scoringConfig(
		domain.RiskRule{Name: "Zeta", Condition: "IsPep == true", Priority: 5, Points: 1, Enabled: true},
		domain.RiskRule{Name: "Alpha", Condition: "IsPep == true", Priority: 5, Points: 1, Enabled: true},
		domain.RiskRule{Name: "First", Condition: "IsPep == true", Priority: 1, Points: 1, Enabled: true},
	))

	_, trace := Evaluate(cfg, domain.InputFactors{IsPep: true})

	require.Len(t, trace, 3)
	assert.Equal(t, "First", trace[0].RuleName)
	assert.Equal(t, "Alpha", trace[1].RuleName)
	assert.Equal(t, "Zeta", trace[2].RuleName)
}

func TestEvaluateMalformedRuleDegradesLocally(t *testing.T) {
	cfg := Compile(scoringConfig(
		domain.RiskRule{Name: "Broken", Condition: "ClientAge >= 21", Priority: 1, Points: 50, Enabled: true},
		domain.RiskRule{Name: "Healthy", Condition: "ClientAge > 18", Priority: 2, Points: 15, Enabled: true},
	))

	total, trace := Evaluate(cfg, domain.InputFactors{ClientAge: 30})

	assert.Equal(t, 15, total)
	require.Len(t, trace, 2)
	assert.False(t, trace[0].Fired)
	assert.NotEmpty(t, trace[0].Error)
	assert.Zero(t, trace[0].PointsAwarded)
	assert.True(t, trace[1].Fired)
}

func TestEvaluateUnknownFieldDegradesLocally(t *testing.T) {
	cfg := Compile(scoringConfig(
		domain.RiskRule{Name: "Ghost", Condition: "NotAFactor == true", Points: 50, Enabled: true},
	))

	total, trace := Evaluate(cfg, domain.InputFactors{})

	assert.Equal(t, 0, total)
	require.Len(t, trace, 1)
	assert.NotEmpty(t, trace[0].Error)
}

func TestEvaluateMonotonicInFiredRules(t *testing.T) {
	cfg := Compile(scoringConfig(
		domain.RiskRule{Name: "Pep", Condition: "IsPep == true", Points: 30, Enabled: true},
		domain.RiskRule{Name: "Sanctions", Condition: "HasSanctionsHit == true", Points: 40, Enabled: true},
		domain.RiskRule{Name: "Edd", Condition: "RequiresEdd == true", Points: 20, Enabled: true},
	))

	prev := -1
	for _, factors := range []domain.InputFactors{
		{},
		{IsPep: true},
		{IsPep: true, RequiresEdd: true},
		{IsPep: true, RequiresEdd: true, HasSanctionsHit: true},
	} {
		total, _ := Evaluate(cfg, factors)
		assert.GreaterOrEqual(t, total, prev)
		assert.LessOrEqual(t, total, 100)
		prev = total
	}
}

func TestRatingFallback(t *testing.T) {
	assert.Equal(t, domain.RiskRatingLow, FallbackRating(0))
	assert.Equal(t, domain.RiskRatingLow, FallbackRating(25))
	assert.Equal(t, domain.RiskRatingMedium, FallbackRating(26))
	assert.Equal(t, domain.RiskRatingMedium, FallbackRating(50))
	assert.Equal(t, domain.RiskRatingHigh, FallbackRating(51))

	// A threshold table with a hole falls back
	cfg := Compile(&domain.ScoringConfig{
		MaxScore: 100,
		Thresholds: []domain.RatingThreshold{
			{Min: 0, Max: 10, Rating: domain.RiskRatingLow},
		},
	})
	_, ok := cfg.RatingFor(55)
	assert.False(t, ok)
}
