// ==============================================================================
// FALLBACK SCORING CONFIGURATION - internal/riskconfig/fallback.go
// ==============================================================================
package riskconfig

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"onboard/internal/domain"
)

// FallbackVersion identifies the built-in configuration used when the store
// is unreachable and the caller explicitly opts into degraded scoring.
const FallbackVersion = "fallback-v1"

// FallbackConfig returns the conservative built-in rule set. It leans on the
// screening signals only, so a store outage still flags the dangerous cases.
func FallbackConfig() *domain.ScoringConfig {
	cfg := &domain.ScoringConfig{
		Version:  FallbackVersion,
		MaxScore: 100,
		Rules: []domain.RiskRule{
			{Name: "SanctionsHit", Condition: "HasSanctionsHit == true", Category: "screening", Priority: 10, Points: 80, Enabled: true},
			{Name: "PepFlag", Condition: "IsPep == true", Category: "screening", Priority: 20, Points: 50, Enabled: true},
			{Name: "EddEscalated", Condition: "RequiresEdd == true", Category: "kyc", Priority: 30, Points: 25, Enabled: true},
			{Name: "ScreeningIncomplete", Condition: "AmlComplete == false", Category: "screening", Priority: 40, Points: 20, Enabled: true},
		},
		Thresholds: []domain.RatingThreshold{
			{Min: 0, Max: 25, Rating: domain.RiskRatingLow},
			{Min: 26, Max: 50, Rating: domain.RiskRatingMedium},
			{Min: 51, Max: 100, Rating: domain.RiskRatingHigh},
		},
	}
	cfg.Checksum = Checksum(cfg)
	return cfg
}

// Checksum computes the sha256 of the configuration content, excluding the
// checksum field itself. Stored on every risk profile for provenance.
func Checksum(cfg *domain.ScoringConfig) string {
	shadow := *cfg
	shadow.Checksum = ""
	data, _ := json.Marshal(shadow)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
