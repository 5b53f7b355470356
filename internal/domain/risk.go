// ==============================================================================
// RISK DOMAIN TYPES - internal/domain/risk.go
// ==============================================================================
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskRating buckets a numeric score for human consumption.
type RiskRating string

const (
	RiskRatingLow    RiskRating = "Low"
	RiskRatingMedium RiskRating = "Medium"
	RiskRatingHigh   RiskRating = "High"
)

// RiskProfile is one versioned risk assessment for a client. Profiles are
// append-only; a new computation supersedes the previous current row in the
// same unit of work (SCD-2).
type RiskProfile struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"client_id" db:"client_id"`

	Score  int        `json:"score" db:"score"`
	Rating RiskRating `json:"rating" db:"rating"`

	// Configuration provenance
	ConfigVersion  string `json:"config_version" db:"config_version"`
	ConfigChecksum string `json:"config_checksum" db:"config_checksum"`

	// Serialized snapshots kept for the defensible history
	InputFactors   json.RawMessage `json:"input_factors" db:"input_factors"`
	ExecutionTrace json.RawMessage `json:"execution_trace" db:"execution_trace"`

	IsCurrent        bool       `json:"is_current" db:"is_current"`
	SupersededAt     *time.Time `json:"superseded_at,omitempty" db:"superseded_at"`
	SupersededReason *string    `json:"superseded_reason,omitempty" db:"superseded_reason"`

	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
	ComputedBy string    `json:"computed_by" db:"computed_by"`
}

// SupersededReasonNewAssessment is the default reason recorded when a fresh
// computation replaces the current profile without an explicit caller reason.
const SupersededReasonNewAssessment = "NewAssessment"

// RiskRule is a single configurable scoring rule. Name is the unique key.
type RiskRule struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Category  string `json:"category"`
	Priority  int    `json:"priority"`
	Points    int    `json:"points"`
	Enabled   bool   `json:"enabled"`
}

// RatingThreshold maps an inclusive score range to a rating.
type RatingThreshold struct {
	Min    int        `json:"min"`
	Max    int        `json:"max"`
	Rating RiskRating `json:"rating"`
}

// ScoringConfig is an immutable snapshot of the rule set as authored by
// compliance staff. Configurations are swapped wholesale, never mutated.
type ScoringConfig struct {
	Version    string            `json:"version"`
	Checksum   string            `json:"checksum"`
	Rules      []RiskRule        `json:"rules"`
	Thresholds []RatingThreshold `json:"thresholds"`
	MaxScore   int               `json:"max_score"`
}

// InputFactors is the flattened record the rule evaluator reads. Field names
// here are the identifiers available to condition expressions.
type InputFactors struct {
	KycComplete           bool            `json:"KycComplete"`
	KycState              string          `json:"KycState"`
	AmlRiskLevel          string          `json:"AmlRiskLevel"`
	IsPep                 bool            `json:"IsPep"`
	HasSanctionsHit       bool            `json:"HasSanctionsHit"`
	AmlComplete           bool            `json:"AmlComplete"`
	VerifiedDocumentCount int             `json:"VerifiedDocumentCount"`
	HasAllDocuments       bool            `json:"HasAllDocuments"`
	ClientAge             int             `json:"ClientAge"`
	Province              string          `json:"Province"`
	HasEmployer           bool            `json:"HasEmployer"`
	SourceOfFunds         string          `json:"SourceOfFunds"`
	RequiresEdd           bool            `json:"RequiresEdd"`
	DeclaredMonthlyIncome decimal.Decimal `json:"DeclaredMonthlyIncome"`
}

// Fields exposes the factors by identifier for condition evaluation. Decimal
// factors are exposed as their integer floor so the narrow integer grammar
// can compare against them.
func (f InputFactors) Fields() map[string]interface{} {
	return map[string]interface{}{
		"KycComplete":           f.KycComplete,
		"KycState":              f.KycState,
		"AmlRiskLevel":          f.AmlRiskLevel,
		"IsPep":                 f.IsPep,
		"HasSanctionsHit":       f.HasSanctionsHit,
		"AmlComplete":           f.AmlComplete,
		"VerifiedDocumentCount": f.VerifiedDocumentCount,
		"HasAllDocuments":       f.HasAllDocuments,
		"ClientAge":             f.ClientAge,
		"Province":              f.Province,
		"HasEmployer":           f.HasEmployer,
		"SourceOfFunds":         f.SourceOfFunds,
		"RequiresEdd":           f.RequiresEdd,
		"DeclaredMonthlyIncome": int(f.DeclaredMonthlyIncome.IntPart()),
	}
}
