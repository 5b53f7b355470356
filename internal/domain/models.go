// ==============================================================================
// SHARED DOMAIN MODELS - internal/domain/models.go
// ==============================================================================
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is the onboarding subject.
type Client struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	FullName              string          `json:"full_name" db:"full_name"`
	DateOfBirth           time.Time       `json:"date_of_birth" db:"date_of_birth"`
	Province              string          `json:"province" db:"province"`
	EmployerName          string          `json:"employer_name,omitempty" db:"employer_name"`
	SourceOfFunds         string          `json:"source_of_funds,omitempty" db:"source_of_funds"`
	DeclaredMonthlyIncome decimal.Decimal `json:"declared_monthly_income" db:"declared_monthly_income"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// Age returns the client's age in whole years at the given instant.
func (c *Client) Age(at time.Time) int {
	years := at.Year() - c.DateOfBirth.Year()
	anniversary := c.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

// ScreeningResult is the persisted outcome of AML screening for a client.
type ScreeningResult struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ClientID        uuid.UUID `json:"client_id" db:"client_id"`
	IsPep           bool      `json:"is_pep" db:"is_pep"`
	HasSanctionsHit bool      `json:"has_sanctions_hit" db:"has_sanctions_hit"`
	RiskLevel       string    `json:"risk_level" db:"risk_level"`
	MatchedName     string    `json:"matched_name,omitempty" db:"matched_name"`
	MatchConfidence int       `json:"match_confidence" db:"match_confidence"`
	MatchType       string    `json:"match_type,omitempty" db:"match_type"`
	Complete        bool      `json:"complete" db:"complete"`
	ScreenedAt      time.Time `json:"screened_at" db:"screened_at"`
}

// AuditLog is one persisted audit trail entry.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Actor      string          `json:"actor" db:"actor"`
	EventData  json.RawMessage `json:"event_data,omitempty" db:"event_data"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// User is a compliance staff account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	TOTPSecret   *string   `json:"-" db:"totp_secret"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Staff roles used for the two-signature approval.
const (
	RoleComplianceOfficer = "compliance_officer"
	RoleExecutive         = "executive"
)
