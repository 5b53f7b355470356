// ==============================================================================
// KYC DOMAIN TYPES - internal/domain/kyc.go
// ==============================================================================
package domain

import (
	"time"

	"github.com/google/uuid"
)

// KYCState represents a client's position in the onboarding lifecycle.
type KYCState string

const (
	KYCStatePending     KYCState = "Pending"
	KYCStateInProgress  KYCState = "InProgress"
	KYCStateEDDRequired KYCState = "EDDRequired"
	KYCStateCompleted   KYCState = "Completed"
	KYCStateRejected    KYCState = "Rejected"
)

// IsTerminal reports whether the state has no outgoing transitions. A client
// may only start a new KYC cycle once the previous one reached a terminal
// state.
func (s KYCState) IsTerminal() bool {
	return s == KYCStateCompleted || s == KYCStateRejected
}

// Valid reports whether the state is one of the five lifecycle states.
func (s KYCState) Valid() bool {
	switch s {
	case KYCStatePending, KYCStateInProgress, KYCStateEDDRequired, KYCStateCompleted, KYCStateRejected:
		return true
	}
	return false
}

// KYCStatus is the live onboarding record for a client. One row per cycle;
// at most one non-terminal cycle per client.
type KYCStatus struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"client_id" db:"client_id"`

	CurrentState KYCState `json:"current_state" db:"current_state"`

	// Document completeness flags
	HasNRC              bool `json:"has_nrc" db:"has_nrc"`
	HasProofOfAddress   bool `json:"has_proof_of_address" db:"has_proof_of_address"`
	HasPayslip          bool `json:"has_payslip" db:"has_payslip"`
	HasEmploymentLetter bool `json:"has_employment_letter" db:"has_employment_letter"`

	AMLScreeningComplete bool   `json:"aml_screening_complete" db:"aml_screening_complete"`
	RequiresEDD          bool   `json:"requires_edd" db:"requires_edd"`
	EDDReason            string `json:"edd_reason,omitempty" db:"edd_reason"`

	// Two-signature approval, captured incrementally
	ComplianceApprovedBy *string `json:"compliance_approved_by,omitempty" db:"compliance_approved_by"`
	ExecutiveApprovedBy  *string `json:"executive_approved_by,omitempty" db:"executive_approved_by"`

	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CompletedBy *string    `json:"completed_by,omitempty" db:"completed_by"`
	EscalatedAt *time.Time `json:"escalated_at,omitempty" db:"escalated_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DocumentCount returns the number of document flags currently set.
func (s *KYCStatus) DocumentCount() int {
	n := 0
	for _, present := range []bool{s.HasNRC, s.HasProofOfAddress, s.HasPayslip, s.HasEmploymentLetter} {
		if present {
			n++
		}
	}
	return n
}

// DocumentsComplete reports whether the completion criteria are met:
// NRC and proof of address, plus at least one income document.
func (s *KYCStatus) DocumentsComplete() bool {
	return s.HasNRC && s.HasProofOfAddress && (s.HasPayslip || s.HasEmploymentLetter)
}
