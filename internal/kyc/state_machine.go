// ==============================================================================
// KYC LIFECYCLE STATE MACHINE - internal/kyc/state_machine.go
// ==============================================================================
// Validates and applies onboarding state transitions. Preconditions are
// evaluated on the prospective merged record (existing values overridden by
// fields supplied in the request) before anything is mutated.
// ==============================================================================

package kyc

import (
	"strings"
	"time"

	"onboard/internal/domain"
)

// allowedTransitions is the lifecycle table. Terminal states have no entry.
var allowedTransitions = map[domain.KYCState][]domain.KYCState{
	domain.KYCStatePending:     {domain.KYCStateInProgress},
	domain.KYCStateInProgress:  {domain.KYCStateEDDRequired, domain.KYCStateCompleted, domain.KYCStateRejected},
	domain.KYCStateEDDRequired: {domain.KYCStateCompleted, domain.KYCStateRejected},
}

// CanTransition reports whether the lifecycle table allows from -> to, with a
// human-readable reason when it does not.
func CanTransition(from, to domain.KYCState) (bool, string) {
	if !from.Valid() {
		return false, "unknown current state " + string(from)
	}
	if !to.Valid() {
		return false, "unknown target state " + string(to)
	}
	if from.IsTerminal() {
		return false, string(from) + " is a terminal state"
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true, ""
		}
	}
	return false, "transition from " + string(from) + " to " + string(to) + " is not allowed"
}

// TransitionRequest carries the target state plus any field updates supplied
// with the transition. Nil pointers mean "leave as is"; supplied values are
// visible to precondition checks before anything persists.
type TransitionRequest struct {
	TargetState domain.KYCState

	HasNRC              *bool
	HasProofOfAddress   *bool
	HasPayslip          *bool
	HasEmploymentLetter *bool

	AMLScreeningComplete *bool
	EDDReason            *string

	ComplianceApprovedBy *string
	ExecutiveApprovedBy  *string

	Actor string
}

// merged returns a copy of the status with the request's field updates
// applied. The copy is what preconditions inspect; the live record is only
// written after every check passes.
func merged(status domain.KYCStatus, req TransitionRequest) domain.KYCStatus {
	if req.HasNRC != nil {
		status.HasNRC = *req.HasNRC
	}
	if req.HasProofOfAddress != nil {
		status.HasProofOfAddress = *req.HasProofOfAddress
	}
	if req.HasPayslip != nil {
		status.HasPayslip = *req.HasPayslip
	}
	if req.HasEmploymentLetter != nil {
		status.HasEmploymentLetter = *req.HasEmploymentLetter
	}
	if req.AMLScreeningComplete != nil {
		status.AMLScreeningComplete = *req.AMLScreeningComplete
	}
	if req.EDDReason != nil {
		status.EDDReason = *req.EDDReason
	}
	if req.ComplianceApprovedBy != nil {
		status.ComplianceApprovedBy = req.ComplianceApprovedBy
	}
	if req.ExecutiveApprovedBy != nil {
		status.ExecutiveApprovedBy = req.ExecutiveApprovedBy
	}
	return status
}

// checkPreconditions validates the business rules for entering the target
// state, evaluated on the prospective record.
func checkPreconditions(prospective domain.KYCStatus, target domain.KYCState) error {
	switch target {
	case domain.KYCStateInProgress:
		if prospective.DocumentCount() == 0 {
			return &PreconditionError{
				Code:    PreconditionDocumentsRequired,
				Message: "at least one document required",
			}
		}

	case domain.KYCStateCompleted:
		if !prospective.DocumentsComplete() {
			return &PreconditionError{
				Code:    PreconditionDocumentsIncomplete,
				Message: "completion requires NRC, proof of address, and a payslip or employment letter",
			}
		}
		if !prospective.AMLScreeningComplete {
			return &PreconditionError{
				Code:    PreconditionAMLIncomplete,
				Message: "completion requires AML screening to be complete",
			}
		}

	case domain.KYCStateEDDRequired:
		if strings.TrimSpace(prospective.EDDReason) == "" {
			return &PreconditionError{
				Code:    PreconditionEDDReasonRequired,
				Message: "escalation requires a non-blank EDD reason",
			}
		}
	}
	return nil
}

// Apply validates the transition and, if allowed, mutates the status in place:
// merged field updates, the new state, and the timestamps the target state
// stamps. The status is untouched when an error is returned.
func Apply(status *domain.KYCStatus, req TransitionRequest, now time.Time) error {
	ok, reason := CanTransition(status.CurrentState, req.TargetState)
	if !ok {
		return &InvalidTransitionError{From: status.CurrentState, To: req.TargetState, Reason: reason}
	}

	prospective := merged(*status, req)
	if err := checkPreconditions(prospective, req.TargetState); err != nil {
		return err
	}

	prospective.CurrentState = req.TargetState
	prospective.UpdatedAt = now

	switch req.TargetState {
	case domain.KYCStateEDDRequired:
		prospective.RequiresEDD = true
		escalated := now
		prospective.EscalatedAt = &escalated

	case domain.KYCStateCompleted:
		completed := now
		prospective.CompletedAt = &completed
		if req.Actor != "" {
			actor := req.Actor
			prospective.CompletedBy = &actor
		}

	}

	// Two-signature approval: stamped once both signatures are present.
	if req.TargetState == domain.KYCStateCompleted &&
		prospective.ComplianceApprovedBy != nil && prospective.ExecutiveApprovedBy != nil &&
		prospective.ApprovedAt == nil {
		approved := now
		prospective.ApprovedAt = &approved
	}

	*status = prospective
	return nil
}
