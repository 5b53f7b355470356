// ==============================================================================
// KYC LIFECYCLE ERRORS - internal/kyc/errors.go
// ==============================================================================
package kyc

import (
	"fmt"

	"onboard/internal/domain"
)

// InvalidTransitionError reports a transition the lifecycle table does not
// allow. It carries the attempted states so the API layer can echo them back.
type InvalidTransitionError struct {
	From   domain.KYCState
	To     domain.KYCState
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// Precondition codes surfaced to callers.
const (
	PreconditionDocumentsRequired   = "documents_required"
	PreconditionDocumentsIncomplete = "documents_incomplete"
	PreconditionAMLIncomplete       = "aml_incomplete"
	PreconditionEDDReasonRequired   = "edd_reason_required"
)

// PreconditionError reports a business precondition that blocks an otherwise
// valid transition. No fields are mutated when one is raised.
type PreconditionError struct {
	Code    string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition %s: %s", e.Code, e.Message)
}
