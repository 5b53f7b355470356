// ==============================================================================
// KYC HTTP HANDLER - internal/handler/kyc.go
// ==============================================================================
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"onboard/internal/domain"
	"onboard/internal/kyc"
	"onboard/internal/middleware"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/validator"
)

// KYCService is the lifecycle surface the KYC endpoints call.
type KYCService interface {
	StartCycle(ctx context.Context, clientID uuid.UUID, actor string) (*domain.KYCStatus, error)
	Status(ctx context.Context, clientID uuid.UUID) (*domain.KYCStatus, error)
	Transition(ctx context.Context, clientID uuid.UUID, req kyc.TransitionRequest) (*domain.KYCStatus, error)
}

// KYCHistory lists a client's past onboarding cycles.
type KYCHistory interface {
	FindHistoryByClientID(ctx context.Context, clientID uuid.UUID) ([]domain.KYCStatus, error)
}

// KYCHandler handles onboarding lifecycle endpoints.
type KYCHandler struct {
	service   KYCService
	history   KYCHistory
	validator *validator.Validator
	logger    logger.Logger
}

func NewKYCHandler(service KYCService, history KYCHistory, val *validator.Validator, log logger.Logger) *KYCHandler {
	return &KYCHandler{
		service:   service,
		history:   history,
		validator: val,
		logger:    log,
	}
}

// TransitionRequest is the wire shape of a lifecycle transition. Absent
// fields leave the stored values untouched; Approve stamps the caller's
// signature in the slot matching their role.
type TransitionRequest struct {
	TargetState string `json:"target_state" validate:"required,kycstate"`

	HasNRC              *bool `json:"has_nrc,omitempty"`
	HasProofOfAddress   *bool `json:"has_proof_of_address,omitempty"`
	HasPayslip          *bool `json:"has_payslip,omitempty"`
	HasEmploymentLetter *bool `json:"has_employment_letter,omitempty"`

	AMLScreeningComplete *bool   `json:"aml_screening_complete,omitempty"`
	EDDReason            *string `json:"edd_reason,omitempty"`

	Approve bool `json:"approve,omitempty"`
}

// StartCycle opens a new onboarding cycle.
func (h *KYCHandler) StartCycle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}
	actor := actorFromContext(r)

	status, err := h.service.StartCycle(r.Context(), clientID, actor)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrClientNotFound):
			respondError(w, http.StatusNotFound, "Client not found")
		case errors.Is(err, apperrors.ErrKYCCycleInProgress):
			respondError(w, http.StatusConflict, "A KYC cycle is already in progress")
		default:
			h.logger.Error("Failed to start KYC cycle", map[string]interface{}{
				"client_id": clientID,
				"error":     err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to start KYC cycle")
		}
		return
	}

	respondJSON(w, http.StatusCreated, status)
}

// Status returns the client's live onboarding record.
func (h *KYCHandler) Status(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	status, err := h.service.Status(r.Context(), clientID)
	if errors.Is(err, apperrors.ErrKYCStatusNotFound) {
		respondError(w, http.StatusNotFound, "No KYC cycle for client")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load KYC status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// Transition validates and applies a lifecycle transition.
func (h *KYCHandler) Transition(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	var req TransitionRequest
	if !parseAndValidateRequest(w, r, h.validator, &req) {
		return
	}

	actor := actorFromContext(r)
	serviceReq := kyc.TransitionRequest{
		TargetState:          domain.KYCState(req.TargetState),
		HasNRC:               req.HasNRC,
		HasProofOfAddress:    req.HasProofOfAddress,
		HasPayslip:           req.HasPayslip,
		HasEmploymentLetter:  req.HasEmploymentLetter,
		AMLScreeningComplete: req.AMLScreeningComplete,
		EDDReason:            req.EDDReason,
		Actor:                actor,
	}

	// Two-signature approval: the caller's role decides which slot they sign.
	if req.Approve {
		role, _ := middleware.RoleFromContext(r.Context())
		switch role {
		case domain.RoleComplianceOfficer:
			serviceReq.ComplianceApprovedBy = &actor
		case domain.RoleExecutive:
			serviceReq.ExecutiveApprovedBy = &actor
		default:
			respondError(w, http.StatusForbidden, "Approval requires a compliance or executive role")
			return
		}
	}

	status, err := h.service.Transition(r.Context(), clientID, serviceReq)
	if err != nil {
		var invalidErr *kyc.InvalidTransitionError
		var preErr *kyc.PreconditionError
		switch {
		case errors.As(err, &invalidErr):
			respondJSON(w, http.StatusConflict, map[string]interface{}{
				"error":  "Invalid transition",
				"from":   invalidErr.From,
				"to":     invalidErr.To,
				"reason": invalidErr.Reason,
			})
		case errors.As(err, &preErr):
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "Precondition not met",
				"code":   preErr.Code,
				"reason": preErr.Message,
			})
		case errors.Is(err, apperrors.ErrKYCStatusNotFound):
			respondError(w, http.StatusNotFound, "No KYC cycle for client")
		default:
			h.logger.Error("Failed to apply KYC transition", map[string]interface{}{
				"client_id": clientID,
				"target":    req.TargetState,
				"error":     err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to apply transition")
		}
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// History returns every onboarding cycle for the client.
func (h *KYCHandler) History(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	statuses, err := h.history.FindHistoryByClientID(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load KYC history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"cycles": statuses})
}

// actorFromContext resolves the acting staff identity for stamping and audit.
func actorFromContext(r *http.Request) string {
	if email, ok := middleware.EmailFromContext(r.Context()); ok {
		return email
	}
	return "system"
}
