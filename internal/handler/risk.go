package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"onboard/internal/domain"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/validator"
)

// RiskService is the computation surface the risk endpoints call.
type RiskService interface {
	ComputeRisk(ctx context.Context, clientID uuid.UUID, actor, reason string) (*domain.RiskProfile, error)
	ComputeRiskFallback(ctx context.Context, clientID uuid.UUID, actor, reason string) (*domain.RiskProfile, error)
	CurrentProfile(ctx context.Context, clientID uuid.UUID) (*domain.RiskProfile, error)
	ProfileHistory(ctx context.Context, clientID uuid.UUID) ([]*domain.RiskProfile, error)
}

// RiskHandler handles risk profile endpoints.
type RiskHandler struct {
	service   RiskService
	validator *validator.Validator
	logger    logger.Logger
}

func NewRiskHandler(service RiskService, val *validator.Validator, log logger.Logger) *RiskHandler {
	return &RiskHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

// ComputeRequest triggers a manual recomputation. Reason is required so the
// superseded profile records why it was replaced. UseFallback opts into the
// built-in configuration when the config store is down.
type ComputeRequest struct {
	Reason      string `json:"reason" validate:"required,notblank"`
	UseFallback bool   `json:"use_fallback,omitempty"`
}

// Compute runs a manual risk recomputation.
func (h *RiskHandler) Compute(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	var req ComputeRequest
	if !parseAndValidateRequest(w, r, h.validator, &req) {
		return
	}
	actor := actorFromContext(r)

	var (
		profile *domain.RiskProfile
		err     error
	)
	if req.UseFallback {
		profile, err = h.service.ComputeRiskFallback(r.Context(), clientID, actor, req.Reason)
	} else {
		profile, err = h.service.ComputeRisk(r.Context(), clientID, actor, req.Reason)
	}
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrClientNotFound), errors.Is(err, apperrors.ErrKYCStatusNotFound):
			respondError(w, http.StatusNotFound, "Client has no assessable record")
		case errors.Is(err, apperrors.ErrConfigUnavailable), errors.Is(err, apperrors.ErrNoActiveConfig):
			respondError(w, http.StatusServiceUnavailable, "Scoring configuration unavailable")
		default:
			h.logger.Error("Risk computation failed", map[string]interface{}{
				"client_id": clientID,
				"error":     err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Risk computation failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// Current returns the client's current risk profile.
func (h *RiskHandler) Current(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	profile, err := h.service.CurrentProfile(r.Context(), clientID)
	if errors.Is(err, apperrors.ErrRiskProfileNotFound) {
		respondError(w, http.StatusNotFound, "No risk profile for client")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load risk profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// History returns the client's full assessment history, newest first.
func (h *RiskHandler) History(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	profiles, err := h.service.ProfileHistory(r.Context(), clientID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load risk history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"profiles": profiles})
}
