package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"onboard/internal/domain"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
)

// ScreeningService is the surface the screening endpoints call.
type ScreeningService interface {
	Screen(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error)
	Latest(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error)
}

// ScreeningHandler handles AML screening endpoints.
type ScreeningHandler struct {
	service ScreeningService
	logger  logger.Logger
}

func NewScreeningHandler(service ScreeningService, log logger.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		service: service,
		logger:  log,
	}
}

// Screen runs a fresh watchlist screening for the client.
func (h *ScreeningHandler) Screen(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.service.Screen(r.Context(), clientID)
	if errors.Is(err, apperrors.ErrClientNotFound) {
		respondError(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		h.logger.Error("Screening failed", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Screening failed")
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// Latest returns the client's most recent screening outcome.
func (h *ScreeningHandler) Latest(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.service.Latest(r.Context(), clientID)
	if errors.Is(err, apperrors.ErrScreeningNotFound) {
		respondError(w, http.StatusNotFound, "Client has not been screened")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load screening result")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
