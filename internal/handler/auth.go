package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"onboard/internal/auth"
	"onboard/internal/domain"
	"onboard/internal/middleware"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/validator"
)

// AuthService is the staff authentication surface.
type AuthService interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.TokenResponse, error)
	CreateUser(ctx context.Context, req *auth.CreateUserRequest) (*domain.User, error)
	EnrollTOTP(ctx context.Context, userID uuid.UUID) (string, error)
}

// AuthHandler handles staff login and account administration.
type AuthHandler struct {
	service   AuthService
	validator *validator.Validator
	logger    logger.Logger
}

func NewAuthHandler(service AuthService, val *validator.Validator, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

// Login authenticates a staff member.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !parseAndValidateRequest(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTOTPRequired):
			respondError(w, http.StatusUnauthorized, "TOTP code required")
		case errors.Is(err, apperrors.ErrInvalidTOTP):
			respondError(w, http.StatusUnauthorized, "Invalid TOTP code")
		default:
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// CreateUser provisions a staff account. Restricted to executives by routing.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateUserRequest
	if !parseAndValidateRequest(w, r, h.validator, &req) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.Error("Failed to create staff user", map[string]interface{}{
			"email": req.Email,
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Could not create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// EnrollTOTP enables two-factor authentication for the caller.
func (h *AuthHandler) EnrollTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	url, err := h.service.EnrollTOTP(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enroll TOTP")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"otpauth_url": url})
}
