package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"onboard/internal/domain"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/validator"
)

// ClientStore is the persistence surface the client endpoints need.
type ClientStore interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Client, error)
}

// ClientHandler handles client registration and lookup.
type ClientHandler struct {
	store     ClientStore
	validator *validator.Validator
	logger    logger.Logger
}

func NewClientHandler(store ClientStore, val *validator.Validator, log logger.Logger) *ClientHandler {
	return &ClientHandler{
		store:     store,
		validator: val,
		logger:    log,
	}
}

// CreateClientRequest captures a new onboarding subject.
type CreateClientRequest struct {
	FullName              string `json:"full_name" validate:"required,notblank"`
	DateOfBirth           string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Province              string `json:"province" validate:"required"`
	EmployerName          string `json:"employer_name,omitempty"`
	SourceOfFunds         string `json:"source_of_funds,omitempty"`
	DeclaredMonthlyIncome string `json:"declared_monthly_income" validate:"required"`
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !parseAndValidateRequest(w, r, h.validator, &req) {
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date of birth")
		return
	}
	income, err := decimal.NewFromString(req.DeclaredMonthlyIncome)
	if err != nil || income.IsNegative() {
		respondError(w, http.StatusBadRequest, "Invalid declared monthly income")
		return
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:                    uuid.New(),
		FullName:              req.FullName,
		DateOfBirth:           dob,
		Province:              req.Province,
		EmployerName:          req.EmployerName,
		SourceOfFunds:         req.SourceOfFunds,
		DeclaredMonthlyIncome: income,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := h.store.Create(r.Context(), client); err != nil {
		h.logger.Error("Failed to create client", map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	respondJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFromPath(w, r)
	if !ok {
		return
	}

	client, err := h.store.FindByID(r.Context(), clientID)
	if err == apperrors.ErrClientNotFound {
		respondError(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	clients, err := h.store.FindAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
		"limit":   limit,
		"offset":  offset,
	})
}
