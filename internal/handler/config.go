package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"onboard/internal/domain"
	"onboard/internal/riskconfig"
	"onboard/internal/rules"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/validator"
)

// ConfigHolder is the live-configuration surface the config endpoints read.
type ConfigHolder interface {
	Current(ctx context.Context) (*rules.Config, error)
	Refresh(ctx context.Context) (*rules.Config, error)
}

// ConfigStore is the versioned-store surface the config endpoints write.
type ConfigStore interface {
	CreateVersion(ctx context.Context, cfg *domain.ScoringConfig, createdBy string) error
	ActivateVersion(ctx context.Context, version string) error
}

// ConfigHandler handles scoring configuration administration.
type ConfigHandler struct {
	holder    ConfigHolder
	store     ConfigStore
	validator *validator.Validator
	logger    logger.Logger
}

func NewConfigHandler(holder ConfigHolder, store ConfigStore, val *validator.Validator, log logger.Logger) *ConfigHandler {
	return &ConfigHandler{
		holder:    holder,
		store:     store,
		validator: val,
		logger:    log,
	}
}

// Current reports the active configuration: provenance plus the compiled
// rules, including any per-rule compile errors.
func (h *ConfigHandler) Current(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.holder.Current(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveConfig) {
			respondError(w, http.StatusNotFound, "No active scoring configuration")
			return
		}
		respondError(w, http.StatusServiceUnavailable, "Scoring configuration unavailable")
		return
	}

	type ruleView struct {
		Name         string `json:"name"`
		Condition    string `json:"condition"`
		Category     string `json:"category"`
		Priority     int    `json:"priority"`
		Points       int    `json:"points"`
		Enabled      bool   `json:"enabled"`
		CompileError string `json:"compile_error,omitempty"`
	}

	views := make([]ruleView, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		v := ruleView{
			Name:      rule.Name,
			Condition: rule.Condition,
			Category:  rule.Category,
			Priority:  rule.Priority,
			Points:    rule.Points,
			Enabled:   rule.Enabled,
		}
		if rule.ParseErr != nil {
			v.CompileError = rule.ParseErr.Error()
		}
		views = append(views, v)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":    cfg.Version,
		"checksum":   cfg.Checksum,
		"max_score":  cfg.MaxScore,
		"thresholds": cfg.Thresholds,
		"rules":      views,
	})
}

// CreateVersionRequest is a new, inactive configuration version.
type CreateVersionRequest struct {
	Version    string                   `json:"version" validate:"required,notblank"`
	Rules      []domain.RiskRule        `json:"rules" validate:"required,min=1,dive"`
	Thresholds []domain.RatingThreshold `json:"thresholds" validate:"required,min=1,dive"`
	MaxScore   int                      `json:"max_score" validate:"required,gt=0"`
}

// CreateVersion stores a new configuration version without activating it.
func (h *ConfigHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req CreateVersionRequest
	if !parseAndValidateRequest(w, r, h.validator, &req) {
		return
	}

	cfg := &domain.ScoringConfig{
		Version:    req.Version,
		Rules:      req.Rules,
		Thresholds: req.Thresholds,
		MaxScore:   req.MaxScore,
	}
	cfg.Checksum = riskconfig.Checksum(cfg)

	if err := h.store.CreateVersion(r.Context(), cfg, actorFromContext(r)); err != nil {
		h.logger.Error("Failed to create config version", map[string]interface{}{
			"version": req.Version,
			"error":   err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to create configuration version")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"version":  cfg.Version,
		"checksum": cfg.Checksum,
	})
}

// Activate makes a stored version active and hot-swaps the live snapshot.
func (h *ConfigHandler) Activate(w http.ResponseWriter, r *http.Request) {
	version := mux.Vars(r)["version"]

	if err := h.store.ActivateVersion(r.Context(), version); err != nil {
		if errors.Is(err, apperrors.ErrNoActiveConfig) {
			respondError(w, http.StatusNotFound, "Unknown configuration version")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to activate configuration")
		return
	}

	cfg, err := h.holder.Refresh(r.Context())
	if err != nil {
		// Activated in the store but the reload failed; the next refresh or
		// cache expiry will pick it up.
		h.logger.Error("Config activated but reload failed", map[string]interface{}{
			"version": version,
			"error":   err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Activated but reload failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"version":  cfg.Version,
		"checksum": cfg.Checksum,
	})
}

// Refresh bypasses the cache and reloads the active configuration.
func (h *ConfigHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.holder.Refresh(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Scoring configuration unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"version":  cfg.Version,
		"checksum": cfg.Checksum,
	})
}
