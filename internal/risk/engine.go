// ==============================================================================
// RISK ENGINE - internal/risk/engine.go
// ==============================================================================
// Computes a client's risk profile: active scoring configuration, input
// factors, rule evaluation, score-to-rating mapping and the versioned
// supersede-then-insert write. Every profile records the configuration
// version/checksum, the factors and the full execution trace so any historic
// score can be explained.
// ==============================================================================

package risk

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"onboard/internal/domain"
	"onboard/internal/rules"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/metrics"
)

// ConfigSource supplies the active compiled scoring configuration.
type ConfigSource interface {
	Current(ctx context.Context) (*rules.Config, error)
	Fallback() *rules.Config
}

// ProfileRepository persists versioned risk profiles. SupersedeAndInsert
// closes the current profile and writes the new one in a single transaction,
// locking the client's current row so concurrent computations serialize.
type ProfileRepository interface {
	SupersedeAndInsert(ctx context.Context, profile *domain.RiskProfile, supersededReason string) error
	FindCurrentByClientID(ctx context.Context, clientID uuid.UUID) (*domain.RiskProfile, error)
	FindHistoryByClientID(ctx context.Context, clientID uuid.UUID) ([]*domain.RiskProfile, error)
}

// ClientRepository is the slice of client persistence the engine reads.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
}

// StatusRepository reads the client's latest onboarding record.
type StatusRepository interface {
	FindLatestByClientID(ctx context.Context, clientID uuid.UUID) (*domain.KYCStatus, error)
}

// ScreeningRepository reads the client's latest screening outcome.
type ScreeningRepository interface {
	FindLatestByClientID(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error)
}

// Auditor records audit events without blocking the computation.
type Auditor interface {
	Record(action, entityType, entityID, actor string, eventData map[string]interface{})
}

// Engine implements risk computation.
type Engine struct {
	configs    ConfigSource
	profiles   ProfileRepository
	clients    ClientRepository
	statuses   StatusRepository
	screenings ScreeningRepository
	audit      Auditor
	metrics    *metrics.Metrics
	logger     logger.Logger
}

func NewEngine(
	configs ConfigSource,
	profiles ProfileRepository,
	clients ClientRepository,
	statuses StatusRepository,
	screenings ScreeningRepository,
	audit Auditor,
	m *metrics.Metrics,
	log logger.Logger,
) *Engine {
	return &Engine{
		configs:    configs,
		profiles:   profiles,
		clients:    clients,
		statuses:   statuses,
		screenings: screenings,
		audit:      audit,
		metrics:    m,
		logger:     log,
	}
}

// ComputeRisk runs a full computation against the active configuration.
// Configuration unavailability aborts with no side effects; there is no
// silent fallback to the built-in rule set.
func (e *Engine) ComputeRisk(ctx context.Context, clientID uuid.UUID, actor, reason string) (*domain.RiskProfile, error) {
	cfg, err := e.configs.Current(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "risk computation aborted")
	}
	return e.compute(ctx, clientID, actor, reason, cfg)
}

// ComputeRiskFallback runs a computation against the built-in fallback
// configuration. This is the deliberate degradation path for when the config
// store is down and an assessment cannot wait.
func (e *Engine) ComputeRiskFallback(ctx context.Context, clientID uuid.UUID, actor, reason string) (*domain.RiskProfile, error) {
	return e.compute(ctx, clientID, actor, reason, e.configs.Fallback())
}

// CurrentProfile returns the client's current risk profile.
func (e *Engine) CurrentProfile(ctx context.Context, clientID uuid.UUID) (*domain.RiskProfile, error) {
	return e.profiles.FindCurrentByClientID(ctx, clientID)
}

// ProfileHistory returns all of the client's profiles, newest first.
func (e *Engine) ProfileHistory(ctx context.Context, clientID uuid.UUID) ([]*domain.RiskProfile, error) {
	return e.profiles.FindHistoryByClientID(ctx, clientID)
}

func (e *Engine) compute(ctx context.Context, clientID uuid.UUID, actor, reason string, cfg *rules.Config) (*domain.RiskProfile, error) {
	started := time.Now()

	factors, err := e.assembleFactors(ctx, clientID)
	if err != nil {
		e.metrics.ObserveComputation("", "error", time.Since(started))
		return nil, err
	}

	score, trace := rules.Evaluate(cfg, *factors)

	rating, ok := cfg.RatingFor(score)
	if !ok {
		rating = rules.FallbackRating(score)
		e.metrics.ObserveRatingFallback()
		e.logger.Warn("Score not covered by configured thresholds, fallback buckets applied", map[string]interface{}{
			"client_id":      clientID,
			"score":          score,
			"rating":         rating,
			"config_version": cfg.Version,
		})
	}

	factorsJSON, err := json.Marshal(factors)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialize input factors")
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialize execution trace")
	}

	profile := &domain.RiskProfile{
		ID:             uuid.New(),
		ClientID:       clientID,
		Score:          score,
		Rating:         rating,
		ConfigVersion:  cfg.Version,
		ConfigChecksum: cfg.Checksum,
		InputFactors:   factorsJSON,
		ExecutionTrace: traceJSON,
		IsCurrent:      true,
		ComputedAt:     time.Now().UTC(),
		ComputedBy:     actor,
	}

	supersededReason := reason
	if supersededReason == "" {
		supersededReason = domain.SupersededReasonNewAssessment
	}
	if err := e.profiles.SupersedeAndInsert(ctx, profile, supersededReason); err != nil {
		e.metrics.ObserveComputation(string(rating), "error", time.Since(started))
		return nil, apperrors.Wrap(err, "failed to persist risk profile")
	}

	e.metrics.ObserveComputation(string(rating), "success", time.Since(started))
	e.audit.Record("risk_computed", "risk_profile", profile.ID.String(), actor, map[string]interface{}{
		"client_id":      clientID.String(),
		"score":          score,
		"rating":         string(rating),
		"config_version": cfg.Version,
		"reason":         supersededReason,
	})

	e.logger.Info("Risk profile computed", map[string]interface{}{
		"client_id":      clientID,
		"profile_id":     profile.ID,
		"score":          score,
		"rating":         rating,
		"config_version": cfg.Version,
	})

	return profile, nil
}
