// ==============================================================================
// KYC SERVICE - internal/kyc/service.go
// ==============================================================================
// Drives the onboarding lifecycle: cycle creation, transition execution under
// a per-client row lock, and the downstream triggers (screening, risk
// recomputation, audit) that fire on relevant transitions.
// ==============================================================================

package kyc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"onboard/internal/domain"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/metrics"
)

// Tx is the unit-of-work handle repositories hand back. The postgres
// implementation wraps *sqlx.Tx.
type Tx interface {
	Commit() error
	Rollback() error
}

// Repository is the persistence interface for onboarding records.
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	Create(ctx context.Context, status *domain.KYCStatus) error
	FindLatestByClientID(ctx context.Context, clientID uuid.UUID) (*domain.KYCStatus, error)
	// FindLatestForUpdate locks the client's live row for the duration of the
	// transaction, serializing concurrent transition requests.
	FindLatestForUpdate(ctx context.Context, tx Tx, clientID uuid.UUID) (*domain.KYCStatus, error)
	Update(ctx context.Context, tx Tx, status *domain.KYCStatus) error
}

// ClientRepository is the slice of client persistence the service needs.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
}

// RiskComputer recomputes a client's risk profile. Implemented by the risk
// engine.
type RiskComputer interface {
	ComputeRisk(ctx context.Context, clientID uuid.UUID, actor, reason string) (*domain.RiskProfile, error)
}

// Screener runs AML screening for a client. Implemented by the screening
// service.
type Screener interface {
	Screen(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error)
}

// Auditor records audit events. Calls never block or fail the business flow.
type Auditor interface {
	Record(action, entityType, entityID, actor string, eventData map[string]interface{})
}

// Service implements the KYC lifecycle operations.
type Service struct {
	statuses Repository
	clients  ClientRepository
	risk     RiskComputer
	screener Screener
	audit    Auditor
	metrics  *metrics.Metrics
	logger   logger.Logger
}

func NewService(
	statuses Repository,
	clients ClientRepository,
	risk RiskComputer,
	screener Screener,
	audit Auditor,
	m *metrics.Metrics,
	log logger.Logger,
) *Service {
	return &Service{
		statuses: statuses,
		clients:  clients,
		risk:     risk,
		screener: screener,
		audit:    audit,
		metrics:  m,
		logger:   log,
	}
}

// StartCycle opens a new onboarding cycle for the client. A new cycle is only
// allowed when the client has no cycle yet or the previous one is terminal.
func (s *Service) StartCycle(ctx context.Context, clientID uuid.UUID, actor string) (*domain.KYCStatus, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, apperrors.Wrap(err, "failed to load client")
	}

	existing, err := s.statuses.FindLatestByClientID(ctx, clientID)
	if err != nil && err != apperrors.ErrKYCStatusNotFound {
		return nil, apperrors.Wrap(err, "failed to load kyc status")
	}
	if existing != nil && !existing.CurrentState.IsTerminal() {
		return nil, apperrors.ErrKYCCycleInProgress
	}

	now := time.Now().UTC()
	status := &domain.KYCStatus{
		ID:           uuid.New(),
		ClientID:     clientID,
		CurrentState: domain.KYCStatePending,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, apperrors.Wrap(err, "failed to create kyc status")
	}

	s.audit.Record("kyc_cycle_started", "kyc_status", status.ID.String(), actor, map[string]interface{}{
		"client_id": clientID.String(),
	})

	s.logger.Info("KYC cycle started", map[string]interface{}{
		"client_id": clientID,
		"status_id": status.ID,
		"actor":     actor,
	})

	return status, nil
}

// Status returns the client's latest onboarding record.
func (s *Service) Status(ctx context.Context, clientID uuid.UUID) (*domain.KYCStatus, error) {
	return s.statuses.FindLatestByClientID(ctx, clientID)
}

// Transition validates and applies a lifecycle transition. The read-validate-
// write sequence runs inside one transaction with the status row locked, so
// two concurrent requests for the same client serialize instead of losing an
// update. All supplied field updates persist together with the state change.
func (s *Service) Transition(ctx context.Context, clientID uuid.UUID, req TransitionRequest) (*domain.KYCStatus, error) {
	tx, err := s.statuses.Begin(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to begin transaction")
	}

	status, err := s.statuses.FindLatestForUpdate(ctx, tx, clientID)
	if err != nil {
		_ = tx.Rollback()
		return nil, apperrors.Wrap(err, "failed to load kyc status")
	}

	fromState := status.CurrentState
	if err := Apply(status, req, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		s.metrics.ObserveTransition(string(fromState), string(req.TargetState), "rejected")
		return nil, err
	}

	if err := s.statuses.Update(ctx, tx, status); err != nil {
		_ = tx.Rollback()
		return nil, apperrors.Wrap(err, "failed to persist kyc status")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(err, "failed to commit kyc transition")
	}

	s.metrics.ObserveTransition(string(fromState), string(status.CurrentState), "applied")
	s.audit.Record("kyc_transition", "kyc_status", status.ID.String(), req.Actor, map[string]interface{}{
		"client_id": clientID.String(),
		"from":      string(fromState),
		"to":        string(status.CurrentState),
	})

	s.logger.Info("KYC transition applied", map[string]interface{}{
		"client_id": clientID,
		"from":      fromState,
		"to":        status.CurrentState,
		"actor":     req.Actor,
	})

	s.runTriggers(ctx, clientID, status, req.Actor)

	return status, nil
}

// runTriggers fires the downstream effects hanging off specific transitions.
// The transition itself has already committed; trigger failures are logged
// and surfaced through the audit trail, not bubbled to the caller.
func (s *Service) runTriggers(ctx context.Context, clientID uuid.UUID, status *domain.KYCStatus, actor string) {
	switch status.CurrentState {
	case domain.KYCStateInProgress:
		if s.screener == nil {
			return
		}
		if _, err := s.screener.Screen(ctx, clientID); err != nil {
			s.logger.Error("AML screening trigger failed", map[string]interface{}{
				"client_id": clientID,
				"error":     err.Error(),
			})
		}

	case domain.KYCStateEDDRequired, domain.KYCStateCompleted:
		if s.risk == nil {
			return
		}
		reason := "KycTransition:" + string(status.CurrentState)
		if _, err := s.risk.ComputeRisk(ctx, clientID, actor, reason); err != nil {
			s.logger.Error("Risk recomputation trigger failed", map[string]interface{}{
				"client_id": clientID,
				"state":     status.CurrentState,
				"error":     err.Error(),
			})
		}
	}
}
