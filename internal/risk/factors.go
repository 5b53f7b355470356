package risk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"onboard/internal/domain"
	apperrors "onboard/pkg/errors"
)

// assembleFactors flattens the client record, the latest onboarding status
// and the latest screening outcome into the identifiers the rule grammar can
// reference. A missing screening result is a valid state (screening not yet
// run), not an assembly failure; client and status loads must succeed.
func (e *Engine) assembleFactors(ctx context.Context, clientID uuid.UUID) (*domain.InputFactors, error) {
	client, err := e.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to assemble input factors")
	}
	status, err := e.statuses.FindLatestByClientID(ctx, clientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to assemble input factors")
	}

	factors := &domain.InputFactors{
		KycComplete:           status.CurrentState == domain.KYCStateCompleted,
		KycState:              string(status.CurrentState),
		VerifiedDocumentCount: status.DocumentCount(),
		HasAllDocuments:       status.DocumentsComplete(),
		RequiresEdd:           status.RequiresEDD,
		ClientAge:             client.Age(time.Now().UTC()),
		Province:              client.Province,
		HasEmployer:           client.EmployerName != "",
		SourceOfFunds:         client.SourceOfFunds,
		DeclaredMonthlyIncome: client.DeclaredMonthlyIncome,
	}

	screening, err := e.screenings.FindLatestByClientID(ctx, clientID)
	switch err {
	case nil:
		factors.IsPep = screening.IsPep
		factors.HasSanctionsHit = screening.HasSanctionsHit
		factors.AmlRiskLevel = screening.RiskLevel
		factors.AmlComplete = screening.Complete
	case apperrors.ErrScreeningNotFound:
		// Screening has not run yet: AML factors stay at their zero values.
	default:
		return nil, apperrors.Wrap(err, "failed to assemble input factors")
	}

	return factors, nil
}
