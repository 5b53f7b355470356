// ==============================================================================
// AML SCREENING SERVICE - internal/screening/service.go
// ==============================================================================
// Screens a client against sanction and PEP watchlists using the name matcher.
// The list source is injected so external providers can replace the built-in
// seed list without touching screening logic.
// ==============================================================================

package screening

import (
	"context"
	"time"

	"github.com/google/uuid"

	"onboard/internal/domain"
	"onboard/internal/matching"
	apperrors "onboard/pkg/errors"
	"onboard/pkg/logger"
	"onboard/pkg/metrics"
)

// ListedPerson is one watchlist entry.
type ListedPerson struct {
	Name         string
	Aliases      []string
	IsPep        bool
	IsSanctioned bool
	// RiskLevel is the list publisher's own severity for this entry.
	RiskLevel string
}

// ListProvider returns watchlist candidates for a name. Implementations may
// pre-filter; returning the whole list is also valid.
type ListProvider interface {
	Find(ctx context.Context, name string) ([]ListedPerson, error)
}

// Repository persists screening outcomes.
type Repository interface {
	Create(ctx context.Context, result *domain.ScreeningResult) error
	FindLatestByClientID(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error)
}

// ClientRepository is the slice of client persistence screening reads.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
}

// Auditor records audit events without blocking the screening flow.
type Auditor interface {
	Record(action, entityType, entityID, actor string, eventData map[string]interface{})
}

// Service implements AML screening.
type Service struct {
	provider ListProvider
	results  Repository
	clients  ClientRepository
	audit    Auditor
	metrics  *metrics.Metrics
	logger   logger.Logger
}

func NewService(provider ListProvider, results Repository, clients ClientRepository, audit Auditor, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		provider: provider,
		results:  results,
		clients:  clients,
		audit:    audit,
		metrics:  m,
		logger:   log,
	}
}

// Screen compares the client's name against every watchlist candidate and
// keeps the highest-confidence match. The persisted result carries the PEP
// and sanctions flags of the best-matching entry when the match clears the
// confidence threshold.
func (s *Service) Screen(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load client for screening")
	}

	candidates, err := s.provider.Find(ctx, client.FullName)
	if err != nil {
		return nil, apperrors.Wrap(err, "watchlist lookup failed")
	}

	var (
		best      matching.MatchResult
		bestEntry *ListedPerson
	)
	best.MatchType = matching.MatchTypeNoMatch
	for i := range candidates {
		result := matching.Match(client.FullName, candidates[i].Name, candidates[i].Aliases)
		if result.Confidence > best.Confidence {
			best = result
			bestEntry = &candidates[i]
		}
	}

	outcome := &domain.ScreeningResult{
		ID:         uuid.New(),
		ClientID:   clientID,
		Complete:   true,
		ScreenedAt: time.Now().UTC(),
	}
	if bestEntry != nil && best.IsMatch() {
		outcome.IsPep = bestEntry.IsPep
		outcome.HasSanctionsHit = bestEntry.IsSanctioned
		outcome.MatchedName = best.MatchedName
		outcome.MatchConfidence = best.Confidence
		outcome.MatchType = string(best.MatchType)
		outcome.RiskLevel = riskLevelFor(bestEntry)
	} else {
		outcome.RiskLevel = "Low"
		outcome.MatchType = string(matching.MatchTypeNoMatch)
	}

	if err := s.results.Create(ctx, outcome); err != nil {
		return nil, apperrors.Wrap(err, "failed to persist screening result")
	}

	s.metrics.ObserveScreeningMatch(outcome.MatchType)
	s.audit.Record("client_screened", "screening_result", outcome.ID.String(), "system", map[string]interface{}{
		"client_id":         clientID.String(),
		"is_pep":            outcome.IsPep,
		"has_sanctions_hit": outcome.HasSanctionsHit,
		"match_type":        outcome.MatchType,
		"match_confidence":  outcome.MatchConfidence,
	})

	s.logger.Info("Client screened", map[string]interface{}{
		"client_id":  clientID,
		"match_type": outcome.MatchType,
		"confidence": outcome.MatchConfidence,
		"risk_level": outcome.RiskLevel,
	})

	return outcome, nil
}

// Latest returns the client's most recent screening result.
func (s *Service) Latest(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error) {
	return s.results.FindLatestByClientID(ctx, clientID)
}

// riskLevelFor maps a matched entry to a screening risk level. The list
// publisher's level wins when present.
func riskLevelFor(entry *ListedPerson) string {
	if entry.RiskLevel != "" {
		return entry.RiskLevel
	}
	if entry.IsSanctioned {
		return "High"
	}
	if entry.IsPep {
		return "Medium"
	}
	return "Low"
}
