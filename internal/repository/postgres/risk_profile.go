package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onboard/internal/domain"
	"onboard/pkg/errors"
)

// RiskProfileRepository persists the append-only, versioned risk profiles.
type RiskProfileRepository struct {
	db *sqlx.DB
}

func NewRiskProfileRepository(db *sqlx.DB) *RiskProfileRepository {
	return &RiskProfileRepository{db: db}
}

// SupersedeAndInsert closes the client's current profile and inserts the new
// one in a single transaction. The current row is locked first, so two
// concurrent computations for the same client serialize: the loser supersedes
// the winner's row instead of both superseding the same one.
func (r *RiskProfileRepository) SupersedeAndInsert(ctx context.Context, profile *domain.RiskProfile, supersededReason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery := `
		SELECT id FROM compliance_schema.risk_profiles
		WHERE client_id = $1 AND is_current = true
		FOR UPDATE
	`

	var currentID uuid.UUID
	err = tx.GetContext(ctx, &currentID, lockQuery, profile.ClientID)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "failed to lock current risk profile")
	}

	if err == nil {
		supersedeQuery := `
			UPDATE compliance_schema.risk_profiles
			SET is_current = false, superseded_at = $1, superseded_reason = $2
			WHERE id = $3
		`
		if _, err := tx.ExecContext(ctx, supersedeQuery, time.Now().UTC(), supersededReason, currentID); err != nil {
			return errors.Wrap(err, "failed to supersede risk profile")
		}
	}

	insertQuery := `
		INSERT INTO compliance_schema.risk_profiles (
			id, client_id, score, rating, config_version, config_checksum,
			input_factors, execution_trace, is_current, superseded_at,
			superseded_reason, computed_at, computed_by
		) VALUES (
			:id, :client_id, :score, :rating, :config_version, :config_checksum,
			:input_factors, :execution_trace, :is_current, :superseded_at,
			:superseded_reason, :computed_at, :computed_by
		)
	`
	if _, err := tx.NamedExecContext(ctx, insertQuery, profile); err != nil {
		return errors.Wrap(err, "failed to insert risk profile")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit risk profile")
	}

	return nil
}

func (r *RiskProfileRepository) FindCurrentByClientID(ctx context.Context, clientID uuid.UUID) (*domain.RiskProfile, error) {
	query := `
		SELECT * FROM compliance_schema.risk_profiles
		WHERE client_id = $1 AND is_current = true
	`

	var profile domain.RiskProfile
	err := r.db.GetContext(ctx, &profile, query, clientID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrRiskProfileNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get risk profile")
	}

	return &profile, nil
}

func (r *RiskProfileRepository) FindHistoryByClientID(ctx context.Context, clientID uuid.UUID) ([]*domain.RiskProfile, error) {
	query := `
		SELECT * FROM compliance_schema.risk_profiles
		WHERE client_id = $1
		ORDER BY computed_at DESC
	`

	var profiles []*domain.RiskProfile
	err := r.db.SelectContext(ctx, &profiles, query, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list risk profiles")
	}

	return profiles, nil
}
