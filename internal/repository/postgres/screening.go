package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onboard/internal/domain"
	"onboard/pkg/errors"
)

type ScreeningRepository struct {
	db *sqlx.DB
}

func NewScreeningRepository(db *sqlx.DB) *ScreeningRepository {
	return &ScreeningRepository{db: db}
}

func (r *ScreeningRepository) Create(ctx context.Context, result *domain.ScreeningResult) error {
	query := `
		INSERT INTO compliance_schema.screening_results (
			id, client_id, is_pep, has_sanctions_hit, risk_level,
			matched_name, match_confidence, match_type, complete, screened_at
		) VALUES (
			:id, :client_id, :is_pep, :has_sanctions_hit, :risk_level,
			:matched_name, :match_confidence, :match_type, :complete, :screened_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, result)
	if err != nil {
		return errors.Wrap(err, "failed to create screening result")
	}

	return nil
}

func (r *ScreeningRepository) FindLatestByClientID(ctx context.Context, clientID uuid.UUID) (*domain.ScreeningResult, error) {
	query := `
		SELECT * FROM compliance_schema.screening_results
		WHERE client_id = $1
		ORDER BY screened_at DESC
		LIMIT 1
	`

	var result domain.ScreeningResult
	err := r.db.GetContext(ctx, &result, query, clientID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrScreeningNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get screening result")
	}

	return &result, nil
}
