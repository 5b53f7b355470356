package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"onboard/internal/domain"
	"onboard/pkg/errors"
)

// ScoringConfigRepository is the versioned store behind the configuration
// holder. Each version is an immutable row; exactly one may be active.
type ScoringConfigRepository struct {
	db *sqlx.DB
}

func NewScoringConfigRepository(db *sqlx.DB) *ScoringConfigRepository {
	return &ScoringConfigRepository{db: db}
}

// configRow is the storage shape: rules and thresholds as JSONB documents.
type configRow struct {
	Version    string          `db:"version"`
	Checksum   string          `db:"checksum"`
	Rules      json.RawMessage `db:"rules"`
	Thresholds json.RawMessage `db:"thresholds"`
	MaxScore   int             `db:"max_score"`
	IsActive   bool            `db:"is_active"`
	CreatedAt  time.Time       `db:"created_at"`
	CreatedBy  string          `db:"created_by"`
}

// LoadActive returns the active configuration version.
func (r *ScoringConfigRepository) LoadActive(ctx context.Context) (*domain.ScoringConfig, error) {
	query := `
		SELECT * FROM compliance_schema.scoring_configs
		WHERE is_active = true
	`

	var row configRow
	err := r.db.GetContext(ctx, &row, query)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNoActiveConfig
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load scoring config")
	}

	return row.toDomain()
}

// FindByVersion returns one configuration version, active or not.
func (r *ScoringConfigRepository) FindByVersion(ctx context.Context, version string) (*domain.ScoringConfig, error) {
	query := `
		SELECT * FROM compliance_schema.scoring_configs
		WHERE version = $1
	`

	var row configRow
	err := r.db.GetContext(ctx, &row, query, version)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNoActiveConfig
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load scoring config")
	}

	return row.toDomain()
}

// CreateVersion stores a new inactive configuration version.
func (r *ScoringConfigRepository) CreateVersion(ctx context.Context, cfg *domain.ScoringConfig, createdBy string) error {
	rulesJSON, err := json.Marshal(cfg.Rules)
	if err != nil {
		return errors.Wrap(err, "failed to serialize rules")
	}
	thresholdsJSON, err := json.Marshal(cfg.Thresholds)
	if err != nil {
		return errors.Wrap(err, "failed to serialize thresholds")
	}

	query := `
		INSERT INTO compliance_schema.scoring_configs (
			version, checksum, rules, thresholds, max_score, is_active, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, false, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		cfg.Version, cfg.Checksum, rulesJSON, thresholdsJSON, cfg.MaxScore,
		time.Now().UTC(), createdBy,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create scoring config version")
	}

	return nil
}

// ActivateVersion makes the named version active and deactivates the rest,
// in one transaction.
func (r *ScoringConfigRepository) ActivateVersion(ctx context.Context, version string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE compliance_schema.scoring_configs SET is_active = false WHERE is_active = true`,
	); err != nil {
		return errors.Wrap(err, "failed to deactivate scoring configs")
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE compliance_schema.scoring_configs SET is_active = true WHERE version = $1`, version,
	)
	if err != nil {
		return errors.Wrap(err, "failed to activate scoring config")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check activation result")
	}
	if rows == 0 {
		return errors.ErrNoActiveConfig
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit activation")
	}

	return nil
}

func (row *configRow) toDomain() (*domain.ScoringConfig, error) {
	cfg := &domain.ScoringConfig{
		Version:  row.Version,
		Checksum: row.Checksum,
		MaxScore: row.MaxScore,
	}
	if err := json.Unmarshal(row.Rules, &cfg.Rules); err != nil {
		return nil, errors.Wrap(err, "failed to parse stored rules")
	}
	if err := json.Unmarshal(row.Thresholds, &cfg.Thresholds); err != nil {
		return nil, errors.Wrap(err, "failed to parse stored thresholds")
	}
	return cfg, nil
}
