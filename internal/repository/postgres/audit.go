package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"onboard/internal/domain"
	"onboard/pkg/errors"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO compliance_schema.audit_logs (
			id, action, entity_type, entity_id, actor, event_data, created_at
		) VALUES (
			:id, :action, :entity_type, :entity_id, :actor, :event_data, :created_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return errors.Wrap(err, "failed to create audit log")
	}

	return nil
}

func (r *AuditRepository) FindByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]domain.AuditLog, error) {
	query := `
		SELECT * FROM compliance_schema.audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var entries []domain.AuditLog
	err := r.db.SelectContext(ctx, &entries, query, entityType, entityID, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit logs")
	}

	return entries, nil
}
