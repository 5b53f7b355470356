package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onboard/internal/domain"
	"onboard/pkg/errors"
)

type ClientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO compliance_schema.clients (
			id, full_name, date_of_birth, province, employer_name,
			source_of_funds, declared_monthly_income, created_at, updated_at
		) VALUES (
			:id, :full_name, :date_of_birth, :province, :employer_name,
			:source_of_funds, :declared_monthly_income, :created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		return errors.Wrap(err, "failed to create client")
	}

	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT * FROM compliance_schema.clients
		WHERE id = $1
	`

	var client domain.Client
	err := r.db.GetContext(ctx, &client, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrClientNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get client")
	}

	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE compliance_schema.clients
		SET full_name = :full_name, date_of_birth = :date_of_birth,
		    province = :province, employer_name = :employer_name,
		    source_of_funds = :source_of_funds,
		    declared_monthly_income = :declared_monthly_income,
		    updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		return errors.Wrap(err, "failed to update client")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if rows == 0 {
		return errors.ErrClientNotFound
	}

	return nil
}

func (r *ClientRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	query := `
		SELECT * FROM compliance_schema.clients
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var clients []domain.Client
	err := r.db.SelectContext(ctx, &clients, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clients")
	}

	return clients, nil
}
