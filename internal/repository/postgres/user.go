package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onboard/internal/domain"
	"onboard/pkg/errors"
)

// UserRepository persists compliance staff accounts.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO compliance_schema.users (
			id, email, password_hash, role, totp_secret, created_at
		) VALUES (
			:id, :email, :password_hash, :role, :totp_secret, :created_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT * FROM compliance_schema.users
		WHERE id = $1
	`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT * FROM compliance_schema.users
		WHERE email = $1
	`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}

	return &user, nil
}

func (r *UserRepository) SetTOTPSecret(ctx context.Context, id uuid.UUID, secret string) error {
	query := `
		UPDATE compliance_schema.users
		SET totp_secret = $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, secret, id)
	if err != nil {
		return errors.Wrap(err, "failed to set totp secret")
	}

	return nil
}
