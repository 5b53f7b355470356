package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"onboard/internal/domain"
	"onboard/internal/kyc"
	"onboard/pkg/errors"
)

// KYCStatusRepository persists onboarding lifecycle records. The latest row
// per client is the live cycle; earlier rows are finished cycles.
type KYCStatusRepository struct {
	db *sqlx.DB
}

func NewKYCStatusRepository(db *sqlx.DB) *KYCStatusRepository {
	return &KYCStatusRepository{db: db}
}

// sqlxTx adapts *sqlx.Tx to the service's transaction handle.
type sqlxTx struct {
	tx *sqlx.Tx
}

func (t *sqlxTx) Commit() error   { return t.tx.Commit() }
func (t *sqlxTx) Rollback() error { return t.tx.Rollback() }

func (r *KYCStatusRepository) Begin(ctx context.Context) (kyc.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	return &sqlxTx{tx: tx}, nil
}

func (r *KYCStatusRepository) Create(ctx context.Context, status *domain.KYCStatus) error {
	query := `
		INSERT INTO compliance_schema.kyc_statuses (
			id, client_id, current_state, has_nrc, has_proof_of_address,
			has_payslip, has_employment_letter, aml_screening_complete,
			requires_edd, edd_reason, compliance_approved_by, executive_approved_by,
			started_at, completed_at, completed_by, escalated_at, approved_at, updated_at
		) VALUES (
			:id, :client_id, :current_state, :has_nrc, :has_proof_of_address,
			:has_payslip, :has_employment_letter, :aml_screening_complete,
			:requires_edd, :edd_reason, :compliance_approved_by, :executive_approved_by,
			:started_at, :completed_at, :completed_by, :escalated_at, :approved_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, status)
	if err != nil {
		return errors.Wrap(err, "failed to create kyc status")
	}

	return nil
}

func (r *KYCStatusRepository) FindLatestByClientID(ctx context.Context, clientID uuid.UUID) (*domain.KYCStatus, error) {
	query := `
		SELECT * FROM compliance_schema.kyc_statuses
		WHERE client_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var status domain.KYCStatus
	err := r.db.GetContext(ctx, &status, query, clientID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrKYCStatusNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get kyc status")
	}

	return &status, nil
}

// FindLatestForUpdate locks the client's latest status row until the
// transaction ends. Concurrent transition requests for the same client queue
// on this lock, closing the lost-update race.
func (r *KYCStatusRepository) FindLatestForUpdate(ctx context.Context, tx kyc.Tx, clientID uuid.UUID) (*domain.KYCStatus, error) {
	sx, ok := tx.(*sqlxTx)
	if !ok {
		return nil, errors.New("transaction handle is not a postgres transaction")
	}

	query := `
		SELECT * FROM compliance_schema.kyc_statuses
		WHERE client_id = $1
		ORDER BY started_at DESC
		LIMIT 1
		FOR UPDATE
	`

	var status domain.KYCStatus
	err := sx.tx.GetContext(ctx, &status, query, clientID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrKYCStatusNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock kyc status")
	}

	return &status, nil
}

func (r *KYCStatusRepository) Update(ctx context.Context, tx kyc.Tx, status *domain.KYCStatus) error {
	sx, ok := tx.(*sqlxTx)
	if !ok {
		return errors.New("transaction handle is not a postgres transaction")
	}

	query := `
		UPDATE compliance_schema.kyc_statuses
		SET current_state = :current_state, has_nrc = :has_nrc,
		    has_proof_of_address = :has_proof_of_address, has_payslip = :has_payslip,
		    has_employment_letter = :has_employment_letter,
		    aml_screening_complete = :aml_screening_complete,
		    requires_edd = :requires_edd, edd_reason = :edd_reason,
		    compliance_approved_by = :compliance_approved_by,
		    executive_approved_by = :executive_approved_by,
		    completed_at = :completed_at, completed_by = :completed_by,
		    escalated_at = :escalated_at, approved_at = :approved_at,
		    updated_at = :updated_at
		WHERE id = :id
	`

	_, err := sx.tx.NamedExecContext(ctx, query, status)
	if err != nil {
		return errors.Wrap(err, "failed to update kyc status")
	}

	return nil
}

// FindHistoryByClientID returns every cycle for the client, newest first.
func (r *KYCStatusRepository) FindHistoryByClientID(ctx context.Context, clientID uuid.UUID) ([]domain.KYCStatus, error) {
	query := `
		SELECT * FROM compliance_schema.kyc_statuses
		WHERE client_id = $1
		ORDER BY started_at DESC
	`

	var statuses []domain.KYCStatus
	err := r.db.SelectContext(ctx, &statuses, query, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list kyc statuses")
	}

	return statuses, nil
}
