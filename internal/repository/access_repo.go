package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medrec-llm/internal/domain"
)

type AccessRepository interface {
	Create(ctx context.Context, grant domain.AccessGrant) error
	Revoke(ctx context.Context, patientID, doctorID string, revokedAt time.Time) error
	ListByPatient(ctx context.Context, patientID string) ([]domain.AccessGrant, error)
	HasAccess(ctx context.Context, patientID, doctorID string) (bool, error)
}

type PgAccessRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccessRepository(pool *pgxpool.Pool) *PgAccessRepository {
	return &PgAccessRepository{pool: pool}
}

func (r *PgAccessRepository) Create(ctx context.Context, grant domain.AccessGrant) error {
	const query = `
		INSERT INTO access_grants (id, patient_id, doctor_id, created_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		grant.ID,
		grant.PatientID,
		grant.DoctorID,
		grant.CreatedAt,
		grant.RevokedAt,
	)
	return err
}

// Revoke marca el permiso como revocado; la fila queda como auditoria.
func (r *PgAccessRepository) Revoke(ctx context.Context, patientID, doctorID string, revokedAt time.Time) error {
	const query = `
		UPDATE access_grants SET revoked_at = $3
		WHERE patient_id = $1 AND doctor_id = $2 AND revoked_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, patientID, doctorID, revokedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccessRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.AccessGrant, error) {
	const query = `
		SELECT id, patient_id, doctor_id, created_at, revoked_at
		FROM access_grants
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.AccessGrant
	for rows.Next() {
		var g domain.AccessGrant
		if err := rows.Scan(
			&g.ID,
			&g.PatientID,
			&g.DoctorID,
			&g.CreatedAt,
			&g.RevokedAt,
		); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *PgAccessRepository) HasAccess(ctx context.Context, patientID, doctorID string) (bool, error) {
	const query = `
		SELECT 1
		FROM access_grants
		WHERE patient_id = $1 AND doctor_id = $2 AND revoked_at IS NULL
		LIMIT 1
	`
	var one int
	err := r.pool.QueryRow(ctx, query, patientID, doctorID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
