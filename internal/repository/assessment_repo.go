package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medrec-llm/internal/domain"
)

type AssessmentRepository interface {
	Create(ctx context.Context, assessment domain.RiskAssessment) error
	LatestByKind(ctx context.Context, patientID, kind string) (domain.RiskAssessment, error)
	ListLatest(ctx context.Context, patientID string) ([]domain.RiskAssessment, error)
}

type PgAssessmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAssessmentRepository(pool *pgxpool.Pool) *PgAssessmentRepository {
	return &PgAssessmentRepository{pool: pool}
}

// Los factores y recomendaciones se guardan como JSONB: son una foto del
// momento de la evaluacion, no filas normalizadas.
func (r *PgAssessmentRepository) Create(ctx context.Context, assessment domain.RiskAssessment) error {
	const query = `
		INSERT INTO risk_assessments (id, patient_id, kind, score, category, percentage_risk, factors, recommendations, interpretation, validity_days, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	factors, err := json.Marshal(assessment.Factors)
	if err != nil {
		return err
	}
	recommendations, err := json.Marshal(assessment.Recommendations)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		assessment.ID,
		assessment.PatientID,
		assessment.Kind,
		assessment.Score,
		assessment.Category,
		assessment.PercentageRisk,
		factors,
		recommendations,
		assessment.Interpretation,
		assessment.ValidityDays,
		assessment.ExpiresAt,
		assessment.CreatedAt,
	)
	return err
}

func (r *PgAssessmentRepository) LatestByKind(ctx context.Context, patientID, kind string) (domain.RiskAssessment, error) {
	const query = `
		SELECT id, patient_id, kind, score, category, percentage_risk, factors, recommendations, interpretation, validity_days, expires_at, created_at
		FROM risk_assessments
		WHERE patient_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	assessment, err := scanAssessment(r.pool.QueryRow(ctx, query, patientID, kind))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RiskAssessment{}, err
	}
	return assessment, err
}

// ListLatest devuelve la evaluacion mas reciente de cada tipo.
func (r *PgAssessmentRepository) ListLatest(ctx context.Context, patientID string) ([]domain.RiskAssessment, error) {
	const query = `
		SELECT DISTINCT ON (kind) id, patient_id, kind, score, category, percentage_risk, factors, recommendations, interpretation, validity_days, expires_at, created_at
		FROM risk_assessments
		WHERE patient_id = $1
		ORDER BY kind, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assessments []domain.RiskAssessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assessments, nil
}

type pgxRow interface {
	Scan(...interface{}) error
}

func scanAssessment(row pgxRow) (domain.RiskAssessment, error) {
	var a domain.RiskAssessment
	var factors, recommendations []byte
	if err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.Kind,
		&a.Score,
		&a.Category,
		&a.PercentageRisk,
		&factors,
		&recommendations,
		&a.Interpretation,
		&a.ValidityDays,
		&a.ExpiresAt,
		&a.CreatedAt,
	); err != nil {
		return domain.RiskAssessment{}, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &a.Factors); err != nil {
			return domain.RiskAssessment{}, err
		}
	}
	if len(recommendations) > 0 {
		if err := json.Unmarshal(recommendations, &a.Recommendations); err != nil {
			return domain.RiskAssessment{}, err
		}
	}
	return a, nil
}
