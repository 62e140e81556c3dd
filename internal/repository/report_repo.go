package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"medrec-llm/internal/domain"
)

type ReportRepository interface {
	Create(ctx context.Context, report domain.Report) error
	GetByID(ctx context.Context, id string) (domain.Report, error)
	ListByPatient(ctx context.Context, patientID string) ([]domain.Report, error)
	SearchSimilar(ctx context.Context, patientID string, queryEmbedding pgvector.Vector, k int) ([]domain.Report, error)
}

type PgReportRepository struct {
	pool *pgxpool.Pool
}

func NewPgReportRepository(pool *pgxpool.Pool) *PgReportRepository {
	return &PgReportRepository{pool: pool}
}

func (r *PgReportRepository) Create(ctx context.Context, report domain.Report) error {
	const query = `
		INSERT INTO reports (id, patient_id, category, findings, interpretation, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var embedding interface{}
	if len(report.Embedding.Slice()) > 0 {
		embedding = report.Embedding
	}
	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.PatientID,
		report.Category,
		report.Findings,
		report.Interpretation,
		embedding,
		report.CreatedAt,
	)
	return err
}

func (r *PgReportRepository) GetByID(ctx context.Context, id string) (domain.Report, error) {
	const query = `
		SELECT id, patient_id, category, findings, interpretation, created_at
		FROM reports
		WHERE id = $1
	`
	var report domain.Report
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.PatientID,
		&report.Category,
		&report.Findings,
		&report.Interpretation,
		&report.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Report{}, err
	}
	return report, err
}

func (r *PgReportRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.Report, error) {
	const query = `
		SELECT id, patient_id, category, findings, interpretation, created_at
		FROM reports
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

// SearchSimilar busca los k estudios del paciente mas cercanos al embedding
// dado, por distancia coseno. Se usa para darle contexto historico al LLM.
func (r *PgReportRepository) SearchSimilar(ctx context.Context, patientID string, queryEmbedding pgvector.Vector, k int) ([]domain.Report, error) {
	if k <= 0 {
		k = 3
	}
	const query = `
		SELECT id, patient_id, category, findings, interpretation, created_at
		FROM reports
		WHERE patient_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, patientID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

func scanReports(rows pgxRows) ([]domain.Report, error) {
	var reports []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.PatientID,
			&report.Category,
			&report.Findings,
			&report.Interpretation,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
