package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"medrec-llm/internal/domain"
)

type ObservationRepository interface {
	CreateBatch(ctx context.Context, observations []domain.BiomarkerObservation) error
	HistoryByType(ctx context.Context, patientID, biomarkerType string, limit int) ([]domain.BiomarkerObservation, error)
	LatestByType(ctx context.Context, patientID string) (map[string]domain.BiomarkerObservation, error)
	DistinctTypes(ctx context.Context, patientID string) ([]string, error)
}

type PgObservationRepository struct {
	pool *pgxpool.Pool
}

func NewPgObservationRepository(pool *pgxpool.Pool) *PgObservationRepository {
	return &PgObservationRepository{pool: pool}
}

func (r *PgObservationRepository) CreateBatch(ctx context.Context, observations []domain.BiomarkerObservation) error {
	if len(observations) == 0 {
		return nil
	}
	const query = `
		INSERT INTO biomarker_observations (id, patient_id, type, value, unit, recorded_at, source_report_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, obs := range observations {
		if _, err := tx.Exec(ctx, query,
			obs.ID,
			obs.PatientID,
			obs.Type,
			obs.Value,
			obs.Unit,
			obs.RecordedAt,
			obs.SourceReportID,
			obs.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// HistoryByType devuelve las mediciones del mas reciente al mas viejo, que
// es el orden que espera el clasificador de tendencias.
func (r *PgObservationRepository) HistoryByType(ctx context.Context, patientID, biomarkerType string, limit int) ([]domain.BiomarkerObservation, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, patient_id, type, value, unit, recorded_at, source_report_id, created_at
		FROM biomarker_observations
		WHERE patient_id = $1 AND type = $2
		ORDER BY recorded_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, patientID, biomarkerType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanObservations(rows)
}

// LatestByType devuelve la medicion mas reciente de cada biomarcador.
func (r *PgObservationRepository) LatestByType(ctx context.Context, patientID string) (map[string]domain.BiomarkerObservation, error) {
	const query = `
		SELECT DISTINCT ON (type) id, patient_id, type, value, unit, recorded_at, source_report_id, created_at
		FROM biomarker_observations
		WHERE patient_id = $1
		ORDER BY type, recorded_at DESC
	`
	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]domain.BiomarkerObservation, len(observations))
	for _, obs := range observations {
		latest[obs.Type] = obs
	}
	return latest, nil
}

func (r *PgObservationRepository) DistinctTypes(ctx context.Context, patientID string) ([]string, error) {
	const query = `
		SELECT DISTINCT type
		FROM biomarker_observations
		WHERE patient_id = $1
		ORDER BY type
	`
	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return types, nil
}

func scanObservations(rows pgxRows) ([]domain.BiomarkerObservation, error) {
	var observations []domain.BiomarkerObservation
	for rows.Next() {
		var obs domain.BiomarkerObservation
		if err := rows.Scan(
			&obs.ID,
			&obs.PatientID,
			&obs.Type,
			&obs.Value,
			&obs.Unit,
			&obs.RecordedAt,
			&obs.SourceReportID,
			&obs.CreatedAt,
		); err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return observations, nil
}
