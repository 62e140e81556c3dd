package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medrec-llm/internal/domain"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile domain.PatientProfile) error
	GetByUserID(ctx context.Context, userID string) (domain.PatientProfile, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// Upsert reemplaza el perfil completo: los campos no informados quedan NULL,
// nunca se mezclan versiones viejas y nuevas.
func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.PatientProfile) error {
	const query = `
		INSERT INTO patient_profiles (user_id, birth_year, sex, height_cm, weight_kg, waist_cm, smoking, diabetic, hypertension_treated, family_history_cvd, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			birth_year = EXCLUDED.birth_year,
			sex = EXCLUDED.sex,
			height_cm = EXCLUDED.height_cm,
			weight_kg = EXCLUDED.weight_kg,
			waist_cm = EXCLUDED.waist_cm,
			smoking = EXCLUDED.smoking,
			diabetic = EXCLUDED.diabetic,
			hypertension_treated = EXCLUDED.hypertension_treated,
			family_history_cvd = EXCLUDED.family_history_cvd,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.BirthYear,
		nullIfEmpty(string(profile.Sex)),
		profile.HeightCm,
		profile.WeightKg,
		profile.WaistCm,
		nullIfEmpty(string(profile.Smoking)),
		profile.Diabetic,
		profile.HypertensionTreated,
		profile.FamilyHistoryCVD,
		profile.UpdatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.PatientProfile, error) {
	const query = `
		SELECT user_id, birth_year, sex, height_cm, weight_kg, waist_cm, smoking, diabetic, hypertension_treated, family_history_cvd, updated_at
		FROM patient_profiles
		WHERE user_id = $1
	`
	var profile domain.PatientProfile
	var sex, smoking *string
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.BirthYear,
		&sex,
		&profile.HeightCm,
		&profile.WeightKg,
		&profile.WaistCm,
		&smoking,
		&profile.Diabetic,
		&profile.HypertensionTreated,
		&profile.FamilyHistoryCVD,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PatientProfile{}, err
	}
	if sex != nil {
		profile.Sex = domain.BiologicalSex(*sex)
	}
	if smoking != nil {
		profile.Smoking = domain.SmokingStatus(*smoking)
	}
	return profile, err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
