package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"medrec-llm/internal/domain"
	"medrec-llm/internal/repository"
)

// AssessmentService arma los factores de riesgo del paciente, corre el
// agregador y persiste las evaluaciones resultantes.
type AssessmentService struct {
	profiles     repository.ProfileRepository
	observations repository.ObservationRepository
	assessments  repository.AssessmentRepository
	aggregator   RiskAggregator
	logger       *zap.Logger
}

func NewAssessmentService(
	profiles repository.ProfileRepository,
	observations repository.ObservationRepository,
	assessments repository.AssessmentRepository,
	logger *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		profiles:     profiles,
		observations: observations,
		assessments:  assessments,
		aggregator:   NewRiskAggregator(),
		logger:       logger,
	}
}

// Evaluate calcula y persiste una evaluacion nueva. Las anteriores quedan
// como historial; la mas reciente es la vigente.
func (s *AssessmentService) Evaluate(ctx context.Context, patientID string) (domain.HealthSummary, error) {
	factors, err := s.buildRiskFactors(ctx, patientID)
	if err != nil {
		return domain.HealthSummary{}, err
	}

	summary := s.aggregator.Aggregate(factors)

	now := time.Now().UTC()
	for _, assessment := range []*domain.RiskAssessment{summary.Cardiovascular, summary.Diabetes} {
		if assessment == nil {
			continue
		}
		assessment.ID = uuid.NewString()
		assessment.PatientID = patientID
		assessment.CreatedAt = now
		assessment.ExpiresAt = now.AddDate(0, 0, assessment.ValidityDays)
		if err := s.assessments.Create(ctx, *assessment); err != nil {
			return domain.HealthSummary{}, fmt.Errorf("create assessment %s: %w", assessment.Kind, err)
		}
	}

	s.logger.Info("risk assessment completed",
		zap.String("patient_id", patientID),
		zap.Int("health_score", summary.HealthScore),
		zap.Bool("cardiovascular", summary.Cardiovascular != nil),
		zap.Bool("diabetes", summary.Diabetes != nil),
	)
	return summary, nil
}

// Latest devuelve la ultima evaluacion persistida de cada tipo.
func (s *AssessmentService) Latest(ctx context.Context, patientID string) ([]domain.RiskAssessment, error) {
	return s.assessments.ListLatest(ctx, patientID)
}

// UpdateProfile reemplaza el perfil clinico completo del paciente.
func (s *AssessmentService) UpdateProfile(ctx context.Context, profile domain.PatientProfile) (domain.PatientProfile, error) {
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return domain.PatientProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return profile, nil
}

var ErrProfileNotFound = errors.New("profile not found")

func (s *AssessmentService) GetProfile(ctx context.Context, userID string) (domain.PatientProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PatientProfile{}, ErrProfileNotFound
	}
	return profile, err
}

// buildRiskFactors combina el perfil declarado con la ultima medicion de
// cada biomarcador. Sin perfil se evalua solo con los biomarcadores.
func (s *AssessmentService) buildRiskFactors(ctx context.Context, patientID string) (domain.RiskFactors, error) {
	var factors domain.RiskFactors

	profile, err := s.profiles.GetByUserID(ctx, patientID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.RiskFactors{}, fmt.Errorf("get profile: %w", err)
	}
	if err == nil {
		factors.Age = profile.Age(time.Now().UTC())
		factors.Sex = profile.Sex
		factors.Smoking = profile.Smoking
		factors.Diabetic = profile.Diabetic
		factors.HypertensionTreated = profile.HypertensionTreated
		factors.WeightKg = profile.WeightKg
		factors.HeightCm = profile.HeightCm
		factors.WaistCm = profile.WaistCm
		factors.FamilyHistoryCVD = profile.FamilyHistoryCVD
	}

	latest, err := s.observations.LatestByType(ctx, patientID)
	if err != nil {
		return domain.RiskFactors{}, fmt.Errorf("latest observations: %w", err)
	}

	if obs, ok := latest[domain.BiomarkerCholesterolTotal]; ok {
		v := obs.Value
		factors.TotalCholesterol = &v
	}
	if obs, ok := latest[domain.BiomarkerCholesterolHDL]; ok {
		v := obs.Value
		factors.HDLCholesterol = &v
	}
	if obs, ok := latest[domain.BiomarkerSystolicPressure]; ok {
		v := obs.Value
		factors.SystolicBP = &v
	}
	if obs, ok := latest[domain.BiomarkerGlucose]; ok {
		v := obs.Value
		factors.FastingGlucose = &v
	}
	if obs, ok := latest[domain.BiomarkerHbA1c]; ok {
		v := obs.Value
		factors.HbA1c = &v
	}

	return factors, nil
}
