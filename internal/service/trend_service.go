package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medrec-llm/internal/domain"
	"medrec-llm/internal/repository"
)

// TrendService arma la serie historica desde el repositorio y delega la
// clasificacion en el motor de tendencias.
type TrendService struct {
	observations repository.ObservationRepository
	engine       TrendEngine
	logger       *zap.Logger
}

func NewTrendService(observations repository.ObservationRepository, logger *zap.Logger) *TrendService {
	return &TrendService{
		observations: observations,
		engine:       DefaultTrendEngine,
		logger:       logger,
	}
}

const trendHistoryLimit = 50

func (s *TrendService) Trend(ctx context.Context, patientID, biomarkerType string) (domain.TrendResult, error) {
	history, err := s.observations.HistoryByType(ctx, patientID, biomarkerType, trendHistoryLimit)
	if err != nil {
		return domain.TrendResult{}, fmt.Errorf("load history: %w", err)
	}
	return s.engine.ClassifyTrend(biomarkerType, history, DefaultMinDataPoints), nil
}

// TrackedTypes lista los biomarcadores con al menos una medicion.
func (s *TrendService) TrackedTypes(ctx context.Context, patientID string) ([]string, error) {
	return s.observations.DistinctTypes(ctx, patientID)
}

type ObservationInput struct {
	Type       string
	Value      float64
	Unit       string
	RecordedAt time.Time
}

// RecordObservation registra una medicion cargada a mano, sin estudio asociado.
func (s *TrendService) RecordObservation(ctx context.Context, patientID string, input ObservationInput) (domain.BiomarkerObservation, error) {
	now := time.Now().UTC()
	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = now
	}

	obs := domain.BiomarkerObservation{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		Type:       input.Type,
		Value:      input.Value,
		Unit:       input.Unit,
		RecordedAt: recordedAt.UTC(),
		CreatedAt:  now,
	}
	if err := s.observations.CreateBatch(ctx, []domain.BiomarkerObservation{obs}); err != nil {
		return domain.BiomarkerObservation{}, fmt.Errorf("create observation: %w", err)
	}

	s.logger.Info("observation recorded",
		zap.String("patient_id", patientID),
		zap.String("type", obs.Type),
		zap.Float64("value", obs.Value),
	)
	return obs, nil
}
