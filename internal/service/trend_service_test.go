package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"medrec-llm/internal/domain"
)

func TestTrendServiceClassifiesHistory(t *testing.T) {
	obsRepo := &mockObservationRepo{
		history: newestFirst(domain.BiomarkerCholesterolLDL, 100, 120, 140),
	}
	svc := NewTrendService(obsRepo, zap.NewNop())

	result, err := svc.Trend(context.Background(), "patient-1", domain.BiomarkerCholesterolLDL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Classification != domain.TrendImproving {
		t.Fatalf("expected IMPROVING, got %s", result.Classification)
	}
	if result.BiomarkerType != domain.BiomarkerCholesterolLDL {
		t.Fatalf("unexpected biomarker type %s", result.BiomarkerType)
	}
}

func TestTrendServicePropagatesRepoError(t *testing.T) {
	obsRepo := &mockObservationRepo{err: errors.New("db down")}
	svc := NewTrendService(obsRepo, zap.NewNop())

	if _, err := svc.Trend(context.Background(), "patient-1", domain.BiomarkerGlucose); err == nil {
		t.Fatalf("expected error from repository")
	}
}

func TestRecordObservationDefaultsTimestamp(t *testing.T) {
	obsRepo := &mockObservationRepo{}
	svc := NewTrendService(obsRepo, zap.NewNop())

	obs, err := svc.RecordObservation(context.Background(), "patient-1", ObservationInput{
		Type:  domain.BiomarkerGlucose,
		Value: 95,
		Unit:  "mg/dL",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if obs.ID == "" || obs.PatientID != "patient-1" {
		t.Fatalf("observation missing ids: %+v", obs)
	}
	if obs.RecordedAt.IsZero() {
		t.Fatalf("expected recorded_at defaulted to now")
	}
	if obs.SourceReportID != nil {
		t.Fatalf("manual observation must not reference a report")
	}
	if len(obsRepo.batches) != 1 || len(obsRepo.batches[0]) != 1 {
		t.Fatalf("expected single observation persisted")
	}
}

func TestRecordObservationKeepsExplicitTimestamp(t *testing.T) {
	obsRepo := &mockObservationRepo{}
	svc := NewTrendService(obsRepo, zap.NewNop())

	recordedAt := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	obs, err := svc.RecordObservation(context.Background(), "patient-1", ObservationInput{
		Type:       domain.BiomarkerHbA1c,
		Value:      5.4,
		Unit:       "%",
		RecordedAt: recordedAt,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !obs.RecordedAt.Equal(recordedAt) {
		t.Fatalf("expected recorded_at preserved, got %v", obs.RecordedAt)
	}
}

func TestTrackedTypes(t *testing.T) {
	obsRepo := &mockObservationRepo{types: []string{domain.BiomarkerGlucose, domain.BiomarkerHbA1c}}
	svc := NewTrendService(obsRepo, zap.NewNop())

	types, err := svc.TrackedTypes(context.Background(), "patient-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(types))
	}
}
