package service

import (
	"errors"
	"testing"

	"medrec-llm/internal/domain"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestCardioScoreReferenceCase(t *testing.T) {
	// Hombre de 52, colesterol 195, HDL 48, sistolica 135 sin tratamiento,
	// ex fumador: 8 + 1 + 1 + 1 = 11 puntos.
	factors := domain.RiskFactors{
		Age:              intPtr(52),
		Sex:              domain.SexMale,
		TotalCholesterol: floatPtr(195),
		HDLCholesterol:   floatPtr(48),
		SystolicBP:       floatPtr(135),
		Smoking:          domain.SmokingFormer,
	}

	assessment, err := DefaultCardioRiskScorer.Score(factors)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if assessment.Score != 11 {
		t.Fatalf("expected 11 points, got %d", assessment.Score)
	}
	if assessment.Category != domain.RiskHigh {
		t.Fatalf("expected HIGH, got %s", assessment.Category)
	}
	if assessment.PercentageRisk == nil || *assessment.PercentageRisk != 23 {
		t.Fatalf("expected 23%%, got %v", assessment.PercentageRisk)
	}
	if assessment.Kind != domain.AssessmentCardiovascular {
		t.Fatalf("unexpected kind %s", assessment.Kind)
	}
	if assessment.ValidityDays != 365 {
		t.Fatalf("expected 365 validity days, got %d", assessment.ValidityDays)
	}
	if len(assessment.Recommendations) == 0 {
		t.Fatalf("expected recommendations")
	}
}

func TestCardioScoreMissingRequiredField(t *testing.T) {
	factors := domain.RiskFactors{
		Age:              intPtr(52),
		Sex:              domain.SexMale,
		TotalCholesterol: floatPtr(195),
		SystolicBP:       floatPtr(135),
	}

	_, err := DefaultCardioRiskScorer.Score(factors)
	if !errors.Is(err, ErrMissingRiskFactors) {
		t.Fatalf("expected ErrMissingRiskFactors, got %v", err)
	}
}

func TestCardioScoreZeroTreatedAsMissing(t *testing.T) {
	factors := domain.RiskFactors{
		Age:              intPtr(52),
		Sex:              domain.SexMale,
		TotalCholesterol: floatPtr(0),
		HDLCholesterol:   floatPtr(48),
		SystolicBP:       floatPtr(135),
	}

	_, err := DefaultCardioRiskScorer.Score(factors)
	if !errors.Is(err, ErrMissingRiskFactors) {
		t.Fatalf("expected ErrMissingRiskFactors for zero cholesterol, got %v", err)
	}
}

func TestCardioScoreBandUpperBoundExclusive(t *testing.T) {
	base := domain.RiskFactors{
		Age:            intPtr(30),
		Sex:            domain.SexMale,
		HDLCholesterol: floatPtr(55),
		SystolicBP:     floatPtr(110),
		Smoking:        domain.SmokingNever,
	}

	below := base
	below.TotalCholesterol = floatPtr(199.9)
	at := base
	at.TotalCholesterol = floatPtr(200)

	lowScore, err := DefaultCardioRiskScorer.Score(below)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	highScore, err := DefaultCardioRiskScorer.Score(at)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if lowScore.Score != 1 || highScore.Score != 2 {
		t.Fatalf("expected 199.9 -> 1 point and 200 -> 2 points, got %d and %d", lowScore.Score, highScore.Score)
	}
}

func TestCardioScoreFemaleBands(t *testing.T) {
	factors := domain.RiskFactors{
		Age:              intPtr(52),
		Sex:              domain.SexFemale,
		TotalCholesterol: floatPtr(210),
		HDLCholesterol:   floatPtr(55),
		SystolicBP:       floatPtr(110),
		Smoking:          domain.SmokingNever,
	}

	// Mujer: edad 50-55 = 7, colesterol 200-240 = 3, hdl 50-60 = 0, pb = 0.
	assessment, err := DefaultCardioRiskScorer.Score(factors)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if assessment.Score != 10 {
		t.Fatalf("expected 10 points, got %d", assessment.Score)
	}
	if assessment.Category != domain.RiskModerate {
		t.Fatalf("expected MODERATE, got %s", assessment.Category)
	}
}

func TestCardioScoreTreatedHypertensionShiftsBands(t *testing.T) {
	base := domain.RiskFactors{
		Age:              intPtr(30),
		Sex:              domain.SexMale,
		TotalCholesterol: floatPtr(150),
		HDLCholesterol:   floatPtr(55),
		SystolicBP:       floatPtr(125),
		Smoking:          domain.SmokingNever,
	}

	untreated, err := DefaultCardioRiskScorer.Score(base)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	treated := base
	treated.HypertensionTreated = boolPtr(true)
	treatedScore, err := DefaultCardioRiskScorer.Score(treated)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// 125 mmHg: 1 punto sin tratamiento, 0 con cortes desplazados.
	if untreated.Score != 1 || treatedScore.Score != 0 {
		t.Fatalf("expected untreated=1 treated=0, got %d and %d", untreated.Score, treatedScore.Score)
	}
}

func TestCardioScoreSmokerAndDiabeticPoints(t *testing.T) {
	base := domain.RiskFactors{
		Age:              intPtr(30),
		Sex:              domain.SexMale,
		TotalCholesterol: floatPtr(150),
		HDLCholesterol:   floatPtr(55),
		SystolicBP:       floatPtr(110),
		Smoking:          domain.SmokingCurrent,
		Diabetic:         boolPtr(true),
	}

	assessment, err := DefaultCardioRiskScorer.Score(base)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if assessment.Score != 7 {
		t.Fatalf("expected 4+3=7 points, got %d", assessment.Score)
	}
}

func TestCardioPercentageCapped(t *testing.T) {
	if pct := cardioPercentage(30); pct != 60 {
		t.Fatalf("expected cap at 60, got %v", pct)
	}
	if pct := cardioPercentage(0); pct != 1 {
		t.Fatalf("expected floor at 1, got %v", pct)
	}
}
