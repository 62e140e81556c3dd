package service

import (
	"fmt"

	"medrec-llm/internal/domain"
)

// DiabetesRiskScorer suma puntos por factor presente. A diferencia del
// scorer cardiovascular no exige campos: degrada con datos parciales.
type DiabetesRiskScorer struct{}

// DefaultDiabetesRiskScorer permite uso directo sin instanciar.
var DefaultDiabetesRiskScorer = DiabetesRiskScorer{}

const (
	waistThresholdMaleCm   = 102
	waistThresholdFemaleCm = 88
	diabetesValidityDays   = 365
)

func (DiabetesRiskScorer) Score(factors domain.RiskFactors) domain.RiskAssessment {
	points := 0

	if factors.Age != nil {
		switch {
		case *factors.Age >= 45:
			points += 2
		case *factors.Age >= 40:
			points++
		}
	}

	if bmi := factors.BMI(); bmi != nil {
		switch {
		case *bmi >= 30:
			points += 3
		case *bmi >= 25:
			points += 2
		}
	}

	if factors.WaistCm != nil {
		threshold := float64(waistThresholdMaleCm)
		if factors.Sex == domain.SexFemale {
			threshold = waistThresholdFemaleCm
		}
		if *factors.WaistCm > threshold {
			points += 2
		}
	}

	if factors.FamilyHistoryCVD != nil && *factors.FamilyHistoryCVD {
		points += 2
	}

	if factors.SystolicBP != nil && *factors.SystolicBP >= 140 {
		points += 2
	}

	if factors.FastingGlucose != nil && *factors.FastingGlucose >= 100 && *factors.FastingGlucose <= 125 {
		points += 3
	}

	if factors.HbA1c != nil && *factors.HbA1c >= 5.7 && *factors.HbA1c <= 6.4 {
		points += 3
	}

	category, percentage := diabetesTier(points)

	return domain.RiskAssessment{
		Kind:            domain.AssessmentDiabetes,
		Score:           points,
		Category:        category,
		PercentageRisk:  &percentage,
		Factors:         factors,
		Recommendations: diabetesRecommendations(factors, category),
		Interpretation:  fmt.Sprintf("Estimated diabetes risk is %.0f%% (%s).", percentage, category),
		ValidityDays:    diabetesValidityDays,
	}
}

func diabetesTier(points int) (domain.RiskCategory, float64) {
	switch {
	case points <= 2:
		return domain.RiskLow, 5
	case points <= 5:
		return domain.RiskModerate, 15
	case points <= 8:
		return domain.RiskHigh, 30
	default:
		return domain.RiskVeryHigh, 50
	}
}
