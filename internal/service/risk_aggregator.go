package service

import "medrec-llm/internal/domain"

// RiskAggregator combina los scorers disponibles en un puntaje de salud
// 0-100. Arranca en 100 y descuenta por categoria de riesgo y tabaquismo.
type RiskAggregator struct {
	cardio   CardioRiskScorer
	diabetes DiabetesRiskScorer
}

// NewRiskAggregator construye el agregador con los scorers por defecto.
func NewRiskAggregator() RiskAggregator {
	return RiskAggregator{
		cardio:   DefaultCardioRiskScorer,
		diabetes: DefaultDiabetesRiskScorer,
	}
}

var cardioDeductions = map[domain.RiskCategory]int{
	domain.RiskModerate: 10,
	domain.RiskHigh:     20,
	domain.RiskVeryHigh: 35,
}

var diabetesDeductions = map[domain.RiskCategory]int{
	domain.RiskModerate: 8,
	domain.RiskHigh:     15,
	domain.RiskVeryHigh: 25,
}

const (
	currentSmokerDeduction = 15
	formerSmokerDeduction  = 5
)

// Aggregate nunca falla: un scorer sin datos suficientes simplemente no
// aplica y no aporta descuento.
func (a RiskAggregator) Aggregate(factors domain.RiskFactors) domain.HealthSummary {
	summary := domain.HealthSummary{}
	score := 100

	if cardio, err := a.cardio.Score(factors); err == nil {
		summary.Cardiovascular = &cardio
		score -= cardioDeductions[cardio.Category]
	}

	if diabetesApplicable(factors) {
		diabetes := a.diabetes.Score(factors)
		summary.Diabetes = &diabetes
		score -= diabetesDeductions[diabetes.Category]
	}

	switch factors.Smoking {
	case domain.SmokingCurrent:
		score -= currentSmokerDeduction
	case domain.SmokingFormer:
		score -= formerSmokerDeduction
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	summary.HealthScore = score

	return summary
}

// diabetesApplicable exige edad y algun dato metabolico para que el score
// tenga sentido.
func diabetesApplicable(f domain.RiskFactors) bool {
	return f.Age != nil && (f.WeightKg != nil || f.FastingGlucose != nil)
}
