package service

import (
	"errors"
	"fmt"
	"math"

	"medrec-llm/internal/domain"
)

// ErrMissingRiskFactors indica que falta algun dato obligatorio para el
// calculo cardiovascular. El agregador lo absorbe como "no aplicable".
var ErrMissingRiskFactors = errors.New("missing required risk factors")

// CardioRiskScorer calcula riesgo cardiovascular a 10 anios estilo
// Framingham: tablas de puntos por bandas, sumadas de forma independiente.
type CardioRiskScorer struct{}

// DefaultCardioRiskScorer permite uso directo sin instanciar.
var DefaultCardioRiskScorer = CardioRiskScorer{}

// pointsBand asigna puntos al rango [Lo, Hi). La ultima banda cierra con +Inf.
type pointsBand struct {
	Lo     float64
	Hi     float64
	Points int
}

func bandPoints(bands []pointsBand, value float64) int {
	for _, b := range bands {
		if value >= b.Lo && value < b.Hi {
			return b.Points
		}
	}
	return 0
}

var cardioAgeBandsMale = []pointsBand{
	{0, 30, 0},
	{30, 35, 0},
	{35, 40, 2},
	{40, 45, 5},
	{45, 50, 6},
	{50, 55, 8},
	{55, 60, 10},
	{60, 65, 11},
	{65, 70, 12},
	{70, 75, 14},
	{75, math.Inf(1), 15},
}

var cardioAgeBandsFemale = []pointsBand{
	{0, 30, 0},
	{30, 35, 0},
	{35, 40, 2},
	{40, 45, 4},
	{45, 50, 5},
	{50, 55, 7},
	{55, 60, 8},
	{60, 65, 9},
	{65, 70, 10},
	{70, 75, 11},
	{75, math.Inf(1), 12},
}

var totalCholesterolBandsMale = []pointsBand{
	{0, 160, 0},
	{160, 200, 1},
	{200, 240, 2},
	{240, 280, 3},
	{280, math.Inf(1), 4},
}

var totalCholesterolBandsFemale = []pointsBand{
	{0, 160, 0},
	{160, 200, 1},
	{200, 240, 3},
	{240, 280, 4},
	{280, math.Inf(1), 5},
}

// Relacion inversa: menos HDL, mas puntos. Igual para ambos sexos.
var hdlBands = []pointsBand{
	{0, 40, 2},
	{40, 50, 1},
	{50, 60, 0},
	{60, math.Inf(1), -1},
}

var systolicBandsUntreated = []pointsBand{
	{0, 120, 0},
	{120, 140, 1},
	{140, 160, 2},
	{160, math.Inf(1), 3},
}

// Con hipertension tratada los cortes suben un escalon.
var systolicBandsTreated = []pointsBand{
	{0, 130, 0},
	{130, 150, 1},
	{150, 170, 2},
	{170, math.Inf(1), 3},
}

const (
	cardioSmokerPoints   = 4
	cardioDiabetesPoints = 3
	cardioValidityDays   = 365
)

// Score falla solo cuando falta un campo obligatorio; el resto de los
// factores suma si esta presente.
func (CardioRiskScorer) Score(factors domain.RiskFactors) (domain.RiskAssessment, error) {
	if err := validateCardioFactors(factors); err != nil {
		return domain.RiskAssessment{}, err
	}

	female := factors.Sex == domain.SexFemale

	points := 0
	if female {
		points += bandPoints(cardioAgeBandsFemale, float64(*factors.Age))
		points += bandPoints(totalCholesterolBandsFemale, *factors.TotalCholesterol)
	} else {
		points += bandPoints(cardioAgeBandsMale, float64(*factors.Age))
		points += bandPoints(totalCholesterolBandsMale, *factors.TotalCholesterol)
	}

	points += bandPoints(hdlBands, *factors.HDLCholesterol)

	if factors.HypertensionTreated != nil && *factors.HypertensionTreated {
		points += bandPoints(systolicBandsTreated, *factors.SystolicBP)
	} else {
		points += bandPoints(systolicBandsUntreated, *factors.SystolicBP)
	}

	if factors.Smoking == domain.SmokingCurrent {
		points += cardioSmokerPoints
	}
	if factors.Diabetic != nil && *factors.Diabetic {
		points += cardioDiabetesPoints
	}

	percentage := cardioPercentage(points)
	category := cardioCategory(points)

	return domain.RiskAssessment{
		Kind:            domain.AssessmentCardiovascular,
		Score:           points,
		Category:        category,
		PercentageRisk:  &percentage,
		Factors:         factors,
		Recommendations: cardioRecommendations(factors, category),
		Interpretation:  fmt.Sprintf("Estimated 10-year cardiovascular risk is %.0f%% (%s).", percentage, category),
		ValidityDays:    cardioValidityDays,
	}, nil
}

func validateCardioFactors(f domain.RiskFactors) error {
	// Cero en estos campos es fisiologicamente imposible: se trata igual
	// que ausente.
	switch {
	case f.Age == nil || *f.Age <= 0:
		return fmt.Errorf("%w: age", ErrMissingRiskFactors)
	case f.TotalCholesterol == nil || *f.TotalCholesterol <= 0:
		return fmt.Errorf("%w: total_cholesterol", ErrMissingRiskFactors)
	case f.HDLCholesterol == nil || *f.HDLCholesterol <= 0:
		return fmt.Errorf("%w: hdl_cholesterol", ErrMissingRiskFactors)
	case f.SystolicBP == nil || *f.SystolicBP <= 0:
		return fmt.Errorf("%w: systolic_bp", ErrMissingRiskFactors)
	}
	return nil
}

// cardioPercentage mapea puntos a porcentaje con pendiente distinta por
// tramo, con tope en 60%.
func cardioPercentage(points int) float64 {
	p := float64(points)
	var pct float64
	switch {
	case points <= 0:
		pct = 1
	case points <= 4:
		pct = 1 + p
	case points <= 9:
		pct = 5 + (p-4)*2
	case points <= 14:
		pct = 15 + (p-9)*4
	default:
		pct = 35 + (p-14)*6
	}
	if pct > 60 {
		pct = 60
	}
	return pct
}

func cardioCategory(points int) domain.RiskCategory {
	switch {
	case points <= 5:
		return domain.RiskLow
	case points <= 10:
		return domain.RiskModerate
	case points <= 15:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}
