package service

import (
	"fmt"
	"strings"

	"medrec-llm/internal/domain"
)

// TrendEngine clasifica la evolucion de un biomarcador a partir de su
// historial. Funcion pura: mismo historial, mismo resultado.
type TrendEngine struct{}

// DefaultTrendEngine permite uso directo sin instanciar.
var DefaultTrendEngine = TrendEngine{}

const (
	// DefaultMinDataPoints es el minimo de mediciones para clasificar.
	DefaultMinDataPoints = 2

	// La regresion usa como maximo las ultimas 12 mediciones.
	maxRegressionPoints = 12

	// Banda muerta de +-5 (porcentaje del promedio por medicion) para
	// no clasificar ruido como mejora o empeoramiento.
	trendDeadband = 5.0
)

// ClassifyTrend espera el historial ordenado de mas reciente a mas viejo.
func (TrendEngine) ClassifyTrend(biomarkerType string, history []domain.BiomarkerObservation, minDataPoints int) domain.TrendResult {
	if minDataPoints <= 0 {
		minDataPoints = DefaultMinDataPoints
	}

	name := humanizeBiomarker(biomarkerType)

	if len(history) < minDataPoints {
		result := domain.TrendResult{
			BiomarkerType:  biomarkerType,
			Classification: domain.TrendInsufficientData,
			Interpretation: fmt.Sprintf("Not enough data for %s: at least %d measurements are required.", name, minDataPoints),
		}
		if len(history) > 0 {
			result.CurrentValue = history[0].Value
			result.DataPoints = dataPoints(history)
		}
		return result
	}

	capped := history
	if len(capped) > maxRegressionPoints {
		capped = capped[:maxRegressionPoints]
	}

	current := capped[0].Value
	previous := capped[1].Value

	var changePercent *float64
	if previous != 0 {
		// Con previo en cero el porcentaje no esta definido; se omite en
		// lugar de propagar Inf/NaN.
		cp := (current - previous) / previous * 100
		changePercent = &cp
	}

	// Regresion lineal simple valor vs indice, con indice 0 = mas viejo.
	values := make([]float64, 0, len(capped))
	for i := len(capped) - 1; i >= 0; i-- {
		values = append(values, capped[i].Value)
	}
	slope := olsSlope(values)
	mean := meanOf(values)

	direction := 0.0
	if mean != 0 {
		direction = slope / mean * 100
	}

	threshold := ThresholdFor(biomarkerType)
	classification := domain.TrendStable
	alert := ""

	if threshold.LowerIsBetter {
		switch {
		case direction < -trendDeadband:
			classification = domain.TrendImproving
		case direction > trendDeadband:
			classification = domain.TrendWorsening
			if current > threshold.High {
				alert = fmt.Sprintf("%s is at %.1f, above the healthy upper bound of %.1f", name, current, threshold.High)
			}
		}
	} else {
		switch {
		case direction > trendDeadband:
			classification = domain.TrendImproving
		case direction < -trendDeadband:
			classification = domain.TrendWorsening
			if current < threshold.Low {
				alert = fmt.Sprintf("%s is at %.1f, below the healthy lower bound of %.1f", name, current, threshold.Low)
			}
		}
	}

	return domain.TrendResult{
		BiomarkerType:  biomarkerType,
		CurrentValue:   current,
		PreviousValue:  &previous,
		ChangePercent:  changePercent,
		Classification: classification,
		Interpretation: trendInterpretation(name, classification, current, previous, changePercent),
		Alert:          alert,
		DataPoints:     dataPoints(capped),
	}
}

func trendInterpretation(name string, classification domain.TrendClassification, current, previous float64, changePercent *float64) string {
	var verb string
	switch classification {
	case domain.TrendImproving:
		verb = "is improving"
	case domain.TrendWorsening:
		verb = "is worsening"
	default:
		verb = "is stable"
	}

	if changePercent == nil {
		return fmt.Sprintf("%s %s, moving from %.1f to %.1f since the previous measurement.", name, verb, previous, current)
	}
	return fmt.Sprintf("%s %s, with a %+.1f%% change since the previous measurement.", name, verb, *changePercent)
}

// dataPoints devuelve los pares (fecha, valor) usados, del mas viejo al mas
// reciente, listos para graficar.
func dataPoints(history []domain.BiomarkerObservation) []domain.TrendPoint {
	points := make([]domain.TrendPoint, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		points = append(points, domain.TrendPoint{
			RecordedAt: history[i].RecordedAt,
			Value:      history[i].Value,
		})
	}
	return points
}

func humanizeBiomarker(biomarkerType string) string {
	return strings.ReplaceAll(biomarkerType, "_", " ")
}

func olsSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
