package service

import "medrec-llm/internal/domain"

// Las recomendaciones se arman evaluando reglas independientes en orden
// fijo: primero las especificas por factor, despues las universales de
// estilo de vida y por ultimo las condicionadas por categoria. El orden
// solo fija la salida, no tiene peso semantico.

func cardioRecommendations(f domain.RiskFactors, category domain.RiskCategory) []string {
	var recs []string

	if f.Smoking == domain.SmokingCurrent {
		recs = append(recs, "Quit smoking: it is the single most effective change to lower cardiovascular risk.")
	}
	if f.SystolicBP != nil && *f.SystolicBP >= 140 {
		recs = append(recs, "Work with your doctor to bring blood pressure under control.")
	}
	if f.TotalCholesterol != nil && *f.TotalCholesterol >= 240 {
		recs = append(recs, "Reduce saturated fat intake to lower total cholesterol.")
	}
	if f.HDLCholesterol != nil && *f.HDLCholesterol < 40 {
		recs = append(recs, "Increase aerobic exercise to raise HDL cholesterol.")
	}

	recs = append(recs,
		"Maintain a balanced diet rich in vegetables, fruits and whole grains.",
		"Aim for at least 150 minutes of moderate exercise per week.",
	)

	if category == domain.RiskHigh || category == domain.RiskVeryHigh {
		recs = append(recs, "Schedule a cardiology consultation to review these results.")
	}
	if category == domain.RiskVeryHigh {
		recs = append(recs, "Discuss preventive medication options with your doctor.")
	}

	return recs
}

func diabetesRecommendations(f domain.RiskFactors, category domain.RiskCategory) []string {
	var recs []string

	if bmi := f.BMI(); bmi != nil && *bmi >= 25 {
		recs = append(recs, "A 5-10% weight reduction significantly lowers diabetes risk.")
	}
	if f.FastingGlucose != nil && *f.FastingGlucose >= 100 && *f.FastingGlucose <= 125 {
		recs = append(recs, "Fasting glucose is in the prediabetic range: monitor it every 3-6 months.")
	}
	if f.Smoking == domain.SmokingCurrent {
		recs = append(recs, "Quit smoking: it worsens insulin resistance.")
	}

	recs = append(recs,
		"Limit refined sugars and ultra-processed foods.",
		"Aim for at least 150 minutes of moderate exercise per week.",
	)

	if category == domain.RiskHigh || category == domain.RiskVeryHigh {
		recs = append(recs, "Ask your doctor for an oral glucose tolerance test.")
	}
	if category == domain.RiskVeryHigh {
		recs = append(recs, "Schedule an endocrinology consultation.")
	}

	return recs
}
