package domain

import "time"

type BiologicalSex string

const (
	SexMale   BiologicalSex = "MALE"
	SexFemale BiologicalSex = "FEMALE"
)

type SmokingStatus string

const (
	SmokingNever   SmokingStatus = "NEVER"
	SmokingFormer  SmokingStatus = "FORMER"
	SmokingCurrent SmokingStatus = "CURRENT"
)

type RiskCategory string

const (
	RiskLow      RiskCategory = "LOW"
	RiskModerate RiskCategory = "MODERATE"
	RiskHigh     RiskCategory = "HIGH"
	RiskVeryHigh RiskCategory = "VERY_HIGH"
)

// Tipos de evaluacion de riesgo que produce el agregador.
const (
	AssessmentCardiovascular = "cardiovascular"
	AssessmentDiabetes       = "diabetes"
)

// RiskFactors es la foto de factores de riesgo con la que se evalua a un
// paciente. Se arma por pedido desde el perfil mas los ultimos biomarcadores
// y no se persiste como tal. Punteros: nil = dato ausente.
type RiskFactors struct {
	Age                 *int          `json:"age,omitempty"`
	Sex                 BiologicalSex `json:"sex,omitempty"`
	TotalCholesterol    *float64      `json:"total_cholesterol,omitempty"`
	HDLCholesterol      *float64      `json:"hdl_cholesterol,omitempty"`
	SystolicBP          *float64      `json:"systolic_bp,omitempty"`
	Smoking             SmokingStatus `json:"smoking,omitempty"`
	Diabetic            *bool         `json:"diabetic,omitempty"`
	HypertensionTreated *bool         `json:"hypertension_treated,omitempty"`
	WeightKg            *float64      `json:"weight_kg,omitempty"`
	HeightCm            *float64      `json:"height_cm,omitempty"`
	WaistCm             *float64      `json:"waist_cm,omitempty"`
	FastingGlucose      *float64      `json:"fasting_glucose,omitempty"`
	HbA1c               *float64      `json:"hba1c,omitempty"`
	FamilyHistoryCVD    *bool         `json:"family_history_cvd,omitempty"`
}

// BMI calcula el indice de masa corporal si hay peso y altura.
func (f RiskFactors) BMI() *float64 {
	if f.WeightKg == nil || f.HeightCm == nil || *f.HeightCm <= 0 {
		return nil
	}
	meters := *f.HeightCm / 100.0
	bmi := *f.WeightKg / (meters * meters)
	return &bmi
}

// RiskAssessment es el resultado de un scorer. Se persiste con vencimiento
// y se reemplaza (nunca se muta) en la siguiente evaluacion.
type RiskAssessment struct {
	ID              string       `json:"id"`
	PatientID       string       `json:"patient_id"`
	Kind            string       `json:"kind"`
	Score           int          `json:"score"`
	Category        RiskCategory `json:"category"`
	PercentageRisk  *float64     `json:"percentage_risk,omitempty"`
	Factors         RiskFactors  `json:"factors"`
	Recommendations []string     `json:"recommendations"`
	Interpretation  string       `json:"interpretation"`
	ValidityDays    int          `json:"validity_days"`
	ExpiresAt       time.Time    `json:"expires_at"`
	CreatedAt       time.Time    `json:"created_at"`
}

// HealthSummary combina las evaluaciones disponibles en un puntaje 0-100.
type HealthSummary struct {
	Cardiovascular *RiskAssessment `json:"cardiovascular,omitempty"`
	Diabetes       *RiskAssessment `json:"diabetes,omitempty"`
	HealthScore    int             `json:"health_score"`
}
