package domain

import "time"

// PatientProfile guarda los datos clinicos de base del paciente.
// Los campos opcionales usan punteros: nil significa "no informado",
// nunca se interpreta un cero legitimo como dato ausente.
type PatientProfile struct {
	UserID              string         `json:"user_id"`
	BirthYear           *int           `json:"birth_year,omitempty"`
	Sex                 BiologicalSex  `json:"sex,omitempty"`
	HeightCm            *float64       `json:"height_cm,omitempty"`
	WeightKg            *float64       `json:"weight_kg,omitempty"`
	WaistCm             *float64       `json:"waist_cm,omitempty"`
	Smoking             SmokingStatus  `json:"smoking,omitempty"`
	Diabetic            *bool          `json:"diabetic,omitempty"`
	HypertensionTreated *bool          `json:"hypertension_treated,omitempty"`
	FamilyHistoryCVD    *bool          `json:"family_history_cvd,omitempty"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Age deriva la edad a partir del anio de nacimiento.
func (p PatientProfile) Age(now time.Time) *int {
	if p.BirthYear == nil {
		return nil
	}
	age := now.UTC().Year() - *p.BirthYear
	if age < 0 {
		return nil
	}
	return &age
}
