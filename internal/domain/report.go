package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// ReportCategory identifica el tipo de estudio medico subido.
type ReportCategory string

const (
	CategoryBloodTest ReportCategory = "BLOOD_TEST"
	CategoryECG       ReportCategory = "ECG"
	CategoryImaging   ReportCategory = "IMAGING"
	CategoryOther     ReportCategory = "OTHER"
)

// IsValid indica si la categoria es una de las conocidas.
func (c ReportCategory) IsValid() bool {
	switch c {
	case CategoryBloodTest, CategoryECG, CategoryImaging, CategoryOther:
		return true
	default:
		return false
	}
}

// Report es un estudio medico con sus hallazgos crudos y la interpretacion
// generada por el LLM. El embedding permite buscar estudios similares.
type Report struct {
	ID             string          `json:"id"`
	PatientID      string          `json:"patient_id"`
	Category       ReportCategory  `json:"category"`
	Findings       string          `json:"findings"`
	Interpretation string          `json:"interpretation,omitempty"`
	Embedding      pgvector.Vector `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}
