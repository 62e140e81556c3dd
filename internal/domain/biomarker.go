package domain

import "time"

// Identificadores de biomarcadores conocidos por el sistema.
const (
	BiomarkerCholesterolTotal  = "cholesterol_total"
	BiomarkerCholesterolHDL    = "cholesterol_hdl"
	BiomarkerCholesterolLDL    = "cholesterol_ldl"
	BiomarkerTriglycerides     = "triglycerides"
	BiomarkerGlucose           = "glucose"
	BiomarkerHbA1c             = "hba1c"
	BiomarkerCreatinine        = "creatinine"
	BiomarkerHeartRate         = "heart_rate"
	BiomarkerQTcInterval       = "qtc_interval"
	BiomarkerSystolicPressure  = "blood_pressure_systolic"
	BiomarkerDiastolicPressure = "blood_pressure_diastolic"
)

// BiomarkerObservation es una medicion puntual de un biomarcador.
// Inmutable una vez creada; pertenece al paciente que la registro.
type BiomarkerObservation struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	Type           string    `json:"type"`
	Value          float64   `json:"value"`
	Unit           string    `json:"unit"`
	RecordedAt     time.Time `json:"recorded_at"`
	SourceReportID *string   `json:"source_report_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// BiomarkerThreshold define el rango saludable y la direccionalidad de un
// biomarcador: LowerIsBetter=true significa que bajar es mejorar (LDL,
// glucosa); false lo contrario (HDL).
type BiomarkerThreshold struct {
	Low           float64 `json:"low"`
	High          float64 `json:"high"`
	LowerIsBetter bool    `json:"lower_is_better"`
}

// TrendClassification es el veredicto categorico sobre la serie historica.
type TrendClassification string

const (
	TrendImproving        TrendClassification = "IMPROVING"
	TrendWorsening        TrendClassification = "WORSENING"
	TrendStable           TrendClassification = "STABLE"
	TrendInsufficientData TrendClassification = "INSUFFICIENT_DATA"
)

// TrendPoint es un par (fecha, valor) para graficar.
type TrendPoint struct {
	RecordedAt time.Time `json:"recorded_at"`
	Value      float64   `json:"value"`
}

// TrendResult es el resultado derivado del analisis de tendencia.
// No se persiste: se recalcula en cada consulta a partir del historial.
type TrendResult struct {
	BiomarkerType  string              `json:"biomarker_type"`
	CurrentValue   float64             `json:"current_value"`
	PreviousValue  *float64            `json:"previous_value,omitempty"`
	ChangePercent  *float64            `json:"change_percent,omitempty"`
	Classification TrendClassification `json:"classification"`
	Interpretation string              `json:"interpretation"`
	Alert          string              `json:"alert,omitempty"`
	DataPoints     []TrendPoint        `json:"data_points"`
}
