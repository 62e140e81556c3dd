package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"time"

	"medrec-llm/internal/domain"
)

// FindingsExtractor convierte hallazgos crudos (JSON estructurado o texto
// libre) en observaciones de biomarcadores. Nunca falla: cualquier anomalia
// degrada a un resultado parcial o vacio.
type FindingsExtractor struct{}

// DefaultFindingsExtractor permite uso directo sin instanciar.
var DefaultFindingsExtractor = FindingsExtractor{}

// structuredFindings cubre los campos estructurados conocidos por categoria.
// Punteros para distinguir campo ausente de valor cero.
type structuredFindings struct {
	Cholesterol *struct {
		Total         *float64 `json:"total"`
		HDL           *float64 `json:"hdl"`
		LDL           *float64 `json:"ldl"`
		Triglycerides *float64 `json:"triglycerides"`
	} `json:"cholesterol"`
	Glucose    *float64 `json:"glucose"`
	HbA1c      *float64 `json:"hba1c"`
	Creatinine *float64 `json:"creatinine"`
	HeartRate  *float64 `json:"heart_rate"`
	Intervals  *struct {
		QTc *float64 `json:"qtc"`
	} `json:"intervals"`
}

type textPattern struct {
	biomarker string
	unit      string
	re        *regexp.Regexp
}

// Patrones de texto en orden fijo de escaneo. Tolerantes a separadores
// (dos puntos, espacios) entre etiqueta y numero.
var fallbackPatterns = []textPattern{
	{domain.BiomarkerCholesterolTotal, "mg/dL", regexp.MustCompile(`(?i)total\s+cholesterol[^0-9]{0,15}([0-9]+(?:\.[0-9]+)?)`)},
	{domain.BiomarkerCholesterolHDL, "mg/dL", regexp.MustCompile(`(?i)\bhdl\b[^0-9]{0,15}([0-9]+(?:\.[0-9]+)?)`)},
	{domain.BiomarkerCholesterolLDL, "mg/dL", regexp.MustCompile(`(?i)\bldl\b[^0-9]{0,15}([0-9]+(?:\.[0-9]+)?)`)},
	{domain.BiomarkerGlucose, "mg/dL", regexp.MustCompile(`(?i)\bglucose\b[^0-9]{0,15}([0-9]+(?:\.[0-9]+)?)`)},
	{domain.BiomarkerHbA1c, "%", regexp.MustCompile(`(?i)\bhba1c\b[^0-9]{0,15}([0-9]+(?:\.[0-9]+)?)`)},
	{domain.BiomarkerHeartRate, "bpm", regexp.MustCompile(`(?i)heart\s*rate[^0-9]{0,15}([0-9]+(?:\.[0-9]+)?)`)},
}

var bloodPressureRe = regexp.MustCompile(`(?i)(?:blood\s*pressure|\bbp\b)[^0-9]{0,15}([0-9]{2,3})\s*/\s*([0-9]{2,3})`)

// Extract intenta primero el parseo estructurado y cae a patrones de texto
// si el payload no es JSON. Campo ausente = sin observacion (ausente != cero).
func (e FindingsExtractor) Extract(findingsPayload string, category domain.ReportCategory) []domain.BiomarkerObservation {
	recordedAt := time.Now().UTC()
	return e.ExtractAt(findingsPayload, category, recordedAt)
}

// ExtractAt es Extract con timestamp explicito, util para tests y reprocesos.
func (e FindingsExtractor) ExtractAt(findingsPayload string, category domain.ReportCategory, recordedAt time.Time) []domain.BiomarkerObservation {
	cleaned := cleanFindingsPayload(findingsPayload)
	if cleaned == "" {
		return nil
	}

	jsonObj := extractFirstJSONObject(cleaned)
	if jsonObj == "" {
		jsonObj = extractFirstJSONObject(findingsPayload)
	}

	if jsonObj != "" {
		var parsed structuredFindings
		if err := json.Unmarshal([]byte(jsonObj), &parsed); err == nil {
			return extractStructured(parsed, category, recordedAt)
		}
	}

	return extractFromText(cleaned, recordedAt)
}

func extractStructured(f structuredFindings, category domain.ReportCategory, recordedAt time.Time) []domain.BiomarkerObservation {
	var out []domain.BiomarkerObservation

	add := func(biomarkerType string, value *float64, unit string) {
		if value == nil {
			return
		}
		out = append(out, domain.BiomarkerObservation{
			Type:       biomarkerType,
			Value:      *value,
			Unit:       unit,
			RecordedAt: recordedAt,
		})
	}

	switch category {
	case domain.CategoryBloodTest:
		if f.Cholesterol != nil {
			add(domain.BiomarkerCholesterolTotal, f.Cholesterol.Total, "mg/dL")
			add(domain.BiomarkerCholesterolHDL, f.Cholesterol.HDL, "mg/dL")
			add(domain.BiomarkerCholesterolLDL, f.Cholesterol.LDL, "mg/dL")
			add(domain.BiomarkerTriglycerides, f.Cholesterol.Triglycerides, "mg/dL")
		}
		add(domain.BiomarkerGlucose, f.Glucose, "mg/dL")
		add(domain.BiomarkerHbA1c, f.HbA1c, "%")
		add(domain.BiomarkerCreatinine, f.Creatinine, "mg/dL")
	case domain.CategoryECG:
		add(domain.BiomarkerHeartRate, f.HeartRate, "bpm")
		if f.Intervals != nil {
			add(domain.BiomarkerQTcInterval, f.Intervals.QTc, "ms")
		}
	}

	return out
}

func extractFromText(text string, recordedAt time.Time) []domain.BiomarkerObservation {
	var out []domain.BiomarkerObservation

	for _, p := range fallbackPatterns {
		m := p.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			// Grupo capturado no numerico: se salta este patron y se sigue.
			continue
		}
		out = append(out, domain.BiomarkerObservation{
			Type:       p.biomarker,
			Value:      value,
			Unit:       p.unit,
			RecordedAt: recordedAt,
		})
	}

	// La presion arterial produce dos observaciones de un solo match.
	if m := bloodPressureRe.FindStringSubmatch(text); len(m) >= 3 {
		systolic, errS := strconv.ParseFloat(m[1], 64)
		diastolic, errD := strconv.ParseFloat(m[2], 64)
		if errS == nil && errD == nil {
			out = append(out,
				domain.BiomarkerObservation{
					Type:       domain.BiomarkerSystolicPressure,
					Value:      systolic,
					Unit:       "mmHg",
					RecordedAt: recordedAt,
				},
				domain.BiomarkerObservation{
					Type:       domain.BiomarkerDiastolicPressure,
					Value:      diastolic,
					Unit:       "mmHg",
					RecordedAt: recordedAt,
				},
			)
		}
	}

	return out
}
