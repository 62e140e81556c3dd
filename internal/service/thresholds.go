package service

import (
	"math"

	"medrec-llm/internal/domain"
)

// Tabla estatica de rangos saludables por biomarcador. Solo lectura,
// constante a nivel de proceso.
var biomarkerThresholds = map[string]domain.BiomarkerThreshold{
	domain.BiomarkerCholesterolTotal:  {Low: 125, High: 200, LowerIsBetter: true},
	domain.BiomarkerCholesterolLDL:    {Low: 0, High: 100, LowerIsBetter: true},
	domain.BiomarkerCholesterolHDL:    {Low: 40, High: 100, LowerIsBetter: false},
	domain.BiomarkerTriglycerides:     {Low: 0, High: 150, LowerIsBetter: true},
	domain.BiomarkerGlucose:           {Low: 70, High: 100, LowerIsBetter: true},
	domain.BiomarkerHbA1c:             {Low: 4.0, High: 5.7, LowerIsBetter: true},
	domain.BiomarkerCreatinine:        {Low: 0.6, High: 1.3, LowerIsBetter: true},
	domain.BiomarkerHeartRate:         {Low: 60, High: 100, LowerIsBetter: true},
	domain.BiomarkerQTcInterval:       {Low: 350, High: 450, LowerIsBetter: true},
	domain.BiomarkerSystolicPressure:  {Low: 90, High: 120, LowerIsBetter: true},
	domain.BiomarkerDiastolicPressure: {Low: 60, High: 80, LowerIsBetter: true},
}

// ThresholdFor devuelve el umbral del biomarcador. Para tipos desconocidos
// devuelve un rango abierto que permite analizar tendencia sin alertar.
func ThresholdFor(biomarkerType string) domain.BiomarkerThreshold {
	if th, ok := biomarkerThresholds[biomarkerType]; ok {
		return th
	}
	return domain.BiomarkerThreshold{Low: 0, High: math.Inf(1), LowerIsBetter: true}
}
