package service

import (
	"testing"

	"medrec-llm/internal/domain"
)

func TestAggregateSmokerOnly(t *testing.T) {
	summary := NewRiskAggregator().Aggregate(domain.RiskFactors{
		Smoking: domain.SmokingCurrent,
	})

	if summary.Cardiovascular != nil {
		t.Fatalf("cardio should not apply without required fields")
	}
	if summary.Diabetes != nil {
		t.Fatalf("diabetes should not apply without age")
	}
	if summary.HealthScore != 85 {
		t.Fatalf("expected health score 85, got %d", summary.HealthScore)
	}
}

func TestAggregateHealthyProfileKeepsFullScore(t *testing.T) {
	summary := NewRiskAggregator().Aggregate(domain.RiskFactors{
		Age:              intPtr(30),
		Sex:              domain.SexFemale,
		TotalCholesterol: floatPtr(150),
		HDLCholesterol:   floatPtr(65),
		SystolicBP:       floatPtr(110),
		Smoking:          domain.SmokingNever,
		WeightKg:         floatPtr(60),
		HeightCm:         floatPtr(165),
	})

	if summary.Cardiovascular == nil || summary.Cardiovascular.Category != domain.RiskLow {
		t.Fatalf("expected LOW cardiovascular assessment")
	}
	if summary.Diabetes == nil || summary.Diabetes.Category != domain.RiskLow {
		t.Fatalf("expected LOW diabetes assessment")
	}
	if summary.HealthScore != 100 {
		t.Fatalf("expected health score 100, got %d", summary.HealthScore)
	}
}

func TestAggregateWorstCase(t *testing.T) {
	summary := NewRiskAggregator().Aggregate(domain.RiskFactors{
		Age:              intPtr(80),
		Sex:              domain.SexMale,
		TotalCholesterol: floatPtr(300),
		HDLCholesterol:   floatPtr(30),
		SystolicBP:       floatPtr(170),
		Smoking:          domain.SmokingCurrent,
		Diabetic:         boolPtr(true),
		WeightKg:         floatPtr(120),
		HeightCm:         floatPtr(160),
		WaistCm:          floatPtr(120),
		FamilyHistoryCVD: boolPtr(true),
		FastingGlucose:   floatPtr(110),
		HbA1c:            floatPtr(6.0),
	})

	if summary.Cardiovascular == nil || summary.Cardiovascular.Category != domain.RiskVeryHigh {
		t.Fatalf("expected VERY_HIGH cardiovascular")
	}
	if summary.Diabetes == nil || summary.Diabetes.Category != domain.RiskVeryHigh {
		t.Fatalf("expected VERY_HIGH diabetes")
	}
	// 100 - 35 - 25 - 15, acotado a [0, 100].
	if summary.HealthScore != 25 {
		t.Fatalf("expected health score 25, got %d", summary.HealthScore)
	}
}

func TestAggregateDiabetesRequiresMetabolicData(t *testing.T) {
	summary := NewRiskAggregator().Aggregate(domain.RiskFactors{
		Age: intPtr(50),
	})
	if summary.Diabetes != nil {
		t.Fatalf("diabetes needs weight or fasting glucose besides age")
	}

	withGlucose := NewRiskAggregator().Aggregate(domain.RiskFactors{
		Age:            intPtr(50),
		FastingGlucose: floatPtr(90),
	})
	if withGlucose.Diabetes == nil {
		t.Fatalf("diabetes should apply with age and fasting glucose")
	}
}

func TestAggregateFormerSmokerDeduction(t *testing.T) {
	summary := NewRiskAggregator().Aggregate(domain.RiskFactors{
		Smoking: domain.SmokingFormer,
	})
	if summary.HealthScore != 95 {
		t.Fatalf("expected health score 95, got %d", summary.HealthScore)
	}
}
