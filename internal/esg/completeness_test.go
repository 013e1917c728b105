package esg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		completeness float64
		want         Confidence
	}{
		{0, ConfidenceLow},
		{39.99, ConfidenceLow},
		{40, ConfidenceMedium},
		{75, ConfidenceMedium},
		{75.01, ConfidenceHigh},
		{100, ConfidenceHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceFor(tt.completeness), "completeness %v", tt.completeness)
	}
}

func TestCompletenessCountsOnlyApplicableFields(t *testing.T) {
	c := MeasureCompleteness(smallProfile(), minimalInput())
	assert.Equal(t, 0.0, c.DataCompleteness)
	assert.NotContains(t, c.MissingFields, "solar_capacity_kw", "follow-up of an unanswered question")
	assert.Contains(t, c.MissingFields, "electricity_kwh")
	assert.Contains(t, c.MissingFields, "scope1_emissions")

	in := minimalInput()
	in.HasSolar = true
	c = MeasureCompleteness(smallProfile(), in)
	assert.Contains(t, c.MissingFields, "solar_capacity_kw")
}

func TestCompletenessIsMonotonic(t *testing.T) {
	p, in := smallProfile(), minimalInput()
	in.HasSolar = true
	in.WasteRecycling = true
	in.SafetyTrainingProvided = true

	steps := []func(){
		func() { in.ElectricityKwh = Some(800.0) },
		func() { in.ElectricityBillAmount = Some(90.0) },
		func() { p.OfficeAreaSqm = Some(0.0) },
		func() { in.WaterSource = WaterBorehole },
		func() { in.EmployeeBenefits = []string{"pension"} },
		func() { in.WorkplaceAccidentsLastYear = Some(0) },
		func() { in.SolarCapacityKw = Some(3.0) },
		func() { in.WasteRecyclingFrequency = FrequencyWeekly },
		func() { in.SafetyTrainingFrequency = FrequencyQuarterly },
		func() { in.AnnualRevenue = Some(250000.0) },
		func() { in.StakeholderEngagementFrequency = FrequencyNever },
	}

	prev := MeasureCompleteness(p, in).DataCompleteness
	for i, step := range steps {
		step()
		got := MeasureCompleteness(p, in).DataCompleteness
		assert.GreaterOrEqual(t, got, prev, "step %d lowered completeness", i)
		assert.LessOrEqual(t, got, 100.0)
		prev = got
	}
}

func TestAdvancedDisclosureIsSeparate(t *testing.T) {
	in := minimalInput()
	in.Scope1Emissions = Some(12.5)
	in.Scope2Emissions = Some(40.0)

	c := MeasureCompleteness(smallProfile(), in)
	assert.Equal(t, 0.0, c.DataCompleteness)
	assert.Equal(t, 20.0, c.AdvancedDisclosure)
	assert.NotContains(t, c.MissingFields, "scope1_emissions")
}
