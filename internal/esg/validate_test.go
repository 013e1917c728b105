package esg

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ESGInput)
		wantMsgs  int
		wantMatch string
	}{
		{name: "minimal input is valid", mutate: func(*ESGInput) {}},
		{name: "exemplary input is valid", mutate: func(in *ESGInput) { *in = exemplaryInput() }},
		{name: "zero is a valid answer", mutate: func(in *ESGInput) { in.ElectricityKwh = Some(0.0) }},
		{
			name:      "no core policy",
			mutate:    func(in *ESGInput) { in.CodeOfConduct = false },
			wantMsgs:  1,
			wantMatch: "Core Policy",
		},
		{
			name:      "percentage above 100",
			mutate:    func(in *ESGInput) { in.RenewableEnergyPercentage = Some(120.0) },
			wantMsgs:  1,
			wantMatch: "renewable_energy_percentage must be less than or equal to 100",
		},
		{
			name:      "negative accidents",
			mutate:    func(in *ESGInput) { in.WorkplaceAccidentsLastYear = Some(-1) },
			wantMsgs:  1,
			wantMatch: "workplace_accidents_last_year",
		},
		{
			name:      "unknown water source",
			mutate:    func(in *ESGInput) { in.WaterSource = "river" },
			wantMsgs:  1,
			wantMatch: "water_source must be one of",
		},
		{
			name: "every problem is reported",
			mutate: func(in *ESGInput) {
				in.TotalEmployees = 0
				in.FemaleEmployeesPercentage = Some(101.0)
				in.CodeOfConduct = false
			},
			wantMsgs:  3,
			wantMatch: "total_employees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := minimalInput()
			tt.mutate(&in)

			err := ValidateInput(in)
			if tt.wantMsgs == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Len(t, verr.Messages, tt.wantMsgs)
			assert.Contains(t, verr.Error(), tt.wantMatch)
		})
	}
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, ValidateProfile(smallProfile()))

	p := smallProfile()
	p.BusinessName = ""
	p.EmployeeCount = 0
	p.OfficeAreaSqm = Some(-5.0)

	var verr *ValidationError
	require.True(t, errors.As(ValidateProfile(p), &verr))
	assert.Len(t, verr.Messages, 3)
}

func TestOptJSON(t *testing.T) {
	var in ESGInput
	require.NoError(t, json.Unmarshal([]byte(`{"electricity_kwh": 0, "generator_usage_liters": null, "total_employees": 4}`), &in))

	kwh, ok := in.ElectricityKwh.Get()
	assert.True(t, ok, "explicit zero is set")
	assert.Equal(t, 0.0, kwh)
	assert.False(t, in.GeneratorUsageLiters.IsSet(), "null is unset")
	assert.False(t, in.WaterUsageLiters.IsSet(), "absent is unset")

	out, err := json.Marshal(struct {
		A Opt[int] `json:"a"`
		B Opt[int] `json:"b"`
	}{A: Some(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 3, "b": null}`, string(out))
}
