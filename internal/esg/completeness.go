package esg

import "github.com/shopspring/decimal"

// Confidence grades how much of the optional data backs a snapshot
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ConfidenceFor maps a completeness percentage to a confidence level.
// Below 40 is low, 40 through 75 is medium and above 75 is high.
func ConfidenceFor(completeness float64) Confidence {
	switch {
	case completeness < 40:
		return ConfidenceLow
	case completeness <= 75:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

type optionalField struct {
	name string
	// applies is nil for fields that are always asked
	applies func(BusinessProfile, ESGInput) bool
	set     func(BusinessProfile, ESGInput) bool
}

func listSet(l []string) bool { return len(l) > 0 }

// coreFields are the optional answers that drive data completeness. Follow-up
// questions only count when the question that unlocks them was answered yes.
var coreFields = []optionalField{
	{name: "office_area_sqm", set: func(p BusinessProfile, _ ESGInput) bool { return p.OfficeAreaSqm.IsSet() }},
	{name: "electricity_kwh", set: func(_ BusinessProfile, in ESGInput) bool { return in.ElectricityKwh.IsSet() }},
	{name: "electricity_bill_amount", set: func(_ BusinessProfile, in ESGInput) bool { return in.ElectricityBillAmount.IsSet() }},
	{name: "generator_usage_liters", set: func(_ BusinessProfile, in ESGInput) bool { return in.GeneratorUsageLiters.IsSet() }},
	{name: "generator_usage_hours", set: func(_ BusinessProfile, in ESGInput) bool { return in.GeneratorUsageHours.IsSet() }},
	{
		name:    "solar_capacity_kw",
		applies: func(_ BusinessProfile, in ESGInput) bool { return in.HasSolar },
		set:     func(_ BusinessProfile, in ESGInput) bool { return in.SolarCapacityKw.IsSet() },
	},
	{name: "energy_efficiency_measures", set: func(_ BusinessProfile, in ESGInput) bool { return listSet(in.EnergyEfficiencyMeasures) }},
	{name: "renewable_energy_percentage", set: func(_ BusinessProfile, in ESGInput) bool { return in.RenewableEnergyPercentage.IsSet() }},
	{name: "water_source", set: func(_ BusinessProfile, in ESGInput) bool { return in.WaterSource != "" }},
	{name: "water_usage_liters", set: func(_ BusinessProfile, in ESGInput) bool { return in.WaterUsageLiters.IsSet() }},
	{name: "water_conservation_measures", set: func(_ BusinessProfile, in ESGInput) bool { return listSet(in.WaterConservationMeasures) }},
	{
		name:    "waste_recycling_frequency",
		applies: func(_ BusinessProfile, in ESGInput) bool { return in.WasteRecycling },
		set:     func(_ BusinessProfile, in ESGInput) bool { return in.WasteRecyclingFrequency != "" },
	},
	{name: "female_employees_percentage", set: func(_ BusinessProfile, in ESGInput) bool { return in.FemaleEmployeesPercentage.IsSet() }},
	{
		name:    "safety_training_frequency",
		applies: func(_ BusinessProfile, in ESGInput) bool { return in.SafetyTrainingProvided },
		set:     func(_ BusinessProfile, in ESGInput) bool { return in.SafetyTrainingFrequency != "" },
	},
	{name: "workplace_accidents_last_year", set: func(_ BusinessProfile, in ESGInput) bool { return in.WorkplaceAccidentsLastYear.IsSet() }},
	{name: "employee_benefits", set: func(_ BusinessProfile, in ESGInput) bool { return listSet(in.EmployeeBenefits) }},
	{name: "employee_training_hours", set: func(_ BusinessProfile, in ESGInput) bool { return in.EmployeeTrainingHours.IsSet() }},
	{name: "stakeholder_engagement_frequency", set: func(_ BusinessProfile, in ESGInput) bool { return in.StakeholderEngagementFrequency != "" }},
}

// advancedFields are disclosures most small businesses cannot answer yet.
// They are reported separately so they do not drag confidence down.
var advancedFields = []optionalField{
	{name: "annual_revenue", set: func(_ BusinessProfile, in ESGInput) bool { return in.AnnualRevenue.IsSet() }},
	{name: "esg_budget_percentage", set: func(_ BusinessProfile, in ESGInput) bool { return in.ESGBudgetPercentage.IsSet() }},
	{name: "scope1_emissions", set: func(_ BusinessProfile, in ESGInput) bool { return in.Scope1Emissions.IsSet() }},
	{name: "scope2_emissions", set: func(_ BusinessProfile, in ESGInput) bool { return in.Scope2Emissions.IsSet() }},
	{name: "scope3_emissions", set: func(_ BusinessProfile, in ESGInput) bool { return in.Scope3Emissions.IsSet() }},
	{name: "water_intensity", set: func(_ BusinessProfile, in ESGInput) bool { return in.WaterIntensity.IsSet() }},
	{name: "waste_generated_tons", set: func(_ BusinessProfile, in ESGInput) bool { return in.WasteGeneratedTons.IsSet() }},
	{name: "waste_recycled_percentage", set: func(_ BusinessProfile, in ESGInput) bool { return in.WasteRecycledPercentage.IsSet() }},
	{name: "employee_turnover_rate", set: func(_ BusinessProfile, in ESGInput) bool { return in.EmployeeTurnoverRate.IsSet() }},
	{name: "board_diversity_percentage", set: func(_ BusinessProfile, in ESGInput) bool { return in.BoardDiversityPercentage.IsSet() }},
}

// Completeness is the data coverage of one submission
type Completeness struct {
	// Percentage of applicable core optional fields that were answered
	DataCompleteness float64 `json:"data_completeness"`
	// Percentage of advanced disclosures that were answered
	AdvancedDisclosure float64    `json:"advanced_disclosure"`
	MissingFields      []string   `json:"missing_fields"`
	Confidence         Confidence `json:"confidence_level"`
}

// MeasureCompleteness counts populated optional fields. Setting another field
// never lowers the percentage.
func MeasureCompleteness(p BusinessProfile, in ESGInput) Completeness {
	core, missing := coverage(coreFields, p, in)
	advanced, missingAdvanced := coverage(advancedFields, p, in)
	return Completeness{
		DataCompleteness:   core,
		AdvancedDisclosure: advanced,
		MissingFields:      append(missing, missingAdvanced...),
		Confidence:         ConfidenceFor(core),
	}
}

func coverage(fields []optionalField, p BusinessProfile, in ESGInput) (float64, []string) {
	applicable, populated := 0, 0
	missing := []string{}
	for _, f := range fields {
		if f.applies != nil && !f.applies(p, in) {
			continue
		}
		applicable++
		if f.set(p, in) {
			populated++
		} else {
			missing = append(missing, f.name)
		}
	}
	if applicable == 0 {
		return 100, missing
	}
	pct := decimal.NewFromInt(int64(populated)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(applicable))).
		Round(2)
	return pct.InexactFloat64(), missing
}
