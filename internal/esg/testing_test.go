package esg

// Shared fixtures for the package tests

func smallProfile() BusinessProfile {
	return BusinessProfile{
		BusinessName:  "Green Grocer",
		Industry:      "Retail",
		EmployeeCount: 10,
		Location:      "Lagos",
	}
}

// minimalInput answers only what is required
func minimalInput() ESGInput {
	return ESGInput{
		TotalEmployees: 10,
		CodeOfConduct:  true,
	}
}

// exemplaryInput scores full marks in every category and fires no rule
func exemplaryInput() ESGInput {
	return ESGInput{
		ElectricityKwh:            Some(1000.0),
		ElectricityBillAmount:     Some(120.0),
		GeneratorUsageLiters:      Some(50.0),
		GeneratorUsageHours:       Some(20.0),
		HasSolar:                  true,
		SolarCapacityKw:           Some(12.0),
		EnergyEfficiencyMeasures:  []string{"LED lighting"},
		CarbonFootprintTracking:   true,
		RenewableEnergyPercentage: Some(40.0),
		WaterSource:               WaterMunicipal,
		WaterUsageLiters:          Some(20000.0),
		WaterConservationMeasures: []string{"low-flow taps"},
		WasteRecycling:            true,
		WasteRecyclingFrequency:   FrequencyDaily,
		WasteSegregation:          true,

		TotalEmployees:             50,
		FemaleEmployeesPercentage:  Some(48.0),
		SafetyTrainingProvided:     true,
		SafetyTrainingFrequency:    FrequencyMonthly,
		WorkplaceAccidentsLastYear: Some(0),
		EmployeeBenefits:           []string{"pension", "health", "gym", "training", "childcare"},
		DiversityPolicy:            true,
		HealthInsurance:            true,
		EmployeeTrainingHours:      Some(24.0),

		CodeOfConduct:                  true,
		AntiCorruptionPolicy:           true,
		DataPrivacyPolicy:              true,
		WhistleblowerPolicy:            true,
		BoardOversight:                 true,
		RiskManagementPolicy:           true,
		StakeholderEngagementFrequency: FrequencyQuarterly,
	}
}

func exemplaryProfile() BusinessProfile {
	p := smallProfile()
	p.OfficeAreaSqm = Some(100.0)
	return p
}

func strongSnapshot() Snapshot {
	return Snapshot{EnvironmentalScore: 90, SocialScore: 90, GovernanceScore: 90}
}

func newTestEngine() *Engine {
	e, err := NewEngine(DefaultWeights())
	if err != nil {
		panic(err)
	}
	return e
}
