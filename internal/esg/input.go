// Package esg holds the ESG scoring, recommendation and roadmap engine.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// clock reads and no shared mutable state, so callers may score different
// assessments concurrently without coordination.
package esg

// Category is one of the three ESG pillars
type Category string

const (
	CategoryEnvironmental Category = "E"
	CategorySocial        Category = "S"
	CategoryGovernance    Category = "G"
)

// Name returns the lower-case pillar name used in user-facing text
func (c Category) Name() string {
	switch c {
	case CategoryEnvironmental:
		return "environmental"
	case CategorySocial:
		return "social"
	case CategoryGovernance:
		return "governance"
	default:
		return "unknown"
	}
}

// order is the stable presentation order E, S, G
func (c Category) order() int {
	switch c {
	case CategoryEnvironmental:
		return 0
	case CategorySocial:
		return 1
	case CategoryGovernance:
		return 2
	default:
		return 3
	}
}

// Level is a low/medium/high grade used for priority, cost, effort and risk
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Weight maps low, medium and high to 1, 2 and 3. Unknown levels weigh 0.
func (l Level) Weight() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

// WaterSource is where the business draws its water from
type WaterSource string

const (
	WaterMunicipal WaterSource = "municipal"
	WaterBorehole  WaterSource = "borehole"
	WaterBoth      WaterSource = "both"
	WaterRainwater WaterSource = "rainwater"
	WaterOther     WaterSource = "other"
)

// Frequency is how often a recurring practice happens
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
	FrequencyRarely    Frequency = "rarely"
	FrequencyNever     Frequency = "never"
)

// BusinessProfile describes the business being assessed
type BusinessProfile struct {
	BusinessName  string       `json:"business_name" validate:"required,max=255"`
	Industry      string       `json:"industry" validate:"required,max=100"`
	EmployeeCount int          `json:"employee_count" validate:"gte=1"`
	OfficeAreaSqm Opt[float64] `json:"office_area_sqm" validate:"omitempty,gte=0"`
	Location      string       `json:"location" validate:"max=255"`
}

// ESGInput is one submitted assessment. Booleans are answered checkboxes and
// default to false. Optional figures use Opt; optional choices use the empty
// string and optional lists are unset while empty.
type ESGInput struct {
	// Environmental: energy
	ElectricityKwh            Opt[float64] `json:"electricity_kwh" validate:"omitempty,gte=0"`
	ElectricityBillAmount     Opt[float64] `json:"electricity_bill_amount" validate:"omitempty,gte=0"`
	GeneratorUsageLiters      Opt[float64] `json:"generator_usage_liters" validate:"omitempty,gte=0"`
	GeneratorUsageHours       Opt[float64] `json:"generator_usage_hours" validate:"omitempty,gte=0"`
	HasSolar                  bool         `json:"has_solar"`
	SolarCapacityKw           Opt[float64] `json:"solar_capacity_kw" validate:"omitempty,gte=0"`
	EnergyEfficiencyMeasures  []string     `json:"energy_efficiency_measures" validate:"omitempty,dive,max=100"`
	CarbonFootprintTracking   bool         `json:"carbon_footprint_tracking"`
	RenewableEnergyPercentage Opt[float64] `json:"renewable_energy_percentage" validate:"omitempty,gte=0,lte=100"`

	// Environmental: water and waste
	WaterSource               WaterSource  `json:"water_source" validate:"omitempty,oneof=municipal borehole both rainwater other"`
	WaterUsageLiters          Opt[float64] `json:"water_usage_liters" validate:"omitempty,gte=0"`
	WaterConservationMeasures []string     `json:"water_conservation_measures" validate:"omitempty,dive,max=100"`
	WasteRecycling            bool         `json:"waste_recycling"`
	WasteRecyclingFrequency   Frequency    `json:"waste_recycling_frequency" validate:"omitempty,oneof=daily weekly monthly rarely"`
	WasteSegregation          bool         `json:"waste_segregation"`
	HazardousWasteManagement  bool         `json:"hazardous_waste_management"`
	PaperReductionInitiatives bool         `json:"paper_reduction_initiatives"`

	// Environmental: operations
	BusinessTravelPolicy    bool `json:"business_travel_policy"`
	RemoteWorkPolicy        bool `json:"remote_work_policy"`
	SustainableProcurement  bool `json:"sustainable_procurement"`
	SupplierESGRequirements bool `json:"supplier_esg_requirements"`

	// Social
	TotalEmployees             int          `json:"total_employees" validate:"gte=1"`
	FemaleEmployeesPercentage  Opt[float64] `json:"female_employees_percentage" validate:"omitempty,gte=0,lte=100"`
	SafetyTrainingProvided     bool         `json:"safety_training_provided"`
	SafetyTrainingFrequency    Frequency    `json:"safety_training_frequency" validate:"omitempty,oneof=monthly quarterly annually rarely"`
	WorkplaceAccidentsLastYear Opt[int]     `json:"workplace_accidents_last_year" validate:"omitempty,gte=0"`
	EmployeeBenefits           []string     `json:"employee_benefits" validate:"omitempty,dive,max=100"`
	DiversityPolicy            bool         `json:"diversity_policy"`
	HealthInsurance            bool         `json:"health_insurance"`
	MentalHealthSupport        bool         `json:"mental_health_support"`
	EmployeeTrainingHours      Opt[float64] `json:"employee_training_hours" validate:"omitempty,gte=0"`
	EmployeeSatisfactionSurvey bool         `json:"employee_satisfaction_survey"`
	FlexibleWorkArrangements   bool         `json:"flexible_work_arrangements"`

	// Social: community
	CommunityEngagement          bool `json:"community_engagement"`
	LocalHiringPreference        bool `json:"local_hiring_preference"`
	CharitableContributions      bool `json:"charitable_contributions"`
	CustomerSatisfactionTracking bool `json:"customer_satisfaction_tracking"`
	ProductSafetyStandards       bool `json:"product_safety_standards"`

	// Governance: core policies, at least one must be in place
	CodeOfConduct        bool `json:"code_of_conduct"`
	AntiCorruptionPolicy bool `json:"anti_corruption_policy"`
	DataPrivacyPolicy    bool `json:"data_privacy_policy"`
	WhistleblowerPolicy  bool `json:"whistleblower_policy"`
	BoardOversight       bool `json:"board_oversight"`
	RiskManagementPolicy bool `json:"risk_management_policy"`

	// Governance: secondary
	CybersecurityMeasures          bool      `json:"cybersecurity_measures"`
	RegulatoryComplianceTracking   bool      `json:"regulatory_compliance_tracking"`
	SustainabilityReporting        bool      `json:"sustainability_reporting"`
	StakeholderEngagement          bool      `json:"stakeholder_engagement"`
	ESGGoalsSet                    bool      `json:"esg_goals_set"`
	ThirdPartyAudits               bool      `json:"third_party_audits"`
	PublicESGCommitments           bool      `json:"public_esg_commitments"`
	StakeholderEngagementFrequency Frequency `json:"stakeholder_engagement_frequency" validate:"omitempty,oneof=monthly quarterly annually never"`

	// Advanced disclosures
	AnnualRevenue            Opt[float64] `json:"annual_revenue" validate:"omitempty,gte=0"`
	ESGBudgetPercentage      Opt[float64] `json:"esg_budget_percentage" validate:"omitempty,gte=0,lte=100"`
	Scope1Emissions          Opt[float64] `json:"scope1_emissions" validate:"omitempty,gte=0"`
	Scope2Emissions          Opt[float64] `json:"scope2_emissions" validate:"omitempty,gte=0"`
	Scope3Emissions          Opt[float64] `json:"scope3_emissions" validate:"omitempty,gte=0"`
	WaterIntensity           Opt[float64] `json:"water_intensity" validate:"omitempty,gte=0"`
	WasteGeneratedTons       Opt[float64] `json:"waste_generated_tons" validate:"omitempty,gte=0"`
	WasteRecycledPercentage  Opt[float64] `json:"waste_recycled_percentage" validate:"omitempty,gte=0,lte=100"`
	EmployeeTurnoverRate     Opt[float64] `json:"employee_turnover_rate" validate:"omitempty,gte=0,lte=100"`
	BoardDiversityPercentage Opt[float64] `json:"board_diversity_percentage" validate:"omitempty,gte=0,lte=100"`
}

// CorePolicies returns the six core governance policies keyed by field name,
// in display order
func (in ESGInput) CorePolicies() []Policy {
	return []Policy{
		{Field: "code_of_conduct", Name: "Code of Conduct", InPlace: in.CodeOfConduct, Points: 20},
		{Field: "anti_corruption_policy", Name: "Anti-Corruption Policy", InPlace: in.AntiCorruptionPolicy, Points: 20},
		{Field: "data_privacy_policy", Name: "Data Privacy Policy", InPlace: in.DataPrivacyPolicy, Points: 15},
		{Field: "whistleblower_policy", Name: "Whistleblower Policy", InPlace: in.WhistleblowerPolicy, Points: 15},
		{Field: "board_oversight", Name: "Board Oversight", InPlace: in.BoardOversight, Points: 15},
		{Field: "risk_management_policy", Name: "Risk Management Policy", InPlace: in.RiskManagementPolicy, Points: 15},
	}
}

// Policy is one core governance policy and the points it is worth
type Policy struct {
	Field   string
	Name    string
	InPlace bool
	Points  float64
}
