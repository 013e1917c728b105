package esg

import "fmt"

// Benchmark is the category score a typical peer business reaches
const Benchmark = 70.0

// ImpactRange is the expected gain in ESG points from one action
type ImpactRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Midpoint is the expected gain used for ranking and simulation
func (r ImpactRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

func (r ImpactRange) String() string {
	return fmt.Sprintf("+%g to +%g ESG points", r.Min, r.Max)
}

// Rule is one entry of the recommendation catalog. When decides whether the
// rule fires. Escalate, if set, raises the priority to high.
type Rule struct {
	ID              string
	Category        Category
	Title           string
	Description     string
	Priority        Level
	Cost            Level
	Effort          Level
	Risk            Level
	Impact          ImpactRange
	BusinessBenefit string
	When            func(in ESGInput, s Snapshot) bool
	Escalate        func(in ESGInput, s Snapshot) bool
}

func below(c Category, threshold float64) func(ESGInput, Snapshot) bool {
	return func(_ ESGInput, s Snapshot) bool { return s.CategoryScore(c) < threshold }
}

// Rules is the recommendation catalog. Titles may repeat when several gaps
// lead to the same action; ranking keeps the highest priority instance.
var Rules = []Rule{
	{
		ID:              "env-energy-efficiency",
		Category:        CategoryEnvironmental,
		Title:           "Implement Energy Efficiency Measures",
		Description:     "Your energy consumption per employee is above average. Consider LED lighting, energy-efficient appliances, and smart thermostats.",
		Priority:        LevelHigh,
		Cost:            LevelMedium,
		Effort:          LevelMedium,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 4, Max: 7},
		BusinessBenefit: "Reduce energy consumption by 15-25% and lower operational costs.",
		When: func(_ ESGInput, s Snapshot) bool {
			perEmployee, ok := s.KwhPerEmployee.Get()
			return s.EnvironmentalScore < 60 && ok && perEmployee > 300
		},
	},
	{
		ID:              "env-generator",
		Category:        CategoryEnvironmental,
		Title:           "Reduce Generator Dependency",
		Description:     "High generator usage increases emissions. Consider solar backup or grid stabilization solutions.",
		Priority:        LevelMedium,
		Cost:            LevelHigh,
		Effort:          LevelHigh,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 3, Max: 6},
		BusinessBenefit: "Significantly reduce carbon footprint and fuel costs.",
		When: func(in ESGInput, s Snapshot) bool {
			return s.EnvironmentalScore < 60 && in.GeneratorUsageLiters.OrZero() > 50
		},
	},
	{
		ID:              "env-solar",
		Category:        CategoryEnvironmental,
		Title:           "Install Solar Panels",
		Description:     "Consider installing solar panels to reduce grid dependency and lower energy costs.",
		Priority:        LevelMedium,
		Cost:            LevelHigh,
		Effort:          LevelHigh,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 5, Max: 10},
		BusinessBenefit: "Reduce electricity costs by 30-50% and improve environmental score.",
		When: func(in ESGInput, s Snapshot) bool {
			return !in.HasSolar && in.RenewableEnergyPercentage.OrZero() < 20 && s.EnvironmentalScore < 70
		},
	},
	{
		ID:              "env-solar-backup",
		Category:        CategoryEnvironmental,
		Title:           "Install Solar Panels",
		Description:     "Heavy generator use makes solar backup the fastest way to cut fuel spend and emissions.",
		Priority:        LevelHigh,
		Cost:            LevelHigh,
		Effort:          LevelHigh,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 5, Max: 10},
		BusinessBenefit: "Replace diesel spend with free daytime power and cut generator emissions.",
		When: func(in ESGInput, _ Snapshot) bool {
			return !in.HasSolar && in.GeneratorUsageLiters.OrZero() > 100
		},
	},
	{
		ID:              "env-recycling",
		Category:        CategoryEnvironmental,
		Title:           "Start Recycling Program",
		Description:     "Implement a recycling program for paper, plastic, and electronic waste.",
		Priority:        LevelHigh,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 4, Max: 6},
		BusinessBenefit: "Improve waste management score and reduce environmental impact.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.WasteRecycling },
	},
	{
		ID:              "env-segregation",
		Category:        CategoryEnvironmental,
		Title:           "Implement Waste Segregation",
		Description:     "Set up separate bins for recyclables, organic waste, and general waste.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelLow,
		Impact:          ImpactRange{Min: 1, Max: 2},
		BusinessBenefit: "Improve recycling efficiency and reduce landfill waste.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.WasteSegregation },
	},
	{
		ID:              "env-water",
		Category:        CategoryEnvironmental,
		Title:           "Monitor Water Usage",
		Description:     "Track water consumption and implement water-saving measures like low-flow fixtures.",
		Priority:        LevelLow,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelLow,
		Impact:          ImpactRange{Min: 1, Max: 3},
		BusinessBenefit: "Reduce water consumption and operational costs.",
		When: func(in ESGInput, s Snapshot) bool {
			return in.WaterSource == WaterBorehole && s.EnvironmentalScore < 65
		},
	},
	{
		ID:              "env-carbon-tracking",
		Category:        CategoryEnvironmental,
		Title:           "Start Carbon Footprint Tracking",
		Description:     "Record monthly electricity, fuel and water use so emissions can be measured and reported.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 2, Max: 4},
		BusinessBenefit: "Prepare for customer and regulator emissions disclosure requests.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.CarbonFootprintTracking },
	},
	{
		ID:              "env-score-gap",
		Category:        CategoryEnvironmental,
		Title:           "Energy Efficiency Improvement",
		Description:     "Implement energy-saving measures to reduce electricity consumption and environmental impact.",
		Priority:        LevelMedium,
		Cost:            LevelMedium,
		Effort:          LevelMedium,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 5, Max: 8},
		BusinessBenefit: "Cost savings of $200-500/month, reduced regulatory risk, improved investor appeal",
		When:            below(CategoryEnvironmental, Benchmark),
		Escalate:        below(CategoryEnvironmental, 50),
	},
	{
		ID:              "soc-safety-training",
		Category:        CategorySocial,
		Title:           "Implement Safety Training Program",
		Description:     "Provide regular safety training sessions for all employees covering workplace hazards and emergency procedures.",
		Priority:        LevelHigh,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 5, Max: 8},
		BusinessBenefit: "Improve workplace safety, reduce accidents, and enhance employee well-being.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.SafetyTrainingProvided },
	},
	{
		ID:              "soc-training-frequency",
		Category:        CategorySocial,
		Title:           "Increase Safety Training Frequency",
		Description:     "Conduct safety training more frequently (quarterly or monthly) to keep safety practices top of mind.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 1, Max: 3},
		BusinessBenefit: "Maintain high safety standards and reduce workplace incidents.",
		When: func(in ESGInput, _ Snapshot) bool {
			return in.SafetyTrainingProvided &&
				(in.SafetyTrainingFrequency == FrequencyAnnually || in.SafetyTrainingFrequency == FrequencyRarely)
		},
	},
	{
		ID:              "soc-benefits",
		Category:        CategorySocial,
		Title:           "Expand Employee Benefits Package",
		Description:     "Consider adding benefits like health insurance, retirement plans, flexible work arrangements, or professional development opportunities.",
		Priority:        LevelMedium,
		Cost:            LevelMedium,
		Effort:          LevelMedium,
		Risk:            LevelLow,
		Impact:          ImpactRange{Min: 3, Max: 5},
		BusinessBenefit: "Improve employee satisfaction, retention, and attract top talent.",
		When:            func(in ESGInput, _ Snapshot) bool { return len(in.EmployeeBenefits) < 2 },
	},
	{
		ID:              "soc-health-insurance",
		Category:        CategorySocial,
		Title:           "Provide Health Insurance",
		Description:     "Offer health insurance coverage to employees to support their well-being.",
		Priority:        LevelHigh,
		Cost:            LevelMedium,
		Effort:          LevelMedium,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 5, Max: 7},
		BusinessBenefit: "Significantly improve employee satisfaction and social score.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.HealthInsurance },
	},
	{
		ID:              "soc-diversity",
		Category:        CategorySocial,
		Title:           "Develop Diversity and Inclusion Policy",
		Description:     "Create a formal diversity and inclusion policy that promotes equal opportunities for all employees.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelLow,
		Impact:          ImpactRange{Min: 3, Max: 5},
		BusinessBenefit: "Enhance workplace culture and improve social governance.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.DiversityPolicy },
	},
	{
		ID:              "soc-accidents",
		Category:        CategorySocial,
		Title:           "Reduce Workplace Accidents",
		Description:     "Investigate last year's incidents, fix root causes and run a hazard walk-through of the workplace.",
		Priority:        LevelHigh,
		Cost:            LevelMedium,
		Effort:          LevelMedium,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 3, Max: 6},
		BusinessBenefit: "Lower injury costs, downtime and insurance premiums.",
		When:            func(in ESGInput, _ Snapshot) bool { return in.WorkplaceAccidentsLastYear.OrZero() > 0 },
	},
	{
		ID:              "soc-score-gap",
		Category:        CategorySocial,
		Title:           "Employee Welfare Program",
		Description:     "Enhance employee benefits and safety measures to improve workplace satisfaction.",
		Priority:        LevelMedium,
		Cost:            LevelMedium,
		Effort:          LevelMedium,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 4, Max: 7},
		BusinessBenefit: "Reduced turnover costs, improved productivity, better talent attraction",
		When:            below(CategorySocial, Benchmark),
		Escalate:        below(CategorySocial, 50),
	},
	{
		ID:              "gov-code-of-conduct",
		Category:        CategoryGovernance,
		Title:           "Develop Code of Conduct",
		Description:     "Create a comprehensive code of conduct that outlines expected behaviors and ethical standards for all employees.",
		Priority:        LevelHigh,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 5, Max: 8},
		BusinessBenefit: "Establish clear ethical guidelines and improve governance framework.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.CodeOfConduct },
	},
	{
		ID:              "gov-anti-corruption",
		Category:        CategoryGovernance,
		Title:           "Implement Anti-Corruption Policy",
		Description:     "Develop and communicate an anti-corruption policy that prohibits bribery and unethical practices.",
		Priority:        LevelHigh,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 5, Max: 8},
		BusinessBenefit: "Strengthen ethical standards and reduce compliance risks.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.AntiCorruptionPolicy },
	},
	{
		ID:              "gov-data-privacy",
		Category:        CategoryGovernance,
		Title:           "Create Data Privacy Policy",
		Description:     "Establish a data privacy policy that complies with data protection regulations and protects customer and employee information.",
		Priority:        LevelHigh,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 4, Max: 6},
		BusinessBenefit: "Ensure data protection compliance and build trust with stakeholders.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.DataPrivacyPolicy },
	},
	{
		ID:              "gov-whistleblower",
		Category:        CategoryGovernance,
		Title:           "Establish Whistleblower Policy",
		Description:     "Create a confidential reporting mechanism for employees to report misconduct or unethical behavior.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelLow,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 4, Max: 6},
		BusinessBenefit: "Encourage transparency and early detection of issues.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.WhistleblowerPolicy },
	},
	{
		ID:              "gov-board-oversight",
		Category:        CategoryGovernance,
		Title:           "Implement Board Oversight Structure",
		Description:     "Establish governance oversight mechanisms, even if informal, to ensure accountability and strategic direction.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelMedium,
		Risk:            LevelMedium,
		Impact:          ImpactRange{Min: 4, Max: 6},
		BusinessBenefit: "Improve decision-making processes and governance structure.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.BoardOversight },
	},
	{
		ID:              "gov-risk-management",
		Category:        CategoryGovernance,
		Title:           "Develop Risk Management Policy",
		Description:     "Create a risk management framework to identify, assess, and mitigate business risks.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelMedium,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 4, Max: 6},
		BusinessBenefit: "Improve resilience and proactive risk management.",
		When:            func(in ESGInput, _ Snapshot) bool { return !in.RiskManagementPolicy },
	},
	{
		ID:              "gov-score-gap",
		Category:        CategoryGovernance,
		Title:           "Governance Framework",
		Description:     "Establish formal policies and procedures to strengthen organizational governance.",
		Priority:        LevelMedium,
		Cost:            LevelLow,
		Effort:          LevelMedium,
		Risk:            LevelHigh,
		Impact:          ImpactRange{Min: 6, Max: 10},
		BusinessBenefit: "Reduced compliance risk, improved stakeholder confidence, better access to capital",
		When:            below(CategoryGovernance, Benchmark),
		Escalate:        below(CategoryGovernance, 50),
	},
}
