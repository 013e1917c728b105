package esg

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var categories = []Category{CategoryEnvironmental, CategorySocial, CategoryGovernance}

// LowestCategory returns the weakest pillar. Ties resolve in E, S, G order.
func LowestCategory(s Snapshot) Category {
	lowest := categories[0]
	for _, c := range categories[1:] {
		if s.CategoryScore(c) < s.CategoryScore(lowest) {
			lowest = c
		}
	}
	return lowest
}

// StrongestCategory returns the best pillar. Ties resolve in E, S, G order.
func StrongestCategory(s Snapshot) Category {
	best := categories[0]
	for _, c := range categories[1:] {
		if s.CategoryScore(c) > s.CategoryScore(best) {
			best = c
		}
	}
	return best
}

type insightText struct {
	focus    string
	risk     string
	quickWin string
}

var insightTexts = map[Category]insightText{
	CategoryEnvironmental: {
		focus:    "Implement energy efficiency measures",
		risk:     "Regulatory compliance and carbon footprint exposure",
		quickWin: "Switch to LED lighting",
	},
	CategorySocial: {
		focus:    "Enhance employee welfare programs",
		risk:     "Employee retention and workplace safety risks",
		quickWin: "Implement safety training program",
	},
	CategoryGovernance: {
		focus:    "Strengthen governance policies",
		risk:     "Compliance gaps and stakeholder trust issues",
		quickWin: "Draft code of conduct policy",
	},
}

// Focus is the action to work on this month
type Focus struct {
	Action   string   `json:"action"`
	Reason   string   `json:"reason"`
	Category Category `json:"category"`
}

// Risk is the largest exposure implied by the scores
type Risk struct {
	Description string   `json:"description"`
	Impact      Level    `json:"impact"`
	Category    Category `json:"category"`
}

// QuickWin is the cheapest visible improvement
type QuickWin struct {
	Action   string   `json:"action"`
	Effort   Level    `json:"effort"`
	Timeline string   `json:"timeline"`
	Category Category `json:"category"`
}

// DashboardInsights summarizes where to act next
type DashboardInsights struct {
	MonthlyFocus      Focus    `json:"monthly_focus"`
	BiggestRisk       Risk     `json:"biggest_risk"`
	FastestWin        QuickWin `json:"fastest_win"`
	StrongestCategory Category `json:"strongest_category"`
}

// Insights derives the dashboard guidance from the weakest pillar
func Insights(s Snapshot) DashboardInsights {
	lowest := LowestCategory(s)
	text := insightTexts[lowest]
	return DashboardInsights{
		MonthlyFocus: Focus{
			Action:   text.focus,
			Reason:   fmt.Sprintf("Your %s score (%.0f/100) needs immediate attention", lowest.Name(), s.CategoryScore(lowest)),
			Category: lowest,
		},
		BiggestRisk: Risk{
			Description: text.risk,
			Impact:      LevelHigh,
			Category:    lowest,
		},
		FastestWin: QuickWin{
			Action:   text.quickWin,
			Effort:   LevelLow,
			Timeline: "1-2 weeks",
			Category: lowest,
		},
		StrongestCategory: StrongestCategory(s),
	}
}

// MonthlyFocusText is the one-line answer to "what should I focus on"
func MonthlyFocusText(s Snapshot) string {
	in := Insights(s)
	return fmt.Sprintf("This month, focus on your %s area: %s. %s.",
		in.MonthlyFocus.Category.Name(), strings.ToLower(in.MonthlyFocus.Action), in.MonthlyFocus.Reason)
}

// Simulation is the projected effect of completing one recommendation
type Simulation struct {
	Category         Category `json:"category"`
	CurrentScore     float64  `json:"current_score"`
	ProjectedScore   float64  `json:"projected_score"`
	CurrentOverall   float64  `json:"current_overall"`
	ProjectedOverall float64  `json:"projected_overall"`
	OverallGain      float64  `json:"overall_gain"`
}

// SimulateImpact adds the midpoint of the recommendation's impact to its
// category and recomputes the overall score
func SimulateImpact(s Snapshot, r Recommendation, w Weights) Simulation {
	current := s.CategoryScore(r.Category)
	projected := clampScore(decimal.NewFromFloat(current).
		Add(decimal.NewFromFloat(r.Impact.Midpoint())).
		Round(2).InexactFloat64())

	env, social, gov := s.EnvironmentalScore, s.SocialScore, s.GovernanceScore
	switch r.Category {
	case CategoryEnvironmental:
		env = projected
	case CategorySocial:
		social = projected
	case CategoryGovernance:
		gov = projected
	}
	overall := OverallScore(env, social, gov, w)
	currentOverall := OverallScore(s.EnvironmentalScore, s.SocialScore, s.GovernanceScore, w)

	return Simulation{
		Category:         r.Category,
		CurrentScore:     current,
		ProjectedScore:   projected,
		CurrentOverall:   currentOverall,
		ProjectedOverall: overall,
		OverallGain:      decimal.NewFromFloat(overall).Sub(decimal.NewFromFloat(currentOverall)).InexactFloat64(),
	}
}

// Opportunity is an industry-specific improvement idea
type Opportunity struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     Category `json:"category"`
	Priority     Level    `json:"priority"`
	CostEstimate string   `json:"cost_estimate"`
	ESGImpact    string   `json:"esg_impact"`
}

type opportunitySeed struct {
	title    string
	category Category
	cost     string
	impact   string
}

var industryOpportunities = map[string][]opportunitySeed{
	"technology": {
		{"Green IT Infrastructure", CategoryEnvironmental, "$300-800", "+4-7 points"},
		{"Remote Work Policy", CategorySocial, "$100-300", "+3-6 points"},
		{"Data Privacy Framework", CategoryGovernance, "$200-500", "+5-8 points"},
	},
	"manufacturing": {
		{"Waste Reduction Program", CategoryEnvironmental, "$500-1200", "+6-9 points"},
		{"Worker Safety Training", CategorySocial, "$200-600", "+5-8 points"},
		{"Supply Chain Audits", CategoryGovernance, "$400-900", "+4-7 points"},
	},
	"retail": {
		{"Sustainable Packaging", CategoryEnvironmental, "$200-600", "+4-6 points"},
		{"Customer Service Training", CategorySocial, "$150-400", "+3-5 points"},
		{"Vendor Code of Conduct", CategoryGovernance, "$100-300", "+4-6 points"},
	},
}

var defaultOpportunities = []opportunitySeed{
	{"Energy Efficiency Audit", CategoryEnvironmental, "$200-500", "+3-5 points"},
	{"Employee Safety Training", CategorySocial, "$100-300", "+4-6 points"},
	{"Code of Conduct Policy", CategoryGovernance, "$50-200", "+5-8 points"},
}

// IndustryOpportunities lists improvement ideas for an industry, with the
// idea for the weakest pillar first and marked high priority
func IndustryOpportunities(p BusinessProfile, s Snapshot) []Opportunity {
	seeds, ok := industryOpportunities[strings.ToLower(strings.TrimSpace(p.Industry))]
	if !ok {
		seeds = defaultOpportunities
	}
	lowest := LowestCategory(s)

	out := make([]Opportunity, 0, len(seeds))
	for _, seed := range seeds {
		opp := Opportunity{
			Title:        seed.title,
			Description:  fmt.Sprintf("Tailored for %s with %d employees", strings.ToLower(p.Industry), p.EmployeeCount),
			Category:     seed.category,
			Priority:     LevelMedium,
			CostEstimate: seed.cost,
			ESGImpact:    seed.impact,
		}
		if seed.category == lowest {
			opp.Priority = LevelHigh
			out = append([]Opportunity{opp}, out...)
			continue
		}
		out = append(out, opp)
	}
	return out
}
