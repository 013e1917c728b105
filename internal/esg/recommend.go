package esg

import (
	"fmt"
	"sort"
)

// TopCount is how many recommendations the dashboard highlights
const TopCount = 3

// Recommendation is one ranked improvement action
type Recommendation struct {
	RuleID          string      `json:"rule_id"`
	Category        Category    `json:"category"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Priority        Level       `json:"priority"`
	CostLevel       Level       `json:"cost_level"`
	EffortLevel     Level       `json:"effort_level"`
	RiskReduction   Level       `json:"risk_reduction"`
	Impact          ImpactRange `json:"esg_impact"`
	ImpactPoints    string      `json:"esg_impact_points"`
	WhyMatters      string      `json:"why_matters"`
	BusinessBenefit string      `json:"business_benefit"`
	Rank            int         `json:"rank"`
}

// Composite is the ranking score: expected gain counts most, cost counts
// against and risk reduction and priority count in favour
func (r Recommendation) Composite() float64 {
	return 3*r.Impact.Midpoint() -
		2*float64(r.CostLevel.Weight()) +
		float64(r.RiskReduction.Weight()) +
		float64(r.Priority.Weight())
}

// RecommendationSet is the ranked output of the recommendation engine
type RecommendationSet struct {
	All []Recommendation `json:"all"`
	Top []Recommendation `json:"top"`
}

// Recommend evaluates the catalog against a scored submission
func Recommend(in ESGInput, s Snapshot) RecommendationSet {
	return RecommendWith(Rules, in, s)
}

// RecommendWith evaluates the given rules. The result never holds two
// recommendations with the same title.
func RecommendWith(rules []Rule, in ESGInput, s Snapshot) RecommendationSet {
	fired := make([]Recommendation, 0, len(rules))
	for _, rule := range rules {
		if rule.When == nil || !rule.When(in, s) {
			continue
		}
		fired = append(fired, fromRule(rule, in, s))
	}

	ranked := Rank(fired)
	top := ranked
	if len(top) > TopCount {
		top = top[:TopCount]
	}
	return RecommendationSet{All: ranked, Top: top}
}

func fromRule(rule Rule, in ESGInput, s Snapshot) Recommendation {
	priority := rule.Priority
	if rule.Escalate != nil && rule.Escalate(in, s) {
		priority = LevelHigh
	}
	return Recommendation{
		RuleID:          rule.ID,
		Category:        rule.Category,
		Title:           rule.Title,
		Description:     rule.Description,
		Priority:        priority,
		CostLevel:       rule.Cost,
		EffortLevel:     rule.Effort,
		RiskReduction:   rule.Risk,
		Impact:          rule.Impact,
		ImpactPoints:    rule.Impact.String(),
		WhyMatters:      WhyMatters(rule.Category, s.CategoryScore(rule.Category)),
		BusinessBenefit: rule.BusinessBenefit,
	}
}

// WhyMatters explains a recommendation against the peer benchmark
func WhyMatters(c Category, score float64) string {
	if score < Benchmark {
		return fmt.Sprintf("Your %s score is %.0f/100, which is %.0f points below the industry benchmark of %.0f.",
			c.Name(), score, Benchmark-score, Benchmark)
	}
	return fmt.Sprintf("Your %s score is %.0f/100. Acting on this keeps you ahead of the industry benchmark of %.0f.",
		c.Name(), score, Benchmark)
}

// Rank removes duplicate titles, keeping the highest priority instance, then
// orders by composite score with ties broken by title. Ranks start at 1.
func Rank(recs []Recommendation) []Recommendation {
	byTitle := make(map[string]int, len(recs))
	unique := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if i, ok := byTitle[r.Title]; ok {
			if r.Priority.Weight() > unique[i].Priority.Weight() {
				unique[i] = r
			}
			continue
		}
		byTitle[r.Title] = len(unique)
		unique = append(unique, r)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		ci, cj := unique[i].Composite(), unique[j].Composite()
		if ci != cj {
			return ci > cj
		}
		return unique[i].Title < unique[j].Title
	})

	for i := range unique {
		unique[i].Rank = i + 1
	}
	return unique
}

// PhaseForEffort places an action in the roadmap: low effort goes first,
// high effort last, never beyond maxPhase
func PhaseForEffort(effort Level, maxPhase int) int {
	phase := 2
	switch effort {
	case LevelLow:
		phase = 1
	case LevelHigh:
		phase = 3
	}
	if maxPhase < 1 {
		maxPhase = 1
	}
	if phase > maxPhase {
		return maxPhase
	}
	return phase
}
