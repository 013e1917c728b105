package esg

import (
	"errors"
	"sort"
)

// ErrInvalidTimeframe is returned for a roadmap horizon other than 30, 60 or 90 days
var ErrInvalidTimeframe = errors.New("timeframe must be 30, 60 or 90")

const daysPerPhase = 30

// Action is a unit of work that can be scheduled on a roadmap
type Action struct {
	// RuleID links the action back to the recommendation rule, if any
	RuleID      string   `json:"rule_id,omitempty"`
	Title       string   `json:"action_title" validate:"required,max=255"`
	Description string   `json:"description"`
	Category    Category `json:"esg_category" validate:"oneof=E S G"`
	Priority    Level    `json:"priority" validate:"oneof=low medium high"`
	Effort      Level    `json:"effort_level" validate:"oneof=low medium high"`
}

// RoadmapItem is an action placed in a phase
type RoadmapItem struct {
	Action
	Phase           int    `json:"phase"`
	StartDay        int    `json:"start_day"`
	EndDay          int    `json:"end_day"`
	ResponsibleRole string `json:"responsible_role"`
}

// Phase is one 30-day window of the roadmap
type Phase struct {
	Number   int           `json:"phase"`
	StartDay int           `json:"start_day"`
	EndDay   int           `json:"end_day"`
	Items    []RoadmapItem `json:"items"`
}

// Roadmap is a phased action plan
type Roadmap struct {
	Timeframe int     `json:"timeframe"`
	Phases    []Phase `json:"phases"`
}

// Items flattens the roadmap in phase order
func (r Roadmap) Items() []RoadmapItem {
	var items []RoadmapItem
	for _, p := range r.Phases {
		items = append(items, p.Items...)
	}
	return items
}

// PhaseCount returns how many phases fit a timeframe
func PhaseCount(timeframe int) (int, error) {
	switch timeframe {
	case 30, 60, 90:
		return timeframe / daysPerPhase, nil
	default:
		return 0, ErrInvalidTimeframe
	}
}

// PhaseDays returns the first and last day of a phase. The first phase
// starts on day 0, later phases start the day after the previous one ends.
func PhaseDays(phase int) (int, int) {
	if phase <= 1 {
		return 0, daysPerPhase
	}
	return (phase-1)*daysPerPhase + 1, phase * daysPerPhase
}

// ResponsibleRole picks who owns an action. Governance belongs to
// management; other work goes to a team lead in small businesses.
func ResponsibleRole(c Category, employees int) string {
	if c == CategoryGovernance {
		return "Management"
	}
	if employees < 10 {
		return "Team Lead"
	}
	return "Department Manager"
}

// ActionsFromRecommendations turns recommendations into schedulable actions
func ActionsFromRecommendations(recs []Recommendation) []Action {
	actions := make([]Action, 0, len(recs))
	for _, r := range recs {
		actions = append(actions, Action{
			RuleID:      r.RuleID,
			Title:       r.Title,
			Description: r.Description,
			Category:    r.Category,
			Priority:    r.Priority,
			Effort:      r.EffortLevel,
		})
	}
	return actions
}

// BuildRoadmap spreads actions over the phases of a timeframe. Effort decides
// the phase; work that does not fit spills into the last phase.
func BuildRoadmap(actions []Action, timeframe, employees int) (Roadmap, error) {
	phases, err := PhaseCount(timeframe)
	if err != nil {
		return Roadmap{}, err
	}

	roadmap := Roadmap{Timeframe: timeframe, Phases: make([]Phase, phases)}
	for i := range roadmap.Phases {
		start, end := PhaseDays(i + 1)
		roadmap.Phases[i] = Phase{Number: i + 1, StartDay: start, EndDay: end, Items: []RoadmapItem{}}
	}

	for _, a := range actions {
		n := PhaseForEffort(a.Effort, phases)
		start, end := PhaseDays(n)
		roadmap.Phases[n-1].Items = append(roadmap.Phases[n-1].Items, RoadmapItem{
			Action:          a,
			Phase:           n,
			StartDay:        start,
			EndDay:          end,
			ResponsibleRole: ResponsibleRole(a.Category, employees),
		})
	}

	for i := range roadmap.Phases {
		SortItems(roadmap.Phases[i].Items)
	}
	return roadmap, nil
}

// SortItems orders items by priority, then category E, S, G, then title
func SortItems(items []RoadmapItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Priority.Weight() != b.Priority.Weight() {
			return a.Priority.Weight() > b.Priority.Weight()
		}
		if a.Category.order() != b.Category.order() {
			return a.Category.order() < b.Category.order()
		}
		return a.Title < b.Title
	})
}
