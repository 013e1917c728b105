package esg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActions() []Action {
	return []Action{
		{Title: "Install Solar Panels", Category: CategoryEnvironmental, Priority: LevelMedium, Effort: LevelHigh},
		{Title: "Develop Code of Conduct", Category: CategoryGovernance, Priority: LevelHigh, Effort: LevelLow},
		{Title: "Start Recycling Program", Category: CategoryEnvironmental, Priority: LevelHigh, Effort: LevelLow},
		{Title: "Provide Health Insurance", Category: CategorySocial, Priority: LevelHigh, Effort: LevelMedium},
		{Title: "Implement Waste Segregation", Category: CategoryEnvironmental, Priority: LevelMedium, Effort: LevelLow},
		{Title: "Implement Safety Training Program", Category: CategorySocial, Priority: LevelHigh, Effort: LevelLow},
	}
}

func TestBuildRoadmapTimeframes(t *testing.T) {
	tests := []struct {
		timeframe  int
		wantPhases int
		wantDays   [][2]int
	}{
		{timeframe: 30, wantPhases: 1, wantDays: [][2]int{{0, 30}}},
		{timeframe: 60, wantPhases: 2, wantDays: [][2]int{{0, 30}, {31, 60}}},
		{timeframe: 90, wantPhases: 3, wantDays: [][2]int{{0, 30}, {31, 60}, {61, 90}}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			roadmap, err := BuildRoadmap(sampleActions(), tt.timeframe, 5)
			require.NoError(t, err)
			require.Len(t, roadmap.Phases, tt.wantPhases)
			assert.Len(t, roadmap.Items(), len(sampleActions()), "no action is dropped")

			for i, phase := range roadmap.Phases {
				assert.Equal(t, tt.wantDays[i][0], phase.StartDay)
				assert.Equal(t, tt.wantDays[i][1], phase.EndDay)
				for _, item := range phase.Items {
					assert.Equal(t, phase.Number, item.Phase)
					assert.Equal(t, phase.StartDay, item.StartDay)
					assert.Equal(t, phase.EndDay, item.EndDay)
				}
			}
		})
	}
}

func TestBuildRoadmapThirtyDaysIsSinglePhase(t *testing.T) {
	roadmap, err := BuildRoadmap(sampleActions(), 30, 5)
	require.NoError(t, err)
	for _, item := range roadmap.Items() {
		assert.Equal(t, 1, item.Phase, item.Title)
	}
}

func TestBuildRoadmapRejectsTimeframe(t *testing.T) {
	for _, tf := range []int{0, 15, 45, 120, -30} {
		_, err := BuildRoadmap(sampleActions(), tf, 5)
		assert.ErrorIs(t, err, ErrInvalidTimeframe, "timeframe %d", tf)
	}
}

func TestBuildRoadmapPlacementAndOrder(t *testing.T) {
	roadmap, err := BuildRoadmap(sampleActions(), 90, 5)
	require.NoError(t, err)

	titles := func(p Phase) []string {
		out := make([]string, 0, len(p.Items))
		for _, item := range p.Items {
			out = append(out, item.Title)
		}
		return out
	}

	assert.Equal(t, []string{
		"Start Recycling Program",
		"Implement Safety Training Program",
		"Develop Code of Conduct",
		"Implement Waste Segregation",
	}, titles(roadmap.Phases[0]))
	assert.Equal(t, []string{"Provide Health Insurance"}, titles(roadmap.Phases[1]))
	assert.Equal(t, []string{"Install Solar Panels"}, titles(roadmap.Phases[2]))
}

func TestBuildRoadmapSpillsIntoLastPhase(t *testing.T) {
	roadmap, err := BuildRoadmap(sampleActions(), 60, 5)
	require.NoError(t, err)

	var last []string
	for _, item := range roadmap.Phases[1].Items {
		last = append(last, item.Title)
	}
	assert.ElementsMatch(t, []string{"Provide Health Insurance", "Install Solar Panels"}, last)
}

func TestResponsibleRole(t *testing.T) {
	tests := []struct {
		category  Category
		employees int
		want      string
	}{
		{CategoryEnvironmental, 9, "Team Lead"},
		{CategorySocial, 10, "Department Manager"},
		{CategoryGovernance, 3, "Management"},
		{CategoryGovernance, 300, "Management"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResponsibleRole(tt.category, tt.employees))
	}
}

func TestActionsFromRecommendations(t *testing.T) {
	snap, err := newTestEngine().Score(smallProfile(), minimalInput())
	require.NoError(t, err)
	set := Recommend(minimalInput(), snap)

	actions := ActionsFromRecommendations(set.All)
	require.Len(t, actions, len(set.All))
	for i, a := range actions {
		assert.Equal(t, set.All[i].Title, a.Title)
		assert.Equal(t, set.All[i].EffortLevel, a.Effort)
	}
}
