package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
)

func TestRoadmapService_Generate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.submitFor(1).Assessment.ID

	t.Run("invalid timeframe", func(t *testing.T) {
		_, err := f.roadmap.Generate(ctx, 1, id, 45)
		assert.ErrorIs(t, err, esg.ErrInvalidTimeframe)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := f.roadmap.Generate(ctx, 2, id, 30)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("30 days keeps every action in phase 1", func(t *testing.T) {
		items, err := f.roadmap.Generate(ctx, 1, id, 30)
		require.NoError(t, err)
		require.NotEmpty(t, items)
		for _, it := range items {
			assert.Equal(t, 1, it.Phase)
			assert.Equal(t, models.RoadmapSourceGenerated, it.Source)
			assert.NotNil(t, it.RecommendationID, it.Title)
			assert.NotEmpty(t, it.ResponsibleRole)
		}
	})

	t.Run("regenerating replaces the generated plan and keeps manual items", func(t *testing.T) {
		manual, err := f.roadmap.AddItem(ctx, 1, id, AddItemRequest{Action: &esg.Action{
			Title:    "Install motion sensor lights",
			Category: esg.CategoryEnvironmental,
			Priority: esg.LevelLow,
			Effort:   esg.LevelLow,
		}})
		require.NoError(t, err)

		items, err := f.roadmap.Generate(ctx, 1, id, 90)
		require.NoError(t, err)

		generated := 0
		maxPhase := 0
		for _, it := range items {
			if it.Source == models.RoadmapSourceGenerated {
				generated++
				maxPhase = max(maxPhase, it.Phase)
			}
		}
		recs, err := f.recs.List(ctx, 1, id, true)
		require.NoError(t, err)
		assert.Equal(t, len(recs), generated)
		assert.LessOrEqual(t, maxPhase, 3)
		assert.NotContains(t, items, *manual)

		saved, err := f.roadmap.List(ctx, 1, id)
		require.NoError(t, err)
		assert.Contains(t, saved, *manual)
	})
}

func TestRoadmapService_GenerateWithManualItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res := f.submitFor(1)
	id := res.Assessment.ID
	top := res.TopRecommendations[0]

	_, err := f.roadmap.AddItem(ctx, 1, id, AddItemRequest{RecommendationID: &top.ID})
	require.NoError(t, err)
	_, err = f.roadmap.AddItem(ctx, 1, id, AddItemRequest{Action: &esg.Action{
		Title:    "Structural retrofit",
		Category: esg.CategoryEnvironmental,
		Priority: esg.LevelHigh,
		Effort:   esg.LevelHigh,
	}})
	require.NoError(t, err)

	tests := []struct {
		timeframe int
		maxPhase  int
	}{
		{30, 1},
		{60, 2},
		{90, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.timeframe), func(t *testing.T) {
			items, err := f.roadmap.Generate(ctx, 1, id, tt.timeframe)
			require.NoError(t, err)
			require.NotEmpty(t, items)

			seen := make(map[string]bool, len(items))
			for _, it := range items {
				assert.LessOrEqual(t, it.Phase, tt.maxPhase, it.Title)
				assert.Equal(t, models.RoadmapSourceGenerated, it.Source)
				assert.False(t, seen[it.Title], "duplicate title %q", it.Title)
				seen[it.Title] = true
			}
			assert.False(t, seen[top.Title], "an action added by hand is not planned again")
			assert.False(t, seen["Structural retrofit"])
		})
	}

	saved, err := f.roadmap.List(ctx, 1, id)
	require.NoError(t, err)
	titles := make(map[string]int, len(saved))
	for _, it := range saved {
		titles[it.Title]++
	}
	assert.Equal(t, 1, titles[top.Title])
	assert.Equal(t, 1, titles["Structural retrofit"])
}

func TestRoadmapService_AddItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res := f.submitFor(1)
	id := res.Assessment.ID
	rec := res.TopRecommendations[0]

	t.Run("from recommendation", func(t *testing.T) {
		item, err := f.roadmap.AddItem(ctx, 1, id, AddItemRequest{RecommendationID: &rec.ID})
		require.NoError(t, err)
		assert.Equal(t, rec.Title, item.Title)
		assert.Equal(t, &rec.ID, item.RecommendationID)
		assert.Equal(t, models.RoadmapSourceRecommendation, item.Source)
		assert.Equal(t, PhaseFor(rec.EffortLevel), item.Phase)
	})

	t.Run("same title twice is a conflict", func(t *testing.T) {
		_, err := f.roadmap.AddItem(ctx, 1, id, AddItemRequest{RecommendationID: &rec.ID})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("recommendation of another snapshot", func(t *testing.T) {
		other, err := f.assessments.Submit(ctx, 1, weakInput())
		require.NoError(t, err)
		_, err = f.roadmap.AddItem(ctx, 1, id, AddItemRequest{RecommendationID: &other.TopRecommendations[0].ID})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inline action is validated", func(t *testing.T) {
		_, err := f.roadmap.AddItem(ctx, 1, id, AddItemRequest{Action: &esg.Action{Title: "", Category: "X", Priority: "urgent", Effort: esg.LevelLow}})
		var verr *esg.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Messages, 3)
	})

	t.Run("high effort lands in the last phase", func(t *testing.T) {
		item, err := f.roadmap.AddItem(ctx, 1, id, AddItemRequest{Action: &esg.Action{
			Title:    "Install rooftop solar",
			Category: esg.CategoryEnvironmental,
			Priority: esg.LevelHigh,
			Effort:   esg.LevelHigh,
		}})
		require.NoError(t, err)
		assert.Equal(t, 3, item.Phase)
		assert.Equal(t, 61, item.StartDay)
		assert.Equal(t, 90, item.EndDay)
	})

	t.Run("neither recommendation nor action", func(t *testing.T) {
		_, err := f.roadmap.AddItem(ctx, 1, id, AddItemRequest{})
		var verr *esg.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestRoadmapService_Complete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.submitFor(1).Assessment.ID
	items, err := f.roadmap.Generate(ctx, 1, id, 60)
	require.NoError(t, err)

	_, err = f.roadmap.Complete(ctx, 2, items[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)

	done, err := f.roadmap.Complete(ctx, 1, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	again, err := f.roadmap.Complete(ctx, 1, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, done.CompletedAt, again.CompletedAt)

	_, err = f.roadmap.Complete(ctx, 1, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoadmapService_CompleteLatest(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.submitFor(1).Assessment.ID

	item, err := f.roadmap.completeLatest(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, item)

	items, err := f.roadmap.Generate(ctx, 1, id, 30)
	require.NoError(t, err)

	item, err = f.roadmap.completeLatest(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, items[len(items)-1].ID, item.ID)
}
