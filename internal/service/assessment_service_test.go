package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esg-assess/internal/esg"
)

func TestAssessmentService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a profile", func(t *testing.T) {
		f := newFixture()
		_, err := f.assessments.Submit(ctx, 1, weakInput())
		assert.ErrorIs(t, err, ErrNoProfile)
	})

	t.Run("scores and stores ranked recommendations", func(t *testing.T) {
		f := newFixture()
		res := f.submitFor(1)

		require.NotNil(t, res.Assessment)
		assert.NotZero(t, res.Assessment.ID)
		assert.GreaterOrEqual(t, res.Assessment.Snapshot.OverallScore, 0.0)
		assert.LessOrEqual(t, res.Assessment.Snapshot.OverallScore, 100.0)
		assert.LessOrEqual(t, len(res.TopRecommendations), esg.TopCount)
		require.NotEmpty(t, res.TopRecommendations)
		for i, r := range res.TopRecommendations {
			assert.Equal(t, i+1, r.Rank)
			assert.Equal(t, res.Assessment.ID, r.SnapshotID)
		}
	})

	t.Run("total employees defaults to the profile", func(t *testing.T) {
		f := newFixture()
		_, err := f.profiles.Save(ctx, 1, sampleProfile())
		require.NoError(t, err)

		in := weakInput()
		in.TotalEmployees = 0
		res, err := f.assessments.Submit(ctx, 1, in)
		require.NoError(t, err)
		assert.Equal(t, 12, res.Assessment.Input.TotalEmployees)
	})

	t.Run("rejects input without a core policy", func(t *testing.T) {
		f := newFixture()
		_, err := f.profiles.Save(ctx, 1, sampleProfile())
		require.NoError(t, err)

		in := weakInput()
		in.CodeOfConduct = false
		_, err = f.assessments.Submit(ctx, 1, in)

		var verr *esg.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Messages, esg.MsgNoCorePolicy)
	})
}

func TestAssessmentService_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res := f.submitFor(1)
	id := res.Assessment.ID

	a, err := f.assessments.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)

	_, err = f.assessments.Get(ctx, 2, id)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.assessments.Get(ctx, 1, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.assessments.Dashboard(ctx, 2, id)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAssessmentService_HistoryAndLatest(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	history, err := f.assessments.History(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.assessments.Latest(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	first := f.submitFor(1)
	second, err := f.assessments.Submit(ctx, 1, weakInput())
	require.NoError(t, err)

	history, err = f.assessments.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.Assessment.ID, history[0].ID)
	assert.Equal(t, first.Assessment.ID, history[1].ID)

	latest, err := f.assessments.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second.Assessment.ID, latest.ID)
}

func TestAssessmentService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res := f.submitFor(1)
	id := res.Assessment.ID

	_, err := f.roadmap.Generate(ctx, 1, id, 90)
	require.NoError(t, err)
	items, err := f.roadmap.List(ctx, 1, id)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	_, err = f.roadmap.Complete(ctx, 1, items[0].ID)
	require.NoError(t, err)

	d, err := f.assessments.Dashboard(ctx, 1, id)
	require.NoError(t, err)

	assert.Equal(t, id, d.Assessment.ID)
	assert.Len(t, d.TopRecommendations, len(res.TopRecommendations))
	assert.Len(t, d.Roadmap, len(items))
	assert.Equal(t, 1, d.CompletedActions)
	assert.LessOrEqual(t, len(d.NextActions), esg.TopCount)
	assert.NotEmpty(t, d.NextActions)
	for _, next := range d.NextActions {
		assert.Nil(t, next.CompletedAt)
		assert.NotEqual(t, items[0].ID, next.ID)
	}
	assert.Equal(t, esg.MonthlyFocusText(res.Assessment.Snapshot), d.MonthlyFocus)
	assert.Equal(t, esg.LowestCategory(res.Assessment.Snapshot), d.Insights.MonthlyFocus.Category)
}
