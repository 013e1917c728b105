package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/testutil"
)

func scoreSample(t *testing.T) (esg.ESGInput, esg.Snapshot, esg.RecommendationSet) {
	t.Helper()

	engine, err := esg.NewEngine(esg.DefaultWeights())
	require.NoError(t, err)

	input := testutil.SampleInput()
	snapshot, err := engine.Score(testutil.SampleProfile(), input)
	require.NoError(t, err)
	return input, snapshot, esg.Recommend(input, snapshot)
}

func TestRepositories(t *testing.T) {
	pg := testutil.SetupPostgres(t)
	fx := testutil.SetupFixtures(t, pg.DB)
	ctx := context.Background()

	users := NewUserRepository(pg.DB)
	profiles := NewProfileRepository(pg.DB)
	assessments := NewAssessmentRepository(pg.DB)
	recommendations := NewRecommendationRepository(pg.DB)
	roadmap := NewRoadmapRepository(pg.DB)
	chat := NewChatRepository(pg.DB)
	audit := NewAuditRepository(pg.DB)

	t.Run("users", func(t *testing.T) {
		u := &models.User{Email: "new@test.com", PasswordHash: "hash", FirstName: "New"}
		require.NoError(t, users.Create(ctx, u))
		assert.NotZero(t, u.ID)

		err := users.Create(ctx, &models.User{Email: "new@test.com", PasswordHash: "hash"})
		assert.ErrorIs(t, err, ErrUserExists)

		got, err := users.GetByEmail(ctx, "new@test.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.True(t, got.IsActive)

		_, err = users.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, users.UpdateLastLogin(ctx, u.ID))
		got, err = users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.LastLoginAt)
	})

	t.Run("profile upsert keeps one row per user", func(t *testing.T) {
		p := testutil.SampleProfile()
		p.EmployeeCount = 40
		p.OfficeAreaSqm = esg.None[float64]()

		saved, err := profiles.Upsert(ctx, fx.RegularUser.ID, p)
		require.NoError(t, err)
		assert.Equal(t, fx.Profile.ID, saved.ID)
		assert.Equal(t, 40, saved.EmployeeCount)
		assert.False(t, saved.OfficeAreaSqm.IsSet())

		_, err = profiles.GetByUserID(ctx, fx.AdminUser.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	input, snapshot, recs := scoreSample(t)
	stored, storedRecs, err := assessments.Create(ctx, fx.Profile.ID, input, snapshot, recs.All)
	require.NoError(t, err)
	require.Len(t, storedRecs, len(recs.All))

	t.Run("assessment round trip", func(t *testing.T) {
		got, err := assessments.GetByID(ctx, stored.ID)
		require.NoError(t, err)

		assert.Equal(t, snapshot.EnvironmentalScore, got.Snapshot.EnvironmentalScore)
		assert.Equal(t, snapshot.SocialScore, got.Snapshot.SocialScore)
		assert.Equal(t, snapshot.GovernanceScore, got.Snapshot.GovernanceScore)
		assert.InDelta(t, snapshot.OverallScore, got.Snapshot.OverallScore, 1e-4)
		assert.Equal(t, snapshot.Confidence, got.Snapshot.Confidence)
		assert.ElementsMatch(t, snapshot.MissingFields, got.Snapshot.MissingFields)
		assert.True(t, snapshot.Carbon.YearlyKg.Equal(got.Snapshot.Carbon.YearlyKg))
		assert.Equal(t, snapshot.Breakdown, got.Snapshot.Breakdown)
		require.NotNil(t, got.Input)
		assert.Equal(t, input, *got.Input)

		owner, err := assessments.OwnerUserID(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, fx.RegularUser.ID, owner)

		latest, err := assessments.Latest(ctx, fx.Profile.ID)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, latest.ID)

		history, err := assessments.ListByProfile(ctx, fx.Profile.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("recommendations keep rank order", func(t *testing.T) {
		all, err := recommendations.ListBySnapshot(ctx, stored.ID, 0)
		require.NoError(t, err)
		require.Len(t, all, len(recs.All))
		for i, r := range all {
			assert.Equal(t, i+1, r.Rank)
			assert.Equal(t, recs.All[i].Title, r.Title)
		}

		top, err := recommendations.ListBySnapshot(ctx, stored.ID, esg.TopCount)
		require.NoError(t, err)
		assert.Len(t, top, min(esg.TopCount, len(recs.All)))

		got, err := recommendations.GetByID(ctx, all[0].ID)
		require.NoError(t, err)
		assert.Equal(t, all[0].Recommendation, got.Recommendation)
	})

	t.Run("roadmap", func(t *testing.T) {
		plan, err := esg.BuildRoadmap(esg.ActionsFromRecommendations(recs.All), 90, 12)
		require.NoError(t, err)

		items := make([]models.RoadmapItem, 0)
		for _, it := range plan.Items() {
			items = append(items, models.RoadmapItem{RoadmapItem: it})
		}
		_, err = roadmap.ReplaceGenerated(ctx, stored.ID, items)
		require.NoError(t, err)

		manual := &models.RoadmapItem{
			SnapshotID: stored.ID,
			RoadmapItem: esg.RoadmapItem{
				Action:          esg.Action{Title: "Publish a supplier charter", Category: esg.CategoryGovernance, Priority: esg.LevelMedium, Effort: esg.LevelMedium},
				Phase:           1,
				StartDay:        0,
				EndDay:          30,
				ResponsibleRole: "Management",
			},
			Source: models.RoadmapSourceChat,
		}
		require.NoError(t, roadmap.Create(ctx, manual))

		// regenerating replaces generated items only
		_, err = roadmap.ReplaceGenerated(ctx, stored.ID, items[:1])
		require.NoError(t, err)

		listed, err := roadmap.ListBySnapshot(ctx, stored.ID)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		for i := 1; i < len(listed); i++ {
			assert.LessOrEqual(t, listed[i-1].Phase, listed[i].Phase)
		}

		exists, err := roadmap.ExistsByTitle(ctx, stored.ID, "Publish a supplier charter")
		require.NoError(t, err)
		assert.True(t, exists)

		open, err := roadmap.LatestOpen(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, manual.ID, open.ID)

		done, err := roadmap.MarkCompleted(ctx, manual.ID)
		require.NoError(t, err)
		require.NotNil(t, done.CompletedAt)

		again, err := roadmap.MarkCompleted(ctx, manual.ID)
		require.NoError(t, err)
		assert.True(t, done.CompletedAt.Equal(*again.CompletedAt))

		openItems, err := roadmap.ListOpen(ctx, stored.ID)
		require.NoError(t, err)
		assert.Len(t, openItems, 1)

		_, err = roadmap.MarkCompleted(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("chat", func(t *testing.T) {
		session := &models.ChatSession{ID: uuid.NewString(), UserID: fx.RegularUser.ID, SnapshotID: stored.ID}
		require.NoError(t, chat.CreateSession(ctx, session))

		for _, content := range []string{"one", "two", "three"} {
			require.NoError(t, chat.AddMessage(ctx, &models.ChatMessage{SessionID: session.ID, Role: models.ChatRoleUser, Content: content}))
		}

		recent, err := chat.RecentMessages(ctx, session.ID, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "two", recent[0].Content)
		assert.Equal(t, "three", recent[1].Content)

		all, err := chat.ListMessages(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		removed, err := chat.DeleteSessionsBefore(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)

		_, err = chat.GetSession(ctx, session.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("audit", func(t *testing.T) {
		uid := fx.RegularUser.ID
		require.NoError(t, audit.Create(ctx, &models.AuditLog{UserID: &uid, Action: "assessment.submit", Resource: "/api/v1/assessments"}))
		require.NoError(t, audit.Create(ctx, &models.AuditLog{Action: "auth.login_failed", Resource: "/api/v1/auth/login"}))

		logs, total, err := audit.List(ctx, AuditFilter{UserID: &uid})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, logs, 1)
		require.NotNil(t, logs[0].UserEmail)
		assert.Equal(t, fx.RegularUser.Email, *logs[0].UserEmail)

		_, total, err = audit.List(ctx, AuditFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("stale assessments", func(t *testing.T) {
		candidates, err := assessments.ListStale(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, fx.RegularUser.Email, candidates[0].Email)

		candidates, err = assessments.ListStale(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}
