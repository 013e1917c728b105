package service

import (
	"context"
	"time"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

// The interfaces below describe what the services need from the repositories.
// The concrete repositories satisfy them; tests substitute in-memory fakes.

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint) error
	SetAdmin(ctx context.Context, userID uint, isAdmin bool) error
	CountAll(ctx context.Context) (int, error)
}

type profileStore interface {
	Upsert(ctx context.Context, userID uint, p esg.BusinessProfile) (*models.BusinessProfile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.BusinessProfile, error)
	GetByID(ctx context.Context, id uint) (*models.BusinessProfile, error)
}

type assessmentStore interface {
	Create(ctx context.Context, profileID uint, input esg.ESGInput, snapshot esg.Snapshot, recs []esg.Recommendation) (*models.Assessment, []models.Recommendation, error)
	GetByID(ctx context.Context, id uint) (*models.Assessment, error)
	Latest(ctx context.Context, profileID uint) (*models.Assessment, error)
	ListByProfile(ctx context.Context, profileID uint) ([]models.Assessment, error)
	OwnerUserID(ctx context.Context, snapshotID uint) (uint, error)
}

type recommendationStore interface {
	ListBySnapshot(ctx context.Context, snapshotID uint, limit uint64) ([]models.Recommendation, error)
	GetByID(ctx context.Context, id uint) (*models.Recommendation, error)
}

type roadmapStore interface {
	ReplaceGenerated(ctx context.Context, snapshotID uint, items []models.RoadmapItem) ([]models.RoadmapItem, error)
	Create(ctx context.Context, item *models.RoadmapItem) error
	ListBySnapshot(ctx context.Context, snapshotID uint) ([]models.RoadmapItem, error)
	ListOpen(ctx context.Context, snapshotID uint) ([]models.RoadmapItem, error)
	GetByID(ctx context.Context, id uint) (*models.RoadmapItem, error)
	LatestOpen(ctx context.Context, snapshotID uint) (*models.RoadmapItem, error)
	ExistsByTitle(ctx context.Context, snapshotID uint, title string) (bool, error)
	MarkCompleted(ctx context.Context, id uint) (*models.RoadmapItem, error)
}

type chatStore interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	AddMessage(ctx context.Context, msg *models.ChatMessage) error
	RecentMessages(ctx context.Context, sessionID string, limit uint64) ([]models.ChatMessage, error)
	ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, int, error)
}

var (
	_ userStore           = (*repository.UserRepository)(nil)
	_ profileStore        = (*repository.ProfileRepository)(nil)
	_ assessmentStore     = (*repository.AssessmentRepository)(nil)
	_ recommendationStore = (*repository.RecommendationRepository)(nil)
	_ roadmapStore        = (*repository.RoadmapRepository)(nil)
	_ chatStore           = (*repository.ChatRepository)(nil)
	_ auditStore          = (*repository.AuditRepository)(nil)
)

// snapshotOwner checks that a snapshot belongs to the caller. A snapshot of
// another user is reported as forbidden, a missing one as not found.
type snapshotOwner struct {
	assessments assessmentStore
}

func (o snapshotOwner) authorize(ctx context.Context, userID, snapshotID uint) error {
	owner, err := o.assessments.OwnerUserID(ctx, snapshotID)
	if err != nil {
		return notFound(err, "assessment")
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}
