package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/repository"
)

// memDB is an in-memory stand-in for the repositories. Each store view below
// shares its state so services wired together see the same data.
type memDB struct {
	mu          sync.Mutex
	nextID      uint
	users       map[uint]*models.User
	profiles    map[uint]*models.BusinessProfile
	assessments map[uint]*models.Assessment
	recs        []models.Recommendation
	roadmap     []models.RoadmapItem
	sessions    map[string]*models.ChatSession
	messages    []models.ChatMessage
	audit       []models.AuditLog
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[uint]*models.User{},
		profiles:    map[uint]*models.BusinessProfile{},
		assessments: map[uint]*models.Assessment{},
		sessions:    map[string]*models.ChatSession{},
	}
}

func (m *memDB) id() uint {
	m.nextID++
	return m.nextID
}

type (
	fakeUsers       struct{ *memDB }
	fakeProfiles    struct{ *memDB }
	fakeAssessments struct{ *memDB }
	fakeRecs        struct{ *memDB }
	fakeRoadmap     struct{ *memDB }
	fakeChats       struct{ *memDB }
	fakeAudit       struct{ *memDB }
)

var (
	_ userStore           = fakeUsers{}
	_ profileStore        = fakeProfiles{}
	_ assessmentStore     = fakeAssessments{}
	_ recommendationStore = fakeRecs{}
	_ roadmapStore        = fakeRoadmap{}
	_ chatStore           = fakeChats{}
	_ auditStore          = fakeAudit{}
)

func (f fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrUserExists
		}
	}
	u.ID = f.id()
	u.IsActive = true
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) UpdateLastLogin(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.users[id].LastLoginAt = &now
	return nil
}

func (f fakeUsers) SetAdmin(_ context.Context, id uint, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func (f fakeUsers) CountAll(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f fakeProfiles) Upsert(_ context.Context, userID uint, p esg.BusinessProfile) (*models.BusinessProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.profiles {
		if existing.UserID == userID {
			existing.BusinessProfile = p
			out := *existing
			return &out, nil
		}
	}
	stored := &models.BusinessProfile{ID: f.id(), UserID: userID, BusinessProfile: p, CreatedAt: time.Now()}
	f.profiles[stored.ID] = stored
	out := *stored
	return &out, nil
}

func (f fakeProfiles) GetByUserID(_ context.Context, userID uint) (*models.BusinessProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID {
			out := *p
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeProfiles) GetByID(_ context.Context, id uint) (*models.BusinessProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f fakeAssessments) Create(_ context.Context, profileID uint, input esg.ESGInput, snapshot esg.Snapshot, recs []esg.Recommendation) (*models.Assessment, []models.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &models.Assessment{
		ID:                f.id(),
		InputID:           f.id(),
		BusinessProfileID: profileID,
		Snapshot:          snapshot,
		Input:             &input,
		CreatedAt:         time.Now(),
	}
	f.assessments[a.ID] = a

	stored := make([]models.Recommendation, 0, len(recs))
	for _, r := range recs {
		rec := models.Recommendation{ID: f.id(), SnapshotID: a.ID, Recommendation: r}
		f.recs = append(f.recs, rec)
		stored = append(stored, rec)
	}
	out := *a
	return &out, stored, nil
}

func (f fakeAssessments) GetByID(_ context.Context, id uint) (*models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assessments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (f fakeAssessments) Latest(ctx context.Context, profileID uint) (*models.Assessment, error) {
	list, _ := f.ListByProfile(ctx, profileID)
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (f fakeAssessments) ListByProfile(_ context.Context, profileID uint) ([]models.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Assessment{}
	for _, a := range f.assessments {
		if a.BusinessProfileID == profileID {
			out = append(out, *a)
		}
	}
	slices.SortFunc(out, func(a, b models.Assessment) int { return int(b.ID) - int(a.ID) })
	return out, nil
}

func (f fakeAssessments) OwnerUserID(_ context.Context, snapshotID uint) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assessments[snapshotID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return f.profiles[a.BusinessProfileID].UserID, nil
}

func (f fakeRecs) ListBySnapshot(_ context.Context, snapshotID uint, limit uint64) ([]models.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Recommendation{}
	for _, r := range f.recs {
		if r.SnapshotID == snapshotID {
			out = append(out, r)
		}
	}
	if limit > 0 && uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeRecs) GetByID(_ context.Context, id uint) (*models.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeRoadmap) ReplaceGenerated(_ context.Context, snapshotID uint, items []models.RoadmapItem) ([]models.RoadmapItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roadmap = slices.DeleteFunc(f.roadmap, func(it models.RoadmapItem) bool {
		return it.SnapshotID == snapshotID && it.Source == models.RoadmapSourceGenerated
	})
	out := make([]models.RoadmapItem, 0, len(items))
	for _, it := range items {
		it.ID = f.id()
		it.SnapshotID = snapshotID
		it.Source = models.RoadmapSourceGenerated
		f.roadmap = append(f.roadmap, it)
		out = append(out, it)
	}
	return out, nil
}

func (f fakeRoadmap) Create(_ context.Context, item *models.RoadmapItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = f.id()
	item.CreatedAt = time.Now()
	f.roadmap = append(f.roadmap, *item)
	return nil
}

func (f fakeRoadmap) ListBySnapshot(_ context.Context, snapshotID uint) ([]models.RoadmapItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.RoadmapItem{}
	for _, it := range f.roadmap {
		if it.SnapshotID == snapshotID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f fakeRoadmap) ListOpen(ctx context.Context, snapshotID uint) ([]models.RoadmapItem, error) {
	all, _ := f.ListBySnapshot(ctx, snapshotID)
	return slices.DeleteFunc(all, func(it models.RoadmapItem) bool { return it.CompletedAt != nil }), nil
}

func (f fakeRoadmap) GetByID(_ context.Context, id uint) (*models.RoadmapItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.roadmap {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeRoadmap) LatestOpen(_ context.Context, snapshotID uint) (*models.RoadmapItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.roadmap) - 1; i >= 0; i-- {
		it := f.roadmap[i]
		if it.SnapshotID == snapshotID && it.CompletedAt == nil {
			return &it, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeRoadmap) ExistsByTitle(_ context.Context, snapshotID uint, title string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.ContainsFunc(f.roadmap, func(it models.RoadmapItem) bool {
		return it.SnapshotID == snapshotID && strings.EqualFold(it.Title, title)
	}), nil
}

func (f fakeRoadmap) MarkCompleted(_ context.Context, id uint) (*models.RoadmapItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.roadmap {
		if f.roadmap[i].ID != id {
			continue
		}
		if f.roadmap[i].CompletedAt == nil {
			now := time.Now()
			f.roadmap[i].CompletedAt = &now
		}
		out := f.roadmap[i]
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (f fakeChats) CreateSession(_ context.Context, s *models.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.CreatedAt = time.Now()
	s.LastMessageAt = s.CreatedAt
	stored := *s
	f.sessions[s.ID] = &stored
	return nil
}

func (f fakeChats) GetSession(_ context.Context, id string) (*models.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (f fakeChats) AddMessage(_ context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = f.id()
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	f.sessions[msg.SessionID].LastMessageAt = msg.CreatedAt
	return nil
}

func (f fakeChats) RecentMessages(ctx context.Context, sessionID string, limit uint64) ([]models.ChatMessage, error) {
	all, _ := f.ListMessages(ctx, sessionID)
	if uint64(len(all)) > limit {
		all = all[uint64(len(all))-limit:]
	}
	return all, nil
}

func (f fakeChats) ListMessages(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ChatMessage{}
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f fakeChats) DeleteSessionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.sessions {
		if s.LastMessageAt.Before(cutoff) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f fakeAudit) Create(_ context.Context, entry *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = f.id()
	f.audit = append(f.audit, *entry)
	return nil
}

func (f fakeAudit) List(_ context.Context, _ repository.AuditFilter) ([]models.AuditLog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.audit), len(f.audit), nil
}

// fixture wires every service to one memDB
type fixture struct {
	db          *memDB
	assessments *AssessmentService
	recs        *RecommendationService
	roadmap     *RoadmapService
	profiles    *ProfileService
}

func newFixture() *fixture {
	db := newMemDB()
	engine, err := esg.NewEngine(esg.DefaultWeights())
	if err != nil {
		panic(err)
	}
	profiles, assess, recs, roadmap := fakeProfiles{db}, fakeAssessments{db}, fakeRecs{db}, fakeRoadmap{db}
	return &fixture{
		db:          db,
		assessments: NewAssessmentService(engine, profiles, assess, recs, roadmap),
		recs:        NewRecommendationService(esg.DefaultWeights(), profiles, assess, recs),
		roadmap:     NewRoadmapService(profiles, assess, recs, roadmap),
		profiles:    NewProfileService(profiles),
	}
}

func sampleProfile() esg.BusinessProfile {
	return esg.BusinessProfile{
		BusinessName:  "Green Corner Shop",
		Industry:      "Retail",
		EmployeeCount: 12,
		Location:      "Nairobi",
		OfficeAreaSqm: esg.Some(150.0),
	}
}

// weakInput leaves most practices out so several rules fire
func weakInput() esg.ESGInput {
	return esg.ESGInput{
		ElectricityKwh:       esg.Some(2400.0),
		GeneratorUsageLiters: esg.Some(150.0),
		TotalEmployees:       12,
		CodeOfConduct:        true,
	}
}

// submitFor creates a profile for userID and submits weakInput
func (f *fixture) submitFor(userID uint) *AssessmentResult {
	ctx := context.Background()
	if _, err := f.profiles.Save(ctx, userID, sampleProfile()); err != nil {
		panic(err)
	}
	res, err := f.assessments.Submit(ctx, userID, weakInput())
	if err != nil {
		panic(err)
	}
	return res
}
