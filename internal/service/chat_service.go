package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"esg-assess/internal/esg"
	"esg-assess/internal/models"
	"esg-assess/internal/repository"
	"esg-assess/internal/securestore"
)

// Generator produces a free text answer for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatRequest is one user message to the assistant
type ChatRequest struct {
	SnapshotID uint   `json:"snapshot_id" validate:"required"`
	Query      string `json:"query" validate:"required,max=2000"`
	SessionID  string `json:"session_id,omitempty"`
}

// ChatReply is the assistant's answer
type ChatReply struct {
	Response    string              `json:"response"`
	SessionID   string              `json:"session_id"`
	Action      string              `json:"action,omitempty"`
	Fallback    bool                `json:"fallback"`
	RoadmapItem *models.RoadmapItem `json:"roadmap_item,omitempty"`
}

// ChatService is the implementation assistant. It works without a model:
// commands never reach it and any model failure yields a canned answer.
type ChatService struct {
	llm         Generator
	store       securestore.Store
	chatRepo    chatStore
	profileRepo profileStore
	assessRepo  assessmentStore
	recRepo     recommendationStore
	roadmapRepo roadmapStore
	roadmap     *RoadmapService
	owner       snapshotOwner
	history     int
	retention   time.Duration
}

// ChatOptions tunes transcript handling
type ChatOptions struct {
	HistoryMessages int
	Retention       time.Duration
}

// NewChatService creates a new chat service
func NewChatService(
	llm Generator,
	store securestore.Store,
	chatRepo chatStore,
	profileRepo profileStore,
	assessRepo assessmentStore,
	recRepo recommendationStore,
	roadmapRepo roadmapStore,
	roadmap *RoadmapService,
	opts ChatOptions,
) *ChatService {
	history := opts.HistoryMessages
	if history <= 0 {
		history = 6
	}
	return &ChatService{
		llm:         llm,
		store:       store,
		chatRepo:    chatRepo,
		profileRepo: profileRepo,
		assessRepo:  assessRepo,
		recRepo:     recRepo,
		roadmapRepo: roadmapRepo,
		roadmap:     roadmap,
		owner:       snapshotOwner{assessments: assessRepo},
		history:     history,
		retention:   opts.Retention,
	}
}

// Ask answers a query about one of the caller's snapshots. An existing
// session is resumed under its ID; an unknown ID starts a new session with a
// fresh ID. A session of another user or of another snapshot is forbidden.
func (s *ChatService) Ask(ctx context.Context, userID uint, req ChatRequest) (*ChatReply, error) {
	req.Query = strings.TrimSpace(req.Query)
	var msgs []string
	if req.SnapshotID == 0 {
		msgs = append(msgs, "snapshot_id is required")
	}
	if req.Query == "" {
		msgs = append(msgs, "query is required")
	}
	if len(msgs) > 0 {
		return nil, &esg.ValidationError{Messages: msgs}
	}

	if err := s.owner.authorize(ctx, userID, req.SnapshotID); err != nil {
		return nil, err
	}

	session, err := s.session(ctx, userID, req.SnapshotID, req.SessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.recent(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, session.ID, models.ChatRoleUser, req.Query); err != nil {
		return nil, err
	}

	reply, err := s.respond(ctx, req, history)
	if err != nil {
		return nil, err
	}
	reply.SessionID = session.ID

	if err := s.save(ctx, session.ID, models.ChatRoleAssistant, reply.Response); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *ChatService) respond(ctx context.Context, req ChatRequest, history []models.ChatMessage) (*ChatReply, error) {
	a, err := s.assessRepo.GetByID(ctx, req.SnapshotID)
	if err != nil {
		return nil, notFound(err, "assessment")
	}

	switch cmd := detectCommand(req.Query); cmd {
	case commandAddToRoadmap:
		return s.addToRoadmap(ctx, a, req.Query, history)
	case commandMarkCompleted:
		item, err := s.roadmap.completeLatest(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return &ChatReply{
				Response: "I don't see any open roadmap actions to mark as completed. Add an action first, then mark it complete when you finish it.",
				Action:   string(cmd),
			}, nil
		}
		return &ChatReply{
			Response:    fmt.Sprintf("Great job! '%s' is marked as completed. What's your next priority?", item.Title),
			Action:      string(cmd),
			RoadmapItem: item,
		}, nil
	case commandMonthlyFocus:
		return &ChatReply{Response: esg.MonthlyFocusText(a.Snapshot), Action: string(cmd)}, nil
	}

	prompt, err := s.prompt(ctx, a, req.Query, history)
	if err != nil {
		return nil, err
	}

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrLLMDisabled) {
			slog.Warn("Chat assistant falling back to canned answer", "snapshot_id", a.ID, "error", err)
		}
		return &ChatReply{Response: fallbackResponse(req.Query, a.Snapshot), Fallback: true}, nil
	}
	return &ChatReply{Response: answer}, nil
}

func (s *ChatService) addToRoadmap(ctx context.Context, a *models.Assessment, query string, history []models.ChatMessage) (*ChatReply, error) {
	title := actionTitle(query, history)
	action := esg.Action{
		Title:       title,
		Description: fmt.Sprintf("Implement %s as discussed in chat", title),
		Category:    inferCategory(query + " " + title),
		Priority:    esg.LevelMedium,
		Effort:      esg.LevelMedium,
	}

	employees, err := s.roadmap.employeeCount(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	item, err := s.roadmap.addAction(ctx, a.ID, action, nil, models.RoadmapSourceChat, 1, employees)
	if errors.Is(err, ErrConflict) {
		return &ChatReply{
			Response: fmt.Sprintf("'%s' is already on your roadmap. What would you like to implement next?", title),
			Action:   string(commandAddToRoadmap),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &ChatReply{
		Response:    fmt.Sprintf("Added to your roadmap: '%s'. You can find it in phase 1 of your execution plan. What would you like to implement next?", item.Title),
		Action:      string(commandAddToRoadmap),
		RoadmapItem: item,
	}, nil
}

func (s *ChatService) prompt(ctx context.Context, a *models.Assessment, query string, history []models.ChatMessage) (string, error) {
	profile, err := s.profileRepo.GetByID(ctx, a.BusinessProfileID)
	if err != nil {
		return "", notFound(err, "business profile")
	}
	recs, err := s.recRepo.ListBySnapshot(ctx, a.ID, esg.TopCount)
	if err != nil {
		return "", err
	}
	roadmap, err := s.roadmapRepo.ListBySnapshot(ctx, a.ID)
	if err != nil {
		return "", err
	}

	return buildPrompt(chatContext{
		Profile:         profile,
		Snapshot:        a.Snapshot,
		Recommendations: recs,
		Roadmap:         roadmap,
		History:         history,
		Query:           query,
	}), nil
}

func (s *ChatService) session(ctx context.Context, userID, snapshotID uint, id string) (*models.ChatSession, error) {
	if id != "" {
		session, err := s.chatRepo.GetSession(ctx, id)
		switch {
		case err == nil && (session.UserID != userID || session.SnapshotID != snapshotID):
			return nil, ErrForbidden
		case err == nil:
			return session, nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	session := &models.ChatSession{ID: uuid.NewString(), UserID: userID, SnapshotID: snapshotID}
	if err := s.chatRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) save(ctx context.Context, sessionID, role, content string) error {
	sealed, encrypted, err := s.store.Seal(ctx, sessionID, content)
	if err != nil {
		return fmt.Errorf("failed to seal chat message: %w", err)
	}
	return s.chatRepo.AddMessage(ctx, &models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   sealed,
		Encrypted: encrypted,
	})
}

func (s *ChatService) recent(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	msgs, err := s.chatRepo.RecentMessages(ctx, sessionID, uint64(s.history))
	if err != nil {
		return nil, err
	}
	return s.open(ctx, sessionID, msgs)
}

func (s *ChatService) open(ctx context.Context, sessionID string, msgs []models.ChatMessage) ([]models.ChatMessage, error) {
	for i := range msgs {
		plain, err := s.store.Open(ctx, sessionID, msgs[i].Content, msgs[i].Encrypted)
		if err != nil {
			return nil, fmt.Errorf("failed to open chat message %d: %w", msgs[i].ID, err)
		}
		msgs[i].Content = plain
		msgs[i].Encrypted = false
	}
	return msgs, nil
}

// Transcript returns the caller's session messages, oldest first
func (s *ChatService) Transcript(ctx context.Context, userID uint, sessionID string) ([]models.ChatMessage, error) {
	session, err := s.chatRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, "chat session")
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}

	msgs, err := s.chatRepo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, sessionID, msgs)
}

// PurgeExpired deletes sessions idle for longer than the retention period
func (s *ChatService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.chatRepo.DeleteSessionsBefore(ctx, time.Now().Add(-s.retention))
}
