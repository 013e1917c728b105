package models

import (
	"time"

	"esg-assess/internal/esg"
)

// User represents a user in the system
type User struct {
	ID           uint       `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// BusinessProfile is the stored profile of a user's business
type BusinessProfile struct {
	ID     uint `json:"id" db:"id"`
	UserID uint `json:"user_id" db:"user_id"`
	esg.BusinessProfile
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Assessment is one submitted questionnaire together with the snapshot
// derived from it. Both halves are immutable once stored.
type Assessment struct {
	ID                uint          `json:"id" db:"id"`
	InputID           uint          `json:"input_id" db:"esg_input_id"`
	BusinessProfileID uint          `json:"business_profile_id" db:"business_profile_id"`
	Snapshot          esg.Snapshot  `json:"snapshot"`
	Input             *esg.ESGInput `json:"input,omitempty"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
}

// Recommendation is a stored, ranked recommendation of a snapshot
type Recommendation struct {
	ID         uint `json:"id" db:"id"`
	SnapshotID uint `json:"snapshot_id" db:"snapshot_id"`
	esg.Recommendation
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Roadmap item sources
const (
	RoadmapSourceGenerated      = "generated"
	RoadmapSourceRecommendation = "recommendation"
	RoadmapSourceChat           = "chat"
)

// RoadmapItem is a stored roadmap action
type RoadmapItem struct {
	ID               uint  `json:"id" db:"id"`
	SnapshotID       uint  `json:"snapshot_id" db:"snapshot_id"`
	RecommendationID *uint `json:"recommendation_id,omitempty" db:"recommendation_id"`
	esg.RoadmapItem
	Source      string     `json:"source" db:"source"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// ChatSession groups the messages of one conversation about a snapshot
type ChatSession struct {
	ID            string    `json:"id" db:"id"`
	UserID        uint      `json:"user_id" db:"user_id"`
	SnapshotID    uint      `json:"snapshot_id" db:"snapshot_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	LastMessageAt time.Time `json:"last_message_at" db:"last_message_at"`
}

// Chat message roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one message of a chat session. Content is plaintext once
// loaded through the chat service.
type ChatMessage struct {
	ID        uint      `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	Encrypted bool      `json:"-" db:"encrypted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    *uint     `json:"user_id,omitempty" db:"user_id"`
	UserEmail *string   `json:"user_email,omitempty" db:"user_email"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReassessmentCandidate is a business whose latest assessment is stale
type ReassessmentCandidate struct {
	UserID         uint
	Email          string
	FirstName      string
	BusinessName   string
	LastAssessedAt time.Time
}
