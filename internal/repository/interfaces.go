package repository

import (
	"context"
	"database/sql"
	"time"
)

// Session status values. A session is created ready_to_record, moves to
// recording when the first stream frame arrives, and is read-only once
// completed.
const (
	StatusReadyToRecord = "ready_to_record"
	StatusRecording     = "recording"
	StatusCompleted     = "completed"
)

// Session represents one recorded pitch attempt.
type Session struct {
	ID                 string       `db:"id"`
	EventID            string       `db:"event_id"`
	TeamName           string       `db:"team_name"`
	PitchTitle         string       `db:"pitch_title"`
	Status             string       `db:"status"`
	TranscriptText     string       `db:"transcript_text"`
	TranscriptSegments int          `db:"transcript_segments"`
	AudioSizeBytes     int64        `db:"audio_size_bytes"`
	AudioPath          string       `db:"audio_path"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
	CompletedAt        sql.NullTime `db:"completed_at"`
}

// ScoreResult is one judge's scoring of one session. Criteria holds the four
// criterion records as a JSON document.
type ScoreResult struct {
	ID                  string    `db:"id"`
	EventID             string    `db:"event_id"`
	SessionID           string    `db:"session_id"`
	JudgeID             string    `db:"judge_id"`
	Criteria            []byte    `db:"criteria"`
	TotalScore          float64   `db:"total_score"`
	Percentage          float64   `db:"percentage"`
	RankingTier         string    `db:"ranking_tier"`
	JudgeRecommendation string    `db:"judge_recommendation"`
	ModelUsed           string    `db:"model_used"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// Judge is an API-key holder allowed to score pitches for one event.
type Judge struct {
	ID        string    `db:"id"`
	EventID   string    `db:"event_id"`
	Name      string    `db:"name"`
	KeyPrefix string    `db:"key_prefix"`
	KeyHash   string    `db:"key_hash"`
	CreatedAt time.Time `db:"created_at"`
}

// SessionRepository defines session storage operations. Every method that
// touches a single session takes the event ID; a session belonging to a
// different event is indistinguishable from a missing one.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, eventID, id string) (*Session, error)
	// List returns sessions for one event, newest first. An empty eventID
	// lists across all events (operator surface only).
	List(ctx context.Context, eventID string) ([]*Session, error)
	Update(ctx context.Context, eventID, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, eventID, id string) error
}

// ScoreRepository defines score storage operations, keyed by
// (event_id, session_id, judge_id).
type ScoreRepository interface {
	// Upsert overwrites any prior score by the same judge for the same
	// session; other judges' scores are untouched.
	Upsert(ctx context.Context, score *ScoreResult) error
	Get(ctx context.Context, eventID, sessionID, judgeID string) (*ScoreResult, error)
	ListBySession(ctx context.Context, eventID, sessionID string) ([]*ScoreResult, error)
	ListByEvent(ctx context.Context, eventID string) ([]*ScoreResult, error)
}

// JudgeRepository defines judge credential storage operations.
type JudgeRepository interface {
	Create(ctx context.Context, judge *Judge) error
	GetByKeyPrefix(ctx context.Context, eventID, keyPrefix string) (*Judge, error)
}
