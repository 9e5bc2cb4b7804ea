package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, session *repository.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = repository.StatusReadyToRecord
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt

	query := `
		INSERT INTO recording_sessions
			(id, event_id, team_name, pitch_title, status, transcript_text,
			 transcript_segments, audio_size_bytes, audio_path, created_at, updated_at)
		VALUES
			(:id, :event_id, :team_name, :pitch_title, :status, :transcript_text,
			 :transcript_segments, :audio_size_bytes, :audio_path, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// Get retrieves a session by ID within an event
func (r *SessionRepository) Get(ctx context.Context, eventID, id string) (*repository.Session, error) {
	var session repository.Session
	query := `
		SELECT id, event_id, team_name, pitch_title, status, transcript_text,
		       transcript_segments, audio_size_bytes, audio_path, created_at,
		       updated_at, completed_at
		FROM recording_sessions
		WHERE id = $1 AND event_id = $2
	`

	err := r.db.GetContext(ctx, &session, query, id, eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// List retrieves sessions for an event, newest first. Empty eventID lists all.
func (r *SessionRepository) List(ctx context.Context, eventID string) ([]*repository.Session, error) {
	var sessions []*repository.Session

	if eventID == "" {
		query := `
			SELECT id, event_id, team_name, pitch_title, status, transcript_text,
			       transcript_segments, audio_size_bytes, audio_path, created_at,
			       updated_at, completed_at
			FROM recording_sessions
			ORDER BY created_at DESC
		`
		if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
			return nil, err
		}
		return sessions, nil
	}

	query := `
		SELECT id, event_id, team_name, pitch_title, status, transcript_text,
		       transcript_segments, audio_size_bytes, audio_path, created_at,
		       updated_at, completed_at
		FROM recording_sessions
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &sessions, query, eventID); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update updates a session within an event
func (r *SessionRepository) Update(ctx context.Context, eventID, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	// Build dynamic update query
	setClause := ""
	params := map[string]interface{}{"id": id, "event_id": eventID}

	for key, value := range updates {
		if setClause != "" {
			setClause += ", "
		}
		setClause += key + " = :" + key
		params[key] = value
	}

	query := "UPDATE recording_sessions SET " + setClause + " WHERE id = :id AND event_id = :event_id"

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return err
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Delete deletes a session within an event
func (r *SessionRepository) Delete(ctx context.Context, eventID, id string) error {
	query := "DELETE FROM recording_sessions WHERE id = $1 AND event_id = $2"
	_, err := r.db.ExecContext(ctx, query, id, eventID)
	return err
}
