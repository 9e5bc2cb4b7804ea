package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
)

// ScoreRepository implements repository.ScoreRepository using PostgreSQL
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new PostgreSQL score repository
func NewScoreRepository(db *sqlx.DB) repository.ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert inserts a score or replaces the same judge's prior score for the
// same session.
func (r *ScoreRepository) Upsert(ctx context.Context, score *repository.ScoreResult) error {
	if score.ID == "" {
		score.ID = uuid.New().String()
	}
	now := time.Now()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	score.UpdatedAt = now

	query := `
		INSERT INTO pitch_scores
			(id, event_id, session_id, judge_id, criteria, total_score, percentage,
			 ranking_tier, judge_recommendation, model_used, created_at, updated_at)
		VALUES
			(:id, :event_id, :session_id, :judge_id, :criteria, :total_score, :percentage,
			 :ranking_tier, :judge_recommendation, :model_used, :created_at, :updated_at)
		ON CONFLICT (event_id, session_id, judge_id) DO UPDATE SET
			criteria = EXCLUDED.criteria,
			total_score = EXCLUDED.total_score,
			percentage = EXCLUDED.percentage,
			ranking_tier = EXCLUDED.ranking_tier,
			judge_recommendation = EXCLUDED.judge_recommendation,
			model_used = EXCLUDED.model_used,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.NamedExecContext(ctx, query, score)
	return err
}

// Get retrieves one judge's score for a session
func (r *ScoreRepository) Get(ctx context.Context, eventID, sessionID, judgeID string) (*repository.ScoreResult, error) {
	var score repository.ScoreResult
	query := `
		SELECT id, event_id, session_id, judge_id, criteria, total_score, percentage,
		       ranking_tier, judge_recommendation, model_used, created_at, updated_at
		FROM pitch_scores
		WHERE event_id = $1 AND session_id = $2 AND judge_id = $3
	`

	err := r.db.GetContext(ctx, &score, query, eventID, sessionID, judgeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &score, nil
}

// ListBySession retrieves all judges' scores for a session
func (r *ScoreRepository) ListBySession(ctx context.Context, eventID, sessionID string) ([]*repository.ScoreResult, error) {
	var scores []*repository.ScoreResult
	query := `
		SELECT id, event_id, session_id, judge_id, criteria, total_score, percentage,
		       ranking_tier, judge_recommendation, model_used, created_at, updated_at
		FROM pitch_scores
		WHERE event_id = $1 AND session_id = $2
		ORDER BY judge_id
	`

	if err := r.db.SelectContext(ctx, &scores, query, eventID, sessionID); err != nil {
		return nil, err
	}
	return scores, nil
}

// ListByEvent retrieves all scores for an event
func (r *ScoreRepository) ListByEvent(ctx context.Context, eventID string) ([]*repository.ScoreResult, error) {
	var scores []*repository.ScoreResult
	query := `
		SELECT id, event_id, session_id, judge_id, criteria, total_score, percentage,
		       ranking_tier, judge_recommendation, model_used, created_at, updated_at
		FROM pitch_scores
		WHERE event_id = $1
		ORDER BY total_score DESC
	`

	if err := r.db.SelectContext(ctx, &scores, query, eventID); err != nil {
		return nil, err
	}
	return scores, nil
}
