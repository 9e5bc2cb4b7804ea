package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
)

// JudgeRepository implements repository.JudgeRepository using PostgreSQL
type JudgeRepository struct {
	db *sqlx.DB
}

// NewJudgeRepository creates a new PostgreSQL judge repository
func NewJudgeRepository(db *sqlx.DB) repository.JudgeRepository {
	return &JudgeRepository{db: db}
}

// Create stores a judge credential
func (r *JudgeRepository) Create(ctx context.Context, judge *repository.Judge) error {
	if judge.ID == "" {
		judge.ID = uuid.New().String()
	}
	judge.CreatedAt = time.Now()

	query := `
		INSERT INTO judges (id, event_id, name, key_prefix, key_hash, created_at)
		VALUES (:id, :event_id, :name, :key_prefix, :key_hash, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, judge)
	return err
}

// GetByKeyPrefix looks up a judge by key prefix within an event
func (r *JudgeRepository) GetByKeyPrefix(ctx context.Context, eventID, keyPrefix string) (*repository.Judge, error) {
	var judge repository.Judge
	query := `
		SELECT id, event_id, name, key_prefix, key_hash, created_at
		FROM judges
		WHERE event_id = $1 AND key_prefix = $2
	`

	err := r.db.GetContext(ctx, &judge, query, eventID, keyPrefix)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &judge, nil
}
