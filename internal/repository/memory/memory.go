// Package memory provides in-memory implementations of the repository
// interfaces. They back the test suite and the stub development profile,
// and enforce the same per-event visibility rules as the PostgreSQL
// implementations.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
)

// SessionRepository is an in-memory repository.SessionRepository.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*repository.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*repository.Session)}
}

func (r *SessionRepository) Create(_ context.Context, session *repository.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.Status == "" {
		session.Status = repository.StatusReadyToRecord
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt

	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *SessionRepository) Get(_ context.Context, eventID, id string) (*repository.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok || s.EventID != eventID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepository) List(_ context.Context, eventID string) ([]*repository.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*repository.Session
	for _, s := range r.sessions {
		if eventID != "" && s.EventID != eventID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SessionRepository) Update(_ context.Context, eventID, id string, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.EventID != eventID {
		return sql.ErrNoRows
	}

	for key, value := range updates {
		switch key {
		case "status":
			s.Status = value.(string)
		case "transcript_text":
			s.TranscriptText = value.(string)
		case "transcript_segments":
			s.TranscriptSegments = value.(int)
		case "audio_size_bytes":
			s.AudioSizeBytes = value.(int64)
		case "audio_path":
			s.AudioPath = value.(string)
		case "completed_at":
			if t, ok := value.(time.Time); ok {
				s.CompletedAt = sql.NullTime{Time: t, Valid: true}
			}
		}
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, eventID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok && s.EventID == eventID {
		delete(r.sessions, id)
	}
	return nil
}

// ScoreRepository is an in-memory repository.ScoreRepository.
type ScoreRepository struct {
	mu     sync.RWMutex
	scores map[string]*repository.ScoreResult
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{scores: make(map[string]*repository.ScoreResult)}
}

func scoreKey(eventID, sessionID, judgeID string) string {
	return eventID + "\x00" + sessionID + "\x00" + judgeID
}

func (r *ScoreRepository) Upsert(_ context.Context, score *repository.ScoreResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := scoreKey(score.EventID, score.SessionID, score.JudgeID)
	now := time.Now()
	if prev, ok := r.scores[key]; ok {
		score.ID = prev.ID
		score.CreatedAt = prev.CreatedAt
	} else {
		if score.ID == "" {
			score.ID = uuid.New().String()
		}
		score.CreatedAt = now
	}
	score.UpdatedAt = now

	cp := *score
	r.scores[key] = &cp
	return nil
}

func (r *ScoreRepository) Get(_ context.Context, eventID, sessionID, judgeID string) (*repository.ScoreResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scores[scoreKey(eventID, sessionID, judgeID)]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *ScoreRepository) ListBySession(_ context.Context, eventID, sessionID string) ([]*repository.ScoreResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*repository.ScoreResult
	for _, s := range r.scores {
		if s.EventID == eventID && s.SessionID == sessionID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JudgeID < out[j].JudgeID })
	return out, nil
}

func (r *ScoreRepository) ListByEvent(_ context.Context, eventID string) ([]*repository.ScoreResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*repository.ScoreResult
	for _, s := range r.scores {
		if s.EventID == eventID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalScore > out[j].TotalScore })
	return out, nil
}

// JudgeRepository is an in-memory repository.JudgeRepository.
type JudgeRepository struct {
	mu     sync.RWMutex
	judges map[string]*repository.Judge
}

func NewJudgeRepository() *JudgeRepository {
	return &JudgeRepository{judges: make(map[string]*repository.Judge)}
}

func (r *JudgeRepository) Create(_ context.Context, judge *repository.Judge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if judge.ID == "" {
		judge.ID = uuid.New().String()
	}
	judge.CreatedAt = time.Now()

	cp := *judge
	r.judges[judge.EventID+"\x00"+judge.KeyPrefix] = &cp
	return nil
}

func (r *JudgeRepository) GetByKeyPrefix(_ context.Context, eventID, keyPrefix string) (*repository.Judge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.judges[eventID+"\x00"+keyPrefix]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}
