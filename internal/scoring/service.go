package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/pitchscoop/pitchscoop-backend/internal/completion"
	"github.com/pitchscoop/pitchscoop-backend/internal/config"
	"github.com/pitchscoop/pitchscoop-backend/internal/metrics"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
)

var (
	// ErrSessionNotFound is returned when the session does not exist in
	// the given event. A session in another event looks the same.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotScorable is returned when the session has not completed recording
	ErrNotScorable = errors.New("session is not completed")
	// ErrEmptyTranscript is returned when a completed session has no transcript
	ErrEmptyTranscript = errors.New("session has no transcript")
)

// Service runs the pitch scorer and serves score reads and leaderboards
type Service struct {
	sessions repository.SessionRepository
	scores   repository.ScoreRepository
	client   completion.Client
	cfg      config.ScoringConfig
	log      *logrus.Entry
}

// NewService creates the scoring service
func NewService(
	sessions repository.SessionRepository,
	scores repository.ScoreRepository,
	client completion.Client,
	cfg config.ScoringConfig,
) *Service {
	if cfg.DefaultJudge == "" {
		cfg.DefaultJudge = "panel"
	}
	return &Service{
		sessions: sessions,
		scores:   scores,
		client:   client,
		cfg:      cfg,
		log:      logrus.WithField("component", "scoring"),
	}
}

// Score scores one completed session's transcript and persists the result
// keyed by (event, session, judge). Rescoring by the same judge overwrites
// only that judge's result.
func (s *Service) Score(ctx context.Context, eventID, sessionID, judgeID string) (*ScoreResult, error) {
	start := time.Now()

	if judgeID == "" {
		judgeID = s.cfg.DefaultJudge
	}

	sess, err := s.sessions.Get(ctx, eventID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.Status != repository.StatusCompleted {
		metrics.ScoringErrors.WithLabelValues("validation").Inc()
		return nil, ErrNotScorable
	}
	if sess.TranscriptText == "" {
		metrics.ScoringErrors.WithLabelValues("validation").Inc()
		return nil, ErrEmptyTranscript
	}

	req := buildScoringRequest(sess.TeamName, sess.PitchTitle, sess.TranscriptText, s.cfg.Temperature, s.cfg.MaxTokens)
	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		metrics.ScoringErrors.WithLabelValues("completion").Inc()
		s.log.WithFields(logrus.Fields{
			"event_id":   eventID,
			"session_id": sessionID,
		}).WithError(err).Error("completion request failed")
		return nil, err
	}

	rubric, err := parseRubric(resp.Content)
	if err != nil {
		metrics.ScoringErrors.WithLabelValues("parse").Inc()
		s.log.WithFields(logrus.Fields{
			"event_id":   eventID,
			"session_id": sessionID,
			"model":      resp.Model,
		}).WithError(err).Error("model output rejected")
		return nil, err
	}

	criteria := Criteria{
		Idea:                    toCriterion(rubric.Idea),
		TechnicalImplementation: toCriterion(rubric.TechnicalImplementation),
		ToolUse:                 toCriterion(rubric.ToolUse),
		PresentationDelivery:    toCriterion(rubric.PresentationDelivery),
	}
	total := criteria.Idea.Score + criteria.TechnicalImplementation.Score +
		criteria.ToolUse.Score + criteria.PresentationDelivery.Score

	result := &ScoreResult{
		SessionID:  sessionID,
		EventID:    eventID,
		JudgeID:    judgeID,
		TeamName:   sess.TeamName,
		PitchTitle: sess.PitchTitle,
		Criteria:   criteria,
		Overall: Overall{
			TotalScore:          total,
			MaxTotal:            MaxTotalScore,
			Percentage:          total,
			RankingTier:         TierFor(total),
			JudgeRecommendation: rubric.JudgeRecommendation,
		},
		ModelUsed: resp.Model,
		ScoredAt:  time.Now(),
	}

	criteriaJSON, err := json.Marshal(result.Criteria)
	if err != nil {
		return nil, fmt.Errorf("encode criteria: %w", err)
	}

	record := &repository.ScoreResult{
		EventID:             eventID,
		SessionID:           sessionID,
		JudgeID:             judgeID,
		Criteria:            criteriaJSON,
		TotalScore:          result.Overall.TotalScore,
		Percentage:          result.Overall.Percentage,
		RankingTier:         result.Overall.RankingTier,
		JudgeRecommendation: result.Overall.JudgeRecommendation,
		ModelUsed:           resp.Model,
	}
	if err := s.scores.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("persist score: %w", err)
	}

	metrics.ScoresProduced.WithLabelValues(result.Overall.RankingTier).Inc()
	metrics.ScoringLatency.Observe(time.Since(start).Seconds())

	s.log.WithFields(logrus.Fields{
		"event_id":   eventID,
		"session_id": sessionID,
		"judge_id":   judgeID,
		"total":      result.Overall.TotalScore,
		"tier":       result.Overall.RankingTier,
	}).Info("pitch scored")

	return result, nil
}

// Scores returns all judges' results for one session
func (s *Service) Scores(ctx context.Context, eventID, sessionID string) ([]*ScoreResult, error) {
	sess, err := s.sessions.Get(ctx, eventID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	records, err := s.scores.ListBySession(ctx, eventID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	results := make([]*ScoreResult, 0, len(records))
	for _, rec := range records {
		result, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		result.TeamName = sess.TeamName
		result.PitchTitle = sess.PitchTitle
		results = append(results, result)
	}
	return results, nil
}

// LeaderboardEntry is one ranked row of an event leaderboard. TotalScore is
// the mean across judges when a session was scored more than once.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	SessionID   string  `json:"session_id"`
	TeamName    string  `json:"team_name"`
	PitchTitle  string  `json:"pitch_title"`
	TotalScore  float64 `json:"total_score"`
	Percentage  float64 `json:"percentage"`
	RankingTier string  `json:"ranking_tier"`
	JudgeCount  int     `json:"judge_count"`
}

// Leaderboard ranks an event's scored sessions by mean total score
func (s *Service) Leaderboard(ctx context.Context, eventID string) ([]LeaderboardEntry, error) {
	sessions, err := s.sessions.List(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	records, err := s.scores.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	type agg struct {
		sum   float64
		count int
	}
	totals := make(map[string]*agg)
	for _, rec := range records {
		a, ok := totals[rec.SessionID]
		if !ok {
			a = &agg{}
			totals[rec.SessionID] = a
		}
		a.sum += rec.TotalScore
		a.count++
	}

	var entries []LeaderboardEntry
	for _, sess := range sessions {
		a, ok := totals[sess.ID]
		if !ok {
			continue
		}
		mean := a.sum / float64(a.count)
		entries = append(entries, LeaderboardEntry{
			SessionID:   sess.ID,
			TeamName:    sess.TeamName,
			PitchTitle:  sess.PitchTitle,
			TotalScore:  mean,
			Percentage:  mean,
			RankingTier: TierFor(mean),
			JudgeCount:  a.count,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].TeamName < entries[j].TeamName
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// fromRecord rebuilds a ScoreResult from its stored row
func fromRecord(rec *repository.ScoreResult) (*ScoreResult, error) {
	var criteria Criteria
	if err := json.Unmarshal(rec.Criteria, &criteria); err != nil {
		return nil, fmt.Errorf("decode stored criteria: %w", err)
	}
	return &ScoreResult{
		SessionID: rec.SessionID,
		EventID:   rec.EventID,
		JudgeID:   rec.JudgeID,
		Criteria:  criteria,
		Overall: Overall{
			TotalScore:          rec.TotalScore,
			MaxTotal:            MaxTotalScore,
			Percentage:          rec.Percentage,
			RankingTier:         rec.RankingTier,
			JudgeRecommendation: rec.JudgeRecommendation,
		},
		ModelUsed: rec.ModelUsed,
		ScoredAt:  rec.UpdatedAt,
	}, nil
}
