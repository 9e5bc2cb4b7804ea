package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/pitchscoop/pitchscoop-backend/internal/auth"
	"github.com/pitchscoop/pitchscoop-backend/internal/completion"
	"github.com/pitchscoop/pitchscoop-backend/internal/recording"
	"github.com/pitchscoop/pitchscoop-backend/internal/scoring"
	"github.com/pitchscoop/pitchscoop-backend/internal/services"
)

type executeRequest struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// ExecuteTool dispatches /mcp/execute calls by tool name. Every response
// carries a success flag; failures add error and code fields.
func ExecuteTool(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req executeRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "validation_error", "invalid request body")
		}
		if req.Tool == "" {
			return fail(c, fiber.StatusBadRequest, "validation_error", "tool is required")
		}

		switch req.Tool {
		case "pitches.start_recording":
			return startRecording(c, svc, req.Arguments)
		case "pitches.stop_recording":
			return stopRecording(c, svc, req.Arguments)
		case "pitches.get_session":
			return getSession(c, svc, req.Arguments)
		case "pitches.list_sessions":
			return listSessions(c, svc, req.Arguments)
		case "analysis.score_pitch":
			return scorePitch(c, svc, req.Arguments)
		case "analysis.get_scores":
			return getScores(c, svc, req.Arguments)
		case "analysis.get_leaderboard":
			return getLeaderboard(c, svc, req.Arguments)
		default:
			return fail(c, fiber.StatusBadRequest, "unknown_tool", "unknown tool: "+req.Tool)
		}
	}
}

func startRecording(c *fiber.Ctx, svc *services.Services, args json.RawMessage) error {
	var a struct {
		EventID    string `json:"event_id"`
		TeamName   string `json:"team_name"`
		PitchTitle string `json:"pitch_title"`
	}
	if err := unmarshalArgs(args, &a); err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	sess, wsURL, err := svc.Recording.Start(c.Context(), a.EventID, a.TeamName, a.PitchTitle)
	if err != nil {
		return failFromError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"session_id":    sess.ID,
		"event_id":      sess.EventID,
		"team_name":     sess.TeamName,
		"pitch_title":   sess.PitchTitle,
		"status":        sess.Status,
		"websocket_url": wsURL,
		"created_at":    sess.CreatedAt,
	})
}

func stopRecording(c *fiber.Ctx, svc *services.Services, args json.RawMessage) error {
	var a struct {
		EventID    string `json:"event_id"`
		SessionID  string `json:"session_id"`
		Transcript string `json:"transcript"`
	}
	if err := unmarshalArgs(args, &a); err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	if a.EventID == "" || a.SessionID == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "event_id and session_id are required")
	}

	sess, err := svc.Recording.Stop(c.Context(), a.EventID, a.SessionID, a.Transcript)
	if err != nil {
		return failFromError(c, err)
	}

	return sessionDetail(c, svc, sess)
}

func getSession(c *fiber.Ctx, svc *services.Services, args json.RawMessage) error {
	var a struct {
		EventID   string `json:"event_id"`
		SessionID string `json:"session_id"`
	}
	if err := unmarshalArgs(args, &a); err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	if a.EventID == "" || a.SessionID == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "event_id and session_id are required")
	}

	sess, err := svc.Recording.Get(c.Context(), a.EventID, a.SessionID)
	if err != nil {
		return failFromError(c, err)
	}

	return sessionDetail(c, svc, sess)
}

func listSessions(c *fiber.Ctx, svc *services.Services, args json.RawMessage) error {
	var a struct {
		EventID string `json:"event_id"`
	}
	if err := unmarshalArgs(args, &a); err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	if a.EventID == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "event_id is required")
	}

	sessions, err := svc.Recording.List(c.Context(), a.EventID)
	if err != nil {
		return failFromError(c, err)
	}

	summaries := make([]fiber.Map, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, sessionSummary(sess))
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"event_id": a.EventID,
		"sessions": summaries,
		"count":    len(summaries),
	})
}

func scorePitch(c *fiber.Ctx, svc *services.Services, args json.RawMessage) error {
	var a struct {
		EventID   string `json:"event_id"`
		SessionID string `json:"session_id"`
		JudgeID   string `json:"judge_id"`
	}
	if err := unmarshalArgs(args, &a); err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	if a.EventID == "" || a.SessionID == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "event_id and session_id are required")
	}

	judgeID, err := resolveJudge(c, svc, a.EventID, a.JudgeID)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "invalid_judge_key", "judge key rejected")
	}

	result, err := svc.Scoring.Score(c.Context(), a.EventID, a.SessionID, judgeID)
	if err != nil {
		return failFromError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"session_id":  result.SessionID,
		"event_id":    result.EventID,
		"judge_id":    result.JudgeID,
		"team_name":   result.TeamName,
		"pitch_title": result.PitchTitle,
		"criteria":    result.Criteria,
		"overall":     result.Overall,
		"model_used":  result.ModelUsed,
		"scored_at":   result.ScoredAt,
	})
}

func getScores(c *fiber.Ctx, svc *services.Services, args json.RawMessage) error {
	var a struct {
		EventID   string `json:"event_id"`
		SessionID string `json:"session_id"`
	}
	if err := unmarshalArgs(args, &a); err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	if a.EventID == "" || a.SessionID == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "event_id and session_id are required")
	}

	results, err := svc.Scoring.Scores(c.Context(), a.EventID, a.SessionID)
	if err != nil {
		return failFromError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"event_id":   a.EventID,
		"session_id": a.SessionID,
		"scores":     results,
		"count":      len(results),
	})
}

func getLeaderboard(c *fiber.Ctx, svc *services.Services, args json.RawMessage) error {
	var a struct {
		EventID string `json:"event_id"`
	}
	if err := unmarshalArgs(args, &a); err != nil {
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	if a.EventID == "" {
		return fail(c, fiber.StatusBadRequest, "validation_error", "event_id is required")
	}

	entries, err := svc.Scoring.Leaderboard(c.Context(), a.EventID)
	if err != nil {
		return failFromError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"event_id":    a.EventID,
		"leaderboard": entries,
		"count":       len(entries),
	})
}

// resolveJudge picks the judge identity for a scoring call. A presented
// X-Judge-Key must verify against a judge registered for the event;
// without a key the request falls back to the judge_id argument (the
// scorer defaults it when empty).
func resolveJudge(c *fiber.Ctx, svc *services.Services, eventID, argJudgeID string) (string, error) {
	key := c.Get("X-Judge-Key")
	if key == "" {
		return argJudgeID, nil
	}

	prefix := auth.KeyLookupPrefix(key)
	if prefix == "" {
		return "", auth.ErrInvalidToken
	}
	judge, err := svc.Judges.GetByKeyPrefix(c.Context(), eventID, prefix)
	if err != nil {
		return "", err
	}
	if judge == nil || !auth.VerifyJudgeKey(key, judge.KeyHash) {
		return "", auth.ErrInvalidToken
	}
	return judge.Name, nil
}

func unmarshalArgs(args json.RawMessage, dst interface{}) error {
	if len(args) == 0 {
		return errors.New("arguments are required")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return errors.New("invalid arguments")
	}
	return nil
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

// failFromError maps service errors onto the wire taxonomy
func failFromError(c *fiber.Ctx, err error) error {
	var parseErr *scoring.ParseError

	switch {
	case errors.Is(err, recording.ErrSessionNotFound), errors.Is(err, scoring.ErrSessionNotFound):
		return fail(c, fiber.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, recording.ErrInvalidTransition), errors.Is(err, scoring.ErrNotScorable):
		return fail(c, fiber.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, recording.ErrMissingField), errors.Is(err, scoring.ErrEmptyTranscript):
		return fail(c, fiber.StatusBadRequest, "validation_error", err.Error())
	case errors.As(err, &parseErr):
		return fail(c, fiber.StatusBadGateway, "parse_error", err.Error())
	case errors.Is(err, completion.ErrUnavailable):
		return fail(c, fiber.StatusBadGateway, "completion_unavailable", err.Error())
	default:
		logrus.WithError(err).Error("unhandled service error")
		return fail(c, fiber.StatusInternalServerError, "internal_error", "internal error")
	}
}
