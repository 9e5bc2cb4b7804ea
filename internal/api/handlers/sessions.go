package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
	"github.com/pitchscoop/pitchscoop-backend/internal/services"
)

// ListAllSessions serves GET /api/sessions: a summary listing of sessions,
// optionally filtered by the event_id query parameter.
func ListAllSessions(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		eventID := c.Query("event_id")

		sessions, err := svc.Recording.List(c.Context(), eventID)
		if err != nil {
			return failFromError(c, err)
		}

		summaries := make([]fiber.Map, 0, len(sessions))
		for _, sess := range sessions {
			summaries = append(summaries, sessionSummary(sess))
		}

		return c.JSON(fiber.Map{
			"success":  true,
			"sessions": summaries,
			"count":    len(summaries),
		})
	}
}

// GetEventLeaderboard serves GET /api/events/:event_id/leaderboard
func GetEventLeaderboard(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		eventID := c.Params("event_id")

		entries, err := svc.Scoring.Leaderboard(c.Context(), eventID)
		if err != nil {
			return failFromError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"event_id":    eventID,
			"leaderboard": entries,
			"count":       len(entries),
		})
	}
}

// sessionSummary is the listing shape: no transcript body, no audio path
func sessionSummary(sess *repository.Session) fiber.Map {
	m := fiber.Map{
		"session_id":          sess.ID,
		"event_id":            sess.EventID,
		"team_name":           sess.TeamName,
		"pitch_title":         sess.PitchTitle,
		"status":              sess.Status,
		"transcript_segments": sess.TranscriptSegments,
		"has_audio":           sess.AudioSizeBytes > 0,
		"created_at":          sess.CreatedAt,
	}
	if sess.CompletedAt.Valid {
		m["completed_at"] = sess.CompletedAt.Time
	}
	return m
}

// sessionDetail is the single-session shape used by get_session and
// stop_recording responses: summary plus transcript and audio sections.
func sessionDetail(c *fiber.Ctx, svc *services.Services, sess *repository.Session) error {
	playbackURL, err := svc.Recording.PlaybackURL(sess)
	if err != nil {
		return failFromError(c, err)
	}

	resp := fiber.Map{
		"success": true,
		"session": sessionSummary(sess),
		"transcript": fiber.Map{
			"total_text":     sess.TranscriptText,
			"segments_count": sess.TranscriptSegments,
		},
		"audio": fiber.Map{
			"has_audio":  sess.AudioSizeBytes > 0,
			"audio_size": sess.AudioSizeBytes,
		},
	}
	if playbackURL != "" {
		resp["audio"].(fiber.Map)["playback_url"] = playbackURL
	}
	return c.JSON(resp)
}
