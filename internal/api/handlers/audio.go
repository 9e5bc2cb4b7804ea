package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pitchscoop/pitchscoop-backend/internal/auth"
	"github.com/pitchscoop/pitchscoop-backend/internal/recording"
	"github.com/pitchscoop/pitchscoop-backend/internal/services"
)

// PlayAudio serves GET /api/recordings/:id/audio. Access requires a valid,
// unexpired playback token minted for exactly this session.
func PlayAudio(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")
		token := c.Query("token")
		if token == "" {
			return fail(c, fiber.StatusUnauthorized, "validation_error", "playback token is required")
		}

		path, err := svc.Recording.AudioFile(c.Context(), token, sessionID)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				return fail(c, fiber.StatusUnauthorized, "token_expired", "playback token has expired")
			case errors.Is(err, auth.ErrInvalidToken):
				return fail(c, fiber.StatusUnauthorized, "invalid_token", "playback token rejected")
			case errors.Is(err, recording.ErrNoAudio):
				return fail(c, fiber.StatusNotFound, "no_audio", "session has no audio")
			default:
				return failFromError(c, err)
			}
		}

		return c.SendFile(path)
	}
}
