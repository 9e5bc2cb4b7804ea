package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/pitchscoop/pitchscoop-backend/internal/auth"
	"github.com/pitchscoop/pitchscoop-backend/internal/completion"
	"github.com/pitchscoop/pitchscoop-backend/internal/config"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository/memory"
	"github.com/pitchscoop/pitchscoop-backend/internal/services"
)

type testEnv struct {
	app    *fiber.App
	client *completion.StubClient
	judges *memory.JudgeRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{BaseURL: "ws://test"},
		Scoring: config.ScoringConfig{Temperature: 0.3, MaxTokens: 1200},
		Audio:   config.AudioConfig{Dir: t.TempDir(), PlaybackTTLMinutes: 60},
		Auth:    config.AuthConfig{TokenSecret: "test-secret"},
	}

	client := completion.NewStubClient()
	judges := memory.NewJudgeRepository()
	svc := services.NewServices(cfg, memory.NewSessionRepository(), memory.NewScoreRepository(), judges, client)

	app := fiber.New()
	SetupRoutes(app, svc)

	return &testEnv{app: app, client: client, judges: judges}
}

func (e *testEnv) execute(t *testing.T, tool string, args map[string]interface{}, headers ...map[string]string) (int, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{"tool": tool, "arguments": args})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/mcp/execute", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload), "body: %s", raw)
	return resp.StatusCode, payload
}

func (e *testEnv) startAndStop(t *testing.T, eventID, transcript string) string {
	t.Helper()

	_, started := e.execute(t, "pitches.start_recording", map[string]interface{}{
		"event_id":    eventID,
		"team_name":   "Demo",
		"pitch_title": "AI Agent",
	})
	require.Equal(t, true, started["success"])
	sessionID := started["session_id"].(string)

	_, stopped := e.execute(t, "pitches.stop_recording", map[string]interface{}{
		"event_id":   eventID,
		"session_id": sessionID,
		"transcript": transcript,
	})
	require.Equal(t, true, stopped["success"])
	return sessionID
}

func TestStartRecording_ReturnsReadySessionWithStreamURL(t *testing.T) {
	env := newTestEnv(t)

	status, payload := env.execute(t, "pitches.start_recording", map[string]interface{}{
		"event_id":    "event-1",
		"team_name":   "Demo",
		"pitch_title": "AI Agent",
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "ready_to_record", payload["status"])
	assert.NotEmpty(t, payload["session_id"])
	assert.Contains(t, payload["websocket_url"], "ws://test/ws/recordings/")
}

func TestStopRecording_CompletesSession(t *testing.T) {
	env := newTestEnv(t)

	sessionID := env.startAndStop(t, "event-1", "We built an agent that scores pitches.")

	status, payload := env.execute(t, "pitches.get_session", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
	})

	assert.Equal(t, http.StatusOK, status)
	session := payload["session"].(map[string]interface{})
	assert.Equal(t, "completed", session["status"])
	assert.NotNil(t, session["completed_at"])

	transcript := payload["transcript"].(map[string]interface{})
	assert.Equal(t, "We built an agent that scores pitches.", transcript["total_text"])
	assert.Equal(t, float64(1), transcript["segments_count"])
}

func TestScorePitch_ReturnsBoundedScores(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startAndStop(t, "event-1", "We built an agent that scores pitches.")

	status, payload := env.execute(t, "analysis.score_pitch", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
	})

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, payload["success"])

	criteria := payload["criteria"].(map[string]interface{})
	var total float64
	for _, name := range []string{"idea", "technical_implementation", "tool_use", "presentation_delivery"} {
		criterion, ok := criteria[name].(map[string]interface{})
		require.True(t, ok, "missing criterion %s", name)
		score := criterion["score"].(float64)
		assert.LessOrEqual(t, score, 25.0)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.Equal(t, 25.0, criterion["max_score"])
		total += score
	}

	overall := payload["overall"].(map[string]interface{})
	assert.Equal(t, total, overall["total_score"])
	assert.LessOrEqual(t, overall["total_score"].(float64), 100.0)
	assert.Equal(t, overall["total_score"], overall["percentage"])
	assert.Equal(t, "very_good", overall["ranking_tier"]) // stub rubric totals 75
	assert.Equal(t, "panel", payload["judge_id"])
}

func TestScorePitch_JudgeKeyResolvesIdentity(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startAndStop(t, "event-1", "transcript")

	apiKey, keyHash, keyPrefix, err := auth.GenerateJudgeKey()
	require.NoError(t, err)
	require.NoError(t, env.judges.Create(context.Background(), &repository.Judge{
		EventID:   "event-1",
		Name:      "alex",
		KeyPrefix: keyPrefix,
		KeyHash:   keyHash,
	}))

	status, payload := env.execute(t, "analysis.score_pitch", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
	}, map[string]string{"X-Judge-Key": apiKey})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alex", payload["judge_id"])

	// A bogus key is rejected outright.
	status, payload = env.execute(t, "analysis.score_pitch", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
	}, map[string]string{"X-Judge-Key": "ps_completely-made-up-key-value"})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "invalid_judge_key", payload["code"])
}

func TestSessionLookup_IsEventScoped(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startAndStop(t, "event-1", "transcript")

	status, payload := env.execute(t, "pitches.get_session", map[string]interface{}{
		"event_id":   "event-2",
		"session_id": sessionID,
	})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "session_not_found", payload["code"])

	// Scores recorded under event-1 are invisible to event-2.
	_, scored := env.execute(t, "analysis.score_pitch", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
	})
	require.Equal(t, true, scored["success"])

	status, leaderboard := env.execute(t, "analysis.get_leaderboard", map[string]interface{}{
		"event_id": "event-2",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), leaderboard["count"])
}

func TestUnknownTool_FailsWithCode(t *testing.T) {
	env := newTestEnv(t)

	status, payload := env.execute(t, "pitches.self_destruct", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "unknown_tool", payload["code"])
}

func TestDoubleStop_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startAndStop(t, "event-1", "transcript")

	status, payload := env.execute(t, "pitches.stop_recording", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
		"transcript": "second stop",
	})

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "invalid_state", payload["code"])
}

func TestListSessionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.startAndStop(t, "event-1", "transcript one")
	env.startAndStop(t, "event-2", "transcript two")

	req, err := http.NewRequest(http.MethodGet, "/api/sessions", nil)
	require.NoError(t, err)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(2), payload["count"])

	// Filtered by event
	req, err = http.NewRequest(http.MethodGet, "/api/sessions?event_id=event-1", nil)
	require.NoError(t, err)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, float64(1), payload["count"])
	sessions := payload["sessions"].([]interface{})
	first := sessions[0].(map[string]interface{})
	assert.Equal(t, "event-1", first["event_id"])
}

func TestScorePitch_ParseFailureSurfacesAsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startAndStop(t, "event-1", "transcript")

	env.client.QueueResponse("no json here, just vibes")
	status, payload := env.execute(t, "analysis.score_pitch", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
	})

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "parse_error", payload["code"])
}

func TestScorePitch_ProviderDownSurfacesAsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	sessionID := env.startAndStop(t, "event-1", "transcript")

	env.client.Fail(fmt.Errorf("%w: dial tcp: connection refused", completion.ErrUnavailable))
	status, payload := env.execute(t, "analysis.score_pitch", map[string]interface{}{
		"event_id":   "event-1",
		"session_id": sessionID,
	})

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "completion_unavailable", payload["code"])
}
