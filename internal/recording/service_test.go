package recording

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/pitchscoop/pitchscoop-backend/internal/auth"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(
		memory.NewSessionRepository(),
		auth.NewTokenSigner("test-secret"),
		"ws://localhost:8000",
		t.TempDir(),
		time.Hour,
	)
}

func TestStart_CreatesReadySession(t *testing.T) {
	svc := newTestService(t)

	sess, wsURL, err := svc.Start(context.Background(), "event-1", "Demo", "AI Agent")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, repository.StatusReadyToRecord, sess.Status)
	assert.Equal(t, "Demo", sess.TeamName)
	assert.Equal(t, "AI Agent", sess.PitchTitle)
	assert.Equal(t, "ws://localhost:8000/ws/recordings/"+sess.ID+"?event_id=event-1", wsURL)
}

func TestStart_RequiresAllFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Start(ctx, "", "Demo", "AI Agent")
	assert.ErrorIs(t, err, ErrMissingField)

	_, _, err = svc.Start(ctx, "event-1", "", "AI Agent")
	assert.ErrorIs(t, err, ErrMissingField)

	_, _, err = svc.Start(ctx, "event-1", "Demo", "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestStop_CompletesSessionWithTranscript(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "event-1", "Demo", "AI Agent")
	require.NoError(t, err)

	stopped, err := svc.Stop(ctx, "event-1", sess.ID, "We built an agent that scores pitches.")
	require.NoError(t, err)

	assert.Equal(t, repository.StatusCompleted, stopped.Status)
	assert.Equal(t, "We built an agent that scores pitches.", stopped.TranscriptText)
	assert.Equal(t, 1, stopped.TranscriptSegments)
	assert.True(t, stopped.CompletedAt.Valid)
}

func TestStop_RejectsDoubleStop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "event-1", "Demo", "AI Agent")
	require.NoError(t, err)

	_, err = svc.Stop(ctx, "event-1", sess.ID, "transcript")
	require.NoError(t, err)

	_, err = svc.Stop(ctx, "event-1", sess.ID, "transcript again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStreamFrames_AccumulateIntoStop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "event-1", "Demo", "AI Agent")
	require.NoError(t, err)

	require.NoError(t, svc.BeginStream(ctx, "event-1", sess.ID))
	require.NoError(t, svc.AppendTranscript(ctx, "event-1", sess.ID, "Hello judges."))
	require.NoError(t, svc.AppendTranscript(ctx, "event-1", sess.ID, "We built an agent."))
	require.NoError(t, svc.AppendAudio(ctx, "event-1", sess.ID, []byte("audio-bytes")))

	// First frame moved the session to recording.
	mid, err := svc.Get(ctx, "event-1", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusRecording, mid.Status)

	svc.EndStream(sess.ID)

	stopped, err := svc.Stop(ctx, "event-1", sess.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "Hello judges. We built an agent.", stopped.TranscriptText)
	assert.Equal(t, 2, stopped.TranscriptSegments)
	assert.Equal(t, int64(len("audio-bytes")), stopped.AudioSizeBytes)
	assert.NotEmpty(t, stopped.AudioPath)
}

func TestStream_RejectsCompletedSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "event-1", "Demo", "AI Agent")
	require.NoError(t, err)
	_, err = svc.Stop(ctx, "event-1", sess.ID, "done")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.BeginStream(ctx, "event-1", sess.ID), ErrInvalidTransition)
	assert.ErrorIs(t, svc.AppendTranscript(ctx, "event-1", sess.ID, "late"), ErrInvalidTransition)
}

func TestGet_EventIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "event-1", "Demo", "AI Agent")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "event-2", sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Stop(ctx, "event-2", sess.ID, "hijack attempt")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	listed, err := svc.List(ctx, "event-2")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestPlaybackURL_OnlyForSessionsWithAudio(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Start(ctx, "event-1", "Demo", "AI Agent")
	require.NoError(t, err)

	url, err := svc.PlaybackURL(sess)
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, svc.AppendAudio(ctx, "event-1", sess.ID, []byte("audio")))
	stopped, err := svc.Stop(ctx, "event-1", sess.ID, "transcript")
	require.NoError(t, err)

	url, err = svc.PlaybackURL(stopped)
	require.NoError(t, err)
	assert.Contains(t, url, "/api/recordings/"+sess.ID+"/audio?token=")

	// The minted token resolves back to the stored audio file.
	token := url[len("/api/recordings/"+sess.ID+"/audio?token="):]
	path, err := svc.AudioFile(ctx, token, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, stopped.AudioPath, path)

	// A token for one session cannot fetch another's audio.
	_, err = svc.AudioFile(ctx, token, "other-session")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
