// Package recording owns the pitch recording session lifecycle:
// ready_to_record -> recording -> completed. Audio and transcript frames
// arrive over a websocket stream; stop_recording finalizes the session,
// after which it is read-only.
package recording

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/pitchscoop/pitchscoop-backend/internal/auth"
	"github.com/pitchscoop/pitchscoop-backend/internal/metrics"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
)

var (
	// ErrSessionNotFound is returned when the session does not exist in the
	// given event
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidTransition is returned for lifecycle violations, e.g.
	// stopping an already-completed session
	ErrInvalidTransition = errors.New("invalid session state transition")
	// ErrMissingField is returned when a required argument is empty
	ErrMissingField = errors.New("missing required field")
	// ErrNoAudio is returned when playback is requested for a session
	// without stored audio
	ErrNoAudio = errors.New("session has no audio")
)

// Service manages recording sessions and their in-flight streams
type Service struct {
	sessions repository.SessionRepository
	signer   *auth.TokenSigner
	streams  *streamTable
	wsBase   string
	ttl      time.Duration
	log      *logrus.Entry
}

// NewService creates the recording service. wsBase is the externally visible
// websocket base URL (e.g. "ws://localhost:8000"); audioDir is where streamed
// audio bytes land.
func NewService(
	sessions repository.SessionRepository,
	signer *auth.TokenSigner,
	wsBase string,
	audioDir string,
	playbackTTL time.Duration,
) *Service {
	if playbackTTL <= 0 {
		playbackTTL = time.Hour
	}
	return &Service{
		sessions: sessions,
		signer:   signer,
		streams:  newStreamTable(audioDir),
		wsBase:   strings.TrimRight(wsBase, "/"),
		ttl:      playbackTTL,
		log:      logrus.WithField("component", "recording"),
	}
}

// Start creates a session in ready_to_record and returns it together with
// the websocket URL for streaming audio and transcript frames.
func (s *Service) Start(ctx context.Context, eventID, teamName, pitchTitle string) (*repository.Session, string, error) {
	switch {
	case eventID == "":
		return nil, "", fmt.Errorf("%w: event_id", ErrMissingField)
	case teamName == "":
		return nil, "", fmt.Errorf("%w: team_name", ErrMissingField)
	case pitchTitle == "":
		return nil, "", fmt.Errorf("%w: pitch_title", ErrMissingField)
	}

	session := &repository.Session{
		EventID:    eventID,
		TeamName:   teamName,
		PitchTitle: pitchTitle,
		Status:     repository.StatusReadyToRecord,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsStarted.Inc()
	s.log.WithFields(logrus.Fields{
		"event_id":   eventID,
		"session_id": session.ID,
		"team_name":  teamName,
	}).Info("recording session created")

	wsURL := fmt.Sprintf("%s/ws/recordings/%s?event_id=%s", s.wsBase, session.ID, eventID)
	return session, wsURL, nil
}

// BeginStream validates that a session can accept stream frames
func (s *Service) BeginStream(ctx context.Context, eventID, sessionID string) error {
	sess, err := s.sessions.Get(ctx, eventID, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	if sess.Status == repository.StatusCompleted {
		return ErrInvalidTransition
	}
	return nil
}

// AppendTranscript appends one transcript segment from the stream. The first
// frame of a stream moves the session to recording.
func (s *Service) AppendTranscript(ctx context.Context, eventID, sessionID, text string) error {
	if err := s.markRecording(ctx, eventID, sessionID); err != nil {
		return err
	}
	s.streams.appendSegment(sessionID, text)
	return nil
}

// AppendAudio appends raw audio bytes from the stream
func (s *Service) AppendAudio(ctx context.Context, eventID, sessionID string, chunk []byte) error {
	if err := s.markRecording(ctx, eventID, sessionID); err != nil {
		return err
	}
	return s.streams.appendAudio(eventID, sessionID, chunk)
}

// EndStream closes the stream's audio file; accumulated state stays available
// for Stop.
func (s *Service) EndStream(sessionID string) {
	s.streams.closeStream(sessionID)
}

func (s *Service) markRecording(ctx context.Context, eventID, sessionID string) error {
	if s.streams.isRecording(sessionID) {
		return nil
	}

	sess, err := s.sessions.Get(ctx, eventID, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return ErrSessionNotFound
	}
	if sess.Status == repository.StatusCompleted {
		return ErrInvalidTransition
	}

	if sess.Status == repository.StatusReadyToRecord {
		err := s.sessions.Update(ctx, eventID, sessionID, map[string]interface{}{
			"status": repository.StatusRecording,
		})
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
	}
	s.streams.markRecording(sessionID)
	return nil
}

// Stop finalizes a session: transcript and audio metadata are attached and
// the status becomes completed. finalTranscript, when non-empty, replaces
// whatever the stream accumulated. Stopping a completed session fails.
func (s *Service) Stop(ctx context.Context, eventID, sessionID, finalTranscript string) (*repository.Session, error) {
	sess, err := s.sessions.Get(ctx, eventID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if sess.Status == repository.StatusCompleted {
		return nil, ErrInvalidTransition
	}

	transcript, segments, audioBytes, audioPath := s.streams.finalize(sessionID)
	if finalTranscript != "" {
		transcript = finalTranscript
		if segments == 0 {
			segments = 1
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":              repository.StatusCompleted,
		"transcript_text":     transcript,
		"transcript_segments": segments,
		"audio_size_bytes":    audioBytes,
		"audio_path":          audioPath,
		"completed_at":        now,
	}
	if err := s.sessions.Update(ctx, eventID, sessionID, updates); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	metrics.SessionsCompleted.Inc()
	s.log.WithFields(logrus.Fields{
		"event_id":    eventID,
		"session_id":  sessionID,
		"segments":    segments,
		"audio_bytes": audioBytes,
	}).Info("recording session completed")

	return s.Get(ctx, eventID, sessionID)
}

// Get returns one session within an event
func (s *Service) Get(ctx context.Context, eventID, sessionID string) (*repository.Session, error) {
	sess, err := s.sessions.Get(ctx, eventID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// List returns an event's sessions; empty eventID lists all (operator surface)
func (s *Service) List(ctx context.Context, eventID string) ([]*repository.Session, error) {
	return s.sessions.List(ctx, eventID)
}

// PlaybackURL mints a time-limited playback URL for a session's audio, or ""
// when the session has none.
func (s *Service) PlaybackURL(sess *repository.Session) (string, error) {
	if sess.AudioSizeBytes == 0 || sess.AudioPath == "" {
		return "", nil
	}
	token, err := s.signer.MintPlaybackToken(sess.EventID, sess.ID, s.ttl)
	if err != nil {
		return "", fmt.Errorf("mint playback token: %w", err)
	}
	return fmt.Sprintf("/api/recordings/%s/audio?token=%s", sess.ID, token), nil
}

// AudioFile validates a playback token and returns the audio file path for
// the session it names.
func (s *Service) AudioFile(ctx context.Context, tokenString, sessionID string) (string, error) {
	claims, err := s.signer.ValidatePlaybackToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.SessionID != sessionID {
		return "", auth.ErrInvalidToken
	}

	sess, err := s.sessions.Get(ctx, claims.EventID, claims.SessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return "", ErrSessionNotFound
	}
	if sess.AudioPath == "" {
		return "", ErrNoAudio
	}
	return sess.AudioPath, nil
}
