package services

import (
	"fmt"
	"time"

	"github.com/pitchscoop/pitchscoop-backend/internal/auth"
	"github.com/pitchscoop/pitchscoop-backend/internal/completion"
	"github.com/pitchscoop/pitchscoop-backend/internal/config"
	"github.com/pitchscoop/pitchscoop-backend/internal/recording"
	"github.com/pitchscoop/pitchscoop-backend/internal/repository"
	"github.com/pitchscoop/pitchscoop-backend/internal/scoring"
)

// Services holds all service instances
type Services struct {
	Recording *recording.Service
	Scoring   *scoring.Service
	Judges    repository.JudgeRepository
}

// NewServices creates all service instances
func NewServices(
	cfg *config.Config,
	sessionRepo repository.SessionRepository,
	scoreRepo repository.ScoreRepository,
	judgeRepo repository.JudgeRepository,
	client completion.Client,
) *Services {
	signer := auth.NewTokenSigner(cfg.Auth.TokenSecret)

	wsBase := cfg.Server.BaseURL
	if wsBase == "" {
		wsBase = "ws://" + hostPort(cfg.Server)
	}

	recordingService := recording.NewService(
		sessionRepo,
		signer,
		wsBase,
		cfg.Audio.Dir,
		time.Duration(cfg.Audio.PlaybackTTLMinutes)*time.Minute,
	)

	scoringService := scoring.NewService(sessionRepo, scoreRepo, client, cfg.Scoring)

	return &Services{
		Recording: recordingService,
		Scoring:   scoringService,
		Judges:    judgeRepo,
	}
}

func hostPort(cfg config.ServerConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 8000
	}
	return fmt.Sprintf("%s:%d", host, port)
}
