package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Provider ProviderConfig `json:"provider"`
	Scoring  ScoringConfig  `json:"scoring"`
	Audio    AudioConfig    `json:"audio"`
	Auth     AuthConfig     `json:"auth"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// BaseURL is used when building websocket and playback URLs returned
	// to clients. Empty means host:port.
	BaseURL string `json:"base_url"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// ProviderConfig describes the chat-completion backend. Type is one of
// "azure-openai", "openai", or "stub" (deterministic local responses for
// development and tests).
type ProviderConfig struct {
	Type           string `json:"type"`
	Endpoint       string `json:"endpoint,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	Deployment     string `json:"deployment"`
	APIVersion     string `json:"api_version,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type ScoringConfig struct {
	Temperature  float32 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	DefaultJudge string  `json:"default_judge"`
}

type AudioConfig struct {
	Dir                string `json:"dir"`
	PlaybackTTLMinutes int    `json:"playback_ttl_minutes"`
}

type AuthConfig struct {
	TokenSecret string `json:"token_secret"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".pitchscoop"))
	}

	// Set defaults
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "pitchscoop")
	viper.SetDefault("database.database", "pitchscoop")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("provider.type", "azure-openai")
	viper.SetDefault("provider.deployment", "gpt-4o-mini")
	viper.SetDefault("provider.api_version", "2024-02-15-preview")
	viper.SetDefault("provider.timeout_seconds", 60)
	viper.SetDefault("scoring.temperature", 0.3)
	viper.SetDefault("scoring.max_tokens", 1200)
	viper.SetDefault("scoring.default_judge", "panel")
	viper.SetDefault("audio.dir", "./data/audio")
	viper.SetDefault("audio.playback_ttl_minutes", 60)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine; defaults plus env cover the common case.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("PITCHSCOOP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("PITCHSCOOP_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if base := os.Getenv("PITCHSCOOP_BASE_URL"); base != "" {
		cfg.Server.BaseURL = base
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	// Azure OpenAI overrides
	if endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT"); endpoint != "" {
		cfg.Provider.Endpoint = endpoint
	}
	if key := os.Getenv("AZURE_OPENAI_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT"); deployment != "" {
		cfg.Provider.Deployment = deployment
	}
	if version := os.Getenv("AZURE_OPENAI_API_VERSION"); version != "" {
		cfg.Provider.APIVersion = version
	}

	if secret := os.Getenv("PITCHSCOOP_TOKEN_SECRET"); secret != "" {
		cfg.Auth.TokenSecret = secret
	}
	if dir := os.Getenv("PITCHSCOOP_AUDIO_DIR"); dir != "" {
		cfg.Audio.Dir = dir
	}
}
