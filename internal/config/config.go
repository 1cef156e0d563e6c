package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the relay service
type Config struct {
	Port string `envconfig:"PORT" default:"8000"`

	// OpenAI: chat completion and transcription.
	// STT key falls back to the chat key when unset.
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAISTTAPIKey string `envconfig:"OPENAI_STT_API_KEY" default:""`
	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL" default:""`
	ChatModel       string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-3.5-turbo"`
	STTModel        string `envconfig:"OPENAI_STT_MODEL" default:"whisper-1"`
	SystemPrompt    string `envconfig:"SYSTEM_PROMPT" default:"You are a helpful AI assistant."`

	// ElevenLabs TTS
	ElevenLabsAPIKey       string `envconfig:"ELEVENLABS_API_KEY" required:"true"`
	ElevenLabsBaseURL      string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io"`
	ElevenLabsVoiceID      string `envconfig:"ELEVENLABS_VOICE_ID" default:"cjVigY5qzO86Huf0OWal"`
	ElevenLabsModelID      string `envconfig:"ELEVENLABS_MODEL_ID" default:"eleven_multilingual_v2"`
	ElevenLabsOutputFormat string `envconfig:"ELEVENLABS_OUTPUT_FORMAT" default:"mp3_44100_128"`

	// Only the local web UI by default; change for any other deployment.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"26214400"` // whisper rejects files above 25 MiB
	UploadTempDir  string `envconfig:"UPLOAD_TEMP_DIR" default:""`
	UploadSuffix   string `envconfig:"UPLOAD_SUFFIX" default:".webm"`

	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"120s"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.OpenAISTTAPIKey == "" {
		cfg.OpenAISTTAPIKey = cfg.OpenAIAPIKey
	}
	if cfg.UploadTempDir == "" {
		cfg.UploadTempDir = os.TempDir()
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.ElevenLabsAPIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is required")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	return nil
}
