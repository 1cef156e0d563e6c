package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Vovarama1992/voice_relay/internal/ai"
	"github.com/Vovarama1992/voice_relay/internal/config"
	"github.com/Vovarama1992/voice_relay/internal/delivery"
	"github.com/Vovarama1992/voice_relay/internal/domain"
	"github.com/Vovarama1992/voice_relay/internal/observability"
	"github.com/Vovarama1992/voice_relay/internal/speech"
)

const (
	serviceName    = "voice_relay"
	serviceVersion = "1.0.0"
)

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseLogger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	// =========================================================================
	// CLIENTS (OpenAI / ElevenLabs)
	// =========================================================================

	chatClient := ai.NewOpenAIClient(ai.OpenAIOptions{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		ChatModel: cfg.ChatModel,
	})
	sttClient := ai.NewOpenAIClient(ai.OpenAIOptions{
		APIKey:   cfg.OpenAISTTAPIKey,
		BaseURL:  cfg.OpenAIBaseURL,
		STTModel: cfg.STTModel,
	})
	ttsClient := speech.NewElevenLabsClient(speech.ElevenLabsOptions{
		APIKey:       cfg.ElevenLabsAPIKey,
		BaseURL:      cfg.ElevenLabsBaseURL,
		VoiceID:      cfg.ElevenLabsVoiceID,
		ModelID:      cfg.ElevenLabsModelID,
		OutputFormat: cfg.ElevenLabsOutputFormat,
	})

	sugar.Infow("vendor clients ready",
		"chat", chatClient,
		"stt", sttClient,
		"tts_voice", cfg.ElevenLabsVoiceID,
		"tts_format", cfg.ElevenLabsOutputFormat,
		"shared_openai_key", cfg.OpenAISTTAPIKey == cfg.OpenAIAPIKey,
	)

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	aiService := ai.NewService(chatClient, cfg.SystemPrompt, cfg.UpstreamTimeout, sugar)

	speechService := speech.NewService(
		sttClient, // Whisper
		ttsClient, // ElevenLabs
		cfg.UpstreamTimeout,
		sugar,
	)

	relayService := domain.NewRelayService(
		aiService,
		speechService,
		domain.RelayOptions{TempDir: cfg.UploadTempDir, Suffix: cfg.UploadSuffix},
		sugar,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	relayHandler := delivery.NewRelayHandler(relayService, zl, cfg.UploadMaxBytes)
	r := delivery.NewRouter(relayHandler, cfg.CORSAllowedOrigins)

	r.Get("/health", observability.HealthCheckHandler(serviceName, serviceVersion))
	r.Get("/ready", observability.ReadinessHandler(serviceName, serviceVersion, map[string]observability.HealthCheckFunc{
		"openai":     keyCheck("OPENAI_API_KEY", cfg.OpenAIAPIKey),
		"elevenlabs": keyCheck("ELEVENLABS_API_KEY", cfg.ElevenLabsAPIKey),
		"upload_dir": tempDirCheck(cfg.UploadTempDir),
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// =========================================================================
	// START SERVER
	// =========================================================================

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + server.Addr,
			Service: serviceName,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		sugar.Errorw("forced shutdown", "error", err)
		return
	}
	sugar.Info("server exited gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zc.Level = level
	return zc.Build()
}

func keyCheck(name, value string) observability.HealthCheckFunc {
	return func(ctx context.Context) (bool, error) {
		if value == "" {
			return false, fmt.Errorf("%s is not set", name)
		}
		return true, nil
	}
}

// tempDirCheck proves uploads can be staged: create and remove a probe file.
func tempDirCheck(dir string) observability.HealthCheckFunc {
	return func(ctx context.Context) (bool, error) {
		f, err := os.CreateTemp(dir, "ready-*")
		if err != nil {
			return false, err
		}
		name := f.Name()
		f.Close()
		return true, os.Remove(name)
	}
}
