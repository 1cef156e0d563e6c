package domain

import (
	"context"
	"strings"
	"time"

	"github.com/Vovarama1992/voice_relay/internal/apperr"
	"github.com/Vovarama1992/voice_relay/internal/observability"
	"github.com/Vovarama1992/voice_relay/internal/ports"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type RelayOptions struct {
	TempDir string // empty means os.TempDir()
	Suffix  string // extension of the scoped upload file
}

type relayService struct {
	replier ports.Replier
	speech  ports.SpeechService
	tempDir string
	suffix  string
	log     *zap.SugaredLogger
}

func NewRelayService(replier ports.Replier, speech ports.SpeechService, opts RelayOptions, log *zap.SugaredLogger) ports.RelayService {
	suffix := opts.Suffix
	if suffix == "" {
		suffix = ".webm"
	}
	return &relayService{
		replier: replier,
		speech:  speech,
		tempDir: opts.TempDir,
		suffix:  suffix,
		log:     log,
	}
}

func (s *relayService) Chat(ctx context.Context, text string) (*ports.ChatResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.InvalidInput, "text is required")
	}

	reply, audio, err := s.replyWithAudio(ctx, text)
	if err != nil {
		return nil, err
	}
	return &ports.ChatResult{Response: reply, Audio: audio}, nil
}

func (s *relayService) TranscribeAndReply(ctx context.Context, audio []byte) (*ports.TranscriptionResult, error) {
	if len(audio) == 0 {
		return nil, apperr.New(apperr.InvalidInput, "audio upload is empty")
	}

	start := time.Now()
	observability.RecordAudioBytes("in", len(audio))

	var transcript string
	err := withScopedTempFile(s.tempDir, s.suffix, audio, func(path string) error {
		var err error
		transcript, err = s.speech.Transcribe(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("[relay] transcribed upload",
		"size", humanize.Bytes(uint64(len(audio))),
		"elapsed", time.Since(start))

	reply, b64, err := s.replyWithAudio(ctx, transcript)
	if err != nil {
		return nil, err
	}
	return &ports.TranscriptionResult{Text: transcript, Response: reply, Audio: b64}, nil
}

// replyWithAudio is the shared tail of both flows: model reply, then synthesis.
func (s *relayService) replyWithAudio(ctx context.Context, text string) (string, string, error) {
	reply, err := s.replier.GetReply(ctx, text)
	if err != nil {
		return "", "", err
	}

	audio, err := s.speech.SynthesizeBase64(ctx, reply)
	if err != nil {
		return "", "", err
	}
	return reply, audio, nil
}
