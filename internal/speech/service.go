package speech

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Vovarama1992/voice_relay/internal/apperr"
	"github.com/Vovarama1992/voice_relay/internal/observability"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const synthesisErrPrefix = "Text to speech error"

// === Единый сервис (и для стт и для ттс) ===

type Service struct {
	stt     STTClient
	tts     TTSClient
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewService(stt STTClient, tts TTSClient, timeout time.Duration, log *zap.SugaredLogger) *Service {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Service{
		stt:     stt,
		tts:     tts,
		timeout: timeout,
		log:     log,
	}
}

func (s *Service) Transcribe(ctx context.Context, filePath string) (string, error) {
	start := time.Now()

	ctxSTT, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.stt.Transcribe(ctxSTT, filePath)
	observability.ObserveUpstream(observability.StageSTT, start, err)
	if err != nil {
		s.log.Warnw("[speech] transcribe failed", "elapsed", time.Since(start), "error", err)
		return "", err
	}

	s.log.Debugw("[speech] transcribed", "elapsed", time.Since(start), "chars", len(text))
	return text, nil
}

// Synthesize returns the full audio for text. The stream is drained completely
// before returning; any failure carries the synthesis prefix.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, synthesisError(errors.New("empty text"))
	}

	start := time.Now()

	ctxTTS, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stream, err := s.tts.SynthesizeStream(ctxTTS, text)
	if err != nil {
		observability.ObserveUpstream(observability.StageTTS, start, err)
		s.log.Warnw("[speech] synthesis failed", "elapsed", time.Since(start), "error", err)
		return nil, synthesisError(err)
	}
	defer stream.Close()

	audio, err := Drain(stream)
	if err != nil {
		err = apperr.Wrap(apperr.UpstreamTransport, "", err)
	}
	observability.ObserveUpstream(observability.StageTTS, start, err)
	if err != nil {
		s.log.Warnw("[speech] draining audio stream failed", "elapsed", time.Since(start), "error", err)
		return nil, synthesisError(err)
	}

	observability.RecordAudioBytes("out", len(audio))
	s.log.Debugw("[speech] synthesized",
		"elapsed", time.Since(start),
		"size", humanize.Bytes(uint64(len(audio))))
	return audio, nil
}

// SynthesizeBase64 is Synthesize followed by standard base64 encoding for JSON transport.
func (s *Service) SynthesizeBase64(ctx context.Context, text string) (string, error) {
	audio, err := s.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}
	return EncodeBase64(audio), nil
}

func synthesisError(err error) error {
	return apperr.Wrap(apperr.Synthesis, synthesisErrPrefix, err)
}
