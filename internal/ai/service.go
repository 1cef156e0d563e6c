package ai

import (
	"context"
	"strings"
	"time"

	"github.com/Vovarama1992/voice_relay/internal/observability"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultSystemPrompt = "You are a helpful AI assistant."

type ChatCompleter interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

type Service struct {
	client       ChatCompleter
	systemPrompt string
	timeout      time.Duration
	log          *zap.SugaredLogger
}

func NewService(client ChatCompleter, systemPrompt string, timeout time.Duration, log *zap.SugaredLogger) *Service {
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Service{
		client:       client,
		systemPrompt: systemPrompt,
		timeout:      timeout,
		log:          log,
	}
}

// GetReply sends the fixed system instruction plus userText and returns the model's reply.
// Every call is independent: no history is kept.
func (s *Service) GetReply(ctx context.Context, userText string) (string, error) {
	start := time.Now()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: s.systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userText},
	}

	ctxGPT, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.client.GetCompletion(ctxGPT, messages)
	observability.ObserveUpstream(observability.StageChat, start, err)
	if err != nil {
		s.log.Warnw("[ai] completion failed", "elapsed", time.Since(start), "error", err)
		return "", err
	}

	s.log.Debugw("[ai] completion done", "elapsed", time.Since(start), "reply_chars", len(reply))
	return reply, nil
}
