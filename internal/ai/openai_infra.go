package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/voice_relay/internal/apperr"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the chat completion and transcription endpoints
// with one credential. Build a second one when STT uses its own key.
type OpenAIClient struct {
	client    *openai.Client
	chatModel string
	sttModel  string
}

type OpenAIOptions struct {
	APIKey    string
	BaseURL   string // empty keeps the SDK default
	ChatModel string
	STTModel  string
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	chatModel := opts.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT3Dot5Turbo
	}
	sttModel := opts.STTModel
	if sttModel == "" {
		sttModel = openai.Whisper1
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(cfg),
		chatModel: chatModel,
		sttModel:  sttModel,
	}
}

// GetCompletion returns the content of the first choice.
func (c *OpenAIClient) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: messages,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.UpstreamResponse, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends the audio file at filePath to whisper.
func (c *OpenAIClient) Transcribe(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "open audio file", err)
	}
	defer f.Close()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		FilePath: filepath.Base(filePath),
		Reader:   f,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	return resp.Text, nil
}

func (c *OpenAIClient) String() string {
	return fmt.Sprintf("openai(chat=%s, stt=%s)", c.chatModel, c.sttModel)
}
