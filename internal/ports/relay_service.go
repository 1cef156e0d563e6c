package ports

import "context"

type ChatResult struct {
	Response string
	Audio    string // base64 of the synthesized audio
}

type TranscriptionResult struct {
	Text     string
	Response string
	Audio    string
}

type RelayService interface {
	// Chat: текст → ответ модели → голос
	Chat(ctx context.Context, text string) (*ChatResult, error)
	// TranscribeAndReply: голос → текст, дальше как Chat
	TranscribeAndReply(ctx context.Context, audio []byte) (*TranscriptionResult, error)
}
