package ports

import "context"

type Replier interface {
	GetReply(ctx context.Context, userText string) (string, error)
}

type SpeechService interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
	SynthesizeBase64(ctx context.Context, text string) (string, error)
}
