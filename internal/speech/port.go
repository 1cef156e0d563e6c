package speech

import (
	"context"
	"io"
)

type STTClient interface {
	Transcribe(ctx context.Context, filePath string) (string, error) // голос → текст
}

// TTSClient returns synthesized audio as a stream; the caller drains and closes it.
type TTSClient interface {
	SynthesizeStream(ctx context.Context, text string) (io.ReadCloser, error) // текст → голос
}
