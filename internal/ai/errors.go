package ai

import (
	"errors"

	"github.com/Vovarama1992/voice_relay/internal/apperr"
	openai "github.com/sashabaranov/go-openai"
)

// classifyOpenAIError tags an SDK error with a kind. The message stays the SDK's own.
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperr.Wrap(apperr.FromStatus(apiErr.HTTPStatusCode), "", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperr.Wrap(apperr.FromStatus(reqErr.HTTPStatusCode), "", err)
	}

	// dial failures, timeouts, cancelled contexts
	return apperr.Wrap(apperr.UpstreamTransport, "", err)
}
