package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Vovarama1992/voice_relay/internal/apperr"
)

const (
	DefaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID           = "cjVigY5qzO86Huf0OWal"
	DefaultModelID           = "eleven_multilingual_v2"
	DefaultOutputFormat      = "mp3_44100_128"
)

type ElevenLabsClient struct {
	apiKey       string
	baseURL      string
	voiceID      string
	modelID      string
	outputFormat string
	httpCli      *http.Client
}

type ElevenLabsOptions struct {
	APIKey       string
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string
	HTTPClient   *http.Client
}

func NewElevenLabsClient(opts ElevenLabsOptions) *ElevenLabsClient {
	c := &ElevenLabsClient{
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		voiceID:      opts.VoiceID,
		modelID:      opts.ModelID,
		outputFormat: opts.OutputFormat,
		httpCli:      opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultElevenLabsBaseURL
	}
	if c.voiceID == "" {
		c.voiceID = DefaultVoiceID
	}
	if c.modelID == "" {
		c.modelID = DefaultModelID
	}
	if c.outputFormat == "" {
		c.outputFormat = DefaultOutputFormat
	}
	if c.httpCli == nil {
		c.httpCli = http.DefaultClient
	}
	return c
}

// SynthesizeStream starts a streamed synthesis and hands back the response body.
// Chunks arrive in order; the body must be closed by the caller.
func (c *ElevenLabsClient) SynthesizeStream(ctx context.Context, text string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?output_format=%s",
		c.baseURL, url.PathEscape(c.voiceID), url.QueryEscape(c.outputFormat))

	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": c.modelID,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "marshal payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "build request", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamTransport, "", err)
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperr.Wrap(apperr.FromStatus(resp.StatusCode), "",
			fmt.Errorf("elevenlabs error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	return resp.Body, nil
}
