package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_relay/internal/apperr"
	"github.com/Vovarama1992/voice_relay/internal/ports"
	"go.uber.org/zap"
)

type fakeRelay struct {
	chat       *ports.ChatResult
	transcribe *ports.TranscriptionResult
	err        error

	gotText  string
	gotAudio []byte
}

func (f *fakeRelay) Chat(ctx context.Context, text string) (*ports.ChatResult, error) {
	f.gotText = text
	return f.chat, f.err
}

func (f *fakeRelay) TranscribeAndReply(ctx context.Context, audio []byte) (*ports.TranscriptionResult, error) {
	f.gotAudio = audio
	return f.transcribe, f.err
}

func newTestRouter(relay ports.RelayService, maxUpload int64) http.Handler {
	h := NewRelayHandler(relay, logger.NewZapLogger(zap.NewNop().Sugar()), maxUpload)
	return NewRouter(h, []string{"http://localhost:5173"})
}

func multipartBody(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "recording.webm")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write(content)
	} else {
		_ = mw.WriteField("note", "no file here")
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return body, mw.FormDataContentType()
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return out
}

func TestChatHandler_OK(t *testing.T) {
	relay := &fakeRelay{chat: &ports.ChatResult{Response: "Hi there", Audio: "SUQz"}}
	router := newTestRouter(relay, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"text":"Hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	out := decodeMap(t, rec)
	if out["response"] != "Hi there" || out["audio"] != "SUQz" {
		t.Errorf("unexpected body %v", out)
	}
	if relay.gotText != "Hello" {
		t.Errorf("expected relay to receive 'Hello', got %q", relay.gotText)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestChatHandler_InvalidJSON(t *testing.T) {
	router := newTestRouter(&fakeRelay{}, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"text":`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if out := decodeMap(t, rec); !strings.HasPrefix(out["detail"], "invalid json") {
		t.Errorf("unexpected detail %q", out["detail"])
	}
}

func TestChatHandler_UpstreamError(t *testing.T) {
	relay := &fakeRelay{err: apperr.Wrap(apperr.UpstreamRateLimit, "", errors.New("rate limit reached"))}
	router := newTestRouter(relay, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"text":"Hello"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	out := decodeMap(t, rec)
	if out["detail"] != "rate limit reached" {
		t.Errorf("unexpected detail %q", out["detail"])
	}
	if _, ok := out["audio"]; ok {
		t.Error("error body must not carry audio")
	}
}

func TestTranscribeHandler_OK(t *testing.T) {
	relay := &fakeRelay{transcribe: &ports.TranscriptionResult{Text: "Hello", Response: "Hi there", Audio: "SUQz"}}
	router := newTestRouter(relay, 0)

	body, contentType := multipartBody(t, "audio", []byte("webm-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeMap(t, rec)
	if out["text"] != "Hello" || out["response"] != "Hi there" || out["audio"] != "SUQz" {
		t.Errorf("unexpected body %v", out)
	}
	if string(relay.gotAudio) != "webm-bytes" {
		t.Errorf("upload not passed through, got %q", relay.gotAudio)
	}
}

func TestTranscribeHandler_MissingField(t *testing.T) {
	relay := &fakeRelay{}
	router := newTestRouter(relay, 0)

	body, contentType := multipartBody(t, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if relay.gotAudio != nil {
		t.Error("relay must not be called without a file")
	}
}

func TestTranscribeHandler_NotMultipart(t *testing.T) {
	router := newTestRouter(&fakeRelay{}, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTranscribeHandler_TooLarge(t *testing.T) {
	relay := &fakeRelay{}
	router := newTestRouter(relay, 1024)

	body, contentType := multipartBody(t, "audio", bytes.Repeat([]byte{0x1A}, 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if relay.gotAudio != nil {
		t.Error("relay must not be called for an oversized upload")
	}
}

func TestTranscribeHandler_UpstreamError(t *testing.T) {
	relay := &fakeRelay{err: errors.New("whisper unavailable")}
	router := newTestRouter(relay, 0)

	body, contentType := multipartBody(t, "audio", []byte("webm-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if out := decodeMap(t, rec); out["detail"] != "whisper unavailable" {
		t.Errorf("unexpected detail %q", out["detail"])
	}
}

func TestCORS_Preflight(t *testing.T) {
	router := newTestRouter(&fakeRelay{}, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}
}

func TestCORS_ForeignOrigin(t *testing.T) {
	relay := &fakeRelay{chat: &ports.ChatResult{Response: "x", Audio: "y"}}
	router := newTestRouter(relay, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"text":"Hello"}`))
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin must not be allowed, got %q", got)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	router := newTestRouter(&fakeRelay{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("unexpected ping response %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected caller request id, got %q", got)
	}
}
