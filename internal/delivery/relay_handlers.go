package delivery

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice_relay/internal/apperr"
	"github.com/Vovarama1992/voice_relay/internal/observability"
	"github.com/Vovarama1992/voice_relay/internal/ports"
)

const (
	endpointChat       = "chat"
	endpointTranscribe = "transcribe"

	// multipart field carrying the recording
	audioField = "audio"
)

type RelayHandler struct {
	relay     ports.RelayService
	log       *logger.ZapLogger
	maxUpload int64
}

func NewRelayHandler(relay ports.RelayService, log *logger.ZapLogger, maxUpload int64) *RelayHandler {
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	return &RelayHandler{
		relay:     relay,
		log:       log,
		maxUpload: maxUpload,
	}
}

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Response string `json:"response"`
	Audio    string `json:"audio"`
}

type transcribeResponse struct {
	Text     string `json:"text"`
	Response string `json:"response"`
	Audio    string `json:"audio"`
}

func (h *RelayHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, endpointChat, apperr.Wrap(apperr.InvalidInput, "invalid json", err))
		return
	}

	res, err := h.relay.Chat(r.Context(), req.Text)
	if err != nil {
		h.fail(w, r, endpointChat, err)
		return
	}

	observability.RecordRequest(endpointChat, nil)
	writeJSON(w, http.StatusOK, chatResponse{
		Response: res.Response,
		Audio:    res.Audio,
	})
}

func (h *RelayHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.fail(w, r, endpointTranscribe, apperr.Wrap(apperr.InvalidInput, "invalid multipart", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, _, err := r.FormFile(audioField)
	if err != nil {
		h.fail(w, r, endpointTranscribe, apperr.Wrap(apperr.InvalidInput, "missing file field "+audioField, err))
		return
	}
	audio, err := readUpload(file)
	if err != nil {
		h.fail(w, r, endpointTranscribe, apperr.Wrap(apperr.InvalidInput, "read upload", err))
		return
	}

	res, err := h.relay.TranscribeAndReply(r.Context(), audio)
	if err != nil {
		h.fail(w, r, endpointTranscribe, err)
		return
	}

	observability.RecordRequest(endpointTranscribe, nil)
	writeJSON(w, http.StatusOK, transcribeResponse{
		Text:     res.Text,
		Response: res.Response,
		Audio:    res.Audio,
	})
}

func readUpload(file multipart.File) ([]byte, error) {
	defer file.Close()
	return io.ReadAll(file)
}

func (h *RelayHandler) fail(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	level := "error"
	if apperr.Is(err, apperr.InvalidInput) {
		level = "warn"
	}
	h.log.Log(logger.LogEntry{
		Level:   level,
		Message: fmt.Sprintf("%s failed request_id=%s kind=%s", endpoint, RequestIDFrom(r.Context()), apperr.KindOf(err)),
		Error:   err,
	})
	observability.RecordRequest(endpoint, err)
	writeError(w, err)
}

// writeError renders {"detail": ...}; the detail is the underlying error text.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
