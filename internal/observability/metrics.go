package observability

import (
	"time"

	"github.com/Vovarama1992/voice_relay/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream stages, used as the "stage" label.
const (
	StageSTT  = "stt"
	StageChat = "chat"
	StageTTS  = "tts"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_upstream_requests_total",
		Help: "Total number of vendor calls by stage and outcome",
	}, []string{"stage", "status"})

	upstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voice_relay_upstream_latency_seconds",
		Help:    "Vendor call latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	}, []string{"stage"})

	relayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_requests_total",
		Help: "Total number of relay requests by endpoint and outcome",
	}, []string{"endpoint", "status"})

	audioBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_audio_bytes_total",
		Help: "Total audio bytes processed",
	}, []string{"direction"}) // "in" for uploads, "out" for synthesized audio
)

// ObserveUpstream records one vendor call. A failed call is labelled with its error kind.
func ObserveUpstream(stage string, start time.Time, err error) {
	upstreamLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	upstreamRequests.WithLabelValues(stage, statusLabel(err)).Inc()
}

// RecordRequest records the outcome of one endpoint invocation.
func RecordRequest(endpoint string, err error) {
	relayRequests.WithLabelValues(endpoint, statusLabel(err)).Inc()
}

func RecordAudioBytes(direction string, n int) {
	audioBytes.WithLabelValues(direction).Add(float64(n))
}

func statusLabel(err error) string {
	if err == nil {
		return "success"
	}
	return apperr.KindOf(err).String()
}
