package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded by the client.
const (
	OutcomeOK           = "ok"
	OutcomeRejected     = "rejected"
	OutcomeValidation   = "validation"
	OutcomeTransport    = "transport"
	OutcomeProtocol     = "protocol"
	OutcomeNotConnected = "not_connected"
)

var (
	registerOnce sync.Once

	clientRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hyperionctl",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests issued to the lighting server.",
		},
		[]string{"command", "outcome"},
	)
	clientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hyperionctl",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Request/reply round trip duration in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"command"},
	)
	sessionConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hyperionctl",
			Subsystem: "session",
			Name:      "connects_total",
			Help:      "Connection attempts by result.",
		},
		[]string{"result"},
	)
	sessionFrameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hyperionctl",
			Subsystem: "session",
			Name:      "frame_bytes_total",
			Help:      "Framed bytes written (tx) and read (rx).",
		},
		[]string{"direction"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hyperionctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total status server HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(clientRequests, clientDuration, sessionConnects, sessionFrameBytes, httpRequests)
	})
}

func RecordRequest(command, outcome string, duration time.Duration) {
	RegisterMetrics()
	clientRequests.WithLabelValues(command, outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeRejected {
		clientDuration.WithLabelValues(command).Observe(duration.Seconds())
	}
}

func RecordConnect(success bool) {
	RegisterMetrics()
	result := "ok"
	if !success {
		result = "failed"
	}
	sessionConnects.WithLabelValues(result).Inc()
}

func RecordFrameBytes(direction string, n int) {
	RegisterMetrics()
	sessionFrameBytes.WithLabelValues(direction).Add(float64(n))
}

func RecordHTTPRequest(method, path string, status int) {
	RegisterMetrics()
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
