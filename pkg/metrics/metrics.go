package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder instruments outbound API calls issued by the dispatcher.
type Recorder struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	uploadBytes     prometheus.Counter
}

// NewRecorder registers the client collectors on a private registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendance_client_request_duration_seconds",
		Help:    "Duration of outbound API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_client_requests_total",
		Help: "Total number of outbound API requests",
	}, []string{"method", "path", "status"})

	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_client_upload_bytes_total",
		Help: "Total bytes of snapshot payloads uploaded",
	})

	registry.MustRegister(requestDuration, requestTotal, uploadBytes)

	return &Recorder{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		uploadBytes:     uploadBytes,
	}
}

// ObserveRequest records one completed outbound request. A status of zero means
// no response was received.
func (r *Recorder) ObserveRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	label := "none"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.requestTotal.WithLabelValues(method, path, label).Inc()
	r.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
}

// ObserveUpload accounts for a snapshot payload of the given size.
func (r *Recorder) ObserveUpload(sizeBytes int) {
	if r == nil || sizeBytes <= 0 {
		return
	}
	r.uploadBytes.Add(float64(sizeBytes))
}

// Handler exposes the registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return r.handler
}
