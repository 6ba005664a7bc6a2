package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	MicrositesCreatedTotal  prometheus.Counter
	RsvpsSubmittedTotal     *prometheus.CounterVec
	WishesSubmittedTotal    *prometheus.CounterVec
	MediaUploadedBytesTotal prometheus.Counter

	MicrositesPublished prometheus.Gauge
	WishesPending       prometheus.Gauge

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventsite_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventsite_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		MicrositesCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventsite_microsites_created_total",
			Help: "Microsites created",
		}),
		RsvpsSubmittedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventsite_rsvps_submitted_total",
				Help: "RSVP submissions by site kind and result (created, updated, duplicate)",
			},
			[]string{"path", "result"},
		),
		WishesSubmittedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventsite_wishes_submitted_total",
				Help: "Wishes submitted by initial status",
			},
			[]string{"status"},
		),
		MediaUploadedBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventsite_media_uploaded_bytes_total",
			Help: "Bytes stored by media uploads",
		}),
		MicrositesPublished: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eventsite_microsites_published",
			Help: "Currently published microsites",
		}),
		WishesPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eventsite_wishes_pending",
			Help: "Wishes waiting for moderation",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.MicrositesCreatedTotal,
		m.RsvpsSubmittedTotal,
		m.WishesSubmittedTotal,
		m.MediaUploadedBytesTotal,
		m.MicrositesPublished,
		m.WishesPending,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) MicrositeCreated() {
	if m == nil {
		return
	}
	m.MicrositesCreatedTotal.Inc()
}

func (m *Metrics) RsvpSubmitted(path, result string) {
	if m == nil {
		return
	}
	m.RsvpsSubmittedTotal.WithLabelValues(path, result).Inc()
}

func (m *Metrics) WishSubmitted(status string) {
	if m == nil {
		return
	}
	m.WishesSubmittedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) MediaUploaded(bytes int64) {
	if m == nil {
		return
	}
	m.MediaUploadedBytesTotal.Add(float64(bytes))
}

func (m *Metrics) SetGauges(published, pendingWishes int) {
	if m == nil {
		return
	}
	m.MicrositesPublished.Set(float64(published))
	m.WishesPending.Set(float64(pendingWishes))
}
