package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the client's Prometheus collectors. A nil *Manager is
// valid and records nothing.
type Manager struct {
	Registry               *prometheus.Registry
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestLatency  *prometheus.HistogramVec
	GatewayNoResponseTotal *prometheus.CounterVec
	SessionEventsTotal     *prometheus.CounterVec
	FavoritesCount         prometheus.Gauge
}

func NewManager(namespace string) *Manager {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Requests sent to a backend, by HTTP status code.",
	}, []string{"backend", "method", "route", "code"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Round-trip latency of backend requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "route"})

	noResponse := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_no_response_total",
		Help:      "Requests that never got a response (network error, timeout, cancellation).",
	}, []string{"backend", "route"})

	sessionEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Session transitions such as signed_in, signed_out, expired.",
	}, []string{"event"})

	favorites := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "favorites",
		Help:      "Listing ids currently in the in-memory favorites set.",
	})

	registry.MustRegister(
		requests,
		latency,
		noResponse,
		sessionEvents,
		favorites,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:               registry,
		GatewayRequestsTotal:   requests,
		GatewayRequestLatency:  latency,
		GatewayNoResponseTotal: noResponse,
		SessionEventsTotal:     sessionEvents,
		FavoritesCount:         favorites,
	}
}

// ObserveRequest records one gateway round trip. status 0 means no response.
func (m *Manager) ObserveRequest(backend, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequestLatency.WithLabelValues(backend, route).Observe(elapsed.Seconds())
	if status == 0 {
		m.GatewayNoResponseTotal.WithLabelValues(backend, route).Inc()
		return
	}
	m.GatewayRequestsTotal.WithLabelValues(backend, method, route, strconv.Itoa(status)).Inc()
}

func (m *Manager) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEventsTotal.WithLabelValues(event).Inc()
}

func (m *Manager) SetFavorites(n int) {
	if m == nil {
		return
	}
	m.FavoritesCount.Set(float64(n))
}

// NewServer exposes /metrics on the given port. The caller owns
// ListenAndServe and Shutdown.
func NewServer(port string, registry *prometheus.Registry) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
