package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vineet-ld/masterdrive-api/internal/health"
)

var (
	// Token ledger metrics

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "masterdrive",
		Name:      "tokens_issued_total",
		Help:      "Total tokens minted, by purpose.",
	}, []string{"purpose"})

	TokensRevokedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "masterdrive",
		Name:      "tokens_revoked_total",
		Help:      "Total tokens consumed or revoked, by purpose.",
	}, []string{"purpose"})

	GateFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "masterdrive",
		Name:      "gate_failures_total",
		Help:      "Requests rejected by an authentication gate.",
	}, []string{"gate"})

	// Email metrics

	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "masterdrive",
		Name:      "emails_sent_total",
		Help:      "Outbound emails, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// Account linking metrics

	AccountLinksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "masterdrive",
		Name:      "account_links_total",
		Help:      "Provider link operations, by provider and outcome.",
	}, []string{"provider", "outcome"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "masterdrive",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "masterdrive",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		TokensIssuedTotal,
		TokensRevokedTotal,
		GateFailuresTotal,
		EmailsSentTotal,
		AccountLinksTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, status int, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
