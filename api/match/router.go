package match

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/ridematch/core/logger"
	"github.com/kilianp07/ridematch/core/matchlog"
)

// RouterConfig lists the dependencies of NewRouter. Logs may be nil when
// the match log is disabled.
type RouterConfig struct {
	Matcher Matcher
	Logs    matchlog.Store
	Token   string
	Logger  logger.Logger
	// Metrics serves /metrics; nil uses the default Prometheus registry.
	Metrics http.Handler
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Handle("/metrics", metrics).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rides/{id}/matches", NewHandler(cfg.Matcher, cfg.Logger).Handle).Methods(http.MethodGet)
	if cfg.Logs != nil {
		api.Handle("/matches", NewLogHandler(cfg.Logs, cfg.Token)).Methods(http.MethodGet)
	}
	return r
}
