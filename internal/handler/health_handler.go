package handler

import (
	"net/http"

	"github.com/gastrohub/financas-go/internal/infra/observability"

	"go.uber.org/zap"
)

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// engineMetricsHandler serves a JSON snapshot of the engine counters for
// the ops dashboard, without scraping /metrics.
func engineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetEngineSnapshot()
		logger.Debug("engine metrics snapshot served")
		writeJSON(w, http.StatusOK, snapshot)
	}
}
