package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Reports
// ============================================================

func summaryHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The summary never degrades: wrong numbers are worse than no
		// numbers on a financial dashboard.
		summary, err := svc.GetSummary(r.Context(), StoreIDFromContext(r.Context()))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func categorySummariesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txType := r.URL.Query().Get("type")
		if txType == "" {
			txType = domain.TransactionDespesa
		}

		rows, err := svc.GetCategorySummaries(r.Context(), StoreIDFromContext(r.Context()), txType, parseWindow(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func monthlyEvolutionHandler(svc *service.LedgerService, defaultMonths int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months := parseIntQuery(r, "months", defaultMonths)

		rows, err := svc.GetMonthlyEvolution(r.Context(), StoreIDFromContext(r.Context()), months)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func topExpensesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntQuery(r, "limit", 10)

		rows, err := svc.GetTopExpenses(r.Context(), StoreIDFromContext(r.Context()), parseWindow(r), limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func cashFlowForecastHandler(svc *service.LedgerService, defaultDays int, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := parseIntQuery(r, "days", defaultDays)

		rows, err := svc.GetCashFlowForecast(r.Context(), StoreIDFromContext(r.Context()), days)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func exportTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := parseTransactionFilters(r)

		filename := fmt.Sprintf("transacoes-%s.csv", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := svc.ExportTransactionsCSV(r.Context(), StoreIDFromContext(r.Context()), filters, w); err != nil {
			// Headers may already be out; log and drop the connection
			// rather than writing a JSON error into a CSV stream.
			logger.Error("csv export failed", zap.Error(err))
		}
	}
}
