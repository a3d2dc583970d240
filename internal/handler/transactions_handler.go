package handler

import (
	"net/http"
	"strings"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Financial transactions
// ============================================================

func parseTransactionFilters(r *http.Request) domain.TransactionFilters {
	q := r.URL.Query()
	filters := domain.TransactionFilters{
		From:       q.Get("from"),
		To:         q.Get("to"),
		Type:       q.Get("type"),
		CategoryID: q.Get("category_id"),
	}
	if v := q.Get("status"); v != "" {
		filters.Status = strings.Split(v, ",")
	}
	return filters
}

func listTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListTransactions(r.Context(), StoreIDFromContext(r.Context()), parseTransactionFilters(r))
		if degradeList(w, err, logger) {
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.TransactionCreateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		tx, err := svc.CreateTransaction(r.Context(), StoreIDFromContext(r.Context()), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	}
}

func getTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := svc.GetTransaction(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "transactionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func updateTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.TransactionUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		tx, err := svc.UpdateTransaction(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "transactionId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func deleteTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteTransaction(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "transactionId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func settleTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SettleRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		tx, err := svc.SettleTransaction(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "transactionId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func cancelTransactionHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := svc.CancelTransaction(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "transactionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}
