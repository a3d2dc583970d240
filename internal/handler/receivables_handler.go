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
// Accounts receivable
// ============================================================

func listReceivablesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var statuses []string
		if v := r.URL.Query().Get("status"); v != "" {
			statuses = strings.Split(v, ",")
		}

		rows, err := svc.ListReceivables(r.Context(), StoreIDFromContext(r.Context()), statuses)
		if degradeList(w, err, logger) {
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func listOverdueReceivablesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListOverdueReceivables(r.Context(), StoreIDFromContext(r.Context()))
		if degradeList(w, err, logger) {
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createReceivableHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ReceivableCreateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		created, err := svc.CreateReceivable(r.Context(), StoreIDFromContext(r.Context()), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func getReceivableHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := svc.GetReceivable(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "receivableId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

func updateReceivableHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ReceivableUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		row, err := svc.UpdateReceivable(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "receivableId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

func deleteReceivableHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteReceivable(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "receivableId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func receiveReceivableHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ReceiveRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		row, err := svc.MarkReceivableReceived(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "receivableId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}
