package handler

import (
	"net/http"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Bank accounts
// ============================================================

func listBankAccountsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := StoreIDFromContext(r.Context())
		activeOnly := r.URL.Query().Get("all") != "true"

		accounts, err := svc.ListBankAccounts(r.Context(), storeID, activeOnly)
		if degradeList(w, err, logger) {
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

func createBankAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.BankAccountCreateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		account, err := svc.CreateBankAccount(r.Context(), StoreIDFromContext(r.Context()), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, account)
	}
}

func getBankAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := svc.GetBankAccount(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "accountId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func updateBankAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.BankAccountUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		account, err := svc.UpdateBankAccount(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "accountId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, account)
	}
}

func deactivateBankAccountHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeactivateBankAccount(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "accountId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
