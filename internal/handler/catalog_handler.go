package handler

import (
	"net/http"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Catalog — categories and credit cards
// ============================================================

func listCategoriesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("all") != "true"
		rows, err := svc.ListCategories(r.Context(), StoreIDFromContext(r.Context()), activeOnly)
		if degradeList(w, err, logger) {
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createCategoryHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CategoryRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		created, err := svc.CreateCategory(r.Context(), StoreIDFromContext(r.Context()), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateCategoryHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CategoryRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		updated, err := svc.UpdateCategory(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "categoryId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deactivateCategoryHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeactivateCategory(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "categoryId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listCreditCardsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("all") != "true"
		rows, err := svc.ListCreditCards(r.Context(), StoreIDFromContext(r.Context()), activeOnly)
		if degradeList(w, err, logger) {
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func createCreditCardHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreditCardRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		created, err := svc.CreateCreditCard(r.Context(), StoreIDFromContext(r.Context()), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateCreditCardHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreditCardRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		updated, err := svc.UpdateCreditCard(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "cardId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deactivateCreditCardHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeactivateCreditCard(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "cardId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
