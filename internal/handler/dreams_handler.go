package handler

import (
	"net/http"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Dream board
// ============================================================

func listDreamsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dreams, err := svc.ListDreams(r.Context(), StoreIDFromContext(r.Context()))
		if degradeList(w, err, logger) {
			return
		}
		writeJSON(w, http.StatusOK, dreams)
	}
}

func createDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.DreamCreateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		dream, err := svc.CreateDream(r.Context(), StoreIDFromContext(r.Context()), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, dream)
	}
}

func getDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dream, err := svc.GetDream(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "dreamId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dream)
	}
}

func updateDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.DreamUpdateRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		dream, err := svc.UpdateDream(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "dreamId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dream)
	}
}

func deleteDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteDream(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "dreamId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func contributeDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ContributionRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		dream, err := svc.AddDreamContribution(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "dreamId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dream)
	}
}

func completeDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dream, err := svc.CompleteDream(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "dreamId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dream)
	}
}

func pauseDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dream, err := svc.PauseDream(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "dreamId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dream)
	}
}

func resumeDreamHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dream, err := svc.ResumeDream(r.Context(), StoreIDFromContext(r.Context()), chi.URLParam(r, "dreamId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dream)
	}
}
