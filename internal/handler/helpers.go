package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gastrohub/financas-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

type partialFailureResponse struct {
	Error         string `json:"error"`
	Operation     string `json:"operation"`
	CompletedStep string `json:"completed_step"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ErrValidation{Field: "body", Message: "JSON inválido"}
	}
	return nil
}

// parseWindow reads the optional from/to query params of report routes.
func parseWindow(r *http.Request) domain.ReportWindow {
	return domain.ReportWindow{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
}

// parseIntQuery reads an integer query param with a fallback.
func parseIntQuery(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var conflict *domain.ErrConflict
	var partial *domain.ErrPartialFailure
	var external *domain.ErrExternalService
	var forbidden *domain.ErrForbidden
	var unauthorized *domain.ErrUnauthorized

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &conflict):
		logger.Warn("concurrent modification", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &partial):
		// Earlier steps are committed; tell the caller exactly how far the
		// flow got instead of a generic 500.
		logger.Error("partial failure",
			zap.String("operation", partial.Operation),
			zap.String("completed_step", partial.CompletedStep),
			zap.Error(partial.Err),
		)
		writeJSON(w, http.StatusInternalServerError, partialFailureResponse{
			Error:         err.Error(),
			Operation:     partial.Operation,
			CompletedStep: partial.CompletedStep,
		})
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &external):
		logger.Error("store error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Falha ao acessar o armazenamento de dados")
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// degradeList applies the read-degradation policy for list routes: when
// the store read fails the dashboard still renders, just empty. Any other
// error keeps its normal mapping. Returns true when the response has been
// written.
func degradeList(w http.ResponseWriter, err error, logger *zap.Logger) bool {
	if err == nil {
		return false
	}
	var external *domain.ErrExternalService
	var circuitOpen *domain.ErrCircuitOpen
	if errors.As(err, &external) || errors.As(err, &circuitOpen) {
		logger.Warn("list read degraded to empty result", zap.Error(err))
		writeJSON(w, http.StatusOK, []any{})
		return true
	}
	handleServiceError(w, err, logger)
	return true
}
