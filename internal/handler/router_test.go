package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gastrohub/financas-go/internal/handler"
	"github.com/gastrohub/financas-go/internal/infra/observability"
	"github.com/gastrohub/financas-go/internal/service"

	"go.uber.org/zap"
)

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(nil, nil, observability.NewMetrics(), handler.ReportDefaults{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(nil, nil, observability.NewMetrics(), handler.ReportDefaults{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(nil, nil, observability.NewMetrics(), handler.ReportDefaults{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	verifier := service.NewTokenVerifier("test-secret", zap.NewNop())
	router := handler.NewRouter(nil, verifier, observability.NewMetrics(), handler.ReportDefaults{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/bank-accounts", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRouteRejectsMalformedToken(t *testing.T) {
	verifier := service.NewTokenVerifier("test-secret", zap.NewNop())
	router := handler.NewRouter(nil, verifier, observability.NewMetrics(), handler.ReportDefaults{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/receivables", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
