package handler

import (
	"net/http"

	"github.com/gastrohub/financas-go/internal/infra/observability"
	"github.com/gastrohub/financas-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReportDefaults carries the configured fallbacks for report query
// params: how many months the evolution chart spans and how many days
// the cash-flow forecast projects when the caller does not say.
type ReportDefaults struct {
	EvolutionMonths int
	ForecastDays    int
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the GastroHub finance dashboard.
func NewRouter(svc *service.LedgerService, verifier *service.TokenVerifier, metrics *observability.Metrics, reports ReportDefaults, logger *zap.Logger) http.Handler {
	if reports.EvolutionMonths <= 0 {
		reports.EvolutionMonths = 6
	}
	if reports.ForecastDays <= 0 {
		reports.ForecastDays = 30
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 (tenant-scoped, JWT required) ---
	r.Route("/v1", func(r chi.Router) {
		if verifier != nil {
			r.Use(JWTAuthMiddleware(verifier, logger))
		}

		// =============================================
		// 1. 🏦 Contas Bancárias
		// =============================================
		r.Route("/bank-accounts", func(r chi.Router) {
			r.Get("/", listBankAccountsHandler(svc, logger))
			r.Post("/", createBankAccountHandler(svc, logger))
			r.Get("/{accountId}", getBankAccountHandler(svc, logger))
			r.Patch("/{accountId}", updateBankAccountHandler(svc, logger))
			r.Delete("/{accountId}", deactivateBankAccountHandler(svc, logger))
		})

		// =============================================
		// 2. 📄 Contas a Receber
		// =============================================
		r.Route("/receivables", func(r chi.Router) {
			r.Get("/", listReceivablesHandler(svc, logger))
			r.Post("/", createReceivableHandler(svc, logger))
			r.Get("/overdue", listOverdueReceivablesHandler(svc, logger))
			r.Get("/{receivableId}", getReceivableHandler(svc, logger))
			r.Patch("/{receivableId}", updateReceivableHandler(svc, logger))
			r.Delete("/{receivableId}", deleteReceivableHandler(svc, logger))
			r.Post("/{receivableId}/receive", receiveReceivableHandler(svc, logger))
		})

		// =============================================
		// 3. ✨ Quadro dos Sonhos
		// =============================================
		r.Route("/dreams", func(r chi.Router) {
			r.Get("/", listDreamsHandler(svc, logger))
			r.Post("/", createDreamHandler(svc, logger))
			r.Get("/{dreamId}", getDreamHandler(svc, logger))
			r.Patch("/{dreamId}", updateDreamHandler(svc, logger))
			r.Delete("/{dreamId}", deleteDreamHandler(svc, logger))
			r.Post("/{dreamId}/contribute", contributeDreamHandler(svc, logger))
			r.Post("/{dreamId}/complete", completeDreamHandler(svc, logger))
			r.Post("/{dreamId}/pause", pauseDreamHandler(svc, logger))
			r.Post("/{dreamId}/resume", resumeDreamHandler(svc, logger))
		})

		// =============================================
		// 4. 💰 Transações
		// =============================================
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", listTransactionsHandler(svc, logger))
			r.Post("/", createTransactionHandler(svc, logger))
			r.Get("/{transactionId}", getTransactionHandler(svc, logger))
			r.Patch("/{transactionId}", updateTransactionHandler(svc, logger))
			r.Delete("/{transactionId}", deleteTransactionHandler(svc, logger))
			r.Post("/{transactionId}/settle", settleTransactionHandler(svc, logger))
			r.Post("/{transactionId}/cancel", cancelTransactionHandler(svc, logger))
		})

		// =============================================
		// 5. 🗂 Catálogo — categorias e cartões
		// =============================================
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", listCategoriesHandler(svc, logger))
			r.Post("/", createCategoryHandler(svc, logger))
			r.Patch("/{categoryId}", updateCategoryHandler(svc, logger))
			r.Delete("/{categoryId}", deactivateCategoryHandler(svc, logger))
		})
		r.Route("/credit-cards", func(r chi.Router) {
			r.Get("/", listCreditCardsHandler(svc, logger))
			r.Post("/", createCreditCardHandler(svc, logger))
			r.Patch("/{cardId}", updateCreditCardHandler(svc, logger))
			r.Delete("/{cardId}", deactivateCreditCardHandler(svc, logger))
		})

		// =============================================
		// 6. 📊 Relatórios
		// =============================================
		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", summaryHandler(svc, logger))
			r.Get("/categories", categorySummariesHandler(svc, logger))
			r.Get("/evolution", monthlyEvolutionHandler(svc, reports.EvolutionMonths, logger))
			r.Get("/top-expenses", topExpensesHandler(svc, logger))
			r.Get("/forecast", cashFlowForecastHandler(svc, reports.ForecastDays, logger))
			r.Get("/export", exportTransactionsHandler(svc, logger))
		})

		// =============================================
		// 7. 📈 Métricas do motor
		// =============================================
		r.Get("/metrics/engine", engineMetricsHandler(metrics, logger))
	})

	return r
}
