// Package service implements the business rules of the finance engine:
// the bank account ledger, the receivable tracker, the dream board and
// the aggregation engine. All persistence goes through port.FinanceStore.
package service

import (
	"time"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/infra/observability"
	"github.com/gastrohub/financas-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService orchestrates all finance operations for a store.
type LedgerService struct {
	store   port.FinanceStore
	summary port.Cache[*domain.FinancialSummary]
	metrics *observability.Metrics
	logger  *zap.Logger

	// conflictRetries bounds the re-read loop of conditional writes.
	conflictRetries int
}

// NewLedgerService creates the finance service.
func NewLedgerService(
	store port.FinanceStore,
	summaryCache port.Cache[*domain.FinancialSummary],
	metrics *observability.Metrics,
	logger *zap.Logger,
	conflictRetries int,
) *LedgerService {
	if conflictRetries <= 0 {
		conflictRetries = 3
	}
	return &LedgerService{
		store:           store,
		summary:         summaryCache,
		metrics:         metrics,
		logger:          logger,
		conflictRetries: conflictRetries,
	}
}

// invalidateSummary drops the cached summary for a store after any write.
func (s *LedgerService) invalidateSummary(storeID string) {
	s.summary.Delete(storeID)
}

// today returns the current date in the wire format.
func today() string {
	return time.Now().Format(domain.DateLayout)
}

// monthStart returns the first day of the current month in the wire format.
func monthStart() string {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(domain.DateLayout)
}

// validDate reports whether v parses as a wire-format date.
func validDate(v string) bool {
	_, err := time.Parse(domain.DateLayout, v)
	return err == nil
}
