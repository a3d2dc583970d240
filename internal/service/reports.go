package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Aggregation engine
// ============================================================

var settledStatuses = []string{domain.StatusPago, domain.StatusRecebido}

// GetSummary assembles the store's month-to-date financial picture. The
// three source reads run in parallel and the summary is all-or-nothing:
// any failed read fails the whole call rather than returning numbers that
// silently disagree with each other. Results are cached per store until
// the next mutation.
func (s *LedgerService) GetSummary(ctx context.Context, storeID string) (*domain.FinancialSummary, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetSummary")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	if cached, ok := s.summary.Get(storeID); ok {
		s.metrics.IncrCacheHit("summary")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("summary")

	start := time.Now()

	var (
		transactions []domain.FinancialTransaction
		accounts     []domain.BankAccount
		receivables  []domain.AccountReceivable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, storeID, domain.TransactionFilters{
			From:   monthStart(),
			Status: settledStatuses,
		})
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.store.ListBankAccounts(gctx, storeID, true)
		return err
	})
	g.Go(func() error {
		var err error
		receivables, err = s.store.ListReceivables(gctx, storeID, []string{domain.StatusPendente})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summary aggregation: %w", err)
	}

	summary := &domain.FinancialSummary{}
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TransactionReceita:
			summary.TotalReceitas += tx.Amount
		case domain.TransactionDespesa:
			summary.TotalDespesas += tx.Amount
		}
	}
	summary.Saldo = summary.TotalReceitas - summary.TotalDespesas
	summary.LucroLiquido = summary.Saldo

	for _, a := range accounts {
		summary.TotalContasBancarias += a.CurrentBalance
	}

	now := today()
	for _, r := range receivables {
		summary.TotalContasReceber += r.Amount
		if r.Overdue(now) {
			summary.TotalContasVencidas += r.Amount
		}
	}

	s.summary.Set(storeID, summary)
	s.metrics.RecordRequestDuration("summary", time.Since(start))
	s.logger.Debug("summary computed",
		zap.String("store_id", storeID),
		zap.Float64("saldo", summary.Saldo),
		zap.Int("transactions", len(transactions)),
	)
	return summary, nil
}

// GetCategorySummaries breaks settled transactions of one type down by
// category inside a window. Percentages are of the grand total and sum to
// 100 except in the empty window, where every share is 0.
func (s *LedgerService) GetCategorySummaries(ctx context.Context, storeID, txType string, window domain.ReportWindow) ([]domain.CategorySummary, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetCategorySummaries")
	defer span.End()

	if txType != domain.TransactionReceita && txType != domain.TransactionDespesa {
		return nil, &domain.ErrValidation{Field: "type", Message: "Tipo deve ser receita ou despesa"}
	}

	var (
		transactions []domain.FinancialTransaction
		categories   []domain.FinancialCategory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, storeID, domain.TransactionFilters{
			From:   window.From,
			To:     window.To,
			Type:   txType,
			Status: settledStatuses,
		})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(gctx, storeID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("category aggregation: %w", err)
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	type bucket struct {
		total float64
		count int
	}
	buckets := map[string]*bucket{}
	var grand float64
	for _, tx := range transactions {
		name := names[tx.CategoryID]
		if name == "" {
			name = "Sem categoria"
		}
		b := buckets[name]
		if b == nil {
			b = &bucket{}
			buckets[name] = b
		}
		b.total += tx.Amount
		b.count++
		grand += tx.Amount
	}

	result := make([]domain.CategorySummary, 0, len(buckets))
	for name, b := range buckets {
		pct := float64(0)
		if grand > 0 {
			pct = b.total / grand * 100
		}
		result = append(result, domain.CategorySummary{
			Category:         name,
			Total:            b.total,
			Percentage:       pct,
			TransactionCount: b.count,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

// GetMonthlyEvolution returns the receitas/despesas trend over the last
// months calendar months, oldest first. Months with no settled activity
// appear zero-filled instead of being skipped, so charts keep a
// continuous axis.
func (s *LedgerService) GetMonthlyEvolution(ctx context.Context, storeID string, months int) ([]domain.MonthlyEvolution, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetMonthlyEvolution")
	defer span.End()

	if months < 1 || months > 36 {
		return nil, &domain.ErrValidation{Field: "months", Message: "Número de meses deve estar entre 1 e 36"}
	}

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	transactions, err := s.store.ListTransactions(ctx, storeID, domain.TransactionFilters{
		From:   first.Format(domain.DateLayout),
		Status: settledStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("evolution aggregation: %w", err)
	}

	byMonth := make(map[string]*domain.MonthlyEvolution, months)
	result := make([]domain.MonthlyEvolution, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		result[i] = domain.MonthlyEvolution{Month: key}
		byMonth[key] = &result[i]
	}

	for _, tx := range transactions {
		if len(tx.TransactionDate) < 7 {
			continue
		}
		entry := byMonth[tx.TransactionDate[:7]]
		if entry == nil {
			continue
		}
		switch tx.Type {
		case domain.TransactionReceita:
			entry.Receitas += tx.Amount
		case domain.TransactionDespesa:
			entry.Despesas += tx.Amount
		}
	}
	for i := range result {
		result[i].Saldo = result[i].Receitas - result[i].Despesas
	}
	return result, nil
}

// GetTopExpenses ranks the largest settled despesas inside a window.
func (s *LedgerService) GetTopExpenses(ctx context.Context, storeID string, window domain.ReportWindow, limit int) ([]domain.TopExpense, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetTopExpenses")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}

	var (
		transactions []domain.FinancialTransaction
		categories   []domain.FinancialCategory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, storeID, domain.TransactionFilters{
			From:   window.From,
			To:     window.To,
			Type:   domain.TransactionDespesa,
			Status: settledStatuses,
		})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(gctx, storeID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("top expenses aggregation: %w", err)
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Amount > transactions[j].Amount
	})
	if len(transactions) > limit {
		transactions = transactions[:limit]
	}

	result := make([]domain.TopExpense, 0, len(transactions))
	for _, tx := range transactions {
		name := names[tx.CategoryID]
		if name == "" {
			name = "Sem categoria"
		}
		result = append(result, domain.TopExpense{
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    name,
			Date:        tx.TransactionDate,
		})
	}
	return result, nil
}

// GetCashFlowForecast projects the store's daily balance over the next
// days. It starts from the current total of active accounts and walks the
// horizon day by day, applying pending receivables as money in and
// pending transactions as money in or out on their due dates. Items
// already overdue land on the first day.
func (s *LedgerService) GetCashFlowForecast(ctx context.Context, storeID string, days int) ([]domain.CashFlowEntry, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetCashFlowForecast")
	defer span.End()

	if days < 1 || days > 90 {
		return nil, &domain.ErrValidation{Field: "days", Message: "Horizonte deve estar entre 1 e 90 dias"}
	}

	var (
		accounts     []domain.BankAccount
		receivables  []domain.AccountReceivable
		transactions []domain.FinancialTransaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.store.ListBankAccounts(gctx, storeID, true)
		return err
	})
	g.Go(func() error {
		var err error
		receivables, err = s.store.ListReceivables(gctx, storeID, []string{domain.StatusPendente})
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, storeID, domain.TransactionFilters{
			Status: []string{domain.StatusPendente},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast aggregation: %w", err)
	}

	var balance float64
	for _, a := range accounts {
		balance += a.CurrentBalance
	}

	startDate := today()
	endDate := time.Now().AddDate(0, 0, days-1).Format(domain.DateLayout)
	clampDay := func(due string) string {
		if due == "" || due < startDate {
			return startDate
		}
		return due
	}

	inByDay := map[string]float64{}
	outByDay := map[string]float64{}
	for _, r := range receivables {
		if day := clampDay(r.DueDate); day <= endDate {
			inByDay[day] += r.Amount
		}
	}
	for _, tx := range transactions {
		due := tx.DueDate
		if due == "" {
			due = tx.TransactionDate
		}
		day := clampDay(due)
		if day > endDate {
			continue
		}
		switch tx.Type {
		case domain.TransactionReceita:
			inByDay[day] += tx.Amount
		case domain.TransactionDespesa:
			outByDay[day] += tx.Amount
		}
	}

	result := make([]domain.CashFlowEntry, 0, days)
	base := time.Now()
	for i := 0; i < days; i++ {
		day := base.AddDate(0, 0, i).Format(domain.DateLayout)
		in := inByDay[day]
		out := outByDay[day]
		balance += in - out
		result = append(result, domain.CashFlowEntry{
			Date:             day,
			ExpectedIn:       in,
			ExpectedOut:      out,
			ProjectedBalance: balance,
		})
	}
	return result, nil
}
