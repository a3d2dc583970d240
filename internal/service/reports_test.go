package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"
)

func seedTransaction(store *memStore, id, txType string, amount float64, date, status, categoryID string) {
	store.transactions[id] = &domain.FinancialTransaction{
		ID:              id,
		StoreID:         testStoreID,
		Type:            txType,
		Description:     "Lançamento " + id,
		Amount:          amount,
		TransactionDate: date,
		Status:          status,
		CategoryID:      categoryID,
	}
	store.txOrder = append(store.txOrder, id)
}

func TestGetSummaryTotals(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	today := dateOffset(0)
	seedTransaction(store, "tx-1", domain.TransactionReceita, 1000.0, today, domain.StatusRecebido, "")
	seedTransaction(store, "tx-2", domain.TransactionDespesa, 400.0, today, domain.StatusPago, "")
	seedTransaction(store, "tx-3", domain.TransactionDespesa, 999.0, today, domain.StatusPendente, "")
	// Transfers move money between own accounts; they are neither
	// receita nor despesa in the summary.
	seedTransaction(store, "tx-4", domain.TransactionTransferencia, 500.0, today, domain.StatusPago, "")

	seedAccount(store, "acc-active", 1000.0)
	seedAccount(store, "acc-inactive", 500.0)
	store.accounts["acc-inactive"].IsActive = false

	seedReceivable(store, "rec-future", 200.0, dateOffset(10), domain.StatusPendente)
	seedReceivable(store, "rec-overdue", 300.0, dateOffset(-3), domain.StatusPendente)
	seedReceivable(store, "rec-done", 999.0, dateOffset(-3), domain.StatusRecebido)

	summary, err := svc.GetSummary(context.Background(), testStoreID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalReceitas != 1000.0 {
		t.Errorf("expected receitas 1000, got %v", summary.TotalReceitas)
	}
	if summary.TotalDespesas != 400.0 {
		t.Errorf("expected despesas 400, got %v", summary.TotalDespesas)
	}
	if summary.Saldo != 600.0 {
		t.Errorf("expected saldo 600, got %v", summary.Saldo)
	}
	if summary.LucroLiquido != summary.Saldo {
		t.Errorf("expected lucro liquido == saldo, got %v vs %v", summary.LucroLiquido, summary.Saldo)
	}
	if summary.TotalContasBancarias != 1000.0 {
		t.Errorf("expected contas bancarias 1000 (inactive excluded), got %v", summary.TotalContasBancarias)
	}
	if summary.TotalContasReceber != 500.0 {
		t.Errorf("expected contas a receber 500, got %v", summary.TotalContasReceber)
	}
	if summary.TotalContasVencidas != 300.0 {
		t.Errorf("expected contas vencidas 300, got %v", summary.TotalContasVencidas)
	}
}

func TestGetSummaryIsCachedUntilMutation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	today := dateOffset(0)
	seedTransaction(store, "tx-1", domain.TransactionReceita, 100.0, today, domain.StatusRecebido, "")

	first, err := svc.GetSummary(context.Background(), testStoreID)
	if err != nil {
		t.Fatalf("first summary: %v", err)
	}

	// A write behind the service's back is not seen while cached.
	seedTransaction(store, "tx-2", domain.TransactionReceita, 900.0, today, domain.StatusRecebido, "")

	cached, err := svc.GetSummary(context.Background(), testStoreID)
	if err != nil {
		t.Fatalf("cached summary: %v", err)
	}
	if cached.TotalReceitas != first.TotalReceitas {
		t.Errorf("expected cached receitas %v, got %v", first.TotalReceitas, cached.TotalReceitas)
	}

	// A mutation through the service invalidates the cache.
	if _, err := svc.CreateTransaction(context.Background(), testStoreID, &domain.TransactionCreateRequest{
		Type:            domain.TransactionReceita,
		Description:     "Venda balcão",
		Amount:          250.0,
		TransactionDate: today,
		Status:          domain.StatusRecebido,
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	fresh, err := svc.GetSummary(context.Background(), testStoreID)
	if err != nil {
		t.Fatalf("fresh summary: %v", err)
	}
	if fresh.TotalReceitas != 1250.0 {
		t.Errorf("expected recomputed receitas 1250, got %v", fresh.TotalReceitas)
	}
}

func TestGetSummaryReflectsReceivedReceivable(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedAccount(store, "acc-1", 1000.0)
	seedReceivable(store, "rec-1", 250.0, dateOffset(2), domain.StatusPendente)

	before, err := svc.GetSummary(context.Background(), testStoreID)
	if err != nil {
		t.Fatalf("summary before: %v", err)
	}
	if before.TotalContasReceber != 250.0 {
		t.Fatalf("expected contas a receber 250, got %v", before.TotalContasReceber)
	}

	if _, err := svc.MarkReceivableReceived(context.Background(), testStoreID, "rec-1", &domain.ReceiveRequest{BankAccountID: "acc-1"}); err != nil {
		t.Fatalf("receive: %v", err)
	}

	after, err := svc.GetSummary(context.Background(), testStoreID)
	if err != nil {
		t.Fatalf("summary after: %v", err)
	}
	if after.TotalContasBancarias != 1250.0 {
		t.Errorf("expected contas bancarias 1250, got %v", after.TotalContasBancarias)
	}
	if after.TotalContasReceber != 0 {
		t.Errorf("expected contas a receber 0, got %v", after.TotalContasReceber)
	}
	if after.TotalReceitas != 250.0 {
		t.Errorf("expected receitas 250 from the mirrored transaction, got %v", after.TotalReceitas)
	}
}

func TestGetSummaryFailsWhenAnySourceFails(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	store.errListAccounts = &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: errors.New("down")}

	// The summary is all-or-nothing; no partially assembled numbers.
	if _, err := svc.GetSummary(context.Background(), testStoreID); err == nil {
		t.Fatal("expected error when a source read fails")
	}
}

func TestGetCategorySummaries(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	store.categories["cat-1"] = &domain.FinancialCategory{ID: "cat-1", StoreID: testStoreID, Name: "Insumos", Type: domain.TransactionDespesa, IsActive: true}
	store.categories["cat-2"] = &domain.FinancialCategory{ID: "cat-2", StoreID: testStoreID, Name: "Energia", Type: domain.TransactionDespesa, IsActive: true}

	today := dateOffset(0)
	seedTransaction(store, "tx-1", domain.TransactionDespesa, 300.0, today, domain.StatusPago, "cat-1")
	seedTransaction(store, "tx-2", domain.TransactionDespesa, 100.0, today, domain.StatusPago, "cat-1")
	seedTransaction(store, "tx-3", domain.TransactionDespesa, 100.0, today, domain.StatusPago, "cat-2")
	seedTransaction(store, "tx-4", domain.TransactionDespesa, 100.0, today, domain.StatusPago, "")

	rows, err := svc.GetCategorySummaries(context.Background(), testStoreID, domain.TransactionDespesa, domain.ReportWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(rows))
	}

	// Largest first, ties broken by name.
	if rows[0].Category != "Insumos" || rows[0].Total != 400.0 || rows[0].TransactionCount != 2 {
		t.Errorf("unexpected first bucket: %+v", rows[0])
	}
	if rows[1].Category != "Energia" {
		t.Errorf("expected Energia second, got %q", rows[1].Category)
	}
	if rows[2].Category != "Sem categoria" {
		t.Errorf("expected Sem categoria last, got %q", rows[2].Category)
	}

	var pctSum float64
	for _, r := range rows {
		pctSum += r.Percentage
	}
	if math.Abs(pctSum-100.0) > 1e-9 {
		t.Errorf("expected percentages to sum to 100, got %v", pctSum)
	}
}

func TestGetCategorySummariesEmptyWindow(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	rows, err := svc.GetCategorySummaries(context.Background(), testStoreID, domain.TransactionReceita, domain.ReportWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no buckets, got %d", len(rows))
	}
}

func TestGetCategorySummariesRejectsBadType(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.GetCategorySummaries(context.Background(), testStoreID, "transferencia", domain.ReportWindow{})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetMonthlyEvolutionZeroFills(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	today := dateOffset(0)
	seedTransaction(store, "tx-1", domain.TransactionReceita, 500.0, today, domain.StatusRecebido, "")
	seedTransaction(store, "tx-2", domain.TransactionDespesa, 200.0, today, domain.StatusPago, "")

	rows, err := svc.GetMonthlyEvolution(context.Background(), testStoreID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 months, got %d", len(rows))
	}

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -2, 0)
	for i, row := range rows {
		want := first.AddDate(0, i, 0).Format("2006-01")
		if row.Month != want {
			t.Errorf("month %d: expected %q, got %q", i, want, row.Month)
		}
	}

	// Oldest months have no activity and still appear, zeroed.
	if rows[0].Receitas != 0 || rows[0].Despesas != 0 || rows[0].Saldo != 0 {
		t.Errorf("expected first month zero-filled, got %+v", rows[0])
	}
	last := rows[2]
	if last.Receitas != 500.0 || last.Despesas != 200.0 || last.Saldo != 300.0 {
		t.Errorf("unexpected current month: %+v", last)
	}
}

func TestGetMonthlyEvolutionValidation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	for _, months := range []int{0, -1, 37} {
		_, err := svc.GetMonthlyEvolution(context.Background(), testStoreID, months)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("months %d: expected validation error, got %v", months, err)
		}
	}
}

func TestGetTopExpenses(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	store.categories["cat-1"] = &domain.FinancialCategory{ID: "cat-1", StoreID: testStoreID, Name: "Equipamentos", Type: domain.TransactionDespesa, IsActive: true}

	today := dateOffset(0)
	seedTransaction(store, "tx-1", domain.TransactionDespesa, 500.0, today, domain.StatusPago, "cat-1")
	seedTransaction(store, "tx-2", domain.TransactionDespesa, 300.0, today, domain.StatusPago, "")
	seedTransaction(store, "tx-3", domain.TransactionDespesa, 700.0, today, domain.StatusPago, "cat-1")
	seedTransaction(store, "tx-4", domain.TransactionReceita, 9000.0, today, domain.StatusRecebido, "")

	rows, err := svc.GetTopExpenses(context.Background(), testStoreID, domain.ReportWindow{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(rows))
	}
	if rows[0].Amount != 700.0 || rows[1].Amount != 500.0 {
		t.Errorf("expected [700 500], got [%v %v]", rows[0].Amount, rows[1].Amount)
	}
	if rows[0].Category != "Equipamentos" {
		t.Errorf("expected category name resolved, got %q", rows[0].Category)
	}
}

func TestGetCashFlowForecast(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedAccount(store, "acc-1", 100.0)

	seedReceivable(store, "rec-tomorrow", 50.0, dateOffset(1), domain.StatusPendente)
	// Already overdue: lands on the first day of the horizon.
	seedReceivable(store, "rec-overdue", 10.0, dateOffset(-3), domain.StatusPendente)

	store.transactions["tx-out"] = &domain.FinancialTransaction{
		ID: "tx-out", StoreID: testStoreID, Type: domain.TransactionDespesa,
		Description: "Boleto fornecedor", Amount: 30.0,
		TransactionDate: dateOffset(0), DueDate: dateOffset(0), Status: domain.StatusPendente,
	}
	store.txOrder = append(store.txOrder, "tx-out")

	rows, err := svc.GetCashFlowForecast(context.Background(), testStoreID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 days, got %d", len(rows))
	}

	if rows[0].ExpectedIn != 10.0 || rows[0].ExpectedOut != 30.0 {
		t.Errorf("unexpected day 0 flows: %+v", rows[0])
	}
	if rows[0].ProjectedBalance != 80.0 {
		t.Errorf("expected day 0 balance 80, got %v", rows[0].ProjectedBalance)
	}
	if rows[1].ExpectedIn != 50.0 || rows[1].ProjectedBalance != 130.0 {
		t.Errorf("unexpected day 1: %+v", rows[1])
	}
	if rows[2].ProjectedBalance != 130.0 {
		t.Errorf("expected day 2 balance carried forward (130), got %v", rows[2].ProjectedBalance)
	}
}

func TestGetCashFlowForecastValidation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	for _, days := range []int{0, 91} {
		_, err := svc.GetCashFlowForecast(context.Background(), testStoreID, days)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("days %d: expected validation error, got %v", days, err)
		}
	}
}
