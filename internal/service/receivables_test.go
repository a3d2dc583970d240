package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gastrohub/financas-go/internal/domain"
)

const testStoreID = "store-1"

func seedAccount(store *memStore, id string, balance float64) {
	store.accounts[id] = &domain.BankAccount{
		ID:             id,
		StoreID:        testStoreID,
		Name:           "Conta Principal",
		AccountType:    domain.AccountCorrente,
		InitialBalance: balance,
		CurrentBalance: balance,
		IsActive:       true,
	}
}

func seedReceivable(store *memStore, id string, amount float64, dueDate, status string) {
	store.receivables[id] = &domain.AccountReceivable{
		ID:           id,
		StoreID:      testStoreID,
		CustomerName: "Restaurante do João",
		Description:  "Evento corporativo",
		Amount:       amount,
		DueDate:      dueDate,
		Status:       status,
	}
}

func TestCreateReceivableStartsPending(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateReceivable(context.Background(), testStoreID, &domain.ReceivableCreateRequest{
		CustomerName: "Maria",
		Description:  "Buffet aniversário",
		Amount:       350.0,
		DueDate:      dateOffset(7),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != domain.StatusPendente {
		t.Errorf("expected status pendente, got %q", created.Status)
	}
	if created.ID == "" {
		t.Error("expected a generated id")
	}
	if created.StoreID != testStoreID {
		t.Errorf("expected store id %q, got %q", testStoreID, created.StoreID)
	}
}

func TestCreateReceivableValidation(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	cases := []struct {
		name string
		req  domain.ReceivableCreateRequest
	}{
		{"missing customer", domain.ReceivableCreateRequest{Description: "x", Amount: 10, DueDate: dateOffset(1)}},
		{"missing description", domain.ReceivableCreateRequest{CustomerName: "x", Amount: 10, DueDate: dateOffset(1)}},
		{"zero amount", domain.ReceivableCreateRequest{CustomerName: "x", Description: "x", Amount: 0, DueDate: dateOffset(1)}},
		{"negative amount", domain.ReceivableCreateRequest{CustomerName: "x", Description: "x", Amount: -5, DueDate: dateOffset(1)}},
		{"bad due date", domain.ReceivableCreateRequest{CustomerName: "x", Description: "x", Amount: 10, DueDate: "31/12/2025"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateReceivable(context.Background(), testStoreID, &tc.req)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
	if len(store.receivables) != 0 {
		t.Errorf("expected no receivables persisted, got %d", len(store.receivables))
	}
}

func TestMarkReceivableReceivedFullFlow(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedAccount(store, "acc-1", 1000.0)
	seedReceivable(store, "rec-1", 250.0, dateOffset(3), domain.StatusPendente)

	received, err := svc.MarkReceivableReceived(context.Background(), testStoreID, "rec-1", &domain.ReceiveRequest{
		BankAccountID: "acc-1",
		PaymentMethod: "pix",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received.Status != domain.StatusRecebido {
		t.Errorf("expected status recebido, got %q", received.Status)
	}
	if received.ReceivedDate == "" {
		t.Error("expected received_date to be set")
	}

	// A linked receita transaction must have been recorded.
	if len(store.transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(store.transactions))
	}
	var tx *domain.FinancialTransaction
	for _, v := range store.transactions {
		tx = v
	}
	if tx.Type != domain.TransactionReceita {
		t.Errorf("expected receita transaction, got %q", tx.Type)
	}
	if tx.Amount != 250.0 {
		t.Errorf("expected amount 250, got %v", tx.Amount)
	}
	if !strings.HasPrefix(tx.Description, "Recebimento:") {
		t.Errorf("unexpected transaction description %q", tx.Description)
	}
	if tx.Status != domain.StatusRecebido {
		t.Errorf("expected transaction recebido, got %q", tx.Status)
	}
	if received.TransactionID != tx.ID {
		t.Errorf("expected receivable linked to transaction %q, got %q", tx.ID, received.TransactionID)
	}

	// The money landed on the account.
	if got := store.accounts["acc-1"].CurrentBalance; got != 1250.0 {
		t.Errorf("expected balance 1250, got %v", got)
	}
}

func TestMarkReceivableReceivedIsIdempotent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedAccount(store, "acc-1", 500.0)
	seedReceivable(store, "rec-1", 100.0, dateOffset(3), domain.StatusPendente)

	if _, err := svc.MarkReceivableReceived(context.Background(), testStoreID, "rec-1", &domain.ReceiveRequest{BankAccountID: "acc-1"}); err != nil {
		t.Fatalf("first receive failed: %v", err)
	}

	// A second call matches nothing: no error-free double credit.
	_, err := svc.MarkReceivableReceived(context.Background(), testStoreID, "rec-1", &domain.ReceiveRequest{BankAccountID: "acc-1"})
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found on second receive, got %v", err)
	}

	if got := store.accounts["acc-1"].CurrentBalance; got != 600.0 {
		t.Errorf("expected balance credited exactly once (600), got %v", got)
	}
	if len(store.transactions) != 1 {
		t.Errorf("expected exactly 1 transaction, got %d", len(store.transactions))
	}
}

func TestMarkReceivableReceivedPartialFailureOnTransactionInsert(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedAccount(store, "acc-1", 500.0)
	seedReceivable(store, "rec-1", 100.0, dateOffset(3), domain.StatusPendente)
	store.errCreateTransaction = errors.New("connection reset")

	_, err := svc.MarkReceivableReceived(context.Background(), testStoreID, "rec-1", &domain.ReceiveRequest{BankAccountID: "acc-1"})

	var pf *domain.ErrPartialFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if pf.CompletedStep != "receivable_updated" {
		t.Errorf("expected completed step receivable_updated, got %q", pf.CompletedStep)
	}

	// No rollback: the receivable stays recebido, the account untouched.
	if got := store.receivables["rec-1"].Status; got != domain.StatusRecebido {
		t.Errorf("expected receivable left recebido, got %q", got)
	}
	if got := store.accounts["acc-1"].CurrentBalance; got != 500.0 {
		t.Errorf("expected balance untouched (500), got %v", got)
	}
}

func TestMarkReceivableReceivedPartialFailureOnPosting(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedAccount(store, "acc-1", 500.0)
	seedReceivable(store, "rec-1", 100.0, dateOffset(3), domain.StatusPendente)
	store.errApplyDelta = &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: errors.New("timeout")}

	_, err := svc.MarkReceivableReceived(context.Background(), testStoreID, "rec-1", &domain.ReceiveRequest{BankAccountID: "acc-1"})

	var pf *domain.ErrPartialFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if pf.CompletedStep != "transaction_recorded" {
		t.Errorf("expected completed step transaction_recorded, got %q", pf.CompletedStep)
	}
	if len(store.transactions) != 1 {
		t.Errorf("expected the transaction to stay recorded, got %d", len(store.transactions))
	}
}

func TestListReceivablesDerivesOverdueStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedReceivable(store, "rec-past", 50.0, dateOffset(-2), domain.StatusPendente)
	seedReceivable(store, "rec-today", 60.0, dateOffset(0), domain.StatusPendente)
	seedReceivable(store, "rec-future", 70.0, dateOffset(5), domain.StatusPendente)

	rows, err := svc.ListReceivables(context.Background(), testStoreID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 receivables, got %d", len(rows))
	}

	byID := map[string]string{}
	for _, r := range rows {
		byID[r.ID] = r.Status
	}
	if byID["rec-past"] != domain.StatusAtrasado {
		t.Errorf("expected rec-past atrasado, got %q", byID["rec-past"])
	}
	if byID["rec-today"] != domain.StatusPendente {
		t.Errorf("expected rec-today pendente (due today is not overdue), got %q", byID["rec-today"])
	}
	if byID["rec-future"] != domain.StatusPendente {
		t.Errorf("expected rec-future pendente, got %q", byID["rec-future"])
	}

	// The classification is presentational: nothing was written back.
	if got := store.receivables["rec-past"].Status; got != domain.StatusPendente {
		t.Errorf("expected stored status pendente, got %q", got)
	}
}

func TestListOverdueReceivablesIsViewOnly(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedReceivable(store, "rec-past", 50.0, dateOffset(-1), domain.StatusPendente)
	seedReceivable(store, "rec-future", 70.0, dateOffset(5), domain.StatusPendente)
	seedReceivable(store, "rec-done", 30.0, dateOffset(-10), domain.StatusRecebido)

	overdue, err := svc.ListOverdueReceivables(context.Background(), testStoreID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("expected 1 overdue receivable, got %d", len(overdue))
	}
	if overdue[0].ID != "rec-past" {
		t.Errorf("expected rec-past, got %q", overdue[0].ID)
	}
	if overdue[0].Status != domain.StatusAtrasado {
		t.Errorf("expected display status atrasado, got %q", overdue[0].Status)
	}
	if got := store.receivables["rec-past"].Status; got != domain.StatusPendente {
		t.Errorf("expected stored status pendente, got %q", got)
	}
}

func TestDeleteReceivableAnyStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	seedReceivable(store, "rec-1", 100.0, dateOffset(-10), domain.StatusRecebido)

	if err := svc.DeleteReceivable(context.Background(), testStoreID, "rec-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.receivables["rec-1"]; ok {
		t.Error("expected receivable removed")
	}

	err := svc.DeleteReceivable(context.Background(), testStoreID, "rec-1")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Errorf("expected not found for missing receivable, got %v", err)
	}
}
