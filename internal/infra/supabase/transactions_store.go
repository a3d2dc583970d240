package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/gastrohub/financas-go/internal/domain"
)

// ============================================================
// Financial transactions — CRUD via PostgREST
// ============================================================

func (c *Client) CreateTransaction(ctx context.Context, tx *domain.FinancialTransaction) (*domain.FinancialTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	data := map[string]any{
		"id":               tx.ID,
		"store_id":         tx.StoreID,
		"type":             tx.Type,
		"description":      tx.Description,
		"amount":           tx.Amount,
		"transaction_date": tx.TransactionDate,
		"status":           tx.Status,
		"is_recurring":     tx.IsRecurring,
	}
	if tx.DueDate != "" {
		data["due_date"] = tx.DueDate
	}
	if tx.CategoryID != "" {
		data["category_id"] = tx.CategoryID
	}
	if tx.BankAccountID != "" {
		data["bank_account_id"] = tx.BankAccountID
	}
	if tx.CreditCardID != "" {
		data["credit_card_id"] = tx.CreditCardID
	}
	if tx.TransferToAccountID != "" {
		data["transfer_to_account_id"] = tx.TransferToAccountID
	}
	if tx.PaymentMethod != "" {
		data["payment_method"] = tx.PaymentMethod
	}
	if tx.Notes != "" {
		data["notes"] = tx.Notes
	}
	if len(tx.Tags) > 0 {
		data["tags"] = tx.Tags
	}
	if tx.RecurringFrequency != "" {
		data["recurring_frequency"] = tx.RecurringFrequency
	}

	body, err := c.doPost(ctx, "financial_transactions", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}

	rows, err := decodeRows[domain.FinancialTransaction](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: fmt.Errorf("insert returned no representation")}
	}
	return &rows[0], nil
}

func (c *Client) ListTransactions(ctx context.Context, storeID string, filters domain.TransactionFilters) ([]domain.FinancialTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	path := fmt.Sprintf("financial_transactions?store_id=eq.%s&order=transaction_date.desc", storeID)
	if filters.From != "" {
		path += fmt.Sprintf("&transaction_date=gte.%s", filters.From)
	}
	if filters.To != "" {
		path += fmt.Sprintf("&transaction_date=lte.%s", filters.To)
	}
	if filters.Type != "" {
		path += fmt.Sprintf("&type=eq.%s", filters.Type)
	}
	if len(filters.Status) > 0 {
		path += fmt.Sprintf("&status=in.(%s)", strings.Join(filters.Status, ","))
	}
	if filters.CategoryID != "" {
		path += fmt.Sprintf("&category_id=eq.%s", filters.CategoryID)
	}

	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}

	rows, err := decodeRows[domain.FinancialTransaction](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}
	return rows, nil
}

func (c *Client) GetTransaction(ctx context.Context, storeID, txID string) (*domain.FinancialTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	path := fmt.Sprintf("financial_transactions?store_id=eq.%s&id=eq.%s&limit=1", storeID, txID)
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}

	rows, err := decodeRows[domain.FinancialTransaction](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transação", ID: txID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateTransaction(ctx context.Context, storeID, txID string, fields map[string]any) (*domain.FinancialTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	path := fmt.Sprintf("financial_transactions?store_id=eq.%s&id=eq.%s", storeID, txID)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}

	rows, err := decodeRows[domain.FinancialTransaction](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transação", ID: txID}
	}
	return &rows[0], nil
}

// SettleTransactionIfPending flips a pendente transaction into a settled
// status. The status filter is the precondition: nil/nil means the
// transaction was not pendente anymore (or never existed).
func (c *Client) SettleTransactionIfPending(ctx context.Context, storeID, txID string, fields map[string]any) (*domain.FinancialTransaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SettleTransactionIfPending")
	defer span.End()

	path := fmt.Sprintf("financial_transactions?store_id=eq.%s&id=eq.%s&status=eq.%s",
		storeID, txID, domain.StatusPendente)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}

	rows, err := decodeRows[domain.FinancialTransaction](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) DeleteTransaction(ctx context.Context, storeID, txID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	path := fmt.Sprintf("financial_transactions?store_id=eq.%s&id=eq.%s", storeID, txID)
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/financial_transactions", Err: err}
	}
	return nil
}
