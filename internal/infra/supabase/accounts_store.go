package supabase

import (
	"context"
	"fmt"

	"github.com/gastrohub/financas-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Bank accounts — CRUD via PostgREST
// ============================================================

func (c *Client) CreateBankAccount(ctx context.Context, account *domain.BankAccount) (*domain.BankAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBankAccount")
	defer span.End()

	body, err := c.doPost(ctx, "bank_accounts", map[string]any{
		"id":              account.ID,
		"store_id":        account.StoreID,
		"name":            account.Name,
		"bank":            account.Bank,
		"account_type":    account.AccountType,
		"initial_balance": account.InitialBalance,
		"current_balance": account.CurrentBalance,
		"color":           account.Color,
		"is_active":       account.IsActive,
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}

	rows, err := decodeRows[domain.BankAccount](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: fmt.Errorf("insert returned no representation")}
	}
	return &rows[0], nil
}

func (c *Client) ListBankAccounts(ctx context.Context, storeID string, activeOnly bool) ([]domain.BankAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBankAccounts")
	defer span.End()

	path := fmt.Sprintf("bank_accounts?store_id=eq.%s&order=created_at.asc", storeID)
	if activeOnly {
		path += "&is_active=eq.true"
	}
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}

	rows, err := decodeRows[domain.BankAccount](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}
	return rows, nil
}

func (c *Client) GetBankAccount(ctx context.Context, storeID, accountID string) (*domain.BankAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetBankAccount")
	defer span.End()

	path := fmt.Sprintf("bank_accounts?store_id=eq.%s&id=eq.%s&limit=1", storeID, accountID)
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}

	rows, err := decodeRows[domain.BankAccount](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "conta bancária", ID: accountID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateBankAccount(ctx context.Context, storeID, accountID string, fields map[string]any) (*domain.BankAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateBankAccount")
	defer span.End()

	path := fmt.Sprintf("bank_accounts?store_id=eq.%s&id=eq.%s", storeID, accountID)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}

	rows, err := decodeRows[domain.BankAccount](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "conta bancária", ID: accountID}
	}
	return &rows[0], nil
}

// ApplyBalanceDelta moves current_balance by delta, guarded by the balance
// the caller last read. A nil result with nil error means the guard did not
// match: someone else posted in between and the caller must re-read.
func (c *Client) ApplyBalanceDelta(ctx context.Context, storeID, accountID string, expected, delta float64) (*domain.BankAccount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ApplyBalanceDelta")
	defer span.End()

	path := fmt.Sprintf("bank_accounts?store_id=eq.%s&id=eq.%s&current_balance=eq.%s",
		storeID, accountID, fmtAmount(expected))
	body, err := c.doPatch(ctx, path, map[string]any{
		"current_balance": expected + delta,
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}

	rows, err := decodeRows[domain.BankAccount](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/bank_accounts", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	c.logger.Info("supabase: balance updated",
		zap.String("account_id", accountID),
		zap.Float64("old_balance", expected),
		zap.Float64("new_balance", rows[0].CurrentBalance),
	)
	return &rows[0], nil
}
