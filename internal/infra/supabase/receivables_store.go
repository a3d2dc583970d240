package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/gastrohub/financas-go/internal/domain"
)

// ============================================================
// Accounts receivable — CRUD via PostgREST
// ============================================================

func (c *Client) CreateReceivable(ctx context.Context, r *domain.AccountReceivable) (*domain.AccountReceivable, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateReceivable")
	defer span.End()

	data := map[string]any{
		"id":            r.ID,
		"store_id":      r.StoreID,
		"customer_name": r.CustomerName,
		"description":   r.Description,
		"amount":        r.Amount,
		"due_date":      r.DueDate,
		"status":        r.Status,
	}
	if r.CustomerPhone != "" {
		data["customer_phone"] = r.CustomerPhone
	}
	if r.CustomerEmail != "" {
		data["customer_email"] = r.CustomerEmail
	}
	if r.Notes != "" {
		data["notes"] = r.Notes
	}

	body, err := c.doPost(ctx, "accounts_receivable", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}

	rows, err := decodeRows[domain.AccountReceivable](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: fmt.Errorf("insert returned no representation")}
	}
	return &rows[0], nil
}

func (c *Client) ListReceivables(ctx context.Context, storeID string, statuses []string) ([]domain.AccountReceivable, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListReceivables")
	defer span.End()

	path := fmt.Sprintf("accounts_receivable?store_id=eq.%s&order=due_date.asc", storeID)
	if len(statuses) > 0 {
		path += fmt.Sprintf("&status=in.(%s)", strings.Join(statuses, ","))
	}
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}

	rows, err := decodeRows[domain.AccountReceivable](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}
	return rows, nil
}

func (c *Client) GetReceivable(ctx context.Context, storeID, receivableID string) (*domain.AccountReceivable, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetReceivable")
	defer span.End()

	path := fmt.Sprintf("accounts_receivable?store_id=eq.%s&id=eq.%s&limit=1", storeID, receivableID)
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}

	rows, err := decodeRows[domain.AccountReceivable](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "conta a receber", ID: receivableID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateReceivable(ctx context.Context, storeID, receivableID string, fields map[string]any) (*domain.AccountReceivable, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateReceivable")
	defer span.End()

	path := fmt.Sprintf("accounts_receivable?store_id=eq.%s&id=eq.%s", storeID, receivableID)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}

	rows, err := decodeRows[domain.AccountReceivable](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "conta a receber", ID: receivableID}
	}
	return &rows[0], nil
}

// ReceiveIfPending updates a receivable only while it is still pendente.
// nil/nil means the precondition failed: already received, cancelled or
// absent.
func (c *Client) ReceiveIfPending(ctx context.Context, storeID, receivableID string, fields map[string]any) (*domain.AccountReceivable, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ReceiveIfPending")
	defer span.End()

	path := fmt.Sprintf("accounts_receivable?store_id=eq.%s&id=eq.%s&status=eq.%s",
		storeID, receivableID, domain.StatusPendente)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}

	rows, err := decodeRows[domain.AccountReceivable](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) DeleteReceivable(ctx context.Context, storeID, receivableID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteReceivable")
	defer span.End()

	path := fmt.Sprintf("accounts_receivable?store_id=eq.%s&id=eq.%s", storeID, receivableID)
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/accounts_receivable", Err: err}
	}
	return nil
}
