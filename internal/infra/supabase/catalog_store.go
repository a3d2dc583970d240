package supabase

import (
	"context"
	"fmt"

	"github.com/gastrohub/financas-go/internal/domain"
)

// ============================================================
// Categories and credit cards — catalog tables
// ============================================================

func (c *Client) CreateCategory(ctx context.Context, cat *domain.FinancialCategory) (*domain.FinancialCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	data := map[string]any{
		"id":        cat.ID,
		"store_id":  cat.StoreID,
		"name":      cat.Name,
		"type":      cat.Type,
		"is_active": cat.IsActive,
	}
	if cat.Color != "" {
		data["color"] = cat.Color
	}
	if cat.Icon != "" {
		data["icon"] = cat.Icon
	}

	body, err := c.doPost(ctx, "financial_categories", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_categories", Err: err}
	}

	rows, err := decodeRows[domain.FinancialCategory](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_categories", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_categories", Err: fmt.Errorf("insert returned no representation")}
	}
	return &rows[0], nil
}

func (c *Client) ListCategories(ctx context.Context, storeID string, activeOnly bool) ([]domain.FinancialCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	path := fmt.Sprintf("financial_categories?store_id=eq.%s&order=name.asc", storeID)
	if activeOnly {
		path += "&is_active=eq.true"
	}
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_categories", Err: err}
	}

	rows, err := decodeRows[domain.FinancialCategory](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_categories", Err: err}
	}
	return rows, nil
}

func (c *Client) UpdateCategory(ctx context.Context, storeID, categoryID string, fields map[string]any) (*domain.FinancialCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCategory")
	defer span.End()

	path := fmt.Sprintf("financial_categories?store_id=eq.%s&id=eq.%s", storeID, categoryID)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_categories", Err: err}
	}

	rows, err := decodeRows[domain.FinancialCategory](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/financial_categories", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "categoria", ID: categoryID}
	}
	return &rows[0], nil
}

func (c *Client) CreateCreditCard(ctx context.Context, card *domain.CreditCard) (*domain.CreditCard, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCreditCard")
	defer span.End()

	data := map[string]any{
		"id":        card.ID,
		"store_id":  card.StoreID,
		"name":      card.Name,
		"is_active": card.IsActive,
	}
	if card.LastDigits != "" {
		data["last_digits"] = card.LastDigits
	}
	if card.Limit > 0 {
		data["credit_limit"] = card.Limit
	}
	if card.ClosingDay > 0 {
		data["closing_day"] = card.ClosingDay
	}
	if card.DueDay > 0 {
		data["due_day"] = card.DueDay
	}
	if card.Color != "" {
		data["color"] = card.Color
	}

	body, err := c.doPost(ctx, "credit_cards", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/credit_cards", Err: err}
	}

	rows, err := decodeRows[domain.CreditCard](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/credit_cards", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/credit_cards", Err: fmt.Errorf("insert returned no representation")}
	}
	return &rows[0], nil
}

func (c *Client) ListCreditCards(ctx context.Context, storeID string, activeOnly bool) ([]domain.CreditCard, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCreditCards")
	defer span.End()

	path := fmt.Sprintf("credit_cards?store_id=eq.%s&order=name.asc", storeID)
	if activeOnly {
		path += "&is_active=eq.true"
	}
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/credit_cards", Err: err}
	}

	rows, err := decodeRows[domain.CreditCard](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/credit_cards", Err: err}
	}
	return rows, nil
}

func (c *Client) UpdateCreditCard(ctx context.Context, storeID, cardID string, fields map[string]any) (*domain.CreditCard, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCreditCard")
	defer span.End()

	path := fmt.Sprintf("credit_cards?store_id=eq.%s&id=eq.%s", storeID, cardID)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/credit_cards", Err: err}
	}

	rows, err := decodeRows[domain.CreditCard](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/credit_cards", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "cartão de crédito", ID: cardID}
	}
	return &rows[0], nil
}
