package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"
)

// ============================================================
// Dream board — CRUD via PostgREST
// ============================================================

func (c *Client) CreateDream(ctx context.Context, d *domain.DreamBoardItem) (*domain.DreamBoardItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDream")
	defer span.End()

	data := map[string]any{
		"id":             d.ID,
		"store_id":       d.StoreID,
		"title":          d.Title,
		"target_amount":  d.TargetAmount,
		"current_amount": d.CurrentAmount,
		"priority":       d.Priority,
		"status":         d.Status,
	}
	if d.Description != "" {
		data["description"] = d.Description
	}
	if d.TargetDate != "" {
		data["target_date"] = d.TargetDate
	}
	if d.ImageURL != "" {
		data["image_url"] = d.ImageURL
	}
	if d.Category != "" {
		data["category"] = d.Category
	}
	if d.CompletedAt != nil {
		data["completed_at"] = d.CompletedAt.Format(time.RFC3339)
	}

	body, err := c.doPost(ctx, "dream_board", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}

	rows, err := decodeRows[domain.DreamBoardItem](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: fmt.Errorf("insert returned no representation")}
	}
	return &rows[0], nil
}

func (c *Client) ListDreams(ctx context.Context, storeID string) ([]domain.DreamBoardItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDreams")
	defer span.End()

	path := fmt.Sprintf("dream_board?store_id=eq.%s&order=priority.desc,created_at.asc", storeID)
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}

	rows, err := decodeRows[domain.DreamBoardItem](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}
	return rows, nil
}

func (c *Client) GetDream(ctx context.Context, storeID, dreamID string) (*domain.DreamBoardItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDream")
	defer span.End()

	path := fmt.Sprintf("dream_board?store_id=eq.%s&id=eq.%s&limit=1", storeID, dreamID)
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}

	rows, err := decodeRows[domain.DreamBoardItem](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "sonho", ID: dreamID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateDream(ctx context.Context, storeID, dreamID string, fields map[string]any) (*domain.DreamBoardItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateDream")
	defer span.End()

	path := fmt.Sprintf("dream_board?store_id=eq.%s&id=eq.%s", storeID, dreamID)
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}

	rows, err := decodeRows[domain.DreamBoardItem](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "sonho", ID: dreamID}
	}
	return &rows[0], nil
}

// UpdateDreamIfAmount applies fields guarded by the current_amount the
// caller last read. nil/nil means another contribution landed first.
func (c *Client) UpdateDreamIfAmount(ctx context.Context, storeID, dreamID string, expected float64, fields map[string]any) (*domain.DreamBoardItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateDreamIfAmount")
	defer span.End()

	path := fmt.Sprintf("dream_board?store_id=eq.%s&id=eq.%s&current_amount=eq.%s",
		storeID, dreamID, fmtAmount(expected))
	body, err := c.doPatch(ctx, path, fields)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}

	rows, err := decodeRows[domain.DreamBoardItem](body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) DeleteDream(ctx context.Context, storeID, dreamID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteDream")
	defer span.End()

	path := fmt.Sprintf("dream_board?store_id=eq.%s&id=eq.%s", storeID, dreamID)
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/dream_board", Err: err}
	}
	return nil
}
