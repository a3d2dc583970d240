package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Catalog — categories and credit cards
// ============================================================

// CreateCategory adds a transaction category.
func (s *LedgerService) CreateCategory(ctx context.Context, storeID string, req *domain.CategoryRequest) (*domain.FinancialCategory, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateCategory")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "Nome da categoria é obrigatório"}
	}
	if req.Type != domain.TransactionReceita && req.Type != domain.TransactionDespesa {
		return nil, &domain.ErrValidation{Field: "type", Message: "Tipo deve ser receita ou despesa"}
	}

	created, err := s.store.CreateCategory(ctx, &domain.FinancialCategory{
		ID:       uuid.New().String(),
		StoreID:  storeID,
		Name:     req.Name,
		Type:     req.Type,
		Color:    req.Color,
		Icon:     req.Icon,
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.metrics.IncrMutation("category", "create")
	s.logger.Info("category created",
		zap.String("store_id", storeID),
		zap.String("category_id", created.ID),
		zap.String("type", created.Type),
	)
	return created, nil
}

// ListCategories returns the store's categories ordered by name.
func (s *LedgerService) ListCategories(ctx context.Context, storeID string, activeOnly bool) ([]domain.FinancialCategory, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListCategories")
	defer span.End()

	return s.store.ListCategories(ctx, storeID, activeOnly)
}

// UpdateCategory renames or recolors a category.
func (s *LedgerService) UpdateCategory(ctx context.Context, storeID, categoryID string, req *domain.CategoryRequest) (*domain.FinancialCategory, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateCategory")
	defer span.End()

	fields := map[string]any{"updated_at": time.Now().UTC().Format(time.RFC3339)}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Type != "" {
		if req.Type != domain.TransactionReceita && req.Type != domain.TransactionDespesa {
			return nil, &domain.ErrValidation{Field: "type", Message: "Tipo deve ser receita ou despesa"}
		}
		fields["type"] = req.Type
	}
	if req.Color != "" {
		fields["color"] = req.Color
	}
	if req.Icon != "" {
		fields["icon"] = req.Icon
	}

	updated, err := s.store.UpdateCategory(ctx, storeID, categoryID, fields)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("category", "update")
	return updated, nil
}

// DeactivateCategory soft-deletes a category; transactions keep pointing
// at it for history.
func (s *LedgerService) DeactivateCategory(ctx context.Context, storeID, categoryID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeactivateCategory")
	defer span.End()

	_, err := s.store.UpdateCategory(ctx, storeID, categoryID, map[string]any{
		"is_active":  false,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	s.metrics.IncrMutation("category", "deactivate")
	return nil
}

// CreateCreditCard registers a credit card for expense tracking.
func (s *LedgerService) CreateCreditCard(ctx context.Context, storeID string, req *domain.CreditCardRequest) (*domain.CreditCard, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateCreditCard")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "Nome do cartão é obrigatório"}
	}
	if req.ClosingDay < 0 || req.ClosingDay > 31 {
		return nil, &domain.ErrValidation{Field: "closing_day", Message: "Dia de fechamento inválido"}
	}
	if req.DueDay < 0 || req.DueDay > 31 {
		return nil, &domain.ErrValidation{Field: "due_day", Message: "Dia de vencimento inválido"}
	}

	created, err := s.store.CreateCreditCard(ctx, &domain.CreditCard{
		ID:         uuid.New().String(),
		StoreID:    storeID,
		Name:       req.Name,
		LastDigits: req.LastDigits,
		Limit:      req.Limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		Color:      req.Color,
		IsActive:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("create credit card: %w", err)
	}

	s.metrics.IncrMutation("credit_card", "create")
	s.logger.Info("credit card created",
		zap.String("store_id", storeID),
		zap.String("card_id", created.ID),
	)
	return created, nil
}

// ListCreditCards returns the store's credit cards ordered by name.
func (s *LedgerService) ListCreditCards(ctx context.Context, storeID string, activeOnly bool) ([]domain.CreditCard, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListCreditCards")
	defer span.End()

	return s.store.ListCreditCards(ctx, storeID, activeOnly)
}

// UpdateCreditCard changes card metadata.
func (s *LedgerService) UpdateCreditCard(ctx context.Context, storeID, cardID string, req *domain.CreditCardRequest) (*domain.CreditCard, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateCreditCard")
	defer span.End()

	fields := map[string]any{"updated_at": time.Now().UTC().Format(time.RFC3339)}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.LastDigits != "" {
		fields["last_digits"] = req.LastDigits
	}
	if req.Limit > 0 {
		fields["credit_limit"] = req.Limit
	}
	if req.ClosingDay > 0 {
		if req.ClosingDay > 31 {
			return nil, &domain.ErrValidation{Field: "closing_day", Message: "Dia de fechamento inválido"}
		}
		fields["closing_day"] = req.ClosingDay
	}
	if req.DueDay > 0 {
		if req.DueDay > 31 {
			return nil, &domain.ErrValidation{Field: "due_day", Message: "Dia de vencimento inválido"}
		}
		fields["due_day"] = req.DueDay
	}
	if req.Color != "" {
		fields["color"] = req.Color
	}

	updated, err := s.store.UpdateCreditCard(ctx, storeID, cardID, fields)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("credit_card", "update")
	return updated, nil
}

// DeactivateCreditCard soft-deletes a card.
func (s *LedgerService) DeactivateCreditCard(ctx context.Context, storeID, cardID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeactivateCreditCard")
	defer span.End()

	_, err := s.store.UpdateCreditCard(ctx, storeID, cardID, map[string]any{
		"is_active":  false,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	s.metrics.IncrMutation("credit_card", "deactivate")
	return nil
}
