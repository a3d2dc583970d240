package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dream board
// ============================================================

// CreateDream registers a savings goal. Savings start at the amount the
// caller already set aside (default zero); priority is clamped into 1..5
// (default 3). A dream born at or past its target is concluido right away,
// same ≥ rule as contributions.
func (s *LedgerService) CreateDream(ctx context.Context, storeID string, req *domain.DreamCreateRequest) (*domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateDream")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	if req.Title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "Título é obrigatório"}
	}
	if req.TargetAmount <= 0 {
		return nil, &domain.ErrValidation{Field: "target_amount", Message: "Valor alvo deve ser maior que zero"}
	}
	if req.CurrentAmount < 0 {
		return nil, &domain.ErrValidation{Field: "current_amount", Message: "Valor inicial não pode ser negativo"}
	}
	if req.TargetDate != "" && !validDate(req.TargetDate) {
		return nil, &domain.ErrValidation{Field: "target_date", Message: "Data alvo inválida"}
	}

	priority := req.Priority
	if priority == 0 {
		priority = 3
	}
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}

	dream := &domain.DreamBoardItem{
		ID:            uuid.New().String(),
		StoreID:       storeID,
		Title:         req.Title,
		Description:   req.Description,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
		Priority:      priority,
		Status:        domain.DreamAtivo,
	}
	if req.CurrentAmount >= req.TargetAmount {
		completedAt := time.Now().UTC()
		dream.Status = domain.DreamConcluido
		dream.CompletedAt = &completedAt
	}

	created, err := s.store.CreateDream(ctx, dream)
	if err != nil {
		return nil, fmt.Errorf("create dream: %w", err)
	}

	if dream.Status == domain.DreamConcluido {
		s.metrics.IncrDreamCompleted()
	}
	s.metrics.IncrMutation("dream", "create")
	s.logger.Info("dream created",
		zap.String("store_id", storeID),
		zap.String("dream_id", created.ID),
		zap.Float64("target_amount", created.TargetAmount),
	)
	return created, nil
}

// ListDreams returns the store's dream board, highest priority first.
func (s *LedgerService) ListDreams(ctx context.Context, storeID string) ([]domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListDreams")
	defer span.End()

	dreams, err := s.store.ListDreams(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list dreams: %w", err)
	}
	return dreams, nil
}

// GetDream fetches one dream board item.
func (s *LedgerService) GetDream(ctx context.Context, storeID, dreamID string) (*domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetDream")
	defer span.End()

	return s.store.GetDream(ctx, storeID, dreamID)
}

// AddDreamContribution adds money toward a dream. When the new total
// reaches the target (>=, the exact-hit case included) and the dream is
// still ativo, it auto-completes in the same write. Contributions to an
// already concluded dream keep accumulating without touching its status.
//
// The write is guarded by the current_amount read beforehand; a lost race
// re-reads and retries a bounded number of times before ErrConflict, so
// two concurrent contributions never collapse into one.
func (s *LedgerService) AddDreamContribution(ctx context.Context, storeID, dreamID string, req *domain.ContributionRequest) (*domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.AddDreamContribution")
	defer span.End()
	span.SetAttributes(
		attribute.String("store.id", storeID),
		attribute.String("dream.id", dreamID),
	)

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "Valor do aporte deve ser maior que zero"}
	}

	for attempt := 0; attempt < s.conflictRetries; attempt++ {
		dream, err := s.store.GetDream(ctx, storeID, dreamID)
		if err != nil {
			return nil, err
		}

		newAmount := dream.CurrentAmount + req.Amount
		fields := map[string]any{
			"current_amount": newAmount,
			"updated_at":     time.Now().UTC().Format(time.RFC3339),
		}

		completing := newAmount >= dream.TargetAmount && dream.Status == domain.DreamAtivo
		if completing {
			fields["status"] = domain.DreamConcluido
			fields["completed_at"] = time.Now().UTC().Format(time.RFC3339)
		}

		updated, err := s.store.UpdateDreamIfAmount(ctx, storeID, dreamID, dream.CurrentAmount, fields)
		if err != nil {
			return nil, fmt.Errorf("add contribution: %w", err)
		}
		if updated == nil {
			s.metrics.IncrConflictRetry("dream")
			s.logger.Warn("contribution lost a race, retrying",
				zap.String("dream_id", dreamID),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		if completing {
			s.metrics.IncrDreamCompleted()
			s.logger.Info("dream completed by contribution",
				zap.String("store_id", storeID),
				zap.String("dream_id", dreamID),
				zap.Float64("current_amount", updated.CurrentAmount),
				zap.Float64("target_amount", updated.TargetAmount),
			)
		}
		s.metrics.IncrMutation("dream", "contribute")
		return updated, nil
	}

	return nil, &domain.ErrConflict{Resource: "sonho", ID: dreamID}
}

// CompleteDream marks a dream concluido by hand, regardless of how much
// has been saved. Only an ativo dream can be completed.
func (s *LedgerService) CompleteDream(ctx context.Context, storeID, dreamID string) (*domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CompleteDream")
	defer span.End()

	dream, err := s.store.GetDream(ctx, storeID, dreamID)
	if err != nil {
		return nil, err
	}
	if dream.Status != domain.DreamAtivo {
		return nil, &domain.ErrValidation{Field: "status", Message: "Apenas sonhos ativos podem ser concluídos"}
	}

	updated, err := s.store.UpdateDream(ctx, storeID, dreamID, map[string]any{
		"status":       domain.DreamConcluido,
		"completed_at": time.Now().UTC().Format(time.RFC3339),
		"updated_at":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrDreamCompleted()
	s.metrics.IncrMutation("dream", "complete")
	s.logger.Info("dream completed manually",
		zap.String("store_id", storeID),
		zap.String("dream_id", dreamID),
	)
	return updated, nil
}

// PauseDream sets an ativo dream aside without losing its progress.
func (s *LedgerService) PauseDream(ctx context.Context, storeID, dreamID string) (*domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PauseDream")
	defer span.End()

	dream, err := s.store.GetDream(ctx, storeID, dreamID)
	if err != nil {
		return nil, err
	}
	if dream.Status != domain.DreamAtivo {
		return nil, &domain.ErrValidation{Field: "status", Message: "Apenas sonhos ativos podem ser pausados"}
	}

	updated, err := s.store.UpdateDream(ctx, storeID, dreamID, map[string]any{
		"status":     domain.DreamPausado,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("dream", "pause")
	return updated, nil
}

// ResumeDream brings a pausado dream back to ativo.
func (s *LedgerService) ResumeDream(ctx context.Context, storeID, dreamID string) (*domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ResumeDream")
	defer span.End()

	dream, err := s.store.GetDream(ctx, storeID, dreamID)
	if err != nil {
		return nil, err
	}
	if dream.Status != domain.DreamPausado {
		return nil, &domain.ErrValidation{Field: "status", Message: "Apenas sonhos pausados podem ser retomados"}
	}

	updated, err := s.store.UpdateDream(ctx, storeID, dreamID, map[string]any{
		"status":     domain.DreamAtivo,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("dream", "resume")
	return updated, nil
}

// UpdateDream changes dream metadata. Amounts saved so far only move
// through contributions.
func (s *LedgerService) UpdateDream(ctx context.Context, storeID, dreamID string, req *domain.DreamUpdateRequest) (*domain.DreamBoardItem, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateDream")
	defer span.End()

	fields := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, &domain.ErrValidation{Field: "title", Message: "Título é obrigatório"}
		}
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.TargetAmount != nil {
		if *req.TargetAmount <= 0 {
			return nil, &domain.ErrValidation{Field: "target_amount", Message: "Valor alvo deve ser maior que zero"}
		}
		fields["target_amount"] = *req.TargetAmount
	}
	if req.TargetDate != nil {
		if *req.TargetDate != "" && !validDate(*req.TargetDate) {
			return nil, &domain.ErrValidation{Field: "target_date", Message: "Data alvo inválida"}
		}
		fields["target_date"] = *req.TargetDate
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Priority != nil {
		p := *req.Priority
		if p < 1 || p > 5 {
			return nil, &domain.ErrValidation{Field: "priority", Message: "Prioridade deve estar entre 1 e 5"}
		}
		fields["priority"] = p
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.store.UpdateDream(ctx, storeID, dreamID, fields)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("dream", "update")
	return updated, nil
}

// DeleteDream removes a dream in any status, contribution history included.
func (s *LedgerService) DeleteDream(ctx context.Context, storeID, dreamID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteDream")
	defer span.End()

	if _, err := s.store.GetDream(ctx, storeID, dreamID); err != nil {
		return err
	}
	if err := s.store.DeleteDream(ctx, storeID, dreamID); err != nil {
		return fmt.Errorf("delete dream: %w", err)
	}

	s.metrics.IncrMutation("dream", "delete")
	s.logger.Info("dream deleted",
		zap.String("store_id", storeID),
		zap.String("dream_id", dreamID),
	)
	return nil
}
