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
// Accounts receivable
// ============================================================

// CreateReceivable registers an expected customer payment. New receivables
// always start pendente; whatever status a client sends is ignored.
func (s *LedgerService) CreateReceivable(ctx context.Context, storeID string, req *domain.ReceivableCreateRequest) (*domain.AccountReceivable, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateReceivable")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	if req.CustomerName == "" {
		return nil, &domain.ErrValidation{Field: "customer_name", Message: "Nome do cliente é obrigatório"}
	}
	if req.Description == "" {
		return nil, &domain.ErrValidation{Field: "description", Message: "Descrição é obrigatória"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "Valor deve ser maior que zero"}
	}
	if req.DueDate == "" || !validDate(req.DueDate) {
		return nil, &domain.ErrValidation{Field: "due_date", Message: "Data de vencimento inválida"}
	}

	receivable := &domain.AccountReceivable{
		ID:            uuid.New().String(),
		StoreID:       storeID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Description:   req.Description,
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		Status:        domain.StatusPendente,
		Notes:         req.Notes,
	}

	created, err := s.store.CreateReceivable(ctx, receivable)
	if err != nil {
		return nil, fmt.Errorf("create receivable: %w", err)
	}

	s.metrics.IncrMutation("receivable", "create")
	s.invalidateSummary(storeID)
	s.logger.Info("receivable created",
		zap.String("store_id", storeID),
		zap.String("receivable_id", created.ID),
		zap.Float64("amount", created.Amount),
		zap.String("due_date", created.DueDate),
	)
	return created, nil
}

// ListReceivables returns receivables ordered by due date. Pending rows
// past their due date are presented as atrasado; that classification is
// computed here and never written back.
func (s *LedgerService) ListReceivables(ctx context.Context, storeID string, statuses []string) ([]domain.AccountReceivable, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListReceivables")
	defer span.End()

	rows, err := s.store.ListReceivables(ctx, storeID, statuses)
	if err != nil {
		return nil, fmt.Errorf("list receivables: %w", err)
	}

	now := today()
	for i := range rows {
		if rows[i].Overdue(now) {
			rows[i].Status = domain.StatusAtrasado
		}
	}
	return rows, nil
}

// ListOverdueReceivables returns the pending receivables past their due
// date. Recomputed from due dates on every call; a receivable that is
// overdue today and gets received tomorrow simply stops appearing.
func (s *LedgerService) ListOverdueReceivables(ctx context.Context, storeID string) ([]domain.AccountReceivable, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListOverdueReceivables")
	defer span.End()

	rows, err := s.store.ListReceivables(ctx, storeID, []string{domain.StatusPendente})
	if err != nil {
		return nil, fmt.Errorf("list overdue receivables: %w", err)
	}

	now := today()
	overdue := make([]domain.AccountReceivable, 0, len(rows))
	for _, r := range rows {
		if r.Overdue(now) {
			r.Status = domain.StatusAtrasado
			overdue = append(overdue, r)
		}
	}
	return overdue, nil
}

// GetReceivable fetches one receivable with the derived display status.
func (s *LedgerService) GetReceivable(ctx context.Context, storeID, receivableID string) (*domain.AccountReceivable, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetReceivable")
	defer span.End()

	r, err := s.store.GetReceivable(ctx, storeID, receivableID)
	if err != nil {
		return nil, err
	}
	if r.Overdue(today()) {
		r.Status = domain.StatusAtrasado
	}
	return r, nil
}

// MarkReceivableReceived settles a receivable. Three steps, committed in
// order with no automatic rollback:
//
//  1. flip the receivable pendente → recebido (conditional update);
//  2. record a linked receita transaction;
//  3. post the amount to the chosen bank account.
//
// A failure after step 1 leaves earlier steps committed and surfaces
// ErrPartialFailure naming the last completed step, so callers and
// operators know exactly what state the books were left in.
func (s *LedgerService) MarkReceivableReceived(ctx context.Context, storeID, receivableID string, req *domain.ReceiveRequest) (*domain.AccountReceivable, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.MarkReceivableReceived")
	defer span.End()
	span.SetAttributes(
		attribute.String("store.id", storeID),
		attribute.String("receivable.id", receivableID),
	)

	receivedDate := today()
	fields := map[string]any{
		"status":        domain.StatusRecebido,
		"received_date": receivedDate,
		"updated_at":    time.Now().UTC().Format(time.RFC3339),
	}
	if req.BankAccountID != "" {
		fields["bank_account_id"] = req.BankAccountID
	}
	if req.PaymentMethod != "" {
		fields["payment_method"] = req.PaymentMethod
	}

	// Step 1 — the conditional update is the idempotency gate: a second
	// call (or a call on a cancelled/absent receivable) matches nothing.
	receivable, err := s.store.ReceiveIfPending(ctx, storeID, receivableID, fields)
	if err != nil {
		return nil, fmt.Errorf("mark receivable received: %w", err)
	}
	if receivable == nil {
		return nil, &domain.ErrNotFound{Resource: "conta a receber pendente", ID: receivableID}
	}

	// Step 2 — mirror the receipt into the transaction ledger.
	tx := &domain.FinancialTransaction{
		ID:              uuid.New().String(),
		StoreID:         storeID,
		Type:            domain.TransactionReceita,
		Description:     fmt.Sprintf("Recebimento: %s", receivable.Description),
		Amount:          receivable.Amount,
		TransactionDate: receivedDate,
		Status:          domain.StatusRecebido,
		BankAccountID:   req.BankAccountID,
		PaymentMethod:   req.PaymentMethod,
		Notes:           fmt.Sprintf("Conta a receber ID: %s", receivable.ID),
	}
	createdTx, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		s.metrics.IncrPartialFailure("mark_receivable_received")
		s.logger.Error("receivable updated but transaction insert failed",
			zap.String("receivable_id", receivable.ID),
			zap.Error(err),
		)
		return nil, &domain.ErrPartialFailure{
			Operation:     "mark_receivable_received",
			CompletedStep: "receivable_updated",
			Err:           err,
		}
	}

	if _, err := s.store.UpdateReceivable(ctx, storeID, receivable.ID, map[string]any{
		"transaction_id": createdTx.ID,
	}); err != nil {
		// Back-reference only; the books are consistent without it.
		s.logger.Warn("failed to link transaction back to receivable",
			zap.String("receivable_id", receivable.ID),
			zap.String("transaction_id", createdTx.ID),
			zap.Error(err),
		)
	} else {
		receivable.TransactionID = createdTx.ID
	}

	// Step 3 — move the money.
	if req.BankAccountID != "" {
		if _, err := s.postToAccount(ctx, storeID, req.BankAccountID, receivable.Amount); err != nil {
			s.metrics.IncrPartialFailure("mark_receivable_received")
			s.logger.Error("transaction recorded but balance posting failed",
				zap.String("receivable_id", receivable.ID),
				zap.String("bank_account_id", req.BankAccountID),
				zap.Error(err),
			)
			return nil, &domain.ErrPartialFailure{
				Operation:     "mark_receivable_received",
				CompletedStep: "transaction_recorded",
				Err:           err,
			}
		}
	}

	s.metrics.IncrReceivableReceived()
	s.metrics.IncrMutation("receivable", "receive")
	s.invalidateSummary(storeID)
	s.logger.Info("receivable received",
		zap.String("store_id", storeID),
		zap.String("receivable_id", receivable.ID),
		zap.Float64("amount", receivable.Amount),
		zap.String("bank_account_id", req.BankAccountID),
	)
	return receivable, nil
}

// UpdateReceivable changes receivable data while it is still open.
func (s *LedgerService) UpdateReceivable(ctx context.Context, storeID, receivableID string, req *domain.ReceivableUpdateRequest) (*domain.AccountReceivable, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateReceivable")
	defer span.End()

	fields := map[string]any{}
	if req.CustomerName != nil {
		if *req.CustomerName == "" {
			return nil, &domain.ErrValidation{Field: "customer_name", Message: "Nome do cliente é obrigatório"}
		}
		fields["customer_name"] = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		fields["customer_phone"] = *req.CustomerPhone
	}
	if req.CustomerEmail != nil {
		fields["customer_email"] = *req.CustomerEmail
	}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, &domain.ErrValidation{Field: "description", Message: "Descrição é obrigatória"}
		}
		fields["description"] = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, &domain.ErrValidation{Field: "amount", Message: "Valor deve ser maior que zero"}
		}
		fields["amount"] = *req.Amount
	}
	if req.DueDate != nil {
		if !validDate(*req.DueDate) {
			return nil, &domain.ErrValidation{Field: "due_date", Message: "Data de vencimento inválida"}
		}
		fields["due_date"] = *req.DueDate
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.store.UpdateReceivable(ctx, storeID, receivableID, fields)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("receivable", "update")
	s.invalidateSummary(storeID)
	return updated, nil
}

// DeleteReceivable removes a receivable in any status. Deleting a received
// one does not touch the transaction or the balance it produced.
func (s *LedgerService) DeleteReceivable(ctx context.Context, storeID, receivableID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteReceivable")
	defer span.End()

	if _, err := s.store.GetReceivable(ctx, storeID, receivableID); err != nil {
		return err
	}
	if err := s.store.DeleteReceivable(ctx, storeID, receivableID); err != nil {
		return fmt.Errorf("delete receivable: %w", err)
	}

	s.metrics.IncrMutation("receivable", "delete")
	s.invalidateSummary(storeID)
	s.logger.Info("receivable deleted",
		zap.String("store_id", storeID),
		zap.String("receivable_id", receivableID),
	)
	return nil
}
