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
// Financial transactions
// ============================================================

func validTransactionType(t string) bool {
	switch t {
	case domain.TransactionReceita, domain.TransactionDespesa, domain.TransactionTransferencia:
		return true
	}
	return false
}

func settledStatus(status string) bool {
	return status == domain.StatusPago || status == domain.StatusRecebido
}

// ledgerDelta returns the signed balance effect of a settled transaction
// on its primary bank account.
func ledgerDelta(tx *domain.FinancialTransaction) float64 {
	switch tx.Type {
	case domain.TransactionReceita:
		return tx.Amount
	case domain.TransactionDespesa, domain.TransactionTransferencia:
		return -tx.Amount
	}
	return 0
}

// CreateTransaction records a ledger entry. A transaction created already
// settled with a bank account posts its amount immediately; a
// transferencia also credits the destination account.
func (s *LedgerService) CreateTransaction(ctx context.Context, storeID string, req *domain.TransactionCreateRequest) (*domain.FinancialTransaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	if !validTransactionType(req.Type) {
		return nil, &domain.ErrValidation{Field: "type", Message: "Tipo de transação inválido"}
	}
	if req.Description == "" {
		return nil, &domain.ErrValidation{Field: "description", Message: "Descrição é obrigatória"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "Valor deve ser maior que zero"}
	}
	if req.TransactionDate == "" || !validDate(req.TransactionDate) {
		return nil, &domain.ErrValidation{Field: "transaction_date", Message: "Data da transação inválida"}
	}
	if req.DueDate != "" && !validDate(req.DueDate) {
		return nil, &domain.ErrValidation{Field: "due_date", Message: "Data de vencimento inválida"}
	}

	status := req.Status
	if status == "" {
		status = domain.StatusPendente
	}
	switch status {
	case domain.StatusPendente, domain.StatusPago, domain.StatusRecebido, domain.StatusCancelado:
	default:
		return nil, &domain.ErrValidation{Field: "status", Message: "Status inválido"}
	}

	if req.Type == domain.TransactionTransferencia {
		if req.BankAccountID == "" || req.TransferToAccountID == "" {
			return nil, &domain.ErrValidation{Field: "transfer_to_account_id", Message: "Transferência exige conta de origem e destino"}
		}
		if req.BankAccountID == req.TransferToAccountID {
			return nil, &domain.ErrValidation{Field: "transfer_to_account_id", Message: "Conta de destino deve ser diferente da origem"}
		}
	}

	tx := &domain.FinancialTransaction{
		ID:                  uuid.New().String(),
		StoreID:             storeID,
		Type:                req.Type,
		Description:         req.Description,
		Amount:              req.Amount,
		TransactionDate:     req.TransactionDate,
		DueDate:             req.DueDate,
		Status:              status,
		CategoryID:          req.CategoryID,
		BankAccountID:       req.BankAccountID,
		CreditCardID:        req.CreditCardID,
		TransferToAccountID: req.TransferToAccountID,
		PaymentMethod:       req.PaymentMethod,
		Notes:               req.Notes,
		Tags:                req.Tags,
		IsRecurring:         req.IsRecurring,
		RecurringFrequency:  req.RecurringFrequency,
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if settledStatus(created.Status) && created.BankAccountID != "" {
		if err := s.postSettled(ctx, storeID, created); err != nil {
			s.metrics.IncrPartialFailure("create_transaction")
			s.logger.Error("transaction recorded but balance posting failed",
				zap.String("transaction_id", created.ID),
				zap.Error(err),
			)
			return nil, &domain.ErrPartialFailure{
				Operation:     "create_transaction",
				CompletedStep: "transaction_recorded",
				Err:           err,
			}
		}
	}

	s.metrics.IncrMutation("transaction", "create")
	s.invalidateSummary(storeID)
	s.logger.Info("transaction created",
		zap.String("store_id", storeID),
		zap.String("transaction_id", created.ID),
		zap.String("type", created.Type),
		zap.Float64("amount", created.Amount),
		zap.String("status", created.Status),
	)
	return created, nil
}

// postSettled applies a settled transaction's balance effects: the signed
// delta on the primary account and, for transferencias, the credit on the
// destination.
func (s *LedgerService) postSettled(ctx context.Context, storeID string, tx *domain.FinancialTransaction) error {
	if _, err := s.postToAccount(ctx, storeID, tx.BankAccountID, ledgerDelta(tx)); err != nil {
		return err
	}
	if tx.Type == domain.TransactionTransferencia && tx.TransferToAccountID != "" {
		if _, err := s.postToAccount(ctx, storeID, tx.TransferToAccountID, tx.Amount); err != nil {
			return err
		}
	}
	return nil
}

// ListTransactions returns transactions with derived display status:
// pendente entries past their due date are shown as atrasado.
func (s *LedgerService) ListTransactions(ctx context.Context, storeID string, filters domain.TransactionFilters) ([]domain.FinancialTransaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListTransactions")
	defer span.End()

	rows, err := s.store.ListTransactions(ctx, storeID, filters)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	now := today()
	for i := range rows {
		if rows[i].Status == domain.StatusPendente && rows[i].DueDate != "" && rows[i].DueDate < now {
			rows[i].Status = domain.StatusAtrasado
		}
	}
	return rows, nil
}

// GetTransaction fetches one transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, storeID, txID string) (*domain.FinancialTransaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetTransaction")
	defer span.End()

	return s.store.GetTransaction(ctx, storeID, txID)
}

// SettleTransaction moves a pendente transaction to its settled status
// (pago for despesas and transferencias, recebido for receitas) and posts
// the amount. Same discipline as receiving a receivable: the conditional
// update is the idempotency gate, and failures after it surface as
// partial failures.
func (s *LedgerService) SettleTransaction(ctx context.Context, storeID, txID string, req *domain.SettleRequest) (*domain.FinancialTransaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.SettleTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", txID))

	current, err := s.store.GetTransaction(ctx, storeID, txID)
	if err != nil {
		return nil, err
	}

	target := domain.StatusPago
	if current.Type == domain.TransactionReceita {
		target = domain.StatusRecebido
	}

	fields := map[string]any{
		"status":     target,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if req.BankAccountID != "" {
		fields["bank_account_id"] = req.BankAccountID
	}
	if req.PaymentMethod != "" {
		fields["payment_method"] = req.PaymentMethod
	}

	settled, err := s.store.SettleTransactionIfPending(ctx, storeID, txID, fields)
	if err != nil {
		return nil, fmt.Errorf("settle transaction: %w", err)
	}
	if settled == nil {
		return nil, &domain.ErrNotFound{Resource: "transação pendente", ID: txID}
	}

	if settled.BankAccountID != "" {
		if err := s.postSettled(ctx, storeID, settled); err != nil {
			s.metrics.IncrPartialFailure("settle_transaction")
			s.logger.Error("transaction settled but balance posting failed",
				zap.String("transaction_id", settled.ID),
				zap.Error(err),
			)
			return nil, &domain.ErrPartialFailure{
				Operation:     "settle_transaction",
				CompletedStep: "transaction_settled",
				Err:           err,
			}
		}
	}

	s.metrics.IncrMutation("transaction", "settle")
	s.invalidateSummary(storeID)
	s.logger.Info("transaction settled",
		zap.String("store_id", storeID),
		zap.String("transaction_id", settled.ID),
		zap.String("status", settled.Status),
	)
	return settled, nil
}

// CancelTransaction flips a pendente transaction to cancelado. Settled
// transactions cannot be cancelled; their effects are already in the
// balances.
func (s *LedgerService) CancelTransaction(ctx context.Context, storeID, txID string) (*domain.FinancialTransaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CancelTransaction")
	defer span.End()

	cancelled, err := s.store.SettleTransactionIfPending(ctx, storeID, txID, map[string]any{
		"status":     domain.StatusCancelado,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("cancel transaction: %w", err)
	}
	if cancelled == nil {
		return nil, &domain.ErrNotFound{Resource: "transação pendente", ID: txID}
	}

	s.metrics.IncrMutation("transaction", "cancel")
	s.invalidateSummary(storeID)
	return cancelled, nil
}

// UpdateTransaction changes descriptive fields only. Amount, type and
// status are immutable here; money movement goes through Settle/Cancel.
func (s *LedgerService) UpdateTransaction(ctx context.Context, storeID, txID string, req *domain.TransactionUpdateRequest) (*domain.FinancialTransaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateTransaction")
	defer span.End()

	fields := map[string]any{}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, &domain.ErrValidation{Field: "description", Message: "Descrição é obrigatória"}
		}
		fields["description"] = *req.Description
	}
	if req.DueDate != nil {
		if *req.DueDate != "" && !validDate(*req.DueDate) {
			return nil, &domain.ErrValidation{Field: "due_date", Message: "Data de vencimento inválida"}
		}
		fields["due_date"] = *req.DueDate
	}
	if req.CategoryID != nil {
		fields["category_id"] = *req.CategoryID
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = *req.PaymentMethod
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.store.UpdateTransaction(ctx, storeID, txID, fields)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("transaction", "update")
	s.invalidateSummary(storeID)
	return updated, nil
}

// DeleteTransaction removes a transaction. Balances are not rewound; the
// dashboard treats deletion as an accounting correction, not an undo.
func (s *LedgerService) DeleteTransaction(ctx context.Context, storeID, txID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteTransaction")
	defer span.End()

	if _, err := s.store.GetTransaction(ctx, storeID, txID); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, storeID, txID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.metrics.IncrMutation("transaction", "delete")
	s.invalidateSummary(storeID)
	return nil
}
