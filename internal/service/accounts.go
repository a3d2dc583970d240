package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Bank accounts
// ============================================================

// CreateBankAccount opens a new account. The current balance is seeded
// from the initial balance and from then on only moves through postings.
func (s *LedgerService) CreateBankAccount(ctx context.Context, storeID string, req *domain.BankAccountCreateRequest) (*domain.BankAccount, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateBankAccount")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "Nome da conta é obrigatório"}
	}
	switch req.AccountType {
	case domain.AccountCorrente, domain.AccountPoupanca, domain.AccountInvestimento, domain.AccountDinheiro:
	default:
		return nil, &domain.ErrValidation{Field: "account_type", Message: "Tipo de conta inválido"}
	}
	if math.IsNaN(req.InitialBalance) || math.IsInf(req.InitialBalance, 0) {
		return nil, &domain.ErrValidation{Field: "initial_balance", Message: "Saldo inicial inválido"}
	}

	account := &domain.BankAccount{
		ID:             uuid.New().String(),
		StoreID:        storeID,
		Name:           req.Name,
		Bank:           req.Bank,
		AccountType:    req.AccountType,
		InitialBalance: req.InitialBalance,
		CurrentBalance: req.InitialBalance,
		Color:          req.Color,
		IsActive:       true,
	}

	created, err := s.store.CreateBankAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("create bank account: %w", err)
	}

	s.metrics.IncrMutation("bank_account", "create")
	s.invalidateSummary(storeID)
	s.logger.Info("bank account created",
		zap.String("store_id", storeID),
		zap.String("account_id", created.ID),
		zap.Float64("initial_balance", created.InitialBalance),
	)
	return created, nil
}

// ListBankAccounts returns the store's accounts, active first by creation.
func (s *LedgerService) ListBankAccounts(ctx context.Context, storeID string, activeOnly bool) ([]domain.BankAccount, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListBankAccounts")
	defer span.End()

	accounts, err := s.store.ListBankAccounts(ctx, storeID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	return accounts, nil
}

// GetBankAccount fetches one account.
func (s *LedgerService) GetBankAccount(ctx context.Context, storeID, accountID string) (*domain.BankAccount, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetBankAccount")
	defer span.End()

	account, err := s.store.GetBankAccount(ctx, storeID, accountID)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateBankAccount changes account metadata. Balance fields are not
// accepted here on purpose.
func (s *LedgerService) UpdateBankAccount(ctx context.Context, storeID, accountID string, req *domain.BankAccountUpdateRequest) (*domain.BankAccount, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateBankAccount")
	defer span.End()

	fields := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "Nome da conta é obrigatório"}
		}
		fields["name"] = *req.Name
	}
	if req.Bank != nil {
		fields["bank"] = *req.Bank
	}
	if req.AccountType != nil {
		switch *req.AccountType {
		case domain.AccountCorrente, domain.AccountPoupanca, domain.AccountInvestimento, domain.AccountDinheiro:
		default:
			return nil, &domain.ErrValidation{Field: "account_type", Message: "Tipo de conta inválido"}
		}
		fields["account_type"] = *req.AccountType
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if len(fields) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := s.store.UpdateBankAccount(ctx, storeID, accountID, fields)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrMutation("bank_account", "update")
	return updated, nil
}

// DeactivateBankAccount soft-deletes an account. History and balance are
// preserved; the account just stops appearing in listings and summaries.
func (s *LedgerService) DeactivateBankAccount(ctx context.Context, storeID, accountID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeactivateBankAccount")
	defer span.End()

	_, err := s.store.UpdateBankAccount(ctx, storeID, accountID, map[string]any{
		"is_active":  false,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	s.metrics.IncrMutation("bank_account", "deactivate")
	s.invalidateSummary(storeID)
	s.logger.Info("bank account deactivated",
		zap.String("store_id", storeID),
		zap.String("account_id", accountID),
	)
	return nil
}

// postToAccount applies a signed delta to an account balance using a
// compare-and-set loop: read the balance, patch guarded by it, re-read on
// a lost race. Retries are bounded; exhaustion surfaces ErrConflict.
func (s *LedgerService) postToAccount(ctx context.Context, storeID, accountID string, delta float64) (*domain.BankAccount, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.postToAccount")
	defer span.End()

	for attempt := 0; attempt < s.conflictRetries; attempt++ {
		account, err := s.store.GetBankAccount(ctx, storeID, accountID)
		if err != nil {
			return nil, err
		}

		updated, err := s.store.ApplyBalanceDelta(ctx, storeID, accountID, account.CurrentBalance, delta)
		if err != nil {
			return nil, err
		}
		if updated != nil {
			s.metrics.IncrLedgerPosting()
			return updated, nil
		}

		s.metrics.IncrConflictRetry("bank_account")
		s.logger.Warn("balance posting lost a race, retrying",
			zap.String("account_id", accountID),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, &domain.ErrConflict{Resource: "conta bancária", ID: accountID}
}
