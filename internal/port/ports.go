// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/gastrohub/financas-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// FinanceStore defines all data operations for the finance engine.
// Implemented by the Supabase adapter (or any other persistence layer).
// Every operation is scoped to a storeID; implementations must never
// return rows belonging to another store.
type FinanceStore interface {
	// Bank accounts
	CreateBankAccount(ctx context.Context, account *domain.BankAccount) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context, storeID string, activeOnly bool) ([]domain.BankAccount, error)
	GetBankAccount(ctx context.Context, storeID, accountID string) (*domain.BankAccount, error)
	UpdateBankAccount(ctx context.Context, storeID, accountID string, fields map[string]any) (*domain.BankAccount, error)
	// ApplyBalanceDelta adds delta to current_balance only if the row still
	// holds expected; returns the updated account, or nil when the
	// conditional write matched no row.
	ApplyBalanceDelta(ctx context.Context, storeID, accountID string, expected, delta float64) (*domain.BankAccount, error)

	// Transactions
	CreateTransaction(ctx context.Context, tx *domain.FinancialTransaction) (*domain.FinancialTransaction, error)
	ListTransactions(ctx context.Context, storeID string, filters domain.TransactionFilters) ([]domain.FinancialTransaction, error)
	GetTransaction(ctx context.Context, storeID, txID string) (*domain.FinancialTransaction, error)
	UpdateTransaction(ctx context.Context, storeID, txID string, fields map[string]any) (*domain.FinancialTransaction, error)
	// SettleTransactionIfPending transitions a pendente transaction to the
	// given settled status; returns nil when the transaction is no longer
	// pendente (or does not exist).
	SettleTransactionIfPending(ctx context.Context, storeID, txID string, fields map[string]any) (*domain.FinancialTransaction, error)
	DeleteTransaction(ctx context.Context, storeID, txID string) error

	// Accounts receivable
	CreateReceivable(ctx context.Context, r *domain.AccountReceivable) (*domain.AccountReceivable, error)
	ListReceivables(ctx context.Context, storeID string, statuses []string) ([]domain.AccountReceivable, error)
	GetReceivable(ctx context.Context, storeID, receivableID string) (*domain.AccountReceivable, error)
	UpdateReceivable(ctx context.Context, storeID, receivableID string, fields map[string]any) (*domain.AccountReceivable, error)
	// ReceiveIfPending transitions a pendente receivable to recebido;
	// returns nil when the receivable is not pendente (or does not exist).
	ReceiveIfPending(ctx context.Context, storeID, receivableID string, fields map[string]any) (*domain.AccountReceivable, error)
	DeleteReceivable(ctx context.Context, storeID, receivableID string) error

	// Dream board
	CreateDream(ctx context.Context, d *domain.DreamBoardItem) (*domain.DreamBoardItem, error)
	ListDreams(ctx context.Context, storeID string) ([]domain.DreamBoardItem, error)
	GetDream(ctx context.Context, storeID, dreamID string) (*domain.DreamBoardItem, error)
	UpdateDream(ctx context.Context, storeID, dreamID string, fields map[string]any) (*domain.DreamBoardItem, error)
	// UpdateDreamIfAmount applies fields only if current_amount still holds
	// expected; returns nil when the conditional write matched no row.
	UpdateDreamIfAmount(ctx context.Context, storeID, dreamID string, expected float64, fields map[string]any) (*domain.DreamBoardItem, error)
	DeleteDream(ctx context.Context, storeID, dreamID string) error

	// Categories
	CreateCategory(ctx context.Context, c *domain.FinancialCategory) (*domain.FinancialCategory, error)
	ListCategories(ctx context.Context, storeID string, activeOnly bool) ([]domain.FinancialCategory, error)
	UpdateCategory(ctx context.Context, storeID, categoryID string, fields map[string]any) (*domain.FinancialCategory, error)

	// Credit cards
	CreateCreditCard(ctx context.Context, c *domain.CreditCard) (*domain.CreditCard, error)
	ListCreditCards(ctx context.Context, storeID string, activeOnly bool) ([]domain.CreditCard, error)
	UpdateCreditCard(ctx context.Context, storeID, cardID string, fields map[string]any) (*domain.CreditCard, error)
}
