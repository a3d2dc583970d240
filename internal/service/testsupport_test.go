package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gastrohub/financas-go/internal/domain"
	"github.com/gastrohub/financas-go/internal/infra/cache"
	"github.com/gastrohub/financas-go/internal/infra/observability"
	"github.com/gastrohub/financas-go/internal/service"

	"go.uber.org/zap"
)

func newTestService(store *memStore) *service.LedgerService {
	return service.NewLedgerService(
		store,
		cache.New[*domain.FinancialSummary](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		3,
	)
}

// memStore is an in-memory port.FinanceStore for service tests. It mimics
// the PostgREST adapter's observable behavior, including the conditional
// updates that return nil when their precondition no longer holds.
type memStore struct {
	accounts     map[string]*domain.BankAccount
	transactions map[string]*domain.FinancialTransaction
	receivables  map[string]*domain.AccountReceivable
	dreams       map[string]*domain.DreamBoardItem
	categories   map[string]*domain.FinancialCategory
	cards        map[string]*domain.CreditCard

	txOrder []string

	// Error injection.
	errCreateTransaction error
	errApplyDelta        error
	errListAccounts      error
	errListTransactions  error
	errListReceivables   error

	// afterGetDream runs after every GetDream, letting tests slip a
	// concurrent write between the read and the conditional update.
	afterGetDream func(*memStore)
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     map[string]*domain.BankAccount{},
		transactions: map[string]*domain.FinancialTransaction{},
		receivables:  map[string]*domain.AccountReceivable{},
		dreams:       map[string]*domain.DreamBoardItem{},
		categories:   map[string]*domain.FinancialCategory{},
		cards:        map[string]*domain.CreditCard{},
	}
}

// --- Bank accounts ---

func (m *memStore) CreateBankAccount(_ context.Context, a *domain.BankAccount) (*domain.BankAccount, error) {
	cp := *a
	cp.CreatedAt = time.Now()
	m.accounts[a.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) ListBankAccounts(_ context.Context, storeID string, activeOnly bool) ([]domain.BankAccount, error) {
	if m.errListAccounts != nil {
		return nil, m.errListAccounts
	}
	var out []domain.BankAccount
	for _, a := range m.accounts {
		if a.StoreID != storeID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m *memStore) GetBankAccount(_ context.Context, storeID, id string) (*domain.BankAccount, error) {
	a, ok := m.accounts[id]
	if !ok || a.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "conta bancária", ID: id}
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) UpdateBankAccount(_ context.Context, storeID, id string, fields map[string]any) (*domain.BankAccount, error) {
	a, ok := m.accounts[id]
	if !ok || a.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "conta bancária", ID: id}
	}
	for k, v := range fields {
		switch k {
		case "name":
			a.Name = v.(string)
		case "bank":
			a.Bank = v.(string)
		case "account_type":
			a.AccountType = v.(string)
		case "color":
			a.Color = v.(string)
		case "is_active":
			a.IsActive = v.(bool)
		}
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ApplyBalanceDelta(_ context.Context, storeID, id string, expected, delta float64) (*domain.BankAccount, error) {
	if m.errApplyDelta != nil {
		return nil, m.errApplyDelta
	}
	a, ok := m.accounts[id]
	if !ok || a.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "conta bancária", ID: id}
	}
	if a.CurrentBalance != expected {
		return nil, nil
	}
	a.CurrentBalance = expected + delta
	cp := *a
	return &cp, nil
}

// --- Transactions ---

func (m *memStore) CreateTransaction(_ context.Context, tx *domain.FinancialTransaction) (*domain.FinancialTransaction, error) {
	if m.errCreateTransaction != nil {
		return nil, m.errCreateTransaction
	}
	cp := *tx
	cp.CreatedAt = time.Now()
	m.transactions[tx.ID] = &cp
	m.txOrder = append(m.txOrder, tx.ID)
	out := cp
	return &out, nil
}

func (m *memStore) ListTransactions(_ context.Context, storeID string, f domain.TransactionFilters) ([]domain.FinancialTransaction, error) {
	if m.errListTransactions != nil {
		return nil, m.errListTransactions
	}
	var out []domain.FinancialTransaction
	for _, id := range m.txOrder {
		tx := m.transactions[id]
		if tx == nil || tx.StoreID != storeID {
			continue
		}
		if f.From != "" && tx.TransactionDate < f.From {
			continue
		}
		if f.To != "" && tx.TransactionDate > f.To {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
			continue
		}
		if len(f.Status) > 0 && !contains(f.Status, tx.Status) {
			continue
		}
		out = append(out, *tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate > out[j].TransactionDate })
	return out, nil
}

func (m *memStore) GetTransaction(_ context.Context, storeID, id string) (*domain.FinancialTransaction, error) {
	tx, ok := m.transactions[id]
	if !ok || tx.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "transação", ID: id}
	}
	cp := *tx
	return &cp, nil
}

func (m *memStore) UpdateTransaction(_ context.Context, storeID, id string, fields map[string]any) (*domain.FinancialTransaction, error) {
	tx, ok := m.transactions[id]
	if !ok || tx.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "transação", ID: id}
	}
	applyTransactionFields(tx, fields)
	cp := *tx
	return &cp, nil
}

func (m *memStore) SettleTransactionIfPending(_ context.Context, storeID, id string, fields map[string]any) (*domain.FinancialTransaction, error) {
	tx, ok := m.transactions[id]
	if !ok || tx.StoreID != storeID || tx.Status != domain.StatusPendente {
		return nil, nil
	}
	applyTransactionFields(tx, fields)
	cp := *tx
	return &cp, nil
}

func (m *memStore) DeleteTransaction(_ context.Context, storeID, id string) error {
	delete(m.transactions, id)
	return nil
}

func applyTransactionFields(tx *domain.FinancialTransaction, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "status":
			tx.Status = v.(string)
		case "bank_account_id":
			tx.BankAccountID = v.(string)
		case "payment_method":
			tx.PaymentMethod = v.(string)
		case "description":
			tx.Description = v.(string)
		case "due_date":
			tx.DueDate = v.(string)
		case "category_id":
			tx.CategoryID = v.(string)
		case "notes":
			tx.Notes = v.(string)
		}
	}
}

// --- Receivables ---

func (m *memStore) CreateReceivable(_ context.Context, r *domain.AccountReceivable) (*domain.AccountReceivable, error) {
	cp := *r
	cp.CreatedAt = time.Now()
	m.receivables[r.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) ListReceivables(_ context.Context, storeID string, statuses []string) ([]domain.AccountReceivable, error) {
	if m.errListReceivables != nil {
		return nil, m.errListReceivables
	}
	var out []domain.AccountReceivable
	for _, r := range m.receivables {
		if r.StoreID != storeID {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, r.Status) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate < out[j].DueDate })
	return out, nil
}

func (m *memStore) GetReceivable(_ context.Context, storeID, id string) (*domain.AccountReceivable, error) {
	r, ok := m.receivables[id]
	if !ok || r.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "conta a receber", ID: id}
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateReceivable(_ context.Context, storeID, id string, fields map[string]any) (*domain.AccountReceivable, error) {
	r, ok := m.receivables[id]
	if !ok || r.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "conta a receber", ID: id}
	}
	applyReceivableFields(r, fields)
	cp := *r
	return &cp, nil
}

func (m *memStore) ReceiveIfPending(_ context.Context, storeID, id string, fields map[string]any) (*domain.AccountReceivable, error) {
	r, ok := m.receivables[id]
	if !ok || r.StoreID != storeID || r.Status != domain.StatusPendente {
		return nil, nil
	}
	applyReceivableFields(r, fields)
	cp := *r
	return &cp, nil
}

func (m *memStore) DeleteReceivable(_ context.Context, storeID, id string) error {
	delete(m.receivables, id)
	return nil
}

func applyReceivableFields(r *domain.AccountReceivable, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(string)
		case "received_date":
			r.ReceivedDate = v.(string)
		case "bank_account_id":
			r.BankAccountID = v.(string)
		case "payment_method":
			r.PaymentMethod = v.(string)
		case "transaction_id":
			r.TransactionID = v.(string)
		case "customer_name":
			r.CustomerName = v.(string)
		case "description":
			r.Description = v.(string)
		case "amount":
			r.Amount = v.(float64)
		case "due_date":
			r.DueDate = v.(string)
		case "notes":
			r.Notes = v.(string)
		}
	}
}

// --- Dream board ---

func (m *memStore) CreateDream(_ context.Context, d *domain.DreamBoardItem) (*domain.DreamBoardItem, error) {
	cp := *d
	cp.CreatedAt = time.Now()
	m.dreams[d.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) ListDreams(_ context.Context, storeID string) ([]domain.DreamBoardItem, error) {
	var out []domain.DreamBoardItem
	for _, d := range m.dreams {
		if d.StoreID == storeID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (m *memStore) GetDream(_ context.Context, storeID, id string) (*domain.DreamBoardItem, error) {
	d, ok := m.dreams[id]
	if !ok || d.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "sonho", ID: id}
	}
	cp := *d
	if m.afterGetDream != nil {
		m.afterGetDream(m)
	}
	return &cp, nil
}

func (m *memStore) UpdateDream(_ context.Context, storeID, id string, fields map[string]any) (*domain.DreamBoardItem, error) {
	d, ok := m.dreams[id]
	if !ok || d.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "sonho", ID: id}
	}
	applyDreamFields(d, fields)
	cp := *d
	return &cp, nil
}

func (m *memStore) UpdateDreamIfAmount(_ context.Context, storeID, id string, expected float64, fields map[string]any) (*domain.DreamBoardItem, error) {
	d, ok := m.dreams[id]
	if !ok || d.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "sonho", ID: id}
	}
	if d.CurrentAmount != expected {
		return nil, nil
	}
	applyDreamFields(d, fields)
	cp := *d
	return &cp, nil
}

func (m *memStore) DeleteDream(_ context.Context, storeID, id string) error {
	delete(m.dreams, id)
	return nil
}

func applyDreamFields(d *domain.DreamBoardItem, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "current_amount":
			d.CurrentAmount = v.(float64)
		case "status":
			d.Status = v.(string)
		case "completed_at":
			if t, err := time.Parse(time.RFC3339, v.(string)); err == nil {
				d.CompletedAt = &t
			}
		case "title":
			d.Title = v.(string)
		case "description":
			d.Description = v.(string)
		case "target_amount":
			d.TargetAmount = v.(float64)
		case "target_date":
			d.TargetDate = v.(string)
		case "priority":
			d.Priority = v.(int)
		case "category":
			d.Category = v.(string)
		case "image_url":
			d.ImageURL = v.(string)
		}
	}
}

// --- Catalog ---

func (m *memStore) CreateCategory(_ context.Context, c *domain.FinancialCategory) (*domain.FinancialCategory, error) {
	cp := *c
	m.categories[c.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) ListCategories(_ context.Context, storeID string, activeOnly bool) ([]domain.FinancialCategory, error) {
	var out []domain.FinancialCategory
	for _, c := range m.categories {
		if c.StoreID != storeID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) UpdateCategory(_ context.Context, storeID, id string, fields map[string]any) (*domain.FinancialCategory, error) {
	c, ok := m.categories[id]
	if !ok || c.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "categoria", ID: id}
	}
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = v.(string)
		case "type":
			c.Type = v.(string)
		case "color":
			c.Color = v.(string)
		case "icon":
			c.Icon = v.(string)
		case "is_active":
			c.IsActive = v.(bool)
		}
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) CreateCreditCard(_ context.Context, c *domain.CreditCard) (*domain.CreditCard, error) {
	cp := *c
	m.cards[c.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) ListCreditCards(_ context.Context, storeID string, activeOnly bool) ([]domain.CreditCard, error) {
	var out []domain.CreditCard
	for _, c := range m.cards {
		if c.StoreID != storeID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) UpdateCreditCard(_ context.Context, storeID, id string, fields map[string]any) (*domain.CreditCard, error) {
	c, ok := m.cards[id]
	if !ok || c.StoreID != storeID {
		return nil, &domain.ErrNotFound{Resource: "cartão de crédito", ID: id}
	}
	for k, v := range fields {
		switch k {
		case "name":
			c.Name = v.(string)
		case "last_digits":
			c.LastDigits = v.(string)
		case "credit_limit":
			c.Limit = v.(float64)
		case "closing_day":
			c.ClosingDay = v.(int)
		case "due_day":
			c.DueDay = v.(int)
		case "color":
			c.Color = v.(string)
		case "is_active":
			c.IsActive = v.(bool)
		}
	}
	cp := *c
	return &cp, nil
}

// --- helpers ---

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func dateOffset(days int) string {
	return time.Now().AddDate(0, 0, days).Format(domain.DateLayout)
}
