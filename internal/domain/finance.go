// Package domain defines the core business entities for the GastroHub
// finance engine. These models are independent of external services and
// represent the canonical data structures used throughout the backend.
//
// Date-only columns (due dates, transaction dates) are carried as
// ISO-8601 strings ("2006-01-02") exactly as PostgREST returns them;
// full timestamps use time.Time.
package domain

import "time"

// Transaction types.
const (
	TransactionReceita       = "receita"
	TransactionDespesa       = "despesa"
	TransactionTransferencia = "transferencia"
)

// Transaction / receivable statuses. "atrasado" is a derived presentation
// value computed from the due date at read time; the engine never writes
// it to the store.
const (
	StatusPendente  = "pendente"
	StatusPago      = "pago"
	StatusRecebido  = "recebido"
	StatusCancelado = "cancelado"
	StatusAtrasado  = "atrasado"
)

// Dream board statuses.
const (
	DreamAtivo     = "ativo"
	DreamConcluido = "concluido"
	DreamPausado   = "pausado"
	DreamCancelado = "cancelado"
)

// Bank account types.
const (
	AccountCorrente     = "corrente"
	AccountPoupanca     = "poupanca"
	AccountInvestimento = "investimento"
	AccountDinheiro     = "dinheiro"
)

// DateLayout is the wire format for date-only fields.
const DateLayout = "2006-01-02"

// ============================================================
// Bank accounts
// ============================================================

// BankAccount represents a store's bank account. CurrentBalance only moves
// through ledger postings; it is seeded from InitialBalance at creation.
type BankAccount struct {
	ID             string    `json:"id"`
	StoreID        string    `json:"store_id"`
	Name           string    `json:"name"`
	Bank           string    `json:"bank,omitempty"`
	AccountType    string    `json:"account_type"`
	InitialBalance float64   `json:"initial_balance"`
	CurrentBalance float64   `json:"current_balance"`
	Color          string    `json:"color,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BankAccountCreateRequest is the payload for creating a bank account.
type BankAccountCreateRequest struct {
	Name           string  `json:"name"`
	Bank           string  `json:"bank,omitempty"`
	AccountType    string  `json:"account_type"`
	InitialBalance float64 `json:"initial_balance"`
	Color          string  `json:"color,omitempty"`
}

// BankAccountUpdateRequest updates account metadata. Balances are absent
// on purpose: they only change through postings.
type BankAccountUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Bank        *string `json:"bank,omitempty"`
	AccountType *string `json:"account_type,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// ============================================================
// Categories / credit cards
// ============================================================

// FinancialCategory classifies transactions as receita or despesa.
type FinancialCategory struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // receita, despesa
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// CreditCard represents a store credit card used for expense tracking.
type CreditCard struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"store_id"`
	Name       string    `json:"name"`
	LastDigits string    `json:"last_digits,omitempty"`
	Limit      float64   `json:"credit_limit,omitempty"`
	ClosingDay int       `json:"closing_day,omitempty"`
	DueDay     int       `json:"due_day,omitempty"`
	Color      string    `json:"color,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreditCardRequest is the payload for creating or updating a credit card.
type CreditCardRequest struct {
	Name       string  `json:"name"`
	LastDigits string  `json:"last_digits,omitempty"`
	Limit      float64 `json:"credit_limit,omitempty"`
	ClosingDay int     `json:"closing_day,omitempty"`
	DueDay     int     `json:"due_day,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// ============================================================
// Transactions
// ============================================================

// FinancialTransaction is a ledger entry: a receita, despesa or a
// transferencia between two bank accounts.
type FinancialTransaction struct {
	ID                  string    `json:"id"`
	StoreID             string    `json:"store_id"`
	Type                string    `json:"type"`
	Description         string    `json:"description"`
	Amount              float64   `json:"amount"`
	TransactionDate     string    `json:"transaction_date"`
	DueDate             string    `json:"due_date,omitempty"`
	Status              string    `json:"status"`
	CategoryID          string    `json:"category_id,omitempty"`
	BankAccountID       string    `json:"bank_account_id,omitempty"`
	CreditCardID        string    `json:"credit_card_id,omitempty"`
	TransferToAccountID string    `json:"transfer_to_account_id,omitempty"`
	PaymentMethod       string    `json:"payment_method,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	Tags                []string  `json:"tags,omitempty"`
	IsRecurring         bool      `json:"is_recurring"`
	RecurringFrequency  string    `json:"recurring_frequency,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TransactionCreateRequest is the payload for creating a transaction.
type TransactionCreateRequest struct {
	Type                string   `json:"type"`
	Description         string   `json:"description"`
	Amount              float64  `json:"amount"`
	TransactionDate     string   `json:"transaction_date"`
	DueDate             string   `json:"due_date,omitempty"`
	Status              string   `json:"status,omitempty"`
	CategoryID          string   `json:"category_id,omitempty"`
	BankAccountID       string   `json:"bank_account_id,omitempty"`
	CreditCardID        string   `json:"credit_card_id,omitempty"`
	TransferToAccountID string   `json:"transfer_to_account_id,omitempty"`
	PaymentMethod       string   `json:"payment_method,omitempty"`
	Notes               string   `json:"notes,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	IsRecurring         bool     `json:"is_recurring"`
	RecurringFrequency  string   `json:"recurring_frequency,omitempty"`
}

// TransactionUpdateRequest updates transaction metadata. Status changes
// that move money go through Settle/Cancel instead.
type TransactionUpdateRequest struct {
	Description   *string   `json:"description,omitempty"`
	DueDate       *string   `json:"due_date,omitempty"`
	CategoryID    *string   `json:"category_id,omitempty"`
	PaymentMethod *string   `json:"payment_method,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
}

// SettleRequest settles a pending transaction, optionally posting the
// amount to a bank account.
type SettleRequest struct {
	BankAccountID string `json:"bank_account_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// TransactionFilters narrows transaction listings.
type TransactionFilters struct {
	From       string
	To         string
	Type       string
	Status     []string
	CategoryID string
}

// ============================================================
// Accounts receivable
// ============================================================

// AccountReceivable is an expected customer payment. Status holds only
// persisted values; overdue is derived from DueDate at read time.
type AccountReceivable struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	DueDate       string    `json:"due_date"`
	ReceivedDate  string    `json:"received_date,omitempty"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	BankAccountID string    `json:"bank_account_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Overdue reports whether the receivable is pending and past due on the
// given date. This is the only overdue classification in the engine; it
// never touches the store.
func (r *AccountReceivable) Overdue(today string) bool {
	return r.Status == StatusPendente && r.DueDate != "" && r.DueDate < today
}

// ReceivableCreateRequest is the payload for creating a receivable.
// Status is absent: new receivables always start pendente.
type ReceivableCreateRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	DueDate       string  `json:"due_date"`
	Notes         string  `json:"notes,omitempty"`
}

// ReceivableUpdateRequest updates receivable metadata while it is pending.
type ReceivableUpdateRequest struct {
	CustomerName  *string  `json:"customer_name,omitempty"`
	CustomerPhone *string  `json:"customer_phone,omitempty"`
	CustomerEmail *string  `json:"customer_email,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	DueDate       *string  `json:"due_date,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

// ReceiveRequest marks a receivable as received.
type ReceiveRequest struct {
	BankAccountID string `json:"bank_account_id,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// ============================================================
// Dream board
// ============================================================

// DreamBoardItem is a savings goal ("sonho") the store is funding.
type DreamBoardItem struct {
	ID            string     `json:"id"`
	StoreID       string     `json:"store_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	TargetDate    string     `json:"target_date,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Category      string     `json:"category,omitempty"`
	Priority      int        `json:"priority"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Progress returns completion as a fraction of the target, capped at 1.
func (d *DreamBoardItem) Progress() float64 {
	if d.TargetAmount <= 0 {
		return 0
	}
	p := d.CurrentAmount / d.TargetAmount
	if p > 1 {
		return 1
	}
	return p
}

// DreamCreateRequest is the payload for creating a dream board item.
// CurrentAmount seeds the savings already set aside; it defaults to 0.
type DreamCreateRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount,omitempty"`
	TargetDate    string  `json:"target_date,omitempty"`
	ImageURL      string  `json:"image_url,omitempty"`
	Category      string  `json:"category,omitempty"`
	Priority      int     `json:"priority,omitempty"`
}

// DreamUpdateRequest updates dream metadata.
type DreamUpdateRequest struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	TargetAmount *float64 `json:"target_amount,omitempty"`
	TargetDate   *string  `json:"target_date,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Priority     *int     `json:"priority,omitempty"`
}

// ContributionRequest adds money to a dream.
type ContributionRequest struct {
	Amount float64 `json:"amount"`
}
