package domain

// ============================================================
// Aggregated reports
// ============================================================

// FinancialSummary is the store's month-to-date financial picture.
// LucroLiquido carries the same value as Saldo; the app's dashboard shows
// both cards and downstream consumers rely on both fields being present.
type FinancialSummary struct {
	TotalReceitas        float64 `json:"totalReceitas"`
	TotalDespesas        float64 `json:"totalDespesas"`
	Saldo                float64 `json:"saldo"`
	LucroLiquido         float64 `json:"lucroLiquido"`
	TotalContasBancarias float64 `json:"totalContasBancarias"`
	TotalContasReceber   float64 `json:"totalContasReceber"`
	TotalContasVencidas  float64 `json:"totalContasVencidas"`
}

// CategorySummary aggregates settled transactions per category.
type CategorySummary struct {
	Category         string  `json:"category"`
	Total            float64 `json:"total"`
	Percentage       float64 `json:"percentage"`
	TransactionCount int     `json:"transactionCount"`
}

// MonthlyEvolution is one month of the receitas/despesas trend.
// Month is "2006-01".
type MonthlyEvolution struct {
	Month    string  `json:"month"`
	Receitas float64 `json:"receitas"`
	Despesas float64 `json:"despesas"`
	Saldo    float64 `json:"saldo"`
}

// TopExpense is one entry of the largest-expenses ranking.
type TopExpense struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// CashFlowEntry is one day of the projected cash flow: expected money in
// and out (pending receivables and pending transactions due that day) and
// the running projected balance.
type CashFlowEntry struct {
	Date             string  `json:"date"`
	ExpectedIn       float64 `json:"expectedIn"`
	ExpectedOut      float64 `json:"expectedOut"`
	ProjectedBalance float64 `json:"projectedBalance"`
}

// ReportWindow is a closed date range for report queries, both ends
// "2006-01-02".
type ReportWindow struct {
	From string
	To   string
}

// EngineMetrics is a point-in-time snapshot of the engine's operation
// counters, served on the ops endpoint.
type EngineMetrics struct {
	ReceivablesReceived float64 `json:"receivables_received"`
	DreamsCompleted     float64 `json:"dreams_completed"`
	LedgerPostings      float64 `json:"ledger_postings"`
	StoreErrors         float64 `json:"store_errors"`
	CacheHits           float64 `json:"cache_hits"`
	CacheMisses         float64 `json:"cache_misses"`
}
