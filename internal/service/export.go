package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gastrohub/financas-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// CSV export
// ============================================================

var exportHeader = []string{"Data", "Descrição", "Categoria", "Tipo", "Status", "Forma de Pagamento", "Valor"}

// ExportTransactionsCSV streams the store's transactions as CSV with the
// dashboard's pt-BR headers. Values use comma as the decimal separator,
// matching what the spreadsheet-facing side of the app expects.
func (s *LedgerService) ExportTransactionsCSV(ctx context.Context, storeID string, filters domain.TransactionFilters, w io.Writer) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ExportTransactionsCSV")
	defer span.End()

	var (
		transactions []domain.FinancialTransaction
		categories   []domain.FinancialCategory
	)
	transactions, err := s.store.ListTransactions(ctx, storeID, filters)
	if err != nil {
		return fmt.Errorf("export: list transactions: %w", err)
	}
	categories, err = s.store.ListCategories(ctx, storeID, false)
	if err != nil {
		return fmt.Errorf("export: list categories: %w", err)
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, tx := range transactions {
		category := names[tx.CategoryID]
		if category == "" {
			category = "Sem categoria"
		}
		record := []string{
			tx.TransactionDate,
			tx.Description,
			category,
			tx.Type,
			tx.Status,
			tx.PaymentMethod,
			formatBRL(tx.Amount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}

	s.logger.Info("transactions exported",
		zap.String("store_id", storeID),
		zap.Int("rows", len(transactions)),
	)
	return nil
}

// formatBRL renders an amount with two decimals and a comma separator.
func formatBRL(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
