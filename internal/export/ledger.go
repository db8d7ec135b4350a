// Package export writes a group's ledger to an Excel workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/settlement"
)

const (
	SheetExpenses    = "Expenses"
	SheetSplits      = "Splits"
	SheetSettlements = "Settlements"
	SheetBalances    = "Balances"

	// ContentType is the MIME type of the written workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timeLayout = "2006-01-02 15:04"
)

// Source is the read side of the store a ledger is built from.
type Source interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)
}

// Ledger is everything that goes into one workbook.
type Ledger struct {
	Group       *models.Group
	Expenses    []models.Expense
	Settlements []models.Settlement
	Balances    []calculator.BalanceInput
}

// Load reads a group's ledger and computes its current balances.
func Load(ctx context.Context, src Source, groupID string) (*Ledger, error) {
	group, err := src.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	expenses, err := src.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	settlements, err := src.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return &Ledger{
		Group:       group,
		Expenses:    expenses,
		Settlements: settlements,
		Balances:    settlement.GroupBalances(expenses, group.Members),
	}, nil
}

// Write renders the ledger as an .xlsx workbook with one sheet per table.
func Write(w io.Writer, l *Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	names := make(map[string]string, len(l.Group.Members))
	for _, m := range l.Group.Members {
		names[m.UserID] = m.DisplayName
	}
	name := func(userID string) string {
		if n, ok := names[userID]; ok {
			return n
		}
		return calculator.UnknownMemberName
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	// The default sheet becomes the first table.
	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, sheet := range []string{SheetSplits, SheetSettlements, SheetBalances} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	expenses := [][]any{{"Date", "Title", "Paid by", "Amount", "Currency", "Description"}}
	splits := [][]any{{"Expense", "Member", "Amount", "Settled", "Tx hash"}}
	for _, e := range l.Expenses {
		expenses = append(expenses, []any{
			formatTime(e.CreatedAt), e.Title, name(e.PaidBy), e.TotalAmount.InexactFloat64(), e.Currency, e.Description,
		})
		for _, s := range e.Splits {
			splits = append(splits, []any{
				e.Title, name(s.UserID), s.Amount.InexactFloat64(), s.IsSettled, s.SettledTxHash,
			})
		}
	}

	settlements := [][]any{{"Date", "From", "To", "Amount", "Status", "Tx hash", "Memo"}}
	for _, s := range l.Settlements {
		settlements = append(settlements, []any{
			formatTime(s.CreatedAt), name(s.FromUserID), name(s.ToUserID), s.Amount.InexactFloat64(),
			string(s.Status), s.TxHash, s.Memo,
		})
	}

	balances := [][]any{{"Member", "Balance"}}
	for _, b := range l.Balances {
		balances = append(balances, []any{b.UserName, b.Amount.InexactFloat64()})
	}

	tables := []struct {
		sheet     string
		rows      [][]any
		moneyCol  string
		colWidths map[string]float64
	}{
		{SheetExpenses, expenses, "D", map[string]float64{"A": 18, "B": 30, "C": 18, "D": 12, "F": 40}},
		{SheetSplits, splits, "C", map[string]float64{"A": 30, "B": 18, "C": 12, "E": 70}},
		{SheetSettlements, settlements, "D", map[string]float64{"A": 18, "B": 18, "C": 18, "D": 12, "F": 70, "G": 34}},
		{SheetBalances, balances, "B", map[string]float64{"A": 18, "B": 12}},
	}
	for _, t := range tables {
		if err := writeRows(f, t.sheet, t.rows); err != nil {
			return err
		}
		if len(t.rows) > 1 {
			top := fmt.Sprintf("%s2", t.moneyCol)
			bottom := fmt.Sprintf("%s%d", t.moneyCol, len(t.rows))
			if err := f.SetCellStyle(t.sheet, top, bottom, money); err != nil {
				return fmt.Errorf("failed to style %s: %w", t.sheet, err)
			}
		}
		for col, width := range t.colWidths {
			if err := f.SetColWidth(t.sheet, col, col, width); err != nil {
				return fmt.Errorf("failed to size %s: %w", t.sheet, err)
			}
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func formatTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(timeLayout)
}
