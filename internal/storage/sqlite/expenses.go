package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/storage"
)

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Currency == "" {
		expense.Currency = "USD"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, paid_by, title, description, total_cents, currency, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PaidBy, expense.Title, expense.Description,
		toCents(expense.TotalAmount), expense.Currency, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (id, expense_id, user_id, amount_cents, is_settled) VALUES (?, ?, ?, ?, 0)",
			split.ID, expense.ID, split.UserID, toCents(split.Amount),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE groups SET updated_at = ? WHERE id = ?", expense.CreatedAt, expense.GroupID,
	); err != nil {
		return fmt.Errorf("failed to touch group: %w", err)
	}

	if err := insertActivity(ctx, tx, &models.Activity{
		GroupID:   expense.GroupID,
		ActorID:   expense.PaidBy,
		Type:      models.ActivityExpenseAdded,
		Title:     expense.Title,
		Amount:    expense.TotalAmount,
		CreatedAt: expense.CreatedAt,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var totalCents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, paid_by, title, description, total_cents, currency, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PaidBy, &expense.Title, &expense.Description,
		&totalCents, &expense.Currency, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.TotalAmount = fromCents(totalCents)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, user_id, amount_cents, is_settled, settled_tx_hash, settled_at
		 FROM expense_splits WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}

	return expense, nil
}

// ListExpensesByGroup retrieves all expenses for a group with their splits,
// oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, paid_by, title, description, total_cents, currency, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	index := make(map[string]int)
	for rows.Next() {
		var e models.Expense
		var totalCents int64
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Title, &e.Description,
			&totalCents, &e.Currency, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.TotalAmount = fromCents(totalCents)
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.expense_id, s.user_id, s.amount_cents, s.is_settled, s.settled_tx_hash, s.settled_at
		 FROM expense_splits s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ?
		 ORDER BY s.expense_id, s.user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		split, err := scanSplit(splitRows)
		if err != nil {
			return nil, err
		}
		i, ok := index[split.ExpenseID]
		if !ok {
			continue
		}
		expenses[i].Splits = append(expenses[i].Splits, split)
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}

	return expenses, nil
}

func scanSplit(rows *sql.Rows) (models.ExpenseSplit, error) {
	var (
		split       models.ExpenseSplit
		amountCents int64
		settled     int
		txHash      sql.NullString
		settledAt   sql.NullInt64
	)
	if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &amountCents, &settled, &txHash, &settledAt); err != nil {
		return split, fmt.Errorf("failed to scan expense split: %w", err)
	}
	split.Amount = fromCents(amountCents)
	split.IsSettled = settled != 0
	if txHash.Valid {
		split.SettledTxHash = txHash.String
	}
	if settledAt.Valid {
		split.SettledAt = settledAt.Int64
	}
	return split, nil
}

// MarkSplitsSettled settles every unsettled split the user owes in the group.
func (s *SQLiteStore) MarkSplitsSettled(ctx context.Context, groupID, userID, txHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expense_splits
		 SET is_settled = 1, settled_tx_hash = ?, settled_at = ?
		 WHERE user_id = ? AND is_settled = 0
		   AND expense_id IN (SELECT id FROM expenses WHERE group_id = ?)`,
		txHash, time.Now().Unix(), userID, groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark splits settled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to mark splits settled: %w", err)
	}
	return n, nil
}

// LastSplitSettlement returns when the user's splits in the group were last
// settled, or 0 if never.
func (s *SQLiteStore) LastSplitSettlement(ctx context.Context, groupID, userID string) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(s.settled_at), 0)
		 FROM expense_splits s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ? AND s.user_id = ? AND s.is_settled = 1`,
		groupID, userID,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to get last split settlement: %w", err)
	}
	return last, nil
}
