package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitpay/internal/models"
)

func insertActivity(ctx context.Context, tx *sql.Tx, a *models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO activity (id, group_id, actor_id, type, title, amount_cents, tx_hash, counterparty, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.GroupID, a.ActorID, string(a.Type), a.Title, toCents(a.Amount), a.TxHash, a.Counterparty, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivity returns the group's feed, newest first.
func (s *SQLiteStore) ListActivity(ctx context.Context, groupID string, limit int) ([]models.Activity, error) {
	query := `SELECT id, group_id, actor_id, type, title, amount_cents, tx_hash, counterparty, created_at
		FROM activity WHERE group_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{groupID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var feed []models.Activity
	for rows.Next() {
		var (
			a           models.Activity
			typ         string
			amountCents int64
		)
		if err := rows.Scan(&a.ID, &a.GroupID, &a.ActorID, &typ, &a.Title, &amountCents,
			&a.TxHash, &a.Counterparty, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = models.ActivityType(typ)
		a.Amount = fromCents(amountCents)
		feed = append(feed, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}

	return feed, nil
}
