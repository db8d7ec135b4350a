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

// CreateGroup persists a new group with its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate ID if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	group.UpdatedAt = group.CreatedAt

	if !group.HasMember(group.CreatedBy) {
		group.Members = append([]models.Member{{UserID: group.CreatedBy, Role: models.RoleOwner}}, group.Members...)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, description, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i := range group.Members {
		m := &group.Members[i]
		if m.Role == "" {
			m.Role = models.RoleMember
		}
		if m.UserID == group.CreatedBy {
			m.Role = models.RoleOwner
		}
		m.JoinedAt = group.CreatedAt
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
			group.ID, m.UserID, string(m.Role), m.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := insertActivity(ctx, tx, &models.Activity{
		GroupID:   group.ID,
		ActorID:   group.CreatedBy,
		Type:      models.ActivityGroupCreated,
		Title:     group.Name,
		CreatedAt: group.CreatedAt,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at, updated_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %s", storage.ErrNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.Members, err = s.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return group, nil
}

// ListGroupsForUser retrieves the groups a user belongs to, most recently
// active first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.updated_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		if group.Members, err = s.ListGroupMembers(ctx, group.ID); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// ListGroupMembers returns a group's members with their display names,
// in join order.
func (s *SQLiteStore) ListGroupMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.user_id, u.display_name, m.role, m.joined_at
		 FROM group_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ?
		 ORDER BY m.joined_at, u.display_name`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var role string
		if err := rows.Scan(&m.UserID, &m.DisplayName, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return members, nil
}

// AddGroupMember adds a user to a group.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string, role models.Role) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID,
	).Scan(&exists)
	if err == nil {
		return storage.ErrAlreadyMember
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check membership: %w", err)
	}

	if role == "" {
		role = models.RoleMember
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		groupID, userID, string(role), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}

// RemoveGroupMember removes a user from a group. Their expenses and splits
// are kept; their balance shows up under the "Unknown" name afterwards.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: member %s of group %s", storage.ErrNotFound, userID, groupID)
	}
	return nil
}
