package models

// Role is a member's role within a group.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Group represents a set of people who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the group's creator (first owner).
	CreatedBy string

	// Members is populated by reads that join group_members.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is bumped whenever an expense is added.
	UpdatedAt int64
}

// Member is one user's membership in a group.
type Member struct {
	UserID      string
	DisplayName string
	Role        Role
	JoinedAt    int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
