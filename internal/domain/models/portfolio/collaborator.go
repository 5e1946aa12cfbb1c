package portfolio

import "time"

// Role is a collaborator's access level on a single portfolio
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Collaborator grants a principal access short of ownership.
// The entry only counts once AcceptedAt is set.
type Collaborator struct {
	UserID     string     `json:"user_id" bson:"user_id"`
	Role       Role       `json:"role" bson:"role"`
	InvitedAt  time.Time  `json:"invited_at" bson:"invited_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
}

// Accepted reports whether the invitation has been accepted
func (c Collaborator) Accepted() bool {
	return c.AcceptedAt != nil
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanEdit reports whether the role grants edit rights
func (r Role) CanEdit() bool {
	switch r {
	case RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanManage reports whether the role may invite or remove collaborators
func (r Role) CanManage() bool {
	return r == RoleAdmin
}
