package auth

import (
	"folio/internal/domain/models/portfolio"
	"folio/internal/domain/services"
)

// CollaboratorAccessEvaluator implements AccessEvaluator using ownership,
// accepted collaborator roles and the public flag.
//
// Pending invitations (AcceptedAt unset) grant nothing beyond public visibility.
// Public visibility never grants edit rights.
type CollaboratorAccessEvaluator struct{}

// NewAccessEvaluator creates a new collaborator-aware access evaluator
func NewAccessEvaluator() services.AccessEvaluator {
	return CollaboratorAccessEvaluator{}
}

// IsOwner checks if principal owns the portfolio
func (CollaboratorAccessEvaluator) IsOwner(p *portfolio.Portfolio, principal string) bool {
	return p != nil && principal != "" && p.OwnerID == principal
}

// CanView checks public flag, then ownership, then accepted collaborators of any role
func (e CollaboratorAccessEvaluator) CanView(p *portfolio.Portfolio, principal string) bool {
	if p == nil {
		return false
	}
	if p.IsPublic {
		return true
	}
	if principal == "" {
		return false
	}
	if e.IsOwner(p, principal) {
		return true
	}
	_, ok := acceptedRole(p, principal)
	return ok
}

// CanEdit checks ownership, then accepted editor/admin collaborators
func (e CollaboratorAccessEvaluator) CanEdit(p *portfolio.Portfolio, principal string) bool {
	if e.IsOwner(p, principal) {
		return true
	}
	role, ok := acceptedRole(p, principal)
	return ok && role.CanEdit()
}

// CanDelete is strictly owner-only; admins may edit but not delete
func (e CollaboratorAccessEvaluator) CanDelete(p *portfolio.Portfolio, principal string) bool {
	return e.IsOwner(p, principal)
}

// CanManageCollaborators allows the owner and accepted admins
func (e CollaboratorAccessEvaluator) CanManageCollaborators(p *portfolio.Portfolio, principal string) bool {
	if e.IsOwner(p, principal) {
		return true
	}
	role, ok := acceptedRole(p, principal)
	return ok && role.CanManage()
}

// acceptedRole returns the role of an accepted collaborator entry for principal
func acceptedRole(p *portfolio.Portfolio, principal string) (portfolio.Role, bool) {
	if p == nil || principal == "" {
		return "", false
	}
	collab := p.FindCollaborator(principal)
	if collab == nil || !collab.Accepted() {
		return "", false
	}
	return collab.Role, true
}
