package services

import "folio/internal/domain/models/portfolio"

// AccessEvaluator decides what a principal may do with a portfolio.
// Implementations are pure: no I/O, no side effects.
// An empty principal means an anonymous caller.
//
// Design principle: services call the evaluator before operating on a document.
// This separates authorization (who can access) from identification (which document).
type AccessEvaluator interface {
	// IsOwner reports whether principal owns the portfolio
	IsOwner(p *portfolio.Portfolio, principal string) bool

	// CanView reports whether principal may read the portfolio
	CanView(p *portfolio.Portfolio, principal string) bool

	// CanEdit reports whether principal may modify the portfolio
	CanEdit(p *portfolio.Portfolio, principal string) bool

	// CanDelete reports whether principal may delete the portfolio (owner only)
	CanDelete(p *portfolio.Portfolio, principal string) bool

	// CanManageCollaborators reports whether principal may invite or remove collaborators
	CanManageCollaborators(p *portfolio.Portfolio, principal string) bool
}
