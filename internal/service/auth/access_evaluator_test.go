package auth

import (
	"testing"
	"time"

	"folio/internal/domain/models/portfolio"
)

func testPortfolio(isPublic bool) *portfolio.Portfolio {
	accepted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &portfolio.Portfolio{
		ID:       "p-1",
		OwnerID:  "owner",
		IsPublic: isPublic,
		Collaborators: []portfolio.Collaborator{
			{UserID: "viewer", Role: portfolio.RoleViewer, AcceptedAt: &accepted},
			{UserID: "editor", Role: portfolio.RoleEditor, AcceptedAt: &accepted},
			{UserID: "admin", Role: portfolio.RoleAdmin, AcceptedAt: &accepted},
			{UserID: "pending-editor", Role: portfolio.RoleEditor},
			{UserID: "pending-admin", Role: portfolio.RoleAdmin},
		},
	}
}

func TestCanView(t *testing.T) {
	evaluator := NewAccessEvaluator()

	cases := []struct {
		name      string
		isPublic  bool
		principal string
		allow     bool
	}{
		{name: "owner private", principal: "owner", allow: true},
		{name: "viewer private", principal: "viewer", allow: true},
		{name: "editor private", principal: "editor", allow: true},
		{name: "admin private", principal: "admin", allow: true},
		{name: "pending private", principal: "pending-editor", allow: false},
		{name: "stranger private", principal: "stranger", allow: false},
		{name: "anonymous private", principal: "", allow: false},
		{name: "stranger public", isPublic: true, principal: "stranger", allow: true},
		{name: "anonymous public", isPublic: true, principal: "", allow: true},
		{name: "pending public", isPublic: true, principal: "pending-admin", allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testPortfolio(tc.isPublic)
			if got := evaluator.CanView(doc, tc.principal); got != tc.allow {
				t.Fatalf("CanView(%q) = %v, want %v", tc.principal, got, tc.allow)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	evaluator := NewAccessEvaluator()

	cases := []struct {
		name      string
		isPublic  bool
		principal string
		allow     bool
	}{
		{name: "owner", principal: "owner", allow: true},
		{name: "accepted editor", principal: "editor", allow: true},
		{name: "accepted admin", principal: "admin", allow: true},
		{name: "accepted viewer", principal: "viewer", allow: false},
		{name: "pending editor", principal: "pending-editor", allow: false},
		{name: "stranger", principal: "stranger", allow: false},
		{name: "anonymous", principal: "", allow: false},
		{name: "stranger on public document", isPublic: true, principal: "stranger", allow: false},
		{name: "viewer on public document", isPublic: true, principal: "viewer", allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testPortfolio(tc.isPublic)
			if got := evaluator.CanEdit(doc, tc.principal); got != tc.allow {
				t.Fatalf("CanEdit(%q) = %v, want %v", tc.principal, got, tc.allow)
			}
		})
	}
}

func TestCanDelete_OwnerOnly(t *testing.T) {
	evaluator := NewAccessEvaluator()
	doc := testPortfolio(true)

	for _, principal := range []string{"admin", "editor", "viewer", "stranger", ""} {
		if evaluator.CanDelete(doc, principal) {
			t.Errorf("CanDelete(%q) = true, want false", principal)
		}
	}
	if !evaluator.CanDelete(doc, "owner") {
		t.Error("CanDelete(owner) = false, want true")
	}
}

func TestCanManageCollaborators(t *testing.T) {
	evaluator := NewAccessEvaluator()
	doc := testPortfolio(false)

	want := map[string]bool{
		"owner":         true,
		"admin":         true,
		"editor":        false,
		"viewer":        false,
		"pending-admin": false,
		"stranger":      false,
	}
	for principal, allow := range want {
		if got := evaluator.CanManageCollaborators(doc, principal); got != allow {
			t.Errorf("CanManageCollaborators(%q) = %v, want %v", principal, got, allow)
		}
	}
}

func TestIsOwner_EmptyPrincipal(t *testing.T) {
	evaluator := NewAccessEvaluator()
	doc := &portfolio.Portfolio{ID: "p-2"}

	// A document with no owner must not match the anonymous principal
	if evaluator.IsOwner(doc, "") {
		t.Fatal("IsOwner matched an empty principal")
	}
	if evaluator.CanView(nil, "owner") {
		t.Fatal("CanView(nil) = true")
	}
}
