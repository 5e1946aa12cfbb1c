package httputil

import (
	"context"
	"net/http"
)

// userIDKey is unexported so only this package can set the principal
type userIDKey struct{}

// WithUserID returns a copy of r carrying the authenticated user ID
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID))
}

// GetUserID returns the authenticated user ID, or "" for anonymous requests
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey{}).(string)
	return userID
}
