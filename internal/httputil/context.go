package httputil

import (
	"net/http"

	"chaincatalog/internal/auth"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), userID))
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := auth.UserIDFromContext(r.Context())
	return userID
}
