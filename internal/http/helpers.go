package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"spendwise/internal/middleware/authn"
)

// ownerID scopes a request to the authenticated user, or the anonymous
// owner "" when there is no token.
func ownerID(r *http.Request) string {
	return authn.UserID(r.Context())
}

func urlID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}
