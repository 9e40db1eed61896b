package auth

import (
	"net/http"
	"strings"

	"github.com/gulali-id/backend-gulali/internal/common"
)

// Middleware guards the admin routes.
type Middleware struct {
	Guard *Guard
}

// RequireStaff enforces a valid staff bearer token before executing the next
// handler and attaches the staff identifier to the request context.
func (m Middleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || m.Guard == nil {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		staffID, err := m.Guard.ParseStaffToken(token)
		if err != nil {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithStaffID(r.Context(), staffID)))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
