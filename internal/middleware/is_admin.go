package middleware

import (
	"net/http"

	"scrimworks/quartermaster/internal/auth"
)

// IsAdminMiddleware rejects requests whose claims do not carry the admin
// role. Must run after AuthMiddleware.
func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil || !claims.IsAdmin() {
				http.Error(w, "Unauthorized. Admin role required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
