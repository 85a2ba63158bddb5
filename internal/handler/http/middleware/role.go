package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/handler/http/response"
)

// RequireRole admits only the listed roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' is not allowed here", claims.Role), nil)
		})
	}
}
