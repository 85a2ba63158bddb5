package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/cmlabs-hris/intern-attendance/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if claims.Role != user.RoleAdmin {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
