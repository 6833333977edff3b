package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/response"
)

// AdminOnly guards the balance maintenance and request oversight routes.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !actor.IsAdmin {
			slog.Debug("admin route denied", "employee_id", actor.EmployeeID, "path", r.URL.Path)
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
