package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// ActorFromContext builds the acting identity from the verified token claims.
// EmployeeID is empty for accounts that are not linked to an employee.
func ActorFromContext(ctx context.Context) (leave.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil || claims == nil {
		return leave.Actor{}, auth.ErrInvalidToken
	}

	var actor leave.Actor
	actor.EmployeeID, _ = claims["employee_id"].(string)
	actor.IsAdmin, _ = claims["is_admin"].(bool)
	return actor, nil
}

// RequireEmployee rejects tokens whose account has no employee record.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if actor.EmployeeID == "" {
			response.HandleError(w, user.ErrEmployeeIDRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
