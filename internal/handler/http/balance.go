package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type BalanceHandler interface {
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	GetRemaining(w http.ResponseWriter, r *http.Request)
}

type BalanceHandlerImpl struct {
	balanceService leave.BalanceService
}

// GetMyBalance implements BalanceHandler.
func (b *BalanceHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := b.balanceService.GetBalanceSummary(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// GetRemaining implements BalanceHandler.
// Employees may read their own balance; admins may read anyone's.
func (b *BalanceHandlerImpl) GetRemaining(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "id")
	if !actor.IsAdmin && actor.EmployeeID != employeeID {
		response.HandleError(w, employee.ErrUnauthorized)
		return
	}

	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year < 2000 || year > 9999 {
			response.HandleError(w, validator.ValidationErrors{{
				Field:   "year",
				Message: "year must be a four digit year",
			}})
			return
		}
	}

	remaining, err := b.balanceService.GetRemainingBalance(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, remaining)
}

func NewBalanceHandler(balanceService leave.BalanceService) BalanceHandler {
	return &BalanceHandlerImpl{
		balanceService: balanceService,
	}
}
