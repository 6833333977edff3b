package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AdminHandler interface {
	OverwriteBalance(w http.ResponseWriter, r *http.Request)
	RunCorrectiveUpdate(w http.ResponseWriter, r *http.Request)
	RunYearStartRollover(w http.ResponseWriter, r *http.Request)
}

type AdminHandlerImpl struct {
	maintenanceService leave.MaintenanceService
}

// OverwriteBalance implements AdminHandler.
func (a *AdminHandlerImpl) OverwriteBalance(w http.ResponseWriter, r *http.Request) {
	var req leave.OverwriteBalanceRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("OverwriteBalance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := a.maintenanceService.OverwriteBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance updated", summary)
}

// RunCorrectiveUpdate implements AdminHandler.
func (a *AdminHandlerImpl) RunCorrectiveUpdate(w http.ResponseWriter, r *http.Request) {
	summary, err := a.maintenanceService.RunCorrectiveBalanceUpdate(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Corrective balance update finished", summary)
}

// RunYearStartRollover implements AdminHandler.
// The body is optional; an empty body rolls over into the current year.
func (a *AdminHandlerImpl) RunYearStartRollover(w http.ResponseWriter, r *http.Request) {
	var req leave.RolloverRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("RunYearStartRollover decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := a.maintenanceService.RunYearStartRollover(r.Context(), req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Year-start rollover finished", summary)
}

func NewAdminHandler(maintenanceService leave.MaintenanceService) AdminHandler {
	return &AdminHandlerImpl{
		maintenanceService: maintenanceService,
	}
}
