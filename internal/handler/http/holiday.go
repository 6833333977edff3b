package http

import (
	"net/http"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/response"
)

type HolidayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type HolidayHandlerImpl struct {
	holidayService holiday.HolidayService
}

// List implements HolidayHandler.
func (h *HolidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := leave.WorkingDaysQuery{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if err := q.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	start, end := q.Period()
	holidays, err := h.holidayService.ListInRange(r.Context(), start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, holidays)
}

func NewHolidayHandler(holidayService holiday.HolidayService) HolidayHandler {
	return &HolidayHandlerImpl{
		holidayService: holidayService,
	}
}
