package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/eleave-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const maxUploadMemory = 10 << 20

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	GetApprovalQueue(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	GetLetter(w http.ResponseWriter, r *http.Request)
	SupervisorDecision(w http.ResponseWriter, r *http.Request)
	OfficerDecision(w http.ResponseWriter, r *http.Request)
	PreviewWorkingDays(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

// CreateRequest implements LeaveHandler.
// Accepts multipart form data ("data" JSON plus optional "attachment") or a plain JSON body.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequestRequest

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}

		dataJSON := r.FormValue("data")
		if dataJSON == "" {
			response.BadRequest(w, "Field 'data' is required", nil)
			return
		}
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("CreateRequest unmarshal error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}

		file, fileHeader, err := r.FormFile("attachment")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			slog.Error("Failed to get file from form", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
		if file != nil {
			defer file.Close()
			req.File = file
			req.FileHeader = fileHeader
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Requester always comes from the token
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	leaveRequest, err := l.leaveService.CreateLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request created successfully", leaveRequest)
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := parseListFilter(r)
	result, err := l.leaveService.ListMyRequests(r.Context(), actor.EmployeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, listMeta(result))
}

// GetApprovalQueue implements LeaveHandler.
func (l *LeaveHandlerImpl) GetApprovalQueue(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requests, err := l.leaveService.ListApprovalQueue(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		response.BadRequest(w, "Leave request ID is required", nil)
		return
	}

	leaveRequest, err := l.leaveService.GetLeaveRequest(r.Context(), requestID, actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leaveRequest)
}

// GetLetter implements LeaveHandler.
func (l *LeaveHandlerImpl) GetLetter(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	requestID := chi.URLParam(r, "id")

	// Render fully before writing so errors can still produce a JSON response
	var buf bytes.Buffer
	if err := l.leaveService.RenderLetter(r.Context(), requestID, actor, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, "application/pdf", "leave-"+requestID+".pdf", buf.Bytes())
}

// SupervisorDecision implements LeaveHandler.
func (l *LeaveHandlerImpl) SupervisorDecision(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDecision(w, r)
	if !ok {
		return
	}

	leaveRequest, err := l.leaveService.DecideAsSupervisor(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Supervisor decision recorded", leaveRequest)
}

// OfficerDecision implements LeaveHandler.
func (l *LeaveHandlerImpl) OfficerDecision(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDecision(w, r)
	if !ok {
		return
	}

	leaveRequest, err := l.leaveService.DecideAsAuthorizedOfficer(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Authorized officer decision recorded", leaveRequest)
}

func decodeDecision(w http.ResponseWriter, r *http.Request) (leave.DecisionRequest, bool) {
	var req leave.DecisionRequest

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return req, false
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Decision decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return req, false
	}

	req.RequestID = chi.URLParam(r, "id")
	req.Actor = actor

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}

	return req, true
}

// PreviewWorkingDays implements LeaveHandler.
func (l *LeaveHandlerImpl) PreviewWorkingDays(w http.ResponseWriter, r *http.Request) {
	q := leave.WorkingDaysQuery{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	result, err := l.leaveService.PreviewWorkingDays(r.Context(), q)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	result, err := l.leaveService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, listMeta(result))
}

func parseListFilter(r *http.Request) leave.ListLeaveRequestFilter {
	var filter leave.ListLeaveRequestFilter
	query := r.URL.Query()

	if status := query.Get("status"); status != "" {
		s := leave.Status(status)
		filter.Status = &s
	}
	if leaveType := query.Get("type"); leaveType != "" {
		t := leave.LeaveType(leaveType)
		filter.LeaveType = &t
	}
	if year := query.Get("leave_year"); year != "" {
		if y, err := strconv.Atoi(year); err == nil {
			filter.LeaveYear = &y
		}
	}
	if page := query.Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := query.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}

	return filter
}

func listMeta(result leave.ListLeaveRequestResponse) *response.Meta {
	return response.NewMeta(result.Page, result.Limit, result.TotalCount)
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}
