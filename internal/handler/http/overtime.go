package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type OvertimeHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ReviewRequest(w http.ResponseWriter, r *http.Request)
	Approved(w http.ResponseWriter, r *http.Request)
}

type OvertimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &OvertimeHandlerImpl{overtimeService: overtimeService}
}

// CreateRequest implements OvertimeHandler.
func (h *OvertimeHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req overtime.SubmitOvertimeRequest
	if !decode(w, r, "CreateOvertimeRequest", &req) {
		return
	}
	req.EmployeeID = subject(id, req.EmployeeID)

	resp, err := h.overtimeService.SubmitOvertimeRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime request submitted successfully", resp)
}

// GetRequest implements OvertimeHandler.
func (h *OvertimeHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	resp, err := h.overtimeService.GetOvertimeRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !canRead(id, resp.EmployeeID) {
		response.Forbidden(w, "Not allowed to view this overtime request")
		return
	}

	response.Success(w, resp)
}

// ReviewRequest implements OvertimeHandler.
func (h *OvertimeHandlerImpl) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req overtime.ReviewOvertimeRequest
	if !decode(w, r, "ReviewOvertimeRequest", &req) {
		return
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ManagerID = id.UserID

	resp, err := h.overtimeService.ReviewOvertimeRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime request "+string(resp.Request.Status), resp)
}

// Approved implements OvertimeHandler. It answers with the approved overtime
// hours for ?employee_id=&date=.
func (h *OvertimeHandlerImpl) Approved(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	employeeID := subject(id, r.URL.Query().Get("employee_id"))
	dateStr := r.URL.Query().Get("date")
	date, valid := validator.IsValidDate(dateStr)
	if !valid {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}})
		return
	}

	hours, err := h.overtimeService.AuthoritativeOvertime(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]any{
		"employee_id":    employeeID,
		"date":           dateStr,
		"approved_hours": hours,
	})
}
