package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckOut(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Correct(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckOut implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req attendance.RecordCheckOutRequest
	if !decode(w, r, "CheckOut", &req) {
		return
	}
	req.EmployeeID = subject(id, req.EmployeeID)

	resp, err := h.attendanceService.RecordCheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance recorded successfully", resp)
}

// Get implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	resp, err := h.attendanceService.GetAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !canRead(id, resp.EmployeeID) {
		response.Forbidden(w, "Not allowed to view this attendance record")
		return
	}

	response.Success(w, resp)
}

// Correct implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req attendance.CorrectBatchRequest
	if !decode(w, r, "Correct", &req) {
		return
	}
	req.ActorID = &id.UserID

	summary, err := h.attendanceService.CorrectBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// Recalculate implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.attendanceService.RecalculateAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}
