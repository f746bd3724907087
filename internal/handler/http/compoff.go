package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type CompOffHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	Earn(w http.ResponseWriter, r *http.Request)
	ExpireBucket(w http.ResponseWriter, r *http.Request)
	Sweep(w http.ResponseWriter, r *http.Request)
	ResolveHalt(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ReviewRequest(w http.ResponseWriter, r *http.Request)
}

type CompOffHandlerImpl struct {
	compOffService compoff.CompOffService
}

func NewCompOffHandler(compOffService compoff.CompOffService) CompOffHandler {
	return &CompOffHandlerImpl{compOffService: compOffService}
}

// GetBalance implements CompOffHandler.
func (h *CompOffHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if !canRead(id, employeeID) {
		response.Forbidden(w, "Not allowed to view this balance")
		return
	}

	resp, err := h.compOffService.GetBalance(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// GetHistory implements CompOffHandler.
func (h *CompOffHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if !canRead(id, employeeID) {
		response.Forbidden(w, "Not allowed to view this history")
		return
	}

	resp, err := h.compOffService.GetHistory(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Earn implements CompOffHandler.
func (h *CompOffHandlerImpl) Earn(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req compoff.EarnRequest
	if !decode(w, r, "Earn", &req) {
		return
	}
	req.ActorID = &id.UserID

	resp, err := h.compOffService.Earn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Comp-off days credited", resp)
}

// ExpireBucket implements CompOffHandler.
func (h *CompOffHandlerImpl) ExpireBucket(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req compoff.ExpireBucketRequest
	if !decode(w, r, "ExpireBucket", &req) {
		return
	}
	req.ActorID = &id.UserID

	resp, err := h.compOffService.ExpireBucket(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Sweep implements CompOffHandler. ?as_of=YYYY-MM-DD defaults to now.
func (h *CompOffHandlerImpl) Sweep(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if s := r.URL.Query().Get("as_of"); s != "" {
		t, ok := validator.IsValidDate(s)
		if !ok {
			response.HandleError(w, validator.ValidationErrors{{
				Field:   "as_of",
				Message: "as_of must be in YYYY-MM-DD format",
			}})
			return
		}
		asOf = t
	}

	summary, err := h.compOffService.ExpireDue(r.Context(), asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}

// ResolveHalt implements CompOffHandler.
func (h *CompOffHandlerImpl) ResolveHalt(w http.ResponseWriter, r *http.Request) {
	resp, err := h.compOffService.ResolveHalt(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Comp-off ledger resumed", resp)
}

// CreateRequest implements CompOffHandler.
func (h *CompOffHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req compoff.SubmitRequestRequest
	if !decode(w, r, "CreateCompOffRequest", &req) {
		return
	}
	req.EmployeeID = subject(id, req.EmployeeID)

	resp, err := h.compOffService.SubmitRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Comp-off request submitted successfully", resp)
}

// GetRequest implements CompOffHandler.
func (h *CompOffHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	resp, err := h.compOffService.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !canRead(id, resp.EmployeeID) {
		response.Forbidden(w, "Not allowed to view this comp-off request")
		return
	}

	response.Success(w, resp)
}

// ReviewRequest implements CompOffHandler.
func (h *CompOffHandlerImpl) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req compoff.ReviewRequestRequest
	if !decode(w, r, "ReviewCompOffRequest", &req) {
		return
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ManagerID = id.UserID

	resp, err := h.compOffService.ReviewRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Comp-off request "+string(resp.Status), resp)
}
