package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hrforge/advance-engine/internal/domain"
	"github.com/hrforge/advance-engine/internal/service"
	customError "github.com/hrforge/advance-engine/pkg/errors"
	"github.com/hrforge/advance-engine/pkg/response"
)

const tenantHeader = "X-Tenant-ID"

type AdvanceHandler struct {
	service   *service.AdvanceService
	validator *validator.Validate
}

func NewAdvanceHandler(service *service.AdvanceService) *AdvanceHandler {
	return &AdvanceHandler{
		service:   service,
		validator: validator.New(),
	}
}

type advanceWithInstallments struct {
	Advance      *domain.SalaryAdvance          `json:"advance"`
	Installments []*domain.RepaymentInstallment `json:"installments,omitempty"`
}

func (h *AdvanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var request domain.CreateAdvanceRequest
	if !h.decode(w, r, &request) {
		return
	}

	advance, result, err := h.service.Create(r.Context(), tenantID, &request)
	if err != nil {
		h.writeError(w, err, result)
		return
	}

	response.Created(w, advanceWithInstallments{Advance: advance})
}

func (h *AdvanceHandler) Validate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var request domain.ValidateAdvanceRequest
	if !h.decode(w, r, &request) {
		return
	}

	result, err := h.service.ValidateOnly(r.Context(), tenantID, &request)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, result)
}

func (h *AdvanceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	advanceID, ok := h.advanceID(w, r)
	if !ok {
		return
	}

	var request domain.ApproveAdvanceRequest
	if !h.decode(w, r, &request) {
		return
	}

	advance, err := h.service.Approve(r.Context(), tenantID, advanceID, &request)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, advanceWithInstallments{Advance: advance})
}

func (h *AdvanceHandler) Reject(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	advanceID, ok := h.advanceID(w, r)
	if !ok {
		return
	}

	var request domain.RejectAdvanceRequest
	if !h.decode(w, r, &request) {
		return
	}

	advance, err := h.service.Reject(r.Context(), tenantID, advanceID, &request)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, advanceWithInstallments{Advance: advance})
}

func (h *AdvanceHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	advanceID, ok := h.advanceID(w, r)
	if !ok {
		return
	}

	var request domain.DisburseAdvanceRequest
	if !h.decode(w, r, &request) {
		return
	}

	advance, installments, err := h.service.Disburse(r.Context(), tenantID, advanceID, &request)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, advanceWithInstallments{Advance: advance, Installments: installments})
}

func (h *AdvanceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	advanceID, ok := h.advanceID(w, r)
	if !ok {
		return
	}

	advance, err := h.service.Cancel(r.Context(), tenantID, advanceID)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, advanceWithInstallments{Advance: advance})
}

func (h *AdvanceHandler) ProcessInstallment(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	advanceID, ok := h.advanceID(w, r)
	if !ok {
		return
	}

	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil || number < 1 {
		response.BadRequest(w, "Invalid installment number", err)
		return
	}

	var request domain.ProcessInstallmentRequest
	if !h.decode(w, r, &request) {
		return
	}

	installment, err := h.service.ProcessInstallment(r.Context(), tenantID, advanceID, number, &request)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, installment)
}

func (h *AdvanceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	advanceID, ok := h.advanceID(w, r)
	if !ok {
		return
	}

	advance, installments, err := h.service.GetByID(r.Context(), tenantID, advanceID)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, advanceWithInstallments{Advance: advance, Installments: installments})
}

func (h *AdvanceHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		response.BadRequest(w, "Invalid list filter", err)
		return
	}

	advances, err := h.service.List(r.Context(), tenantID, filter)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, advances)
}

func (h *AdvanceHandler) GetMaxAllowed(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	employeeID, err := uuid.Parse(mux.Vars(r)["employeeId"])
	if err != nil {
		response.BadRequest(w, "Invalid employee ID", err)
		return
	}

	max, err := h.service.GetMaxAllowed(r.Context(), tenantID, employeeID)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, map[string]interface{}{
		"employee_id":        employeeID,
		"max_allowed_amount": max,
	})
}

func (h *AdvanceHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStatistics(r.Context(), tenantID)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}

	response.Success(w, stats)
}

func (h *AdvanceHandler) tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := r.Header.Get(tenantHeader)
	if tenantID == "" {
		response.BadRequest(w, "Missing "+tenantHeader+" header", nil)
		return "", false
	}
	return tenantID, true
}

func (h *AdvanceHandler) advanceID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["advanceId"])
	if err != nil {
		response.BadRequest(w, "Invalid advance ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdvanceHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "Request validation failed", err)
		return false
	}
	return true
}

// writeError maps the operation-error family onto HTTP statuses. A blocked
// validation result travels in the response details so the caller can render
// every violated rule.
func (h *AdvanceHandler) writeError(w http.ResponseWriter, err error, result *domain.ValidationResult) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	switch businessErr.Code {
	case customError.ErrCodeAdvanceNotFound, customError.ErrCodeInstallmentNotFound:
		response.NotFound(w, businessErr.Message)
	case customError.ErrCodeValidationFailed:
		response.UnprocessableEntity(w, businessErr.Message, businessErr.Err, result)
	case customError.ErrCodeInvalidStatusTransition,
		customError.ErrCodeCannotCancel,
		customError.ErrCodeInstallmentNotPending,
		customError.ErrCodeStaleState:
		response.Conflict(w, businessErr.Message, businessErr.Err)
	case customError.ErrCodeAmountExceedsRequested, customError.ErrCodeMissingRejectionReason:
		response.BadRequest(w, businessErr.Message, businessErr.Err)
	default:
		response.InternalServerError(w, businessErr.Message, businessErr.Err)
	}
}

func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	var filter domain.ListFilter
	q := r.URL.Query()

	if v := q.Get("employee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, err
		}
		filter.EmployeeID = &id
	}
	filter.Status = q.Get("status")
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Offset = n
	}

	return filter, nil
}
