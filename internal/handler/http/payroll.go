package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Settings
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
	GetStatutoryConfig(w http.ResponseWriter, r *http.Request)
	UpdateStatutoryConfig(w http.ResponseWriter, r *http.Request)

	// Batch
	RunPayroll(w http.ResponseWriter, r *http.Request)
	GetPayroll(w http.ResponseWriter, r *http.Request)
	GetPeriodSummary(w http.ResponseWriter, r *http.Request)

	// Lifecycle
	ApprovePayroll(w http.ResponseWriter, r *http.Request)
	UnlockPayroll(w http.ResponseWriter, r *http.Request)
	DisbursePayroll(w http.ResponseWriter, r *http.Request)

	// Export
	ExportPayslip(w http.ResponseWriter, r *http.Request)
	ExportRegister(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// companyClaims returns the caller's company and user IDs, writing the error response itself.
func companyClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return auth.Claims{}, false
	}
	if claims.CompanyID == "" {
		response.HandleError(w, auth.ErrCompanyIDRequired)
		return auth.Claims{}, false
	}
	return claims, true
}

// periodFromQuery reads ?month=&year=. Bad numbers become 0 and fail validation downstream.
func periodFromQuery(r *http.Request) payroll.PeriodRequest {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	return payroll.PeriodRequest{PeriodMonth: month, PeriodYear: year}
}

// ========== SETTINGS ==========

func (h *payrollHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetSettings(r.Context(), claims.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	var req payroll.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.UpdateSettings(r.Context(), claims.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll settings updated", result)
}

func (h *payrollHandlerImpl) GetStatutoryConfig(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetStatutoryConfig(r.Context(), claims.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) UpdateStatutoryConfig(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	var req statutory.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.UpdateStatutoryConfig(r.Context(), claims.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Statutory config updated", result)
}

// ========== BATCH ==========

func (h *payrollHandlerImpl) RunPayroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	var req payroll.RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.RunPayroll(r.Context(), claims.CompanyID, claims.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, fmt.Sprintf("Payroll processed for %d employees", result.Count), result)
}

func (h *payrollHandlerImpl) GetPayroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetPayroll(r.Context(), claims.CompanyID, periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetPeriodSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.GetPeriodSummary(r.Context(), claims.CompanyID, periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== LIFECYCLE ==========

func (h *payrollHandlerImpl) ApprovePayroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	var req payroll.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ApprovePayroll(r.Context(), claims.CompanyID, claims.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

func (h *payrollHandlerImpl) UnlockPayroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	var req payroll.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.UnlockPayroll(r.Context(), claims.CompanyID, claims.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

func (h *payrollHandlerImpl) DisbursePayroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	var req payroll.DisburseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.DisbursePayroll(r.Context(), claims.CompanyID, claims.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// ========== EXPORT ==========

func (h *payrollHandlerImpl) ExportPayslip(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payroll record ID is required", nil)
		return
	}

	file, err := h.payrollService.ExportPayslip(r.Context(), claims.CompanyID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}

func (h *payrollHandlerImpl) ExportRegister(w http.ResponseWriter, r *http.Request) {
	claims, ok := companyClaims(w, r)
	if !ok {
		return
	}

	file, err := h.payrollService.ExportRegister(r.Context(), claims.CompanyID, periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}
