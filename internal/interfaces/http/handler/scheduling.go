package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/application/scheduling"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/middleware"
)

// SchedulingService is the part of scheduling.SchedulingService the handler needs
type SchedulingService interface {
	ListAppointments(ctx context.Context, scope shared.Scope, q scheduling.ListAppointmentsQuery) ([]scheduling.AppointmentResponse, error)
	ListApproved(ctx context.Context, scope shared.Scope, branchID string) ([]scheduling.AppointmentResponse, error)
	ListPending(ctx context.Context, scope shared.Scope, branchID string) ([]scheduling.AppointmentResponse, error)
	CreateAppointment(ctx context.Context, scope shared.Scope, req scheduling.CreateAppointmentRequest) (*scheduling.AppointmentResponse, error)
	UpdateAppointmentStatus(ctx context.Context, scope shared.Scope, appointmentID string, req scheduling.UpdateAppointmentStatusRequest) (*scheduling.AppointmentResponse, error)
	ListUnavailability(ctx context.Context, scope shared.Scope, branchID string) ([]scheduling.UnavailabilityResponse, error)
	CreateUnavailability(ctx context.Context, scope shared.Scope, req scheduling.CreateUnavailabilityRequest) (*scheduling.CreateUnavailabilityResponse, error)
	DeleteUnavailability(ctx context.Context, scope shared.Scope, unavailabilityID string) error
}

// SchedulingHandler handles appointments and branch unavailability
type SchedulingHandler struct {
	BaseHandler
	schedulingService SchedulingService
}

// NewSchedulingHandler creates a new SchedulingHandler
func NewSchedulingHandler(schedulingService SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{schedulingService: schedulingService}
}

// ListAppointments godoc
// @ID           listAppointments
// @Summary      List appointments
// @Tags         appointments
// @Produce      json
// @Param        status query string false "Pending, Approved or Cancelled"
// @Param        branch_id query string false "Branch filter"
// @Param        date query string false "Day (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]scheduling.AppointmentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /appointments [get]
func (h *SchedulingHandler) ListAppointments(c *gin.Context) {
	var q scheduling.ListAppointmentsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	appts, err := h.schedulingService.ListAppointments(c.Request.Context(), middleware.GetScope(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, appts)
}

// ListApproved godoc
// @ID           listApprovedAppointments
// @Summary      Approved appointments
// @Tags         appointments
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]scheduling.AppointmentResponse]
// @Security     BearerAuth
// @Router       /appointments/approved [get]
func (h *SchedulingHandler) ListApproved(c *gin.Context) {
	appts, err := h.schedulingService.ListApproved(c.Request.Context(), middleware.GetScope(c), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, appts)
}

// ListPending godoc
// @ID           listPendingAppointments
// @Summary      Pending appointments
// @Tags         appointments
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]scheduling.AppointmentResponse]
// @Security     BearerAuth
// @Router       /appointments/pending [get]
func (h *SchedulingHandler) ListPending(c *gin.Context) {
	appts, err := h.schedulingService.ListPending(c.Request.Context(), middleware.GetScope(c), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, appts)
}

// CreateAppointment godoc
// @ID           createAppointment
// @Summary      Book an appointment
// @Description  Starts Pending; slots inside a branch unavailability are refused
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        request body scheduling.CreateAppointmentRequest true "Appointment"
// @Success      201 {object} APIResponse[scheduling.AppointmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /appointments [post]
func (h *SchedulingHandler) CreateAppointment(c *gin.Context) {
	var req scheduling.CreateAppointmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	appt, err := h.schedulingService.CreateAppointment(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appt)
}

// UpdateAppointmentStatus godoc
// @ID           updateAppointmentStatus
// @Summary      Approve or cancel an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        id path string true "Appointment ID"
// @Param        request body scheduling.UpdateAppointmentStatusRequest true "New status"
// @Success      200 {object} APIResponse[scheduling.AppointmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /appointments/{id}/status [patch]
func (h *SchedulingHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req scheduling.UpdateAppointmentStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	appt, err := h.schedulingService.UpdateAppointmentStatus(c.Request.Context(), middleware.GetScope(c), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appt)
}

// ListUnavailability godoc
// @ID           listUnavailability
// @Summary      List unavailability
// @Tags         unavailability
// @Produce      json
// @Param        branch_id query string false "Branch filter"
// @Success      200 {object} APIResponse[[]scheduling.UnavailabilityResponse]
// @Security     BearerAuth
// @Router       /unavailability [get]
func (h *SchedulingHandler) ListUnavailability(c *gin.Context) {
	list, err := h.schedulingService.ListUnavailability(c.Request.Context(), middleware.GetScope(c), c.Query("branch_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessList(&h.BaseHandler, c, list)
}

// CreateUnavailability godoc
// @ID           createUnavailability
// @Summary      Block a branch
// @Description  Persists the unavailability and cancels the approved appointments it overlaps
// @Tags         unavailability
// @Accept       json
// @Produce      json
// @Param        request body scheduling.CreateUnavailabilityRequest true "Unavailability"
// @Success      201 {object} APIResponse[scheduling.CreateUnavailabilityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /unavailability [post]
func (h *SchedulingHandler) CreateUnavailability(c *gin.Context) {
	var req scheduling.CreateUnavailabilityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.schedulingService.CreateUnavailability(c.Request.Context(), middleware.GetScope(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// DeleteUnavailability godoc
// @ID           deleteUnavailability
// @Summary      Remove an unavailability
// @Description  Appointments it already cancelled stay cancelled
// @Tags         unavailability
// @Param        id path string true "Unavailability ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /unavailability/{id} [delete]
func (h *SchedulingHandler) DeleteUnavailability(c *gin.Context) {
	if err := h.schedulingService.DeleteUnavailability(c.Request.Context(), middleware.GetScope(c), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
