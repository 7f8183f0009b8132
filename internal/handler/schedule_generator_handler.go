package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acme/timetable-scheduler/internal/dto"
	"github.com/acme/timetable-scheduler/internal/models"
	"github.com/acme/timetable-scheduler/internal/scheduler"
	"github.com/acme/timetable-scheduler/internal/service"
	appErrors "github.com/acme/timetable-scheduler/pkg/errors"
	"github.com/acme/timetable-scheduler/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) ([]dto.TimetableResponse, error)
	List(ctx context.Context, query dto.SemesterScheduleQuery) ([]models.SemesterSchedule, error)
	GetSlots(ctx context.Context, id string) ([]models.SemesterScheduleSlot, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleGeneratorHandler exposes the timetable generator endpoints.
type ScheduleGeneratorHandler struct {
	service scheduleGenerator
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc *service.ScheduleGeneratorService) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc}
}

// Generate godoc
// @Summary Generate and persist SE/TE/BE timetables for a department
// @Description Runs the constraint-based scheduler for one department and academic year, returning one timetable per year.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, mapSchedulerError(err))
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List stored timetable versions for a department/academic year/year
// @Tags Scheduler
// @Produce json
// @Param departmentId query string true "Department ID"
// @Param academicYear query string true "Academic year label"
// @Param year query string true "SE, TE or BE"
// @Success 200 {object} response.Envelope
// @Router /semester-schedules [get]
func (h *ScheduleGeneratorHandler) List(c *gin.Context) {
	query := dto.SemesterScheduleQuery{
		DepartmentID: c.Query("departmentId"),
		AcademicYear: c.Query("academicYear"),
		Year:         c.Query("year"),
	}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Slots godoc
// @Summary Get placed cells for a stored timetable version
// @Tags Scheduler
// @Produce json
// @Param id path string true "Semester schedule ID"
// @Success 200 {object} response.Envelope
// @Router /semester-schedules/{id}/slots [get]
func (h *ScheduleGeneratorHandler) Slots(c *gin.Context) {
	slots, err := h.service.GetSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Delete godoc
// @Summary Delete a draft timetable version
// @Tags Scheduler
// @Param id path string true "Semester schedule ID"
// @Success 204
// @Router /semester-schedules/{id} [delete]
func (h *ScheduleGeneratorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// mapSchedulerError translates a *scheduler.Error's Kind into the HTTP
// status the rest of the API already speaks through appErrors, so the
// generator's failures render through the same {"error": {...}} envelope
// as every other endpoint.
func mapSchedulerError(err error) error {
	var schedErr *scheduler.Error
	if !errors.As(err, &schedErr) {
		return err
	}
	switch schedErr.Kind {
	case scheduler.KindNotFound:
		return appErrors.Wrap(schedErr, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, schedErr.Message)
	case scheduler.KindEmptyInput, scheduler.KindInvalidInput:
		return appErrors.Wrap(schedErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, schedErr.Message)
	case scheduler.KindInvalidShape:
		return appErrors.Wrap(schedErr, appErrors.ErrUnschedulable.Code, appErrors.ErrUnschedulable.Status, schedErr.Message)
	case scheduler.KindAborted:
		return appErrors.Wrap(schedErr, appErrors.ErrAborted.Code, appErrors.ErrAborted.Status, schedErr.Message)
	default:
		return appErrors.Wrap(schedErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, schedErr.Message)
	}
}
