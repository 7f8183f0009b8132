package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acme/timetable-scheduler/internal/dto"
	"github.com/acme/timetable-scheduler/internal/service"
	appErrors "github.com/acme/timetable-scheduler/pkg/errors"
	"github.com/acme/timetable-scheduler/pkg/response"
)

// ScheduleGeneratorAsyncHandler exposes the background-queue variant of
// timetable generation: same payload and persistence path as
// ScheduleGeneratorHandler.Generate, but returns immediately with a job id.
type ScheduleGeneratorAsyncHandler struct {
	async *service.AsyncScheduleGenerator
}

// NewScheduleGeneratorAsyncHandler constructs the handler.
func NewScheduleGeneratorAsyncHandler(async *service.AsyncScheduleGenerator) *ScheduleGeneratorAsyncHandler {
	return &ScheduleGeneratorAsyncHandler{async: async}
}

// GenerateAsync godoc
// @Summary Queue timetable generation for a department/academic year
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 202 {object} response.Envelope
// @Router /semester-schedules/generate-async [post]
func (h *ScheduleGeneratorAsyncHandler) GenerateAsync(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	jobID, err := h.async.Enqueue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue generation job"))
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"jobId": jobID}, nil)
}
