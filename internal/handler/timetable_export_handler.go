package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/acme/timetable-scheduler/internal/dto"
	"github.com/acme/timetable-scheduler/internal/service"
	appErrors "github.com/acme/timetable-scheduler/pkg/errors"
	"github.com/acme/timetable-scheduler/pkg/response"
)

// TimetableExportHandler exposes the download workflow for stored
// timetables: request a CSV/PDF render, then fetch it via the signed URL.
type TimetableExportHandler struct {
	exports *service.TimetableExportService
	files   *service.ExportService
}

// NewTimetableExportHandler constructs the handler.
func NewTimetableExportHandler(exports *service.TimetableExportService, files *service.ExportService) *TimetableExportHandler {
	return &TimetableExportHandler{exports: exports, files: files}
}

// Export godoc
// @Summary Render a stored timetable as CSV or PDF
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Semester schedule ID"
// @Param payload body dto.ExportRequest true "Export format"
// @Success 200 {object} response.Envelope
// @Router /semester-schedules/{id}/export [post]
func (h *TimetableExportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	result, err := h.exports.Export(c.Request.Context(), c.Param("id"), service.ExportFormat(req.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":       result.URL,
		"token":     result.Token,
		"format":    result.Format,
		"expiresAt": result.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a previously rendered timetable export
// @Tags Scheduler
// @Produce application/octet-stream
// @Param token path string true "Signed export token"
// @Success 200 {file} file
// @Router /timetables/export/{token} [get]
func (h *TimetableExportHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.files.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrForbidden.Code, http.StatusForbidden, "export link invalid or expired"))
		return
	}
	file, err := h.files.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close()
	c.FileAttachment(file.Name(), filepath.Base(relPath))
}
