package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/acme/timetable-scheduler/internal/dto"
	"github.com/acme/timetable-scheduler/internal/models"
	"github.com/acme/timetable-scheduler/internal/scheduler"
)

type scheduleGeneratorMock struct {
	captured dto.GenerateTimetableRequest
	err      error
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) ([]dto.TimetableResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return []dto.TimetableResponse{{ID: "tt-1", DepartmentID: req.DepartmentID, Year: "SE"}}, nil
}

func (m *scheduleGeneratorMock) List(ctx context.Context, query dto.SemesterScheduleQuery) ([]models.SemesterSchedule, error) {
	return nil, nil
}

func (m *scheduleGeneratorMock) GetSlots(ctx context.Context, id string) ([]models.SemesterScheduleSlot, error) {
	return nil, nil
}

func (m *scheduleGeneratorMock) Delete(ctx context.Context, id string) error {
	return nil
}

func TestScheduleGeneratorHandlerGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{}
	handler := &ScheduleGeneratorHandler{service: mockSvc}

	payload := []byte(`{"departmentId":"dept-1","academicYear":"2026-27"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "dept-1", mockSvc.captured.DepartmentID)
}

func TestScheduleGeneratorHandlerGenerateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte("not-json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleGeneratorHandlerGenerateMapsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{err: scheduler.ErrNotFound("department dept-9 not found")}
	handler := &ScheduleGeneratorHandler{service: mockSvc}

	payload := []byte(`{"departmentId":"dept-9","academicYear":"2026-27"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleGeneratorHandlerGenerateMapsAborted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{err: scheduler.ErrAborted()}
	handler := &ScheduleGeneratorHandler{service: mockSvc}

	payload := []byte(`{"departmentId":"dept-1","academicYear":"2026-27"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, 499, w.Code)
}

func TestScheduleGeneratorHandlerGenerateMapsInvalidShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{err: scheduler.ErrInvalidShape("no slot satisfies every constraint for subject sub-1")}
	handler := &ScheduleGeneratorHandler{service: mockSvc}

	payload := []byte(`{"departmentId":"dept-1","academicYear":"2026-27"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestScheduleGeneratorHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}

	req, _ := http.NewRequest(http.MethodDelete, "/semester-schedules/sched-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}

	handler.Delete(c)

	require.Equal(t, http.StatusNoContent, w.Code)
}
