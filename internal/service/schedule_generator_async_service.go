package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acme/timetable-scheduler/internal/dto"
	"github.com/acme/timetable-scheduler/pkg/jobs"
)

// JobTypeGenerateTimetable tags queued timetable generation jobs.
const JobTypeGenerateTimetable = "generate_timetable"

// AsyncScheduleGenerator queues Generate calls onto a worker pool instead of
// running the solver inline. It runs the exact same
// ScheduleGeneratorService.Generate path the synchronous endpoint uses, so
// the two can never drift in behaviour.
type AsyncScheduleGenerator struct {
	generator *ScheduleGeneratorService
	queue     *jobs.Queue
	logger    *zap.Logger
}

// NewAsyncScheduleGenerator wires the async generation path.
func NewAsyncScheduleGenerator(generator *ScheduleGeneratorService, queue *jobs.Queue, logger *zap.Logger) *AsyncScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncScheduleGenerator{generator: generator, queue: queue, logger: logger}
}

// Enqueue schedules a generation run and returns immediately with a job id.
func (a *AsyncScheduleGenerator) Enqueue(ctx context.Context, req dto.GenerateTimetableRequest) (string, error) {
	jobID := uuid.NewString()
	if err := a.queue.Enqueue(jobs.Job{ID: jobID, Type: JobTypeGenerateTimetable, Payload: req}); err != nil {
		return "", err
	}
	return jobID, nil
}

// Handle is the jobs.Handler a queue worker invokes for a queued job.
func (a *AsyncScheduleGenerator) Handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		a.logger.Sugar().Errorw("generate job carried an unexpected payload type", "job_id", job.ID)
		return nil
	}
	if _, err := a.generator.Generate(ctx, req); err != nil {
		a.logger.Sugar().Errorw("async timetable generation failed", "job_id", job.ID, "department_id", req.DepartmentID, "error", err)
		return err
	}
	return nil
}
