// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clipforge/internal/service"
	"clipforge/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleVideoProcessTask runs the full pipeline for one queued video.
func (h *TaskHandlers) HandleVideoProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload VideoProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing video task",
		zap.String("task_id", payload.TaskID),
		zap.String("source", payload.SourcePath))

	err := h.service.ProcessVideo(ctx, service.ProcessVideoReq{
		TaskId:         payload.TaskID,
		SourcePath:     payload.SourcePath,
		Language:       payload.Language,
		Constraints:    payload.Constraints,
		CaptionOptions: payload.CaptionOptions,
	})
	if err != nil {
		// ProcessVideo already marked the task record failed; returning the
		// error lets asynq apply its retry policy.
		return err
	}

	log.GetLogger().Info("[Queue] Video task completed",
		zap.String("task_id", payload.TaskID))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVideoProcess, h.HandleVideoProcessTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
