package handler

import (
	"clipforge/config"
	"clipforge/internal/queue"
	"clipforge/internal/service"
	"clipforge/internal/taskrunner"
)

// Handler carries the API dependencies. Tasks run through asynq when redis is
// configured, otherwise through the in-process runner.
type Handler struct {
	Service *service.Service
	Runner  *taskrunner.Runner
	Queue   *queue.Queue
}

func NewHandler() *Handler {
	svc := service.NewService()

	h := &Handler{Service: svc}
	if config.Conf.Queue.Enabled {
		h.Queue = queue.NewQueue(config.Conf.Queue)
	} else {
		h.Runner = taskrunner.New(svc, taskrunner.DefaultConfig())
	}
	return h
}

// Close releases the background workers.
func (h *Handler) Close() {
	if h.Runner != nil {
		h.Runner.Close()
	}
	if h.Queue != nil {
		_ = h.Queue.Close()
	}
}
