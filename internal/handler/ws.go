package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served to the local frontend only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const progressPollInterval = time.Second

type taskProgressEvent struct {
	TaskId     string `json:"task_id"`
	Status     uint8  `json:"status"`
	StatusMsg  string `json:"status_msg"`
	ProcessPct uint8  `json:"process_percent"`
	FailReason string `json:"fail_reason,omitempty"`
}

// TaskProgressWS streams task progress until the task reaches a terminal
// state or the client goes away.
func (h *Handler) TaskProgressWS(c *gin.Context) {
	taskId := c.Query("taskId")
	if taskId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId is required"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()

	var lastPct uint8 = 255
	var lastStatus uint8
	for {
		task, err := storage.GetVideoTask(taskId)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"error": "task not found"})
			return
		}

		if task.ProcessPct != lastPct || task.Status != lastStatus {
			lastPct = task.ProcessPct
			lastStatus = task.Status
			event := taskProgressEvent{
				TaskId:     task.TaskId,
				Status:     task.Status,
				StatusMsg:  task.StatusMsg,
				ProcessPct: task.ProcessPct,
				FailReason: task.FailReason,
			}
			if err = conn.WriteJSON(event); err != nil {
				return
			}
		}

		if task.Status == types.TaskStatusSuccess || task.Status == types.TaskStatusFailed {
			return
		}

		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
