package handler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/internal/dto"
	"clipforge/internal/media"
	"clipforge/internal/queue"
	"clipforge/internal/response"
	"clipforge/internal/storage"
	"clipforge/internal/taskrunner"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

// StartVideoTask creates a task record and queues the full pipeline run.
func (h *Handler) StartVideoTask(c *gin.Context) {
	var req dto.StartVideoTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartVideoTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	if _, err := os.Stat(req.VideoPath); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileNotFound, "source video not found", err))
		return
	}

	taskId := util.GenerateRandStringWithUpperLowerNum(8)
	task := &types.VideoTask{
		TaskId:   taskId,
		VideoSrc: req.VideoPath,
		Status:   types.TaskStatusProcessing,
		Language: req.Language,
	}
	if err := storage.SaveVideoTask(task); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "create task record failed", err))
		return
	}

	constraints := types.HighlightConstraints{
		MaxHighlights: req.MaxHighlights,
		MinDuration:   req.MinClipDuration,
		MaxDuration:   req.MaxClipDuration,
		Audience:      req.Audience,
		ContentType:   req.ContentType,
	}
	captionOpts := types.DefaultCaptionOptions()
	if req.MaxWordsPerSegment != 0 {
		captionOpts.MaxWordsPerSegment = req.MaxWordsPerSegment
	}
	captionOpts.Language = req.Language

	var err error
	if h.Queue != nil {
		err = h.Queue.EnqueueVideoProcessTask(queue.VideoProcessPayload{
			TaskID:         taskId,
			SourcePath:     req.VideoPath,
			Language:       req.Language,
			Constraints:    constraints,
			CaptionOptions: captionOpts,
		})
	} else {
		err = h.Runner.Submit(taskrunner.VideoTaskPayload{
			TaskID:         taskId,
			SourcePath:     req.VideoPath,
			Language:       req.Language,
			Constraints:    constraints,
			CaptionOptions: captionOpts,
		})
	}
	if err != nil {
		task.Status = types.TaskStatusFailed
		task.FailReason = err.Error()
		_ = storage.SaveVideoTask(task)
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "failed to queue task", err))
		return
	}

	response.Success(c, dto.StartVideoTaskResData{TaskId: taskId})
}

func (h *Handler) GetVideoTask(c *gin.Context) {
	var req dto.GetVideoTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	task, err := storage.GetVideoTask(req.TaskId)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeNotFound, "task not found", err))
		return
	}
	response.Success(c, task)
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	tasks, err := storage.GetVideoTaskHistory(200)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "failed to load task history", err))
		return
	}
	response.Success(c, tasks)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "taskId is required")
		return
	}

	// Remove rendered artifacts first; a leftover directory is tolerable, a
	// dangling DB record is not.
	for _, dir := range taskDirCandidates(taskId) {
		if err := os.RemoveAll(dir); err != nil {
			log.GetLogger().Error("DeleteTask RemoveAll err", zap.String("path", dir), zap.Error(err))
		}
	}

	if err := storage.DeleteVideoTask(taskId); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "failed to delete task", err))
		return
	}
	response.Success(c, nil)
}

// RetryClip re-runs one failed clip in the background.
func (h *Handler) RetryClip(c *gin.Context) {
	clipId := c.Param("clipId")
	if clipId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "clipId is required")
		return
	}

	clip, err := storage.GetClipTask(clipId)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeNotFound, "clip not found", err))
		return
	}
	if clip.Status == types.TaskStatusProcessing {
		response.Error(c, apperrors.CodeInvalidParams, "clip is still processing")
		return
	}

	go func() {
		// The request context dies with this handler; the retry must outlive
		// it.
		if err := h.Service.RetryClip(context.Background(), clipId); err != nil {
			log.GetLogger().Error("clip retry failed", zap.String("clipId", clipId), zap.Error(err))
		}
	}()

	response.Success(c, dto.RenderClipResData{ClipId: clipId})
}

// SelectHighlights runs highlight detection synchronously over a supplied
// transcript.
func (h *Handler) SelectHighlights(c *gin.Context) {
	var req dto.SelectHighlightsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	if err := req.Transcript.Validate(); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidTranscript, "invalid transcript", err))
		return
	}

	highlights, err := h.Service.SelectHighlights(c.Request.Context(), &req.Transcript, req.Constraints)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.SelectHighlightsResData{Highlights: highlights})
}

// GenerateCaptions groups supplied words into caption lines synchronously.
func (h *Handler) GenerateCaptions(c *gin.Context) {
	var req dto.GenerateCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	captions, err := h.Service.GenerateCaptions(c.Request.Context(), req.Words, req.Options)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, captions)
}

// RenderClip renders one clip window synchronously.
func (h *Handler) RenderClip(c *gin.Context) {
	var req dto.RenderClipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	if req.End <= req.Start {
		response.Error(c, apperrors.CodeInvalidParams, "end must be after start")
		return
	}
	if _, err := os.Stat(req.SourcePath); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileNotFound, "source video not found", err))
		return
	}

	clipId := util.GenerateRandStringWithUpperLowerNum(8)
	outputDir := preferredTaskDir("adhoc")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "failed to create output dir", err))
		return
	}
	outputPath := filepath.Join(outputDir, clipId+".mp4")

	err := h.Service.Renderer.RenderClip(c.Request.Context(), media.RenderRequest{
		ClipId:         clipId,
		Source:         req.SourcePath,
		Start:          req.Start,
		End:            req.End,
		Captions:       req.Captions,
		OutputPath:     outputPath,
		CropToVertical: req.CropToVertical,
		BurnCaptions:   req.BurnCaptions && req.Captions != nil,
		Position:       media.Position(req.Position),
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.RenderClipResData{ClipId: clipId, OutputPath: outputPath})
}
