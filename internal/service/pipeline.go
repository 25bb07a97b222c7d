package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"clipforge/config"
	"clipforge/internal/appdirs"
	"clipforge/internal/media"
	"clipforge/internal/storage"
	"clipforge/internal/subtitle"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

var resolveTaskDir = func(taskId string) (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", fmt.Errorf("resolve task directory: %w", err)
	}
	return appdirs.TaskDirFor(dirs, taskId), nil
}

// ProcessVideoReq describes one end-to-end processing run over a local source
// video. The task record must already exist in the database.
type ProcessVideoReq struct {
	TaskId         string
	SourcePath     string
	Language       string
	Constraints    types.HighlightConstraints
	CaptionOptions types.CaptionOptions
}

// ClipOutcome is the per-clip result collected by the pipeline loop. A failed
// clip carries its error here instead of aborting the sibling clips.
type ClipOutcome struct {
	ClipId string
	Title  string
	Err    error
}

// ProcessVideo runs transcribe, highlight selection, then per-highlight
// caption generation, render and upload. Clip failures are isolated: each
// outcome is recorded on its clip record and the loop continues. Only
// transcription and highlight detection abort the whole run.
func (s *Service) ProcessVideo(ctx context.Context, req ProcessVideoReq) error {
	task, err := storage.GetVideoTask(req.TaskId)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "load video task", err)
	}

	if err = s.runPipeline(ctx, task, req); err != nil {
		task.Status = types.TaskStatusFailed
		task.FailReason = apperrors.GetMessage(err)
		if saveErr := storage.SaveVideoTask(task); saveErr != nil {
			log.GetLogger().Error("failed to persist task failure",
				zap.String("taskId", task.TaskId), zap.Error(saveErr))
		}
		return err
	}
	return nil
}

func (s *Service) runPipeline(ctx context.Context, task *types.VideoTask, req ProcessVideoReq) error {
	updateProgress := func(pct uint8, msg string) {
		task.ProcessPct = pct
		task.StatusMsg = msg
		if err := storage.SaveVideoTask(task); err != nil {
			log.GetLogger().Error("failed to persist task progress",
				zap.String("taskId", task.TaskId), zap.Error(err))
		}
	}

	task.Status = types.TaskStatusProcessing
	updateProgress(5, "transcribing")

	transcript, err := s.Transcriber.Transcribe(ctx, req.SourcePath, req.Language)
	if err != nil {
		return err
	}
	task.Language = transcript.Language
	task.Duration = transcript.Duration
	if transcriptJson, marshalErr := json.Marshal(transcript); marshalErr == nil {
		task.TranscriptJson = string(transcriptJson)
	}
	updateProgress(30, "selecting highlights")

	candidates, err := s.SelectHighlights(ctx, transcript, req.Constraints)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return apperrors.New(apperrors.CodeHighlightDetectionFailed,
			"no highlight window satisfied the duration constraints")
	}
	updateProgress(40, fmt.Sprintf("rendering %d clips", len(candidates)))

	outputDir, err := resolveTaskDir(task.TaskId)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create task output dir %s: %w", outputDir, err)
	}

	clips := make([]*types.ClipTask, len(candidates))
	for i, c := range candidates {
		clip := &types.ClipTask{
			VideoTaskId: task.Id,
			ClipId:      fmt.Sprintf("%s_%s", task.TaskId, util.GenerateRandStringWithUpperLowerNum(6)),
			Title:       c.Title,
			Description: c.Description,
			HookText:    c.HookText,
			Start:       c.Start,
			End:         c.End,
			Score:       c.Score,
			Status:      types.TaskStatusProcessing,
		}
		if tagsJson, marshalErr := json.Marshal(c.Tags); marshalErr == nil {
			clip.TagsJson = string(tagsJson)
		}
		if err = storage.SaveClipTask(clip); err != nil {
			return apperrors.Wrap(apperrors.CodeDBError, "create clip record", err)
		}
		clips[i] = clip
	}

	// Each clip's own stages run strictly in order; across clips the pool is
	// bounded because every render shells out to a CPU-heavy engine.
	concurrency := config.Conf.Clip.RenderConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	outcomes := make([]ClipOutcome, len(clips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, clip := range clips {
		i, clip := i, clip
		g.Go(func() error {
			err := s.processClip(gctx, req.SourcePath, transcript, clip, req.CaptionOptions, outputDir)
			outcomes[i] = ClipOutcome{ClipId: clip.ClipId, Title: clip.Title, Err: err}
			s.finishClip(clip, err)
			// Per-clip errors stay in the outcome; returning them here would
			// cancel the sibling renders.
			return nil
		})
	}
	_ = g.Wait()

	failed := lo.Filter(outcomes, func(o ClipOutcome, _ int) bool { return o.Err != nil })
	for _, o := range failed {
		log.GetLogger().Warn("clip failed",
			zap.String("taskId", task.TaskId),
			zap.String("clipId", o.ClipId),
			zap.Error(o.Err))
	}
	if len(failed) == len(outcomes) {
		return apperrors.New(dominantFailureCode(failed), "all clips failed")
	}

	// Partial success is a valid terminal state.
	task.Status = types.TaskStatusSuccess
	updateProgress(100, fmt.Sprintf("%d/%d clips ready", len(outcomes)-len(failed), len(outcomes)))
	return nil
}

// processClip runs captions -> render -> upload for one highlight window.
func (s *Service) processClip(ctx context.Context, sourcePath string, transcript *types.Transcript, clip *types.ClipTask, captionOpts types.CaptionOptions, outputDir string) error {
	if captionOpts.Language == "" {
		captionOpts.Language = transcript.Language
	}

	var captions *types.CaptionsResult
	clipWords := transcript.WordsBetween(clip.Start, clip.End)
	if len(clipWords) >= 2 {
		var err error
		captions, err = s.GenerateCaptions(ctx, shiftWords(clipWords, clip.Start), captionOpts)
		if err != nil {
			return err
		}
		if captionsJson, marshalErr := json.Marshal(captions); marshalErr == nil {
			clip.CaptionsJson = string(captionsJson)
		}
	} else {
		log.GetLogger().Warn("clip window has too few words for captions, rendering without",
			zap.String("clipId", clip.ClipId))
	}

	outputPath := filepath.Join(outputDir, util.SanitizePathName(clip.ClipId)+".mp4")
	err := s.Renderer.RenderClip(ctx, media.RenderRequest{
		ClipId:         clip.ClipId,
		Source:         sourcePath,
		Start:          clip.Start,
		End:            clip.End,
		Captions:       captions,
		OutputPath:     outputPath,
		CropToVertical: true,
		BurnCaptions:   captions != nil,
		TargetWidth:    config.Conf.Clip.TargetWidth,
		TargetHeight:   config.Conf.Clip.TargetHeight,
	})
	if err != nil {
		return err
	}
	clip.OutputPath = outputPath

	var subtitlePath string
	if captions != nil {
		subtitlePath = filepath.Join(outputDir, util.SanitizePathName(clip.ClipId)+".ass")
		track, encodeErr := subtitle.Encode(captions, subtitle.EncodeOptions{
			PlayResX: config.Conf.Clip.TargetWidth,
			PlayResY: config.Conf.Clip.TargetHeight,
		})
		if encodeErr != nil {
			return encodeErr
		}
		if writeErr := os.WriteFile(subtitlePath, []byte(track), 0o644); writeErr != nil {
			return apperrors.Wrap(apperrors.CodeFileNotFound, "failed to write subtitle track", writeErr)
		}
	}

	if s.Uploader != nil {
		url, err := s.Uploader.Upload(ctx, outputPath, fmt.Sprintf("clips/%s.mp4", clip.ClipId))
		if err != nil {
			return err
		}
		clip.OutputUrl = url

		if subtitlePath != "" {
			subUrl, err := s.Uploader.Upload(ctx, subtitlePath, fmt.Sprintf("clips/%s.ass", clip.ClipId))
			if err != nil {
				return err
			}
			clip.SubtitleUrl = subUrl
		}
	}
	return nil
}

func (s *Service) finishClip(clip *types.ClipTask, err error) {
	if err != nil {
		clip.Status = types.TaskStatusFailed
		clip.FailReason = apperrors.GetMessage(err)
		if detail := apperrors.GetDetail(err); detail != "" {
			clip.FailReason = fmt.Sprintf("%s: %s", clip.FailReason, detail)
		}
	} else {
		clip.Status = types.TaskStatusSuccess
	}
	if saveErr := storage.SaveClipTask(clip); saveErr != nil {
		log.GetLogger().Error("failed to persist clip result",
			zap.String("clipId", clip.ClipId), zap.Error(saveErr))
	}
}

// RetryClip re-runs a single failed clip from its stored window. State is
// reset first so the record never shows a stale failure next to fresh output.
func (s *Service) RetryClip(ctx context.Context, clipId string) error {
	clip, err := storage.GetClipTask(clipId)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotFound, "clip not found", err)
	}
	task := &types.VideoTask{}
	if err = storage.DB.First(task, clip.VideoTaskId).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "load owning video task", err)
	}

	var transcript types.Transcript
	if err = json.Unmarshal([]byte(task.TranscriptJson), &transcript); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidTranscript, "stored transcript is unreadable", err)
	}

	clip.Status = types.TaskStatusProcessing
	clip.FailReason = ""
	if err = storage.SaveClipTask(clip); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "reset clip state", err)
	}

	outputDir, err := resolveTaskDir(task.TaskId)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create task output dir %s: %w", outputDir, err)
	}

	runErr := s.processClip(ctx, task.VideoSrc, &transcript, clip, types.DefaultCaptionOptions(), outputDir)
	s.finishClip(clip, runErr)
	return runErr
}

// shiftWords rebases word timings so the clip's own start becomes zero. The
// rendered clip starts at the window start, so burned cues must too.
// dominantFailureCode picks the most frequent error code among the failed
// outcomes, so a run where every clip hallucinated reports a caption error
// rather than a render error. Ties go to the earliest clip's code.
func dominantFailureCode(failed []ClipOutcome) int {
	counts := make(map[int]int, len(failed))
	best := apperrors.CodeMediaEncodeFailed
	bestCount := 0
	for _, o := range failed {
		code := apperrors.GetCode(o.Err)
		counts[code]++
		if counts[code] > bestCount {
			best = code
			bestCount = counts[code]
		}
	}
	return best
}

func shiftWords(words []types.TranscriptWord, offset float64) []types.TranscriptWord {
	out := make([]types.TranscriptWord, len(words))
	for i, w := range words {
		start := w.Start - offset
		if start < 0 {
			start = 0
		}
		end := w.End - offset
		if end <= start {
			end = start + 0.01
		}
		out[i] = types.TranscriptWord{Text: w.Text, Start: start, End: end}
	}
	return out
}
