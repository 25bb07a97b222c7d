package dto

import "clipforge/internal/types"

// StartVideoTaskReq submits a local source video for the full pipeline.
type StartVideoTaskReq struct {
	VideoPath          string  `json:"video_path" binding:"required"`
	Language           string  `json:"language"`
	MaxHighlights      int     `json:"max_highlights"`
	MinClipDuration    float64 `json:"min_clip_duration"`
	MaxClipDuration    float64 `json:"max_clip_duration"`
	MaxWordsPerSegment int     `json:"max_words_per_segment"`
	Audience           string  `json:"audience"`
	ContentType        string  `json:"content_type"`
}

type StartVideoTaskResData struct {
	TaskId string `json:"task_id"`
}

// GetVideoTaskReq queries the status of one processing run.
type GetVideoTaskReq struct {
	TaskId string `form:"taskId" binding:"required"`
}

// SelectHighlightsReq runs highlight detection over a caller-supplied
// transcript, synchronously.
type SelectHighlightsReq struct {
	Transcript  types.Transcript           `json:"transcript" binding:"required"`
	Constraints types.HighlightConstraints `json:"constraints"`
}

type SelectHighlightsResData struct {
	Highlights []types.HighlightCandidate `json:"highlights"`
}

// GenerateCaptionsReq groups caller-supplied words into caption lines,
// synchronously.
type GenerateCaptionsReq struct {
	Words   []types.TranscriptWord `json:"words" binding:"required"`
	Options types.CaptionOptions   `json:"options"`
}

// RenderClipReq renders one clip window from a local source video.
type RenderClipReq struct {
	SourcePath     string                `json:"source_path" binding:"required"`
	Start          float64               `json:"start"`
	End            float64               `json:"end"`
	Captions       *types.CaptionsResult `json:"captions"`
	CropToVertical bool                  `json:"crop_to_vertical"`
	BurnCaptions   bool                  `json:"burn_captions"`
	Position       string                `json:"position"`
}

type RenderClipResData struct {
	ClipId     string `json:"clip_id"`
	OutputPath string `json:"output_path"`
}
