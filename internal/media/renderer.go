// Package media sequences the external media engine (ffmpeg/ffprobe) into a
// clip rendering pipeline: extract window, crop to vertical, burn captions.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clipforge/internal/storage"
	"clipforge/internal/subtitle"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

// Position biases the vertical crop window when the source is taller than
// the target aspect.
type Position string

const (
	PositionCenter Position = "center"
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

type Renderer struct {
	FfmpegPath  string
	FfprobePath string
	TempDir     string
}

func NewRenderer(tempDir string) *Renderer {
	return &Renderer{
		FfmpegPath:  storage.FfmpegPath,
		FfprobePath: storage.FfprobePath,
		TempDir:     tempDir,
	}
}

// RenderRequest describes one clip render. Captions are optional; when nil
// (or BurnCaptions is false) the burn stage is skipped.
type RenderRequest struct {
	ClipId         string
	Source         string
	Start          float64
	End            float64
	Captions       *types.CaptionsResult
	OutputPath     string
	CropToVertical bool
	BurnCaptions   bool
	Position       Position
	TargetWidth    int
	TargetHeight   int
}

var resolutionRe = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Probe returns the source's video stream dimensions.
func (r *Renderer) Probe(ctx context.Context, inputVideo string) (int, int, error) {
	cmdArgs := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		inputVideo,
	}
	cmd := exec.CommandContext(ctx, r.FfprobePath, cmdArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("ffprobe failed", zap.String("input", inputVideo), zap.String("output", string(out)), zap.Error(err))
		return 0, 0, apperrors.Wrap(apperrors.CodeMediaProbeFailed, "cannot read source dimensions", err)
	}

	output := strings.TrimSpace(string(out))
	output = strings.TrimSuffix(output, "x") // ffprobe may emit a trailing x, e.g. 1920x1080x

	dimensions := resolutionRe.FindStringSubmatch(output)
	if len(dimensions) != 3 {
		return 0, 0, apperrors.WrapWithDetail(apperrors.CodeMediaProbeFailed,
			"cannot read source dimensions", output, fmt.Errorf("invalid resolution format: %s", output))
	}

	width, _ := strconv.Atoi(dimensions[1])
	height, _ := strconv.Atoi(dimensions[2])
	return width, height, nil
}

// ProbeDuration returns the container duration in seconds.
func (r *Renderer) ProbeDuration(ctx context.Context, inputVideo string) (float64, error) {
	cmd := exec.CommandContext(ctx, r.FfprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputVideo,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeMediaProbeFailed, "cannot read source duration", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeMediaProbeFailed, "cannot parse source duration", err)
	}
	return seconds, nil
}

// RenderClip runs extract -> (crop) -> (burn) strictly in order. Each stage
// writes a new temp file and removes its predecessor; on any failure every
// temp path created so far is best-effort removed before the error returns.
func (r *Renderer) RenderClip(ctx context.Context, req RenderRequest) (err error) {
	if req.TargetWidth <= 0 {
		req.TargetWidth = 1080
	}
	if req.TargetHeight <= 0 {
		req.TargetHeight = 1920
	}
	if req.Position == "" {
		req.Position = PositionCenter
	}

	tempBase := fmt.Sprintf("%s_%s", req.ClipId, uuid.New().String()[:8])
	var temps []string
	defer func() {
		if err != nil {
			for _, p := range temps {
				_ = os.Remove(p)
			}
		}
	}()

	if err = os.MkdirAll(r.TempDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Stage 1: extract the window, re-encoding to a standard codec pair.
	current := filepath.Join(r.TempDir, tempBase+"_extract.mp4")
	temps = append(temps, current)
	if err = r.extract(ctx, req.Source, req.Start, req.End, current); err != nil {
		return err
	}

	// Stage 2: crop to 9:16 and scale to target resolution.
	if req.CropToVertical {
		cropped := filepath.Join(r.TempDir, tempBase+"_vertical.mp4")
		temps = append(temps, cropped)
		if err = r.cropToVertical(ctx, current, cropped, req.Position, req.TargetWidth, req.TargetHeight); err != nil {
			return err
		}
		_ = os.Remove(current)
		current = cropped
	}

	// Stage 3: burn the caption track into the pixels.
	if req.BurnCaptions && req.Captions != nil {
		captioned := filepath.Join(r.TempDir, tempBase+"_captioned.mp4")
		temps = append(temps, captioned)
		if err = r.burnCaptions(ctx, current, captioned, req.Captions, tempBase, req.TargetWidth, req.TargetHeight); err != nil {
			return err
		}
		_ = os.Remove(current)
		current = captioned
	}

	if err = os.Rename(current, req.OutputPath); err != nil {
		return fmt.Errorf("move rendered clip to output: %w", err)
	}

	log.GetLogger().Info("clip rendered",
		zap.String("clip_id", req.ClipId),
		zap.String("output", req.OutputPath))
	return nil
}

func (r *Renderer) extract(ctx context.Context, source string, start, end float64, output string) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", source,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		"-avoid_negative_ts", "1",
		output,
	}
	return r.runEngine(ctx, "extract", args)
}

func (r *Renderer) cropToVertical(ctx context.Context, input, output string, pos Position, targetW, targetH int) error {
	srcW, srcH, err := r.Probe(ctx, input)
	if err != nil {
		return err
	}

	cropW, cropH, cropX, cropY := computeCropWindow(srcW, srcH, targetW, targetH, pos)
	filter := fmt.Sprintf("crop=%d:%d:%d:%d,scale=%d:%d", cropW, cropH, cropX, cropY, targetW, targetH)

	args := []string{
		"-y",
		"-i", input,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "copy",
		output,
	}
	return r.runEngine(ctx, "crop", args)
}

func (r *Renderer) burnCaptions(ctx context.Context, input, output string, captions *types.CaptionsResult, tempBase string, targetW, targetH int) error {
	track, err := subtitle.Encode(captions, subtitle.EncodeOptions{PlayResX: targetW, PlayResY: targetH})
	if err != nil {
		return err
	}

	assPath := filepath.Join(r.TempDir, tempBase+".ass")
	if err = os.WriteFile(assPath, []byte(track), 0o644); err != nil {
		return fmt.Errorf("write subtitle track: %w", err)
	}
	// The track file is scratch state either way
	defer os.Remove(assPath)

	args := []string{
		"-y",
		"-i", input,
		"-vf", fmt.Sprintf("ass='%s'", escapeFilterPath(assPath)),
		"-c:a", "aac",
		"-b:a", "192k",
		output,
	}
	return r.runEngine(ctx, "burn", args)
}

func (r *Renderer) runEngine(ctx context.Context, stage string, args []string) error {
	cmd := exec.CommandContext(ctx, r.FfmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("media engine stage failed",
			zap.String("stage", stage),
			zap.String("output", string(out)),
			zap.Error(err))
		return apperrors.WrapWithDetail(apperrors.CodeMediaEncodeFailed,
			"media engine invocation failed", "stage: "+stage, err)
	}
	return nil
}

// computeCropWindow picks the largest window matching the target aspect. A
// source wider than the target aspect is cropped symmetrically about the
// horizontal center; a taller one is cropped vertically per the position bias.
func computeCropWindow(srcW, srcH, targetW, targetH int, pos Position) (w, h, x, y int) {
	if srcW*targetH > srcH*targetW {
		// Wider than target: full height, centered horizontal window.
		h = srcH
		w = srcH * targetW / targetH
		x = (srcW - w) / 2
		y = 0
		return
	}

	// Taller than (or equal to) target: full width, position-biased vertical.
	w = srcW
	h = srcW * targetH / targetW
	x = 0
	switch pos {
	case PositionTop:
		y = 0
	case PositionBottom:
		y = srcH - h
	default:
		y = (srcH - h) / 2
	}
	return
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

// escapeFilterPath escapes the characters the ffmpeg filter parser treats
// specially inside the ass= argument.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.ReplaceAll(p, "'", "\\'")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
