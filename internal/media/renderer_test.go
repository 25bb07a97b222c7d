package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

func init() {
	log.InitLogger()
}

// fakeFfmpeg creates the output file named by its last argument; when
// failOnCrop is set it exits nonzero as soon as a crop filter shows up.
func fakeFfmpeg(t *testing.T, dir string, failOnCrop bool) string {
	t.Helper()
	script := "#!/bin/sh\n"
	if failOnCrop {
		script += "for a in \"$@\"; do case \"$a\" in *crop=*) echo 'crop blew up' >&2; exit 1;; esac; done\n"
	}
	script += "for last; do :; done\n: > \"$last\"\nexit 0\n"

	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func fakeFfprobe(t *testing.T, dir string, output string) string {
	t.Helper()
	script := "#!/bin/sh\necho '" + output + "'\nexit 0\n"
	path := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func sampleCaptions() *types.CaptionsResult {
	return &types.CaptionsResult{
		Segments: []types.CaptionSegment{{
			Start: 0, End: 1.2,
			Words: []types.CaptionWord{
				{Text: "Hola", Start: 0, End: 0.6},
				{Text: "todos", Start: 0.6, End: 1.2},
			},
			Position: types.ScreenPositionBottom,
		}},
	}
}

func TestComputeCropWindow(t *testing.T) {
	testCases := []struct {
		name                   string
		srcW, srcH             int
		pos                    Position
		wantW, wantH           int
		wantX, wantY           int
	}{
		{name: "landscape 1920x1080 centered", srcW: 1920, srcH: 1080, pos: PositionCenter, wantW: 607, wantH: 1080, wantX: 656, wantY: 0},
		{name: "square source horizontal crop", srcW: 1000, srcH: 1000, pos: PositionCenter, wantW: 562, wantH: 1000, wantX: 219, wantY: 0},
		{name: "tall 1080x2400 top bias", srcW: 1080, srcH: 2400, pos: PositionTop, wantW: 1080, wantH: 1920, wantX: 0, wantY: 0},
		{name: "tall 1080x2400 bottom bias", srcW: 1080, srcH: 2400, pos: PositionBottom, wantW: 1080, wantH: 1920, wantX: 0, wantY: 480},
		{name: "tall 1080x2400 center bias", srcW: 1080, srcH: 2400, pos: PositionCenter, wantW: 1080, wantH: 1920, wantX: 0, wantY: 240},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, h, x, y := computeCropWindow(tc.srcW, tc.srcH, 1080, 1920, tc.pos)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
			assert.Equal(t, tc.wantX, x)
			assert.Equal(t, tc.wantY, y)
		})
	}
}

func TestRenderClipExtractOnly(t *testing.T) {
	binDir := t.TempDir()
	tempDir := t.TempDir()
	outDir := t.TempDir()

	r := &Renderer{
		FfmpegPath:  fakeFfmpeg(t, binDir, false),
		FfprobePath: fakeFfprobe(t, binDir, "1920x1080"),
		TempDir:     tempDir,
	}

	outputPath := filepath.Join(outDir, "clip.mp4")
	err := r.RenderClip(context.Background(), RenderRequest{
		ClipId:     "clip1",
		Source:     "source.mp4",
		Start:      5,
		End:        20,
		OutputPath: outputPath,
	})
	require.NoError(t, err)

	_, err = os.Stat(outputPath)
	assert.NoError(t, err, "output clip must exist")
	assert.Empty(t, listFiles(t, tempDir), "no temp files may survive a successful render")
}

func TestRenderClipWithCropAndBurn(t *testing.T) {
	binDir := t.TempDir()
	tempDir := t.TempDir()
	outDir := t.TempDir()

	r := &Renderer{
		FfmpegPath:  fakeFfmpeg(t, binDir, false),
		FfprobePath: fakeFfprobe(t, binDir, "1920x1080"),
		TempDir:     tempDir,
	}

	outputPath := filepath.Join(outDir, "clip.mp4")
	err := r.RenderClip(context.Background(), RenderRequest{
		ClipId:         "clip2",
		Source:         "source.mp4",
		Start:          0,
		End:            15,
		Captions:       sampleCaptions(),
		OutputPath:     outputPath,
		CropToVertical: true,
		BurnCaptions:   true,
	})
	require.NoError(t, err)

	_, err = os.Stat(outputPath)
	assert.NoError(t, err)
	assert.Empty(t, listFiles(t, tempDir), "intermediate and subtitle temp files must be cleaned up")
}

func TestRenderClipCleansUpOnCropFailure(t *testing.T) {
	binDir := t.TempDir()
	tempDir := t.TempDir()
	outDir := t.TempDir()

	r := &Renderer{
		FfmpegPath:  fakeFfmpeg(t, binDir, true),
		FfprobePath: fakeFfprobe(t, binDir, "1920x1080"),
		TempDir:     tempDir,
	}

	err := r.RenderClip(context.Background(), RenderRequest{
		ClipId:         "clip3",
		Source:         "source.mp4",
		Start:          0,
		End:            15,
		OutputPath:     filepath.Join(outDir, "clip.mp4"),
		CropToVertical: true,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeMediaEncodeFailed))
	assert.Contains(t, apperrors.GetDetail(err), "crop")

	// The extract-stage temp file must be gone after the failed call.
	assert.Empty(t, listFiles(t, tempDir))
}

func TestProbeParsesResolution(t *testing.T) {
	binDir := t.TempDir()
	r := &Renderer{
		FfmpegPath:  fakeFfmpeg(t, binDir, false),
		FfprobePath: fakeFfprobe(t, binDir, "1280x720"),
		TempDir:     t.TempDir(),
	}

	w, h, err := r.Probe(context.Background(), "whatever.mp4")
	require.NoError(t, err)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
}

func TestProbeRejectsGarbageOutput(t *testing.T) {
	binDir := t.TempDir()
	r := &Renderer{
		FfmpegPath:  fakeFfmpeg(t, binDir, false),
		FfprobePath: fakeFfprobe(t, binDir, "not-a-resolution"),
		TempDir:     t.TempDir(),
	}

	_, _, err := r.Probe(context.Background(), "whatever.mp4")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeMediaProbeFailed))
}
