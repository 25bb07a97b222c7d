// Package subtitle turns grouped caption segments into a karaoke-style ASS
// track: one dialogue event per word, each event re-rendering the full line
// with only the active word recoloured.
package subtitle

import (
	"fmt"
	"strings"

	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
)

const (
	defaultPlayResX = 1080
	defaultPlayResY = 1920

	// Captions sit three quarters down the frame: the bottom margin is one
	// quarter of the reference height. 480 at 1920, 270 at 1080.
	anchorFraction = 3.0 / 4.0

	defaultFontSize = 72
	spanEpsilon     = 0.001
)

type EncodeOptions struct {
	PlayResX int
	PlayResY int
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{PlayResX: defaultPlayResX, PlayResY: defaultPlayResY}
}

// BottomMargin computes the vertical margin for the given reference height.
func BottomMargin(playResY int) int {
	return int(float64(playResY) * (1 - anchorFraction))
}

// Encode produces the complete subtitle track text. Pure and deterministic;
// malformed input fails before any output is produced.
func Encode(captions *types.CaptionsResult, opts EncodeOptions) (string, error) {
	if err := validate(captions); err != nil {
		return "", err
	}
	if opts.PlayResX <= 0 {
		opts.PlayResX = defaultPlayResX
	}
	if opts.PlayResY <= 0 {
		opts.PlayResY = defaultPlayResY
	}

	style := captions.Style
	if style.FontSize <= 0 {
		style.FontSize = defaultFontSize
	}
	if style.TextColor == "" {
		style.TextColor = "#FFFFFF"
	}
	if style.HighlightColor == "" {
		style.HighlightColor = "#FFD700"
	}

	textColor, err := AssColor(style.TextColor)
	if err != nil {
		return "", fmt.Errorf("text colour: %w", err)
	}
	highlightColor, err := AssColor(style.HighlightColor)
	if err != nil {
		return "", fmt.Errorf("highlight colour: %w", err)
	}
	inlineHighlight, err := assInlineColor(style.HighlightColor)
	if err != nil {
		return "", fmt.Errorf("highlight colour: %w", err)
	}
	inlineText, err := assInlineColor(style.TextColor)
	if err != nil {
		return "", fmt.Errorf("text colour: %w", err)
	}

	var b strings.Builder
	writeHeader(&b, opts, style.FontSize, textColor, highlightColor)

	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, seg := range captions.Segments {
		writeSegmentCues(&b, seg, inlineHighlight, inlineText)
	}
	return b.String(), nil
}

// writeSegmentCues emits one cue per word. Every cue renders the whole
// segment, recolouring only the word whose time window the cue covers.
func writeSegmentCues(b *strings.Builder, seg types.CaptionSegment, inlineHighlight, inlineText string) {
	prefix := alignmentOverride(seg.Position)
	for active := range seg.Words {
		w := seg.Words[active]

		var line strings.Builder
		line.WriteString(prefix)
		for i, other := range seg.Words {
			if i > 0 {
				line.WriteString(" ")
			}
			text := sanitize(other.Text)
			if other.Emphasize {
				text = "{\\b1}" + text + "{\\b0}"
			}
			if i == active {
				line.WriteString("{\\c" + inlineHighlight + "}" + text + "{\\c" + inlineText + "}")
			} else {
				line.WriteString(text)
			}
		}

		fmt.Fprintf(b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatCueTime(w.Start), formatCueTime(w.End), line.String())
	}
}

func writeHeader(b *strings.Builder, opts EncodeOptions, fontSize int, textColor, highlightColor string) {
	margin := BottomMargin(opts.PlayResY)

	fmt.Fprintf(b, "[Script Info]\nScriptType: v4.00+\nPlayResX: %d\nPlayResY: %d\nScaledBorderAndShadow: yes\nWrapStyle: 2\n", opts.PlayResX, opts.PlayResY)
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	// Both styles share the same bottom margin so the highlight never shifts
	// the line. Alignment 2 anchors bottom-center.
	fmt.Fprintf(b, "Style: Default,Arial,%d,%s,%s,&H00000000,&H80000000,1,0,0,0,100,100,0,0,1,4,2,2,40,40,%d,1\n",
		fontSize, textColor, textColor, margin)
	fmt.Fprintf(b, "Style: Highlight,Arial,%d,%s,%s,&H00000000,&H80000000,1,0,0,0,100,100,0,0,1,4,2,2,40,40,%d,1\n",
		fontSize, highlightColor, highlightColor, margin)
}

// formatCueTime renders seconds as H:MM:SS.cc (centisecond precision).
func formatCueTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalCS := int(seconds*100 + 0.5)
	cs := totalCS % 100
	totalSec := totalCS / 100
	s := totalSec % 60
	m := (totalSec / 60) % 60
	h := totalSec / 3600
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func alignmentOverride(pos types.ScreenPosition) string {
	switch pos {
	case types.ScreenPositionTop:
		return "{\\an8}"
	case types.ScreenPositionCenter:
		return "{\\an5}"
	default:
		// Bottom is the style default; no override needed.
		return ""
	}
}

// sanitize escapes characters that ASS treats as markup.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func validate(captions *types.CaptionsResult) error {
	if captions == nil || len(captions.Segments) == 0 {
		return apperrors.New(apperrors.CodeCaptionInvalidSegment, "captions have no segments")
	}
	for i, seg := range captions.Segments {
		if len(seg.Words) == 0 {
			return apperrors.New(apperrors.CodeCaptionInvalidSegment,
				fmt.Sprintf("segment %d has no words", i))
		}
		for j, w := range seg.Words {
			if w.Start >= w.End {
				return apperrors.New(apperrors.CodeCaptionInvalidSegment,
					fmt.Sprintf("segment %d word %d %q has reversed times", i, j, w.Text))
			}
			if w.Start < seg.Start-spanEpsilon || w.End > seg.End+spanEpsilon {
				return apperrors.New(apperrors.CodeCaptionInvalidSegment,
					fmt.Sprintf("segment %d word %d %q lies outside the segment span", i, j, w.Text))
			}
			if j > 0 && w.Start < seg.Words[j-1].End-spanEpsilon {
				return apperrors.New(apperrors.CodeCaptionInvalidSegment,
					fmt.Sprintf("segment %d word %d %q overlaps its predecessor", i, j, w.Text))
			}
		}
	}
	return nil
}
