package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

// SelectHighlights asks the language model to rank clip windows over the
// transcript segments, then applies the local policy filter: drop windows
// whose duration falls outside the constraint range, cap the list at
// MaxHighlights. The model's descending score order is preserved as-is.
func (s *Service) SelectHighlights(ctx context.Context, transcript *types.Transcript, constraints types.HighlightConstraints) ([]types.HighlightCandidate, error) {
	if transcript == nil || len(transcript.Segments) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "transcript has no segments")
	}
	constraints = constraints.Normalize()

	prompt := fmt.Sprintf(types.HighlightUserPrompt,
		constraints.MaxHighlights,
		constraints.MinDuration,
		constraints.MaxDuration,
		buildHighlightHints(constraints),
		formatSegmentBlock(transcript.Segments),
	)

	resp, err := s.ChatCompleter.ChatCompletion(types.HighlightSystemPrompt, prompt)
	if err != nil {
		log.GetLogger().Error("highlight detection call failed", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeHighlightDetectionFailed, "highlight detection failed", err)
	}

	var candidates []types.HighlightCandidate
	if err = json.Unmarshal([]byte(util.ExtractJsonFromText(resp)), &candidates); err != nil {
		log.GetLogger().Error("highlight response is not valid JSON",
			zap.String("response", resp), zap.Error(err))
		return nil, apperrors.WrapWithDetail(apperrors.CodeHighlightParseFailed,
			"highlight detection returned malformed output", resp, err)
	}

	kept := make([]types.HighlightCandidate, 0, len(candidates))
	for _, c := range candidates {
		d := c.Duration()
		if d < constraints.MinDuration || d > constraints.MaxDuration {
			log.GetLogger().Info("dropping out-of-range highlight",
				zap.String("title", c.Title),
				zap.Float64("duration", d),
				zap.Float64("min", constraints.MinDuration),
				zap.Float64("max", constraints.MaxDuration))
			continue
		}
		kept = append(kept, c)
		if len(kept) == constraints.MaxHighlights {
			break
		}
	}

	// Zero survivors is a valid outcome; the caller decides whether it is
	// terminal for the run.
	log.GetLogger().Info("highlight selection done",
		zap.Int("proposed", len(candidates)), zap.Int("kept", len(kept)))
	return kept, nil
}

func formatSegmentBlock(segments []types.TranscriptSegment) string {
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "[%.1f - %.1f] %s\n", seg.Start, seg.End, strings.TrimSpace(seg.Text))
	}
	return b.String()
}

func buildHighlightHints(constraints types.HighlightConstraints) string {
	var hints []string
	if constraints.Audience != "" {
		hints = append(hints, "Target audience: "+constraints.Audience)
	}
	if constraints.ContentType != "" {
		hints = append(hints, "Content type: "+constraints.ContentType)
	}
	if len(hints) == 0 {
		return ""
	}
	return strings.Join(hints, "\n") + "\n"
}
