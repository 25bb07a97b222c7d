package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

// hookWindowSeconds bounds the words the hook line may be assembled from.
const hookWindowSeconds = 3.0

type captionLlmResponse struct {
	Segments []struct {
		Words []types.CaptionWord `json:"words"`
	} `json:"segments"`
	HookText string `json:"hook_text"`
}

// GenerateCaptions asks the language model to partition the given words into
// short display lines, then enforces the contract the model cannot be trusted
// with: every output word must be one of the input words (case-insensitive,
// trimmed), and every word's timing is restored from the input rather than
// taken from the model. A fabricated word fails the whole call; burning
// invented text into the video is worse than having no captions.
func (s *Service) GenerateCaptions(ctx context.Context, words []types.TranscriptWord, opts types.CaptionOptions) (*types.CaptionsResult, error) {
	if len(words) < 2 {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "caption generation needs at least two words")
	}
	opts = opts.Normalize()

	wordsJson, err := json.Marshal(words)
	if err != nil {
		return nil, fmt.Errorf("marshal caption input words: %w", err)
	}

	emphasisClause := ""
	if !opts.EmphasizeKeywords {
		emphasisClause = "; for this request set emphasize=false on every word"
	}
	hookInstruction := ""
	hookSchema := ""
	if opts.IncludeHook {
		hookInstruction = types.CaptionHookInstruction + "\n"
		hookSchema = ",\n  \"hook_text\": \"short attention line\""
	}

	systemPrompt := fmt.Sprintf(types.CaptionSystemPrompt, opts.MaxWordsPerSegment, emphasisClause)
	userPrompt := fmt.Sprintf(types.CaptionUserPrompt, opts.Language, string(wordsJson), hookInstruction, hookSchema)

	// Grouping is a partition of existing data. Sampling creativity only
	// creates opportunities to hallucinate, so the call is deterministic.
	raw, err := s.ChatCompleter.DeterministicCompletion(systemPrompt, userPrompt)
	if err != nil {
		log.GetLogger().Error("caption grouping call failed", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeCaptionGenerationFailed, "caption generation failed", err)
	}

	var resp captionLlmResponse
	if err = json.Unmarshal([]byte(util.ExtractJsonFromText(raw)), &resp); err != nil {
		log.GetLogger().Error("caption response is not valid JSON", zap.String("response", raw), zap.Error(err))
		return nil, apperrors.WrapWithDetail(apperrors.CodeCaptionGenerationFailed,
			"caption generation returned malformed output", raw, err)
	}
	if len(resp.Segments) == 0 {
		return nil, apperrors.New(apperrors.CodeCaptionGenerationFailed, "caption generation returned no segments")
	}

	groups, err := restoreWordTimings(resp, words)
	if err != nil {
		return nil, err
	}
	groups = normalizeGroupSizes(groups, opts.MaxWordsPerSegment)

	segments := make([]types.CaptionSegment, 0, len(groups))
	for _, g := range groups {
		seg := types.CaptionSegment{
			Start:    g[0].Start,
			End:      g[len(g)-1].End,
			Words:    g,
			Position: types.ScreenPositionBottom,
		}
		segments = append(segments, seg)
	}

	result := &types.CaptionsResult{
		Segments: segments,
		Style: types.CaptionStyle{
			FontSize:       config.Conf.Caption.FontSize,
			TextColor:      config.Conf.Caption.TextColor,
			HighlightColor: config.Conf.Caption.HighlightColor,
		},
	}
	if opts.IncludeHook {
		result.HookText = buildHookText(resp.HookText, words)
	}
	return result, nil
}

func normalizeWord(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// restoreWordTimings maps every model-returned word back onto an input word.
// The returned groups carry input timings only; the model's timing fields are
// discarded. Any word with no input counterpart is a hallucination and fails
// the call, listing the offenders with their nearest input word.
func restoreWordTimings(resp captionLlmResponse, input []types.TranscriptWord) ([][]types.CaptionWord, error) {
	allowed := make(map[string][]types.TranscriptWord, len(input))
	for _, w := range input {
		key := normalizeWord(w.Text)
		allowed[key] = append(allowed[key], w)
	}

	var hallucinated []string
	reordered := ""
	cursor := 0
	prevStart := -1.0
	groups := make([][]types.CaptionWord, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		if len(seg.Words) == 0 {
			continue
		}
		group := make([]types.CaptionWord, 0, len(seg.Words))
		for _, w := range seg.Words {
			key := normalizeWord(w.Text)
			occurrences, ok := allowed[key]
			if !ok {
				hallucinated = append(hallucinated, describeHallucination(w.Text, input))
				continue
			}

			// Prefer the next matching input word at or after the cursor so
			// repeated words keep their per-occurrence timing.
			src := occurrences[0]
			for i := cursor; i < len(input); i++ {
				if normalizeWord(input[i].Text) == key {
					src = input[i]
					cursor = i + 1
					break
				}
			}
			if src.Start < prevStart && reordered == "" {
				reordered = w.Text
			}
			prevStart = src.Start

			group = append(group, types.CaptionWord{
				Text:      src.Text,
				Start:     src.Start,
				End:       src.End,
				Emphasize: w.Emphasize,
			})
		}
		if len(group) > 0 {
			groups = append(groups, capEmphasis(group))
		}
	}

	if len(hallucinated) > 0 {
		log.GetLogger().Error("caption grouping hallucinated words",
			zap.Strings("words", hallucinated))
		return nil, apperrors.WrapWithDetail(apperrors.CodeCaptionHallucination,
			"caption contains words not spoken in the source",
			strings.Join(hallucinated, "; "),
			fmt.Errorf("%d hallucinated word(s)", len(hallucinated)))
	}
	if reordered != "" {
		log.GetLogger().Error("caption grouping reordered words",
			zap.String("word", reordered))
		return nil, apperrors.WrapWithDetail(apperrors.CodeCaptionGenerationFailed,
			"caption grouping returned words out of spoken order",
			fmt.Sprintf("%q appears earlier than the preceding word was spoken", reordered),
			fmt.Errorf("word order violated at %q", reordered))
	}
	if len(groups) == 0 {
		return nil, apperrors.New(apperrors.CodeCaptionGenerationFailed, "caption generation returned no usable words")
	}
	return groups, nil
}

// describeHallucination pairs the fabricated word with the closest input word
// by edit distance so the failure message shows what the model likely mangled.
func describeHallucination(text string, input []types.TranscriptWord) string {
	offending := normalizeWord(text)
	nearest := ""
	best := -1
	for _, w := range input {
		d := levenshtein.DistanceForStrings([]rune(offending), []rune(normalizeWord(w.Text)), levenshtein.DefaultOptions)
		if best == -1 || d < best {
			best = d
			nearest = w.Text
		}
	}
	if nearest == "" {
		return fmt.Sprintf("%q", text)
	}
	return fmt.Sprintf("%q (nearest input word: %q)", text, nearest)
}

// capEmphasis keeps at most one emphasized word per group, first wins.
func capEmphasis(group []types.CaptionWord) []types.CaptionWord {
	seen := false
	for i := range group {
		if group[i].Emphasize {
			if seen {
				group[i].Emphasize = false
			}
			seen = true
		}
	}
	return group
}

// normalizeGroupSizes enforces the 2..maxWords bound the model was asked for.
// Oversized groups are split, then stranded single words are merged into a
// neighboring group until none remain. When no sequence of merges can repair
// the model's layout, the words are regrouped from scratch.
func normalizeGroupSizes(groups [][]types.CaptionWord, maxWords int) [][]types.CaptionWord {
	var flat [][]types.CaptionWord
	for _, g := range groups {
		for len(g) > maxWords {
			flat = append(flat, g[:maxWords])
			g = g[maxWords:]
		}
		if len(g) > 0 {
			flat = append(flat, g)
		}
	}

	out := mergeSingletons(flat, maxWords)
	for _, g := range out {
		if len(g) == 1 && len(out) > 1 {
			out = regroupWords(flattenGroups(out), maxWords)
			break
		}
	}
	for i := range out {
		out[i] = capEmphasis(out[i])
	}
	return out
}

// mergeSingletons repeatedly folds 1-word groups into a neighbor with room.
// Merging only ever shrinks the group list, so the loop terminates.
func mergeSingletons(groups [][]types.CaptionWord, maxWords int) [][]types.CaptionWord {
	for {
		merged := false
		for i := 0; i < len(groups); i++ {
			if len(groups[i]) != 1 {
				continue
			}
			if i > 0 && len(groups[i-1])+1 <= maxWords {
				groups[i-1] = append(groups[i-1], groups[i]...)
			} else if i+1 < len(groups) && len(groups[i+1])+1 <= maxWords {
				groups[i+1] = append(append([]types.CaptionWord{}, groups[i]...), groups[i+1]...)
			} else {
				continue
			}
			groups = append(groups[:i], groups[i+1:]...)
			merged = true
			break
		}
		if !merged {
			return groups
		}
	}
}

func flattenGroups(groups [][]types.CaptionWord) []types.CaptionWord {
	var words []types.CaptionWord
	for _, g := range groups {
		words = append(words, g...)
	}
	return words
}

// regroupWords chunks the word sequence into maxWords-sized lines, shrinking
// the second-to-last line when the tail would otherwise be a single word.
// With maxWords=2 and an odd count no valid partition exists; the tail word
// then joins the last line rather than standing alone.
func regroupWords(words []types.CaptionWord, maxWords int) [][]types.CaptionWord {
	var out [][]types.CaptionWord
	for len(words) > 0 {
		n := maxWords
		if len(words) < n {
			n = len(words)
		}
		if len(words)-n == 1 {
			if n > 2 {
				n--
			} else {
				n = len(words)
			}
		}
		out = append(out, words[:n])
		words = words[n:]
	}
	return out
}

// buildHookText validates the model's hook against the input vocabulary and
// falls back to the words actually spoken in the opening seconds.
func buildHookText(modelHook string, input []types.TranscriptWord) string {
	const punct = ".,!?¡¿:;\"'"
	allowed := make(map[string]struct{}, len(input))
	for _, w := range input {
		allowed[strings.Trim(normalizeWord(w.Text), punct)] = struct{}{}
	}

	hook := strings.TrimSpace(modelHook)
	if hook != "" {
		valid := true
		for _, token := range strings.Fields(hook) {
			key := strings.Trim(normalizeWord(token), punct)
			if key == "" {
				continue
			}
			if _, ok := allowed[key]; !ok {
				valid = false
				break
			}
		}
		if valid {
			return hook
		}
		log.GetLogger().Warn("model hook contains unspoken words, rebuilding from opening words",
			zap.String("hook", hook))
	}

	cutoff := input[0].Start + hookWindowSeconds
	var parts []string
	for _, w := range input {
		if w.Start >= cutoff {
			break
		}
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}
