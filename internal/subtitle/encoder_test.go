package subtitle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"
)

func word(text string, start, end float64) types.CaptionWord {
	return types.CaptionWord{Text: text, Start: start, End: end}
}

func segment(words ...types.CaptionWord) types.CaptionSegment {
	seg := types.CaptionSegment{
		Start:    words[0].Start,
		End:      words[len(words)-1].End,
		Words:    words,
		Position: types.ScreenPositionBottom,
	}
	return seg
}

func sampleCaptions() *types.CaptionsResult {
	return &types.CaptionsResult{
		Segments: []types.CaptionSegment{
			segment(word("Hola", 0.0, 0.5), word("a", 0.5, 0.7), word("todos", 0.7, 1.2)),
			segment(word("hoy", 1.3, 1.6), word("hablamos", 1.6, 2.4)),
			segment(word("de", 2.5, 2.7), word("virales", 2.7, 3.4), word("y", 3.4, 3.5), word("hooks", 3.5, 4.1)),
		},
		Style: types.CaptionStyle{FontSize: 72, TextColor: "#FFFFFF", HighlightColor: "#FFD700"},
	}
}

func dialogueLines(track string) []string {
	var out []string
	for _, line := range strings.Split(track, "\n") {
		if strings.HasPrefix(line, "Dialogue:") {
			out = append(out, line)
		}
	}
	return out
}

func TestBottomMargin(t *testing.T) {
	assert.Equal(t, 480, BottomMargin(1920))
	assert.Equal(t, 270, BottomMargin(1080))
}

func TestAssColorFFD700(t *testing.T) {
	token, err := AssColor("#FFD700")
	require.NoError(t, err)
	assert.Equal(t, "&H0000D7FF", token)
}

func TestAssColorRoundTrip(t *testing.T) {
	for _, hex := range []string{"#FFD700", "#FFFFFF", "#000000", "#123ABC"} {
		token, err := AssColor(hex)
		require.NoError(t, err)

		back, err := AssColorToHex(token)
		require.NoError(t, err)
		assert.Equal(t, hex, back, "round trip for %s", hex)
	}
}

func TestAssColorRejectsMalformedHex(t *testing.T) {
	for _, hex := range []string{"", "#FFF", "#GGGGGG", "FFD70000"} {
		_, err := AssColor(hex)
		assert.Error(t, err, "hex %q", hex)
	}
}

func TestEncodeEmitsOneCuePerWord(t *testing.T) {
	track, err := Encode(sampleCaptions(), DefaultEncodeOptions())
	require.NoError(t, err)

	// Segments carry 3, 2 and 4 words: 9 cues total.
	assert.Len(t, dialogueLines(track), 9)
}

func TestEncodeCueRendersFullLineWithActiveWordRecolored(t *testing.T) {
	track, err := Encode(sampleCaptions(), DefaultEncodeOptions())
	require.NoError(t, err)

	lines := dialogueLines(track)

	// First cue covers "Hola" but renders all three words of the line.
	first := lines[0]
	assert.Contains(t, first, "0:00:00.00")
	assert.Contains(t, first, "0:00:00.50")
	assert.Contains(t, first, `{\c&H00D7FF&}Hola{\c&HFFFFFF&}`)
	assert.Contains(t, first, "todos")

	// Second cue highlights "a" instead; "Hola" is back in the default colour.
	second := lines[1]
	assert.Contains(t, second, `{\c&H00D7FF&}a{\c&HFFFFFF&}`)
	assert.NotContains(t, second, `{\c&H00D7FF&}Hola`)
}

func TestEncodeCueTimesMatchWordTimes(t *testing.T) {
	track, err := Encode(sampleCaptions(), DefaultEncodeOptions())
	require.NoError(t, err)

	lines := dialogueLines(track)
	// Fifth cue is the second word of the second segment: hablamos 1.6-2.4.
	assert.True(t, strings.HasPrefix(lines[4], "Dialogue: 0,0:00:01.60,0:00:02.40,Default"), lines[4])
}

func TestEncodeHeaderDeclaresResolutionAndMargin(t *testing.T) {
	track, err := Encode(sampleCaptions(), DefaultEncodeOptions())
	require.NoError(t, err)

	assert.Contains(t, track, "PlayResX: 1080")
	assert.Contains(t, track, "PlayResY: 1920")

	// Both style lines share MarginV 480 and bottom-center alignment (2).
	for _, line := range strings.Split(track, "\n") {
		if strings.HasPrefix(line, "Style:") {
			assert.Contains(t, line, ",2,40,40,480,1")
		}
	}
}

func TestEncodeMarginFollowsReferenceHeight(t *testing.T) {
	track, err := Encode(sampleCaptions(), EncodeOptions{PlayResX: 608, PlayResY: 1080})
	require.NoError(t, err)

	assert.Contains(t, track, "PlayResY: 1080")
	assert.Contains(t, track, ",270,1")
	assert.NotContains(t, track, ",480,1")
}

func TestEncodeEmphasisAndNonBottomPositions(t *testing.T) {
	captions := sampleCaptions()
	captions.Segments[0].Words[2].Emphasize = true
	captions.Segments[1].Position = types.ScreenPositionTop

	track, err := Encode(captions, DefaultEncodeOptions())
	require.NoError(t, err)

	assert.Contains(t, track, `{\b1}todos{\b0}`)

	lines := dialogueLines(track)
	assert.Contains(t, lines[3], `{\an8}`)
	assert.NotContains(t, lines[0], `{\an`)
}

func TestEncodeSanitizesMarkupCharacters(t *testing.T) {
	captions := &types.CaptionsResult{
		Segments: []types.CaptionSegment{
			segment(word("{weird}", 0, 0.5), word("te\\xt", 0.5, 1.0)),
		},
	}

	track, err := Encode(captions, DefaultEncodeOptions())
	require.NoError(t, err)
	assert.Contains(t, track, "(weird)")
	assert.Contains(t, track, `te\\xt`)
}

func TestEncodeRejectsMalformedCaptions(t *testing.T) {
	testCases := []struct {
		name     string
		captions *types.CaptionsResult
	}{
		{name: "nil captions", captions: nil},
		{name: "no segments", captions: &types.CaptionsResult{}},
		{
			name: "empty segment",
			captions: &types.CaptionsResult{
				Segments: []types.CaptionSegment{{Start: 0, End: 1}},
			},
		},
		{
			name: "word outside span",
			captions: &types.CaptionsResult{
				Segments: []types.CaptionSegment{{
					Start: 0, End: 1,
					Words: []types.CaptionWord{{Text: "late", Start: 1.5, End: 2.0}},
				}},
			},
		},
		{
			name: "reversed word times",
			captions: &types.CaptionsResult{
				Segments: []types.CaptionSegment{{
					Start: 0, End: 1,
					Words: []types.CaptionWord{{Text: "odd", Start: 0.8, End: 0.2}},
				}},
			},
		},
		{
			name: "overlapping words",
			captions: &types.CaptionsResult{
				Segments: []types.CaptionSegment{{
					Start: 0, End: 2,
					Words: []types.CaptionWord{
						{Text: "uno", Start: 0, End: 1.2},
						{Text: "dos", Start: 0.6, End: 2.0},
					},
				}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode(tc.captions, DefaultEncodeOptions())
			assert.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeCaptionInvalidSegment))
		})
	}
}

func TestFormatCueTime(t *testing.T) {
	assert.Equal(t, "0:00:00.00", formatCueTime(0))
	assert.Equal(t, "0:00:01.50", formatCueTime(1.5))
	assert.Equal(t, "0:01:01.01", formatCueTime(61.014))
	assert.Equal(t, "1:00:00.00", formatCueTime(3600))
	assert.Equal(t, "0:00:00.00", formatCueTime(-2))
}
