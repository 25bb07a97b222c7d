package types

// ScreenPosition anchors a caption segment on the frame. Only bottom is
// exercised by the current product surface; the enum exists for forward
// compatibility.
type ScreenPosition string

const (
	ScreenPositionTop    ScreenPosition = "top"
	ScreenPositionCenter ScreenPosition = "center"
	ScreenPositionBottom ScreenPosition = "bottom"
)

// CaptionWord is one display word carrying the exact timing of its source
// transcript word. Text must come verbatim from the transcript.
type CaptionWord struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Emphasize bool    `json:"emphasize"`
}

// CaptionSegment is a 2-4 word display line. Its span equals the min/max of
// the contained word spans.
type CaptionSegment struct {
	Start    float64        `json:"start"`
	End      float64        `json:"end"`
	Words    []CaptionWord  `json:"words"`
	Position ScreenPosition `json:"position"`
}

type CaptionStyle struct {
	FontSize       int    `json:"font_size"`
	TextColor      string `json:"text_color"`
	HighlightColor string `json:"highlight_color"`
}

// CaptionsResult is the full caption payload for one clip. Derived and
// recomputable; the clip record stores it as JSON.
type CaptionsResult struct {
	Segments []CaptionSegment `json:"segments"`
	Style    CaptionStyle     `json:"style"`
	HookText string           `json:"hook_text"`
}

// CaptionOptions controls a caption generation call.
type CaptionOptions struct {
	MaxWordsPerSegment int    `json:"max_words_per_segment"`
	EmphasizeKeywords  bool   `json:"emphasize_keywords"`
	IncludeHook        bool   `json:"include_hook"`
	Language           string `json:"language"`
}

// DefaultCaptionOptions returns the product defaults.
func DefaultCaptionOptions() CaptionOptions {
	return CaptionOptions{
		MaxWordsPerSegment: 3,
		EmphasizeKeywords:  true,
		IncludeHook:        true,
		Language:           "en",
	}
}

// Normalize clamps option values into their supported ranges.
func (o CaptionOptions) Normalize() CaptionOptions {
	if o.MaxWordsPerSegment < 2 || o.MaxWordsPerSegment > 4 {
		o.MaxWordsPerSegment = 3
	}
	if o.Language == "" {
		o.Language = "en"
	}
	return o
}
