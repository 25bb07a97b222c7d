package types

// HighlightCandidate is one proposed clip window. Candidates are transient
// per processing run; the accepted ones become persisted clip records.
type HighlightCandidate struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
	HookText    string   `json:"hook_text"`
	Score       float64  `json:"score"`
	Tags        []string `json:"tags"`
}

// Duration returns the candidate's span in seconds.
func (c HighlightCandidate) Duration() float64 {
	return c.End - c.Start
}

// HighlightConstraints bounds a highlight selection call.
type HighlightConstraints struct {
	MaxHighlights int     `json:"max_highlights"`
	MinDuration   float64 `json:"min_duration"`
	MaxDuration   float64 `json:"max_duration"`
	Audience      string  `json:"audience,omitempty"`
	ContentType   string  `json:"content_type,omitempty"`
}

// Normalize applies the product defaults to unset constraint fields.
func (c HighlightConstraints) Normalize() HighlightConstraints {
	if c.MaxHighlights <= 0 {
		c.MaxHighlights = 5
	}
	if c.MinDuration <= 0 {
		c.MinDuration = 15
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = 60
	}
	return c
}
