package types

import (
	"fmt"
	"strings"
)

// TranscriptWord is a single spoken word with its detected time span.
// Immutable once produced by the transcription engine.
type TranscriptWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptSegment is a sentence/phrase granularity span as produced by the
// transcription engine. Used for highlight boundary reasoning.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the normalized transcription of one source video. Created
// once, read-only afterward.
type Transcript struct {
	FullText string              `json:"full_text"`
	Language string              `json:"language"`
	Segments []TranscriptSegment `json:"segments"`
	Words    []TranscriptWord    `json:"words"`
	Duration float64             `json:"duration"`
}

// Validate checks the timing invariants at the deserialization boundary so
// untyped engine output never reaches component logic.
func (t *Transcript) Validate() error {
	if len(t.Segments) == 0 {
		return fmt.Errorf("transcript has no segments")
	}
	for i, w := range t.Words {
		if strings.TrimSpace(w.Text) == "" {
			return fmt.Errorf("word %d has empty text", i)
		}
		if w.Start >= w.End {
			return fmt.Errorf("word %d %q has non-positive span: start=%.3f end=%.3f", i, w.Text, w.Start, w.End)
		}
		if i > 0 && w.Start < t.Words[i-1].Start {
			return fmt.Errorf("word %d %q starts before its predecessor: %.3f < %.3f", i, w.Text, w.Start, t.Words[i-1].Start)
		}
	}
	for i, s := range t.Segments {
		if s.Start >= s.End {
			return fmt.Errorf("segment %d has non-positive span: start=%.3f end=%.3f", i, s.Start, s.End)
		}
	}
	return nil
}

// WordsBetween returns the words whose spans overlap [start, end).
func (t *Transcript) WordsBetween(start, end float64) []TranscriptWord {
	var out []TranscriptWord
	for _, w := range t.Words {
		if w.End <= start || w.Start >= end {
			continue
		}
		out = append(out, w)
	}
	return out
}
