// Package whisper talks to an OpenAI-compatible speech-to-text endpoint and
// normalizes its verbose output into the internal transcript model.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
)

type Client struct {
	resty  *resty.Client
	apiKey string
	model  string
}

func NewClient(baseUrl, apiKey, model, proxyAddr string) *Client {
	r := resty.New().SetBaseURL(strings.TrimSuffix(baseUrl, "/"))
	if proxyAddr != "" {
		r.SetProxy(proxyAddr)
	}
	return &Client{
		resty:  r,
		apiKey: apiKey,
		model:  model,
	}
}

// verboseTranscription mirrors the verbose_json response shape.
type verboseTranscription struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Transcribe uploads the media file and requests segment- and word-level
// timestamps. Returns a validated transcript.
func (c *Client) Transcribe(ctx context.Context, mediaFile string, language string) (*types.Transcript, error) {
	file, err := os.Open(mediaFile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileNotFound, "cannot open media file", err)
	}
	defer file.Close()

	formData := map[string]string{
		"model":           c.model,
		"response_format": "verbose_json",
	}
	if language != "" {
		formData["language"] = language
	}

	// timestamp_granularities must go out as repeated singular fields. A
	// JSON-encoded array value is accepted by the server but silently yields
	// zero word-level timestamps.
	granularities := url.Values{
		"timestamp_granularities[]": []string{"word", "segment"},
	}

	resp, err := c.resty.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetFileReader("file", filepath.Base(mediaFile), file).
		SetFormData(formData).
		SetFormDataFromValues(granularities).
		Post("/audio/transcriptions")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTranscribeFailed, "transcription request failed", err)
	}
	if resp.IsError() {
		log.GetLogger().Error("transcription endpoint returned error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return nil, apperrors.WrapWithDetail(apperrors.CodeTranscribeFailed,
			"transcription request failed", resp.String(),
			fmt.Errorf("status %d", resp.StatusCode()))
	}

	var raw verboseTranscription
	if err = json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTranscribeFailed, "cannot decode transcription response", err)
	}

	transcript := normalize(raw)
	if len(transcript.Words) == 0 {
		return nil, apperrors.ErrNoWordTimestamps
	}
	if err = transcript.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidTranscript, "transcription output failed validation", err)
	}

	log.GetLogger().Info("transcription completed",
		zap.String("language", transcript.Language),
		zap.Float64("duration", transcript.Duration),
		zap.Int("segments", len(transcript.Segments)),
		zap.Int("words", len(transcript.Words)))
	return transcript, nil
}

func normalize(raw verboseTranscription) *types.Transcript {
	t := &types.Transcript{
		FullText: strings.TrimSpace(raw.Text),
		Language: raw.Language,
		Duration: raw.Duration,
	}
	for _, s := range raw.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		t.Segments = append(t.Segments, types.TranscriptSegment{Text: text, Start: s.Start, End: s.End})
	}
	for _, w := range raw.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		t.Words = append(t.Words, types.TranscriptWord{Text: text, Start: w.Start, End: w.End})
	}
	return t
}
