package types

import "context"

// Transcriber produces a validated transcript from a local media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaFile string, language string) (*Transcript, error)
}

// ChatCompleter is the language-model collaborator. Deterministic turns off
// sampling creativity; caption grouping must use it because grouping is a
// partition of existing data, not a generative operation.
type ChatCompleter interface {
	ChatCompletion(systemPrompt, userPrompt string) (string, error)
	DeterministicCompletion(systemPrompt, userPrompt string) (string, error)
}

// Uploader hands finished artifacts to the external storage collaborator and
// returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string, objectKey string) (string, error)
}
