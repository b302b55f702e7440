// Package translation turns final transcripts into translations, with
// per-item retry, exponential backoff, and a terminal outcome for every
// transcript id.
package translation

import (
	"context"

	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// Request is one unit of translation work.
type Request struct {
	TranscriptID string
	Text         string
	Source       meeting.Language
	Target       meeting.Language
}

// Translator performs a single translation call. Implementations wrap remote
// services; they signal retryable failures with errors.TransientError.
type Translator interface {
	Translate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to the Translator interface.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Translate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
