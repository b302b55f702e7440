// Package summary produces meeting summaries from accumulated transcripts,
// either locally (extractive scoring) or through an LLM.
package summary

import (
	"context"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// Summarizer turns a meeting's transcripts into a Summary in the requested
// language. Implementations must return a minimal summary, not an error,
// when none of the transcripts are final.
type Summarizer interface {
	Summarize(ctx context.Context, transcripts []meeting.Transcript, lang meeting.Language, meetingID string) (meeting.Summary, error)
}

// Generator is the summary use case: it guards the empty-input case and
// delegates to a Summarizer.
type Generator struct {
	summarizer Summarizer
}

// NewGenerator builds a Generator around the given summarizer.
func NewGenerator(s Summarizer) *Generator {
	return &Generator{summarizer: s}
}

// Generate produces a summary for the meeting's transcripts. An empty
// transcript list is a caller error; a list with only interim entries is
// valid and yields a minimal summary.
func (g *Generator) Generate(ctx context.Context, m meeting.Meeting, lang meeting.Language) (meeting.Summary, error) {
	transcripts := m.Transcripts()
	if len(transcripts) == 0 {
		return meeting.Summary{}, lmerrors.Validation("cannot generate summary without transcripts")
	}
	return g.summarizer.Summarize(ctx, transcripts, lang, m.ID())
}
