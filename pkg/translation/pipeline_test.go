package translation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// scriptedTranslator fails a configured number of times per transcript id
// before succeeding, and records every call.
type scriptedTranslator struct {
	failures map[string]int
	err      func(id string) error
	calls    map[string]int
}

func newScriptedTranslator() *scriptedTranslator {
	return &scriptedTranslator{
		failures: make(map[string]int),
		calls:    make(map[string]int),
		err: func(id string) error {
			return lmerrors.Transient("translate", errors.New("boom"))
		},
	}
}

func (s *scriptedTranslator) Translate(_ context.Context, req Request) (string, error) {
	s.calls[req.TranscriptID]++
	if s.failures[req.TranscriptID] > 0 {
		s.failures[req.TranscriptID]--
		return "", s.err(req.TranscriptID)
	}
	return "<" + req.Text + ">", nil
}

func testTranscript(t *testing.T, id string, lang meeting.Language) meeting.Transcript {
	t.Helper()
	tr, err := meeting.NewTranscript(meeting.TranscriptRecord{
		ID:        id,
		Text:      "text " + id,
		Timestamp: 0,
		Language:  lang,
		IsFinal:   true,
	})
	require.NoError(t, err)
	return tr
}

func newTestPipeline(tr Translator, delays *[]time.Duration) *Pipeline {
	return NewPipeline(tr, PipelineOptions{
		Metrics: NewMetrics(prometheus.NewRegistry()),
		Sleep: func(_ context.Context, d time.Duration) error {
			if delays != nil {
				*delays = append(*delays, d)
			}
			return nil
		},
	})
}

func TestTranslateBatchSuccess(t *testing.T) {
	st := newScriptedTranslator()
	p := newTestPipeline(st, nil)

	items := []meeting.Transcript{
		testTranscript(t, "a", meeting.LanguageKorean),
		testTranscript(t, "b", meeting.LanguageKorean),
	}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	got, ok := p.Translation("a")
	require.True(t, ok)
	assert.Equal(t, "<text a>", got.TranslatedText())
	assert.Equal(t, "a", got.TranscriptID())
	assert.Len(t, p.Translations(), 2)
	assert.Empty(t, p.FailedIDs())
	assert.False(t, p.Translating())
}

func TestTranslateBatchDeduplicatesByID(t *testing.T) {
	st := newScriptedTranslator()
	p := newTestPipeline(st, nil)

	items := []meeting.Transcript{testTranscript(t, "a", meeting.LanguageKorean)}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	assert.Equal(t, 1, st.calls["a"], "a settled id must never be re-issued")
}

func TestTranslateBatchSkipsInterims(t *testing.T) {
	st := newScriptedTranslator()
	p := newTestPipeline(st, nil)

	interim, err := meeting.NewTranscript(meeting.TranscriptRecord{
		ID:        "i",
		Text:      "still talking",
		Timestamp: 0,
		Language:  meeting.LanguageKorean,
		IsFinal:   false,
	})
	require.NoError(t, err)

	p.TranslateBatch(context.Background(), []meeting.Transcript{interim}, meeting.LanguageEnglish)
	assert.Zero(t, st.calls["i"])
}

func TestTranslateBatchSkipsSameLanguage(t *testing.T) {
	st := newScriptedTranslator()
	p := newTestPipeline(st, nil)

	items := []meeting.Transcript{testTranscript(t, "a", meeting.LanguageEnglish)}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	assert.Zero(t, st.calls["a"])
	assert.True(t, p.Skipped("a"))
	_, ok := p.Translation("a")
	assert.False(t, ok)
	assert.Empty(t, p.FailedIDs())
}

func TestTransientFailureRetriesWithBackoff(t *testing.T) {
	st := newScriptedTranslator()
	st.failures["a"] = 2
	var delays []time.Duration
	p := newTestPipeline(st, &delays)

	items := []meeting.Transcript{testTranscript(t, "a", meeting.LanguageKorean)}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	assert.Equal(t, 3, st.calls["a"])
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
	_, ok := p.Translation("a")
	assert.True(t, ok, "third attempt succeeds inside the budget")
}

func TestRetryBudgetExhaustedFails(t *testing.T) {
	st := newScriptedTranslator()
	st.failures["a"] = 10
	var delays []time.Duration
	p := newTestPipeline(st, &delays)

	items := []meeting.Transcript{testTranscript(t, "a", meeting.LanguageKorean)}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	assert.Equal(t, 3, st.calls["a"], "three attempts, then give up")
	assert.Equal(t, []string{"a"}, p.FailedIDs())
	assert.Len(t, delays, 2)
}

func TestPermanentErrorFailsImmediately(t *testing.T) {
	st := newScriptedTranslator()
	st.failures["a"] = 10
	st.err = func(string) error { return errors.New("bad request") }
	p := newTestPipeline(st, nil)

	items := []meeting.Transcript{testTranscript(t, "a", meeting.LanguageKorean)}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	assert.Equal(t, 1, st.calls["a"], "permanent errors get no retry")
	assert.Equal(t, []string{"a"}, p.FailedIDs())
}

func TestOneBadItemDoesNotSinkTheBatch(t *testing.T) {
	st := newScriptedTranslator()
	st.failures["bad"] = 10
	p := newTestPipeline(st, nil)

	items := []meeting.Transcript{
		testTranscript(t, "bad", meeting.LanguageKorean),
		testTranscript(t, "good", meeting.LanguageKorean),
	}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	assert.Equal(t, []string{"bad"}, p.FailedIDs())
	_, ok := p.Translation("good")
	assert.True(t, ok)
}

func TestRetryFailedReissuesOnlyFailed(t *testing.T) {
	st := newScriptedTranslator()
	st.failures["a"] = 3 // exhausts the first budget, succeeds on retry
	p := newTestPipeline(st, nil)

	items := []meeting.Transcript{
		testTranscript(t, "a", meeting.LanguageKorean),
		testTranscript(t, "b", meeting.LanguageKorean),
	}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)
	require.Equal(t, []string{"a"}, p.FailedIDs())
	callsToB := st.calls["b"]

	p.RetryFailed(context.Background(), items, meeting.LanguageEnglish)

	assert.Empty(t, p.FailedIDs())
	_, ok := p.Translation("a")
	assert.True(t, ok)
	assert.Equal(t, callsToB, st.calls["b"], "already translated ids stay settled")
}

func TestEveryIDReachesExactlyOneOutcome(t *testing.T) {
	st := newScriptedTranslator()
	st.failures["f1"] = 10
	st.failures["f2"] = 10
	p := newTestPipeline(st, nil)

	var items []meeting.Transcript
	for i := 0; i < 10; i++ {
		items = append(items, testTranscript(t, fmt.Sprintf("ok%d", i), meeting.LanguageKorean))
	}
	items = append(items,
		testTranscript(t, "f1", meeting.LanguageKorean),
		testTranscript(t, "f2", meeting.LanguageKorean),
		testTranscript(t, "same", meeting.LanguageEnglish),
	)

	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)

	assert.False(t, p.Translating())
	translated := len(p.Translations())
	failed := len(p.FailedIDs())
	skippedCount := 0
	for _, tr := range items {
		outcomes := 0
		if _, ok := p.Translation(tr.ID()); ok {
			outcomes++
		}
		for _, id := range p.FailedIDs() {
			if id == tr.ID() {
				outcomes++
			}
		}
		if p.Skipped(tr.ID()) {
			outcomes++
			skippedCount++
		}
		assert.Equal(t, 1, outcomes, "id %s must have exactly one outcome", tr.ID())
	}
	assert.Equal(t, len(items), translated+failed+skippedCount)
}

func TestClearResetsOutcomes(t *testing.T) {
	st := newScriptedTranslator()
	p := newTestPipeline(st, nil)

	items := []meeting.Transcript{testTranscript(t, "a", meeting.LanguageKorean)}
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)
	require.Len(t, p.Translations(), 1)

	p.Clear()
	assert.Empty(t, p.Translations())
	assert.Empty(t, p.FailedIDs())

	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)
	assert.Equal(t, 2, st.calls["a"], "cleared ids can be issued again")
}

func TestCancelledContextLeavesItemsPending(t *testing.T) {
	st := newScriptedTranslator()
	st.failures["a"] = 1
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPipeline(st, PipelineOptions{
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})

	items := []meeting.Transcript{testTranscript(t, "a", meeting.LanguageKorean)}
	p.TranslateBatch(ctx, items, meeting.LanguageEnglish)

	assert.Empty(t, p.FailedIDs(), "cancellation is not a terminal failure")
	_, ok := p.Translation("a")
	assert.False(t, ok)

	// A later batch picks the item back up.
	p.TranslateBatch(context.Background(), items, meeting.LanguageEnglish)
	_, ok = p.Translation("a")
	assert.True(t, ok)
}
