package translation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// tracerName identifies pipeline spans.
const tracerName = "translation"

// PipelineOptions configures a Pipeline. Zero values get sensible defaults.
type PipelineOptions struct {
	Policy  RetryPolicy
	Metrics *Metrics
	Logger  logging.Logger

	// Sleep and Now and NewID are injectable for tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
	NewID func() string
}

// Pipeline translates final transcripts exactly once each. Every transcript
// id reaches one terminal outcome: translated, failed (after the retry budget
// is spent or a permanent error), or skipped (already in the target
// language). Terminal ids are never re-issued; RetryFailed moves failed ids
// back to pending explicitly.
type Pipeline struct {
	translator Translator
	policy     RetryPolicy
	metrics    *Metrics
	log        logging.Logger
	tracer     trace.Tracer
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
	newID      func() string

	mu         sync.Mutex
	order      []string
	translated map[string]meeting.Translation
	failed     map[string]error
	skipped    map[string]struct{}
	inflight   map[string]struct{}
}

// NewPipeline builds a Pipeline around the given translator.
func NewPipeline(tr Translator, opts PipelineOptions) *Pipeline {
	if opts.Policy == (RetryPolicy{}) {
		opts.Policy = DefaultRetryPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Pipeline{
		translator: tr,
		policy:     opts.Policy,
		metrics:    opts.Metrics,
		log:        opts.Logger.With(logging.F("component", "translation")),
		tracer:     otel.Tracer(tracerName),
		sleep:      opts.Sleep,
		now:        opts.Now,
		newID:      opts.NewID,
		translated: make(map[string]meeting.Translation),
		failed:     make(map[string]error),
		skipped:    make(map[string]struct{}),
		inflight:   make(map[string]struct{}),
	}
}

// TranslateBatch issues translation work for every final transcript that has
// no outcome yet. Per-item failures are recorded, never returned: a bad
// transcript cannot sink the batch. Processing stops early only when ctx is
// done, leaving unprocessed items pending for a later batch.
func (p *Pipeline) TranslateBatch(ctx context.Context, items []meeting.Transcript, target meeting.Language) {
	for _, tr := range items {
		if ctx.Err() != nil {
			return
		}
		if !tr.IsFinal() {
			continue
		}
		if !p.claim(tr) {
			continue
		}
		if tr.Language() == target {
			p.settleSkipped(tr.ID())
			continue
		}
		p.translateOne(ctx, tr, target)
	}
}

// RetryFailed moves the failed ids found in items back to pending and issues
// them again with a fresh retry budget.
func (p *Pipeline) RetryFailed(ctx context.Context, items []meeting.Transcript, target meeting.Language) {
	p.mu.Lock()
	retry := make([]meeting.Transcript, 0, len(items))
	for _, tr := range items {
		if _, ok := p.failed[tr.ID()]; ok {
			delete(p.failed, tr.ID())
			retry = append(retry, tr)
		}
	}
	p.mu.Unlock()

	p.TranslateBatch(ctx, retry, target)
}

// Clear drops all recorded outcomes. In-flight items keep their claim so they
// still settle exactly once.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = nil
	p.translated = make(map[string]meeting.Translation)
	p.failed = make(map[string]error)
	p.skipped = make(map[string]struct{})
}

// Translating reports whether at least one transcript is being translated.
func (p *Pipeline) Translating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight) > 0
}

// Translation returns the translation for a transcript id, if it succeeded.
func (p *Pipeline) Translation(id string) (meeting.Translation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.translated[id]
	return t, ok
}

// Translations returns all successful translations in settlement order.
func (p *Pipeline) Translations() []meeting.Translation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]meeting.Translation, 0, len(p.translated))
	for _, id := range p.order {
		if t, ok := p.translated[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// FailedIDs returns the transcript ids whose translation failed permanently.
func (p *Pipeline) FailedIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.failed))
	for _, id := range p.order {
		if _, ok := p.failed[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Skipped reports whether the transcript was already in the target language.
func (p *Pipeline) Skipped(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.skipped[id]
	return ok
}

// claim reserves an id for processing. It refuses ids that are in flight or
// already terminal, which is what deduplicates re-submitted batches.
func (p *Pipeline) claim(tr meeting.Transcript) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := tr.ID()
	if _, ok := p.inflight[id]; ok {
		return false
	}
	if _, ok := p.translated[id]; ok {
		return false
	}
	if _, ok := p.failed[id]; ok {
		return false
	}
	if _, ok := p.skipped[id]; ok {
		return false
	}
	p.inflight[id] = struct{}{}
	p.order = append(p.order, id)
	if p.metrics != nil {
		p.metrics.InFlight.Inc()
	}
	return true
}

// release drops an id's claim without a terminal outcome, so a later batch
// can issue it again.
func (p *Pipeline) release(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, id)
	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	if p.metrics != nil {
		p.metrics.InFlight.Dec()
	}
}

func (p *Pipeline) settleTranslated(id string, t meeting.Translation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, id)
	p.translated[id] = t
	if p.metrics != nil {
		p.metrics.InFlight.Dec()
		p.metrics.TranslationsTotal.WithLabelValues(outcomeTranslated).Inc()
	}
}

func (p *Pipeline) settleFailed(id string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, id)
	p.failed[id] = err
	if p.metrics != nil {
		p.metrics.InFlight.Dec()
		p.metrics.TranslationsTotal.WithLabelValues(outcomeFailed).Inc()
	}
}

func (p *Pipeline) settleSkipped(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, id)
	p.skipped[id] = struct{}{}
	if p.metrics != nil {
		p.metrics.InFlight.Dec()
		p.metrics.TranslationsTotal.WithLabelValues(outcomeSkipped).Inc()
	}
}

// translateOne runs the retry loop for a single claimed transcript.
func (p *Pipeline) translateOne(ctx context.Context, tr meeting.Transcript, target meeting.Language) {
	ctx, span := p.tracer.Start(ctx, "translation.translate",
		trace.WithAttributes(
			attribute.String("transcript_id", tr.ID()),
			attribute.String("source", string(tr.Language())),
			attribute.String("target", string(target)),
		),
	)
	defer span.End()

	req := Request{
		TranscriptID: tr.ID(),
		Text:         tr.Text(),
		Source:       tr.Language(),
		Target:       target,
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		started := p.now()
		text, err := p.translator.Translate(ctx, req)
		if p.metrics != nil {
			p.metrics.TranslationSeconds.Observe(p.now().Sub(started).Seconds())
		}
		if err == nil {
			t, buildErr := meeting.NewTranslation(meeting.TranslationRecord{
				ID:             p.newID(),
				TranscriptID:   tr.ID(),
				SourceText:     tr.Text(),
				TranslatedText: text,
				SourceLanguage: tr.Language(),
				TargetLanguage: target,
				CreatedAt:      p.now(),
			})
			if buildErr != nil {
				lastErr = buildErr
				break
			}
			span.SetAttributes(attribute.Int("attempts", attempt))
			p.settleTranslated(tr.ID(), t)
			return
		}

		lastErr = err
		if !p.policy.ShouldRetry(err, attempt) {
			break
		}
		if p.metrics != nil {
			p.metrics.RetriesTotal.Inc()
		}
		p.log.Debug("translation attempt failed, retrying",
			logging.F("transcript_id", tr.ID()),
			logging.F("attempt", attempt),
			logging.Err(err))
		if sleepErr := p.sleep(ctx, p.policy.Backoff(attempt)); sleepErr != nil {
			// Context gone: leave the item pending rather than failed so it
			// can be issued again later.
			p.release(tr.ID())
			span.SetStatus(codes.Error, sleepErr.Error())
			return
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	p.log.Warn("translation failed",
		logging.F("transcript_id", tr.ID()),
		logging.Err(lastErr))
	p.settleFailed(tr.ID(), lastErr)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
