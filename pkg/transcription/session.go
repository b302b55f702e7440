package transcription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// Saver persists the meeting when a recording session ends. Satisfied by the
// storage repositories.
type Saver interface {
	Save(ctx context.Context, m meeting.Meeting) error
}

// Options configures a Manager. Zero values get sensible defaults.
type Options struct {
	// Saver receives the meeting on StopRecording and SaveAndLeave. Optional.
	Saver Saver

	// OnFinal is invoked for every final transcript, after it has been
	// appended. Used to forward finals to the translation pipeline and the
	// realtime room. Optional.
	OnFinal func(meeting.Transcript)

	// Speaker is attached to every transcript the manager produces.
	Speaker meeting.Speaker

	Logger logging.Logger

	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// Manager drives one recording session at a time: it owns the recognizer
// subscription, rewrites engine timestamps into recording-relative time that
// stays continuous across pause/resume, replaces interim results in place,
// and restarts the engine when it gives up mid-recording.
type Manager struct {
	rec    Recognizer
	saver  Saver
	onFin  func(meeting.Transcript)
	spk    meeting.Speaker
	log    logging.Logger
	now    func() time.Time
	newID  func() string

	mu          sync.Mutex
	m           meeting.Meeting
	loaded      bool
	transcripts []meeting.Transcript
	session     int
	lang        meeting.Language

	// elapsedOffset is the recorded milliseconds accumulated by previous
	// segments; segmentStart marks when the current segment began. A
	// transcript's timestamp is elapsedOffset + (now - segmentStart).
	elapsedOffset int64
	segmentStart  time.Time
	running       bool

	lastErr error
}

// NewManager builds a Manager around the given recognizer.
func NewManager(rec Recognizer, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Manager{
		rec:   rec,
		saver: opts.Saver,
		onFin: opts.OnFinal,
		spk:   opts.Speaker,
		log:   opts.Logger.With(logging.F("component", "transcription")),
		now:   opts.Now,
		newID: opts.NewID,
	}
}

// StartRecording begins (or resumes) recording for the given meeting. The
// first start on an idle meeting resets the session counter and the elapsed
// offset; resuming from paused increments the session counter so transcripts
// record which segment produced them.
func (s *Manager) StartRecording(m meeting.Meeting, lang meeting.Language) (meeting.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rec.Supported() {
		return m, lmerrors.ErrUnsupported
	}
	if !lang.Valid() {
		return m, lmerrors.Validation("unsupported language %q", lang)
	}

	now := s.now()
	wasIdle := m.Status() == meeting.StatusIdle
	next, err := m.Start(now)
	if err != nil {
		return m, err
	}

	if err := s.rec.Subscribe(s); err != nil && !lmerrors.IsConflict(err) {
		return m, err
	}
	if err := s.rec.Start(lang); err != nil {
		s.rec.Unsubscribe()
		return m, err
	}

	// Counter and offset move only once the engine is actually running, so a
	// failed start does not consume a segment index.
	if wasIdle {
		s.transcripts = nil
		s.session = 0
		s.elapsedOffset = 0
	} else {
		s.session++
	}

	s.m = next
	s.loaded = true
	s.lang = lang
	s.segmentStart = now
	s.running = true
	s.lastErr = nil

	s.log.Info("recording started",
		logging.F("meeting_id", next.ID()),
		logging.F("language", string(lang)),
		logging.F("session", s.session))
	return next, nil
}

// PauseRecording suspends the active recording, freezing the elapsed offset
// so the next segment continues the same timeline. Calling it while not
// recording is a no-op.
func (s *Manager) PauseRecording() (meeting.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || s.m.Status() != meeting.StatusRecording {
		return s.m, nil
	}

	now := s.now()
	next, err := s.m.Pause(now)
	if err != nil {
		return s.m, err
	}
	s.freezeLocked(now)
	s.rec.Stop()
	s.m = next

	s.log.Info("recording paused",
		logging.F("meeting_id", next.ID()),
		logging.F("elapsed_ms", s.elapsedOffset))
	return next, nil
}

// StopRecording completes the meeting and persists it. The recognizer is
// released; the manager can be reused for another meeting afterwards.
func (s *Manager) StopRecording(ctx context.Context) (meeting.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return meeting.Meeting{}, lmerrors.ErrInvalidState
	}

	now := s.now()
	if s.running {
		s.freezeLocked(now)
		s.rec.Stop()
	}
	s.rec.Unsubscribe()

	next, err := s.m.Complete(now)
	if err != nil {
		return s.m, err
	}
	s.m = next

	if s.saver != nil {
		if err := s.saver.Save(ctx, next); err != nil {
			return next, err
		}
	}
	s.log.Info("recording stopped",
		logging.F("meeting_id", next.ID()),
		logging.F("transcripts", next.TranscriptCount()))
	return next, nil
}

// SaveAndLeave pauses an active recording (leaving the meeting resumable) and
// persists the current state. Used when the local participant exits without
// ending the meeting.
func (s *Manager) SaveAndLeave(ctx context.Context) (meeting.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return meeting.Meeting{}, lmerrors.ErrInvalidState
	}

	now := s.now()
	if s.m.Status() == meeting.StatusRecording {
		next, err := s.m.Pause(now)
		if err != nil {
			return s.m, err
		}
		s.freezeLocked(now)
		s.rec.Stop()
		s.m = next
	}
	s.rec.Unsubscribe()

	if s.saver != nil {
		if err := s.saver.Save(ctx, s.m); err != nil {
			return s.m, err
		}
	}
	s.log.Info("saved and left", logging.F("meeting_id", s.m.ID()))
	return s.m, nil
}

// LoadTranscripts seeds the manager with previously saved transcripts (e.g.
// when resuming a paused meeting from storage). The session counter picks up
// after the highest saved segment, and the elapsed offset after the latest
// timestamp.
func (s *Manager) LoadTranscripts(m meeting.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = m
	s.loaded = true
	s.transcripts = m.Transcripts()
	s.session = 0
	s.elapsedOffset = 0
	for _, t := range s.transcripts {
		if t.Session() > s.session {
			s.session = t.Session()
		}
		if ts := t.Timestamp(); ts > s.elapsedOffset {
			s.elapsedOffset = ts
		}
	}
}

// Transcripts returns a copy of the accumulated transcripts, finals in
// arrival order with at most the trailing entries interim.
func (s *Manager) Transcripts() []meeting.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]meeting.Transcript(nil), s.transcripts...)
}

// Meeting returns the manager's current view of the meeting.
func (s *Manager) Meeting() meeting.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m
}

// Recording reports whether a recognition segment is active.
func (s *Manager) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Session returns the current recording segment index.
func (s *Manager) Session() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Err returns the most recent engine error, if any. Errors do not stop the
// session; they are surfaced here for the UI layer.
func (s *Manager) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// freezeLocked folds the current segment into the elapsed offset. Callers
// hold s.mu.
func (s *Manager) freezeLocked(now time.Time) {
	if !s.running {
		return
	}
	s.elapsedOffset += now.Sub(s.segmentStart).Milliseconds()
	s.running = false
}

// OnResult implements Handler. Final results are appended to the transcript
// list and the meeting; interim results replace the trailing interim entries
// so the caller always sees at most one in-flight line.
func (s *Manager) OnResult(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || res.Text == "" {
		return
	}

	now := s.now()
	ts := s.elapsedOffset + now.Sub(s.segmentStart).Milliseconds()
	tr, err := meeting.NewTranscript(meeting.TranscriptRecord{
		ID:        s.newID(),
		Text:      res.Text,
		Timestamp: ts,
		Language:  s.lang,
		IsFinal:   res.IsFinal,
		Speaker:   s.spk,
		Session:   s.session,
	})
	if err != nil {
		s.log.Warn("dropping malformed result", logging.Err(err))
		return
	}

	s.transcripts = trimTrailingInterims(s.transcripts)
	s.transcripts = append(s.transcripts, tr)

	if res.IsFinal {
		s.m = s.m.AddTranscript(tr, now)
		if s.onFin != nil {
			s.onFin(tr)
		}
	}
}

// OnError implements Handler. The error is recorded but the session keeps
// going; most engine errors (no-speech, network hiccup) are followed by an
// end event which triggers a restart.
func (s *Manager) OnError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.log.Warn("recognition error", logging.Err(err))
}

// OnEnd implements Handler. When the engine terminates while the meeting is
// still logically recording, the segment is folded into the offset and the
// engine restarted so the timeline stays continuous.
func (s *Manager) OnEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.m.Status() != meeting.StatusRecording {
		return
	}

	now := s.now()
	s.freezeLocked(now)

	if err := s.rec.Start(s.lang); err != nil {
		s.lastErr = err
		s.log.Error("recognizer restart failed", logging.Err(err))
		return
	}
	s.segmentStart = now
	s.running = true
	s.log.Debug("recognizer restarted", logging.F("meeting_id", s.m.ID()))
}

// trimTrailingInterims drops the run of non-final entries at the tail. Finals
// are never removed.
func trimTrailingInterims(list []meeting.Transcript) []meeting.Transcript {
	end := len(list)
	for end > 0 && !list[end-1].IsFinal() {
		end--
	}
	return list[:end]
}
