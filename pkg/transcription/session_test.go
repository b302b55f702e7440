package transcription

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeRecognizer struct {
	supported  bool
	handler    Handler
	startCalls int
	stopCalls  int
	startErr   error
	lang       meeting.Language
}

func (r *fakeRecognizer) Supported() bool { return r.supported }

func (r *fakeRecognizer) Start(lang meeting.Language) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.startCalls++
	r.lang = lang
	return nil
}

func (r *fakeRecognizer) Stop() { r.stopCalls++ }

func (r *fakeRecognizer) Subscribe(h Handler) error {
	if r.handler != nil {
		return lmerrors.ErrConflict
	}
	r.handler = h
	return nil
}

func (r *fakeRecognizer) Unsubscribe() { r.handler = nil }

type fakeSaver struct {
	saved []meeting.Meeting
	err   error
}

func (s *fakeSaver) Save(_ context.Context, m meeting.Meeting) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, m)
	return nil
}

func newFixture(t *testing.T) (*Manager, *fakeRecognizer, *fakeClock, *fakeSaver, meeting.Meeting) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)}
	rec := &fakeRecognizer{supported: true}
	saver := &fakeSaver{}
	ids := 0
	mgr := NewManager(rec, Options{
		Saver: saver,
		Now:   clock.Now,
		NewID: func() string {
			ids++
			return fmt.Sprintf("tr-%d", ids)
		},
	})
	m, err := meeting.New("m-1", "Standup", meeting.LanguageEnglish, meeting.LanguageKorean, clock.Now())
	require.NoError(t, err)
	return mgr, rec, clock, saver, m
}

func TestStartRecordingUnsupported(t *testing.T) {
	mgr, rec, _, _, m := newFixture(t)
	rec.supported = false

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	assert.True(t, lmerrors.IsUnsupported(err))
	assert.Zero(t, rec.startCalls)
}

func TestStartRecordingRejectsCompletedMeeting(t *testing.T) {
	mgr, _, clock, _, m := newFixture(t)
	m, err := m.Start(clock.Now())
	require.NoError(t, err)
	m, err = m.Complete(clock.Now())
	require.NoError(t, err)

	_, err = mgr.StartRecording(m, meeting.LanguageEnglish)
	assert.True(t, lmerrors.IsInvalidState(err))
}

func TestTimestampsContinuousAcrossPauseResume(t *testing.T) {
	mgr, rec, clock, _, m := newFixture(t)

	m, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)

	rec.handler.OnResult(Result{Text: "one", IsFinal: true})
	clock.Advance(3 * time.Second)
	rec.handler.OnResult(Result{Text: "two", IsFinal: true})

	_, err = mgr.PauseRecording()
	require.NoError(t, err)

	// Wall-clock time passes while paused; recorded time must not.
	clock.Advance(2 * time.Minute)
	m, err = mgr.StartRecording(mgr.Meeting(), meeting.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusRecording, m.Status())

	clock.Advance(time.Second)
	rec.handler.OnResult(Result{Text: "three", IsFinal: true})

	got := mgr.Transcripts()
	require.Len(t, got, 3)
	stamps := []int64{got[0].Timestamp(), got[1].Timestamp(), got[2].Timestamp()}
	assert.Equal(t, []int64{0, 3000, 4000}, stamps)
}

func TestSessionCounterIncrementsOnResume(t *testing.T) {
	mgr, rec, _, _, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 0, mgr.Session())
	rec.handler.OnResult(Result{Text: "first segment", IsFinal: true})

	_, err = mgr.PauseRecording()
	require.NoError(t, err)
	_, err = mgr.StartRecording(mgr.Meeting(), meeting.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Session())
	rec.handler.OnResult(Result{Text: "second segment", IsFinal: true})

	got := mgr.Transcripts()
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Session())
	assert.Equal(t, 1, got[1].Session())
}

func TestFailedResumeDoesNotAdvanceSession(t *testing.T) {
	mgr, rec, _, _, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)
	_, err = mgr.PauseRecording()
	require.NoError(t, err)

	rec.startErr = fmt.Errorf("engine busy")
	_, err = mgr.StartRecording(mgr.Meeting(), meeting.LanguageEnglish)
	require.Error(t, err)
	assert.Equal(t, 0, mgr.Session(), "a failed resume must not consume a segment index")

	rec.startErr = nil
	_, err = mgr.StartRecording(mgr.Meeting(), meeting.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Session())

	rec.handler.OnResult(Result{Text: "back again", IsFinal: true})
	got := mgr.Transcripts()
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Session())
}

func TestInterimResultsReplaceEachOther(t *testing.T) {
	mgr, rec, _, _, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)

	rec.handler.OnResult(Result{Text: "already final", IsFinal: true})
	rec.handler.OnResult(Result{Text: "he"})
	rec.handler.OnResult(Result{Text: "hel"})
	rec.handler.OnResult(Result{Text: "hello"})

	got := mgr.Transcripts()
	require.Len(t, got, 2, "interims collapse into one trailing entry")
	assert.Equal(t, "already final", got[0].Text())
	assert.Equal(t, "hello", got[1].Text())
	assert.False(t, got[1].IsFinal())

	rec.handler.OnResult(Result{Text: "hello there", IsFinal: true})
	got = mgr.Transcripts()
	require.Len(t, got, 2)
	assert.True(t, got[1].IsFinal())
	assert.Equal(t, "hello there", got[1].Text())

	// Only finals reach the meeting.
	assert.Equal(t, 2, mgr.Meeting().TranscriptCount())
}

func TestOnFinalCallbackFiresForFinalsOnly(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	rec := &fakeRecognizer{supported: true}
	var finals []string
	mgr := NewManager(rec, Options{
		Now:     clock.Now,
		OnFinal: func(tr meeting.Transcript) { finals = append(finals, tr.Text()) },
	})
	m, err := meeting.New("m-1", "Standup", meeting.LanguageEnglish, meeting.LanguageKorean, clock.Now())
	require.NoError(t, err)

	_, err = mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)

	rec.handler.OnResult(Result{Text: "interim"})
	rec.handler.OnResult(Result{Text: "done", IsFinal: true})

	assert.Equal(t, []string{"done"}, finals)
}

func TestAutoRestartWhileRecording(t *testing.T) {
	mgr, rec, clock, _, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)
	require.Equal(t, 1, rec.startCalls)

	clock.Advance(2 * time.Second)
	rec.handler.OnEnd()
	assert.Equal(t, 2, rec.startCalls, "engine end mid-recording triggers a restart")
	assert.True(t, mgr.Recording())

	// The timeline continues where the dead segment left off.
	clock.Advance(time.Second)
	rec.handler.OnResult(Result{Text: "after restart", IsFinal: true})
	got := mgr.Transcripts()
	require.Len(t, got, 1)
	assert.Equal(t, int64(3000), got[0].Timestamp())
}

func TestNoRestartAfterPause(t *testing.T) {
	mgr, rec, _, _, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)
	_, err = mgr.PauseRecording()
	require.NoError(t, err)

	rec.handler.OnEnd()
	assert.Equal(t, 1, rec.startCalls, "explicit pause must not restart the engine")
	assert.False(t, mgr.Recording())
}

func TestPauseWhileNotRecordingIsNoop(t *testing.T) {
	mgr, rec, _, _, _ := newFixture(t)
	_, err := mgr.PauseRecording()
	assert.NoError(t, err)
	assert.Zero(t, rec.stopCalls)
}

func TestStopRecordingCompletesAndSaves(t *testing.T) {
	mgr, rec, _, saver, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)
	rec.handler.OnResult(Result{Text: "only line", IsFinal: true})

	done, err := mgr.StopRecording(context.Background())
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusCompleted, done.Status())
	assert.Equal(t, 1, done.TranscriptCount())
	require.Len(t, saver.saved, 1)
	assert.Equal(t, meeting.StatusCompleted, saver.saved[0].Status())
	assert.Nil(t, rec.handler, "recognizer released after stop")
}

func TestSaveAndLeavePausesAndSaves(t *testing.T) {
	mgr, _, _, saver, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)

	left, err := mgr.SaveAndLeave(context.Background())
	require.NoError(t, err)
	assert.Equal(t, meeting.StatusPaused, left.Status(), "leaving keeps the meeting resumable")
	require.Len(t, saver.saved, 1)
	assert.Equal(t, meeting.StatusPaused, saver.saved[0].Status())
}

func TestLoadTranscriptsRestoresSessionAndOffset(t *testing.T) {
	mgr, rec, clock, _, m := newFixture(t)

	saved, err := meeting.NewTranscript(meeting.TranscriptRecord{
		ID:        "old-1",
		Text:      "from last time",
		Timestamp: 5000,
		Language:  meeting.LanguageEnglish,
		IsFinal:   true,
		Session:   2,
	})
	require.NoError(t, err)
	m, err = m.Start(clock.Now())
	require.NoError(t, err)
	m, err = m.Pause(clock.Now())
	require.NoError(t, err)
	m = m.AddTranscript(saved, clock.Now())

	mgr.LoadTranscripts(m)
	_, err = mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 3, mgr.Session())

	clock.Advance(500 * time.Millisecond)
	rec.handler.OnResult(Result{Text: "resumed", IsFinal: true})

	got := mgr.Transcripts()
	require.Len(t, got, 2)
	assert.Equal(t, int64(5500), got[1].Timestamp())
	assert.Equal(t, 3, got[1].Session())
}

func TestEngineErrorIsSurfacedNotFatal(t *testing.T) {
	mgr, rec, _, _, m := newFixture(t)

	_, err := mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)

	rec.handler.OnError(fmt.Errorf("no-speech"))
	assert.EqualError(t, mgr.Err(), "no-speech")
	assert.True(t, mgr.Recording())

	rec.handler.OnResult(Result{Text: "still works", IsFinal: true})
	assert.Len(t, mgr.Transcripts(), 1)
}
