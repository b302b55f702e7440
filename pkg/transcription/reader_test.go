package transcription

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

func TestReaderRecognizerFeedsLines(t *testing.T) {
	rec := NewReaderRecognizer(strings.NewReader("hello there\n\nsecond line\n"))
	mgr := NewManager(rec, Options{})

	m, err := meeting.New("m-1", "Standup", meeting.LanguageEnglish, meeting.LanguageKorean, time.Now())
	require.NoError(t, err)

	_, err = mgr.StartRecording(m, meeting.LanguageEnglish)
	require.NoError(t, err)

	// The reader drains on its own goroutine; wait for both lines and the
	// end-of-input signal.
	assert.Eventually(t, func() bool {
		return len(mgr.Transcripts()) == 2 && !mgr.Recording()
	}, time.Second, 5*time.Millisecond)

	got := mgr.Transcripts()
	require.Len(t, got, 2)
	assert.Equal(t, "hello there", got[0].Text())
	assert.Equal(t, "second line", got[1].Text())
	assert.True(t, got[0].IsFinal())
}

func TestReaderRecognizerExhaustedStartFails(t *testing.T) {
	rec := NewReaderRecognizer(strings.NewReader("only line\n"))
	require.NoError(t, rec.Subscribe(&collectHandler{}))
	require.NoError(t, rec.Start(meeting.LanguageEnglish))

	assert.Eventually(t, func() bool {
		return lmerrors.IsTransient(rec.Start(meeting.LanguageEnglish))
	}, time.Second, 5*time.Millisecond, "a drained reader refuses to restart")
}

type collectHandler struct{}

func (collectHandler) OnResult(Result) {}
func (collectHandler) OnError(error)   {}
func (collectHandler) OnEnd()          {}
