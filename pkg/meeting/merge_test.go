package meeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeTranscript(t *testing.T, id string, ts int64, text string) Transcript {
	t.Helper()
	tr, err := NewTranscript(TranscriptRecord{
		ID:        id,
		Text:      text,
		Timestamp: ts,
		Language:  LanguageEnglish,
		IsFinal:   true,
	})
	require.NoError(t, err)
	return tr
}

func TestMergeOrdersByTimestampAndPrefersLocal(t *testing.T) {
	local := []Transcript{
		mergeTranscript(t, "a", 0, "local a"),
		mergeTranscript(t, "b", 10, "local b"),
	}
	remote := []Transcript{
		mergeTranscript(t, "b", 10, "remote echo of b"),
		mergeTranscript(t, "c", 5, "remote c"),
	}

	merged := Merge(local, remote)

	require.Len(t, merged, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{merged[0].ID(), merged[1].ID(), merged[2].ID()})
	assert.Equal(t, "local b", merged[2].Text(), "local copy wins on id collision")
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	local := []Transcript{mergeTranscript(t, "x", 7, "x")}
	remote := []Transcript{mergeTranscript(t, "y", 3, "y")}
	localBefore := append([]Transcript(nil), local...)
	remoteBefore := append([]Transcript(nil), remote...)

	_ = Merge(local, remote)

	assert.Equal(t, localBefore, local)
	assert.Equal(t, remoteBefore, remote)
}

func TestMergeEmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))

	only := []Transcript{mergeTranscript(t, "a", 1, "a")}
	assert.Len(t, Merge(only, nil), 1)
	assert.Len(t, Merge(nil, only), 1)
}
