package summary

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

func summaryTranscript(t *testing.T, id, text string, final bool) meeting.Transcript {
	t.Helper()
	tr, err := meeting.NewTranscript(meeting.TranscriptRecord{
		ID:        id,
		Text:      text,
		Timestamp: 0,
		Language:  meeting.LanguageEnglish,
		IsFinal:   final,
	})
	require.NoError(t, err)
	return tr
}

func TestGenerateRejectsEmptyTranscripts(t *testing.T) {
	g := NewGenerator(NewExtractive())
	m, err := meeting.New("m-1", "Standup", meeting.LanguageEnglish, meeting.LanguageKorean, time.Now())
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), m, meeting.LanguageEnglish)
	assert.True(t, lmerrors.IsValidation(err))
}

func TestGenerateMinimalSummaryWhenNoFinals(t *testing.T) {
	g := NewGenerator(NewExtractive())
	m, err := meeting.New("m-1", "Standup", meeting.LanguageEnglish, meeting.LanguageKorean, time.Now())
	require.NoError(t, err)
	m = m.AddTranscript(summaryTranscript(t, "i-1", "still talking", false), time.Now())

	s, err := g.Generate(context.Background(), m, meeting.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, []string{"No transcripts available"}, s.KeyPoints())
	assert.Equal(t, "No transcripts to summarize.", s.FullText())
	assert.Equal(t, "m-1", s.MeetingID())
}

func TestExtractiveRanksFrequentTopics(t *testing.T) {
	e := NewExtractive()

	transcripts := []meeting.Transcript{
		summaryTranscript(t, "a", "The deployment pipeline failed again today", true),
		summaryTranscript(t, "b", "Someone mentioned lunch plans", true),
		summaryTranscript(t, "c", "We must fix the deployment pipeline before release", true),
		summaryTranscript(t, "d", "The pipeline fix needs the deployment credentials", true),
		summaryTranscript(t, "e", "Weather is nice", true),
	}

	s, err := e.Summarize(context.Background(), transcripts, meeting.LanguageEnglish, "m-1")
	require.NoError(t, err)

	joined := ""
	for _, kp := range s.KeyPoints() {
		joined += kp + " "
	}
	assert.Contains(t, joined, "deployment", "the recurring topic must surface in the key points")
}

func TestExtractiveKeyPointsKeepChronologicalOrder(t *testing.T) {
	e := NewExtractive()

	var transcripts []meeting.Transcript
	for i := 0; i < 12; i++ {
		transcripts = append(transcripts,
			summaryTranscript(t, fmt.Sprintf("t-%d", i), fmt.Sprintf("point number %d about shared topic", i), true))
	}

	s, err := e.Summarize(context.Background(), transcripts, meeting.LanguageEnglish, "m-1")
	require.NoError(t, err)

	kps := s.KeyPoints()
	require.True(t, len(kps) >= 3 && len(kps) <= 7, "key points stay within bounds, got %d", len(kps))

	// Selected sentences must appear in their original relative order.
	lastIdx := -1
	for _, kp := range kps {
		idx := -1
		for i, tr := range transcripts {
			if tr.Text() == kp {
				idx = i
				break
			}
		}
		require.GreaterOrEqual(t, idx, 0)
		assert.Greater(t, idx, lastIdx)
		lastIdx = idx
	}
}

func TestExtractiveBoundsScaleWithInput(t *testing.T) {
	e := NewExtractive()

	// Three sentences: minimum floor is bounded by what exists.
	small := []meeting.Transcript{
		summaryTranscript(t, "a", "first sentence here", true),
		summaryTranscript(t, "b", "second sentence here", true),
		summaryTranscript(t, "c", "third sentence here", true),
	}
	s, err := e.Summarize(context.Background(), small, meeting.LanguageEnglish, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 3, s.KeyPointCount())

	// Forty sentences: caps apply.
	var large []meeting.Transcript
	for i := 0; i < 40; i++ {
		large = append(large, summaryTranscript(t, fmt.Sprintf("l-%d", i), fmt.Sprintf("sentence about item %d", i), true))
	}
	s, err = e.Summarize(context.Background(), large, meeting.LanguageEnglish, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 7, s.KeyPointCount(), "key points cap at 7")
}

func TestExtractiveIgnoresInterimAndBlankEntries(t *testing.T) {
	e := NewExtractive()

	transcripts := []meeting.Transcript{
		summaryTranscript(t, "a", "real content about the project", true),
		summaryTranscript(t, "b", "half typed inter", false),
		summaryTranscript(t, "c", "   ", true),
		summaryTranscript(t, "d", "more real content about the project", true),
	}

	s, err := e.Summarize(context.Background(), transcripts, meeting.LanguageEnglish, "m-1")
	require.NoError(t, err)
	for _, kp := range s.KeyPoints() {
		assert.NotContains(t, kp, "inter")
		assert.NotEqual(t, "", kp)
	}
}

func TestExtractiveHandlesKoreanText(t *testing.T) {
	e := NewExtractive()

	transcripts := []meeting.Transcript{
		summaryTranscript(t, "a", "오늘 회의에서 배포 일정을 논의했습니다", true),
		summaryTranscript(t, "b", "배포 일정은 다음 주 금요일입니다", true),
		summaryTranscript(t, "c", "점심 메뉴 이야기", true),
	}

	s, err := e.Summarize(context.Background(), transcripts, meeting.LanguageKorean, "m-1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.KeyPointCount(), 3)
	assert.NotEmpty(t, s.FullText())
}
