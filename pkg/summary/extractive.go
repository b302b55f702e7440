package summary

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// Extractive is a local, offline summarizer. It scores each final transcript
// sentence by the average corpus frequency of its words and keeps the top
// scorers in original order: frequent-topic sentences surface, order stays
// chronological.
type Extractive struct {
	now   func() time.Time
	newID func() string
}

// NewExtractive returns a ready-to-use extractive summarizer.
func NewExtractive() *Extractive {
	return &Extractive{now: time.Now, newID: uuid.NewString}
}

func (e *Extractive) Summarize(_ context.Context, transcripts []meeting.Transcript, lang meeting.Language, meetingID string) (meeting.Summary, error) {
	var sentences []string
	for _, t := range transcripts {
		if !t.IsFinal() {
			continue
		}
		if s := strings.TrimSpace(t.Text()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return meeting.NewSummary(meeting.SummaryRecord{
			ID:        e.newID(),
			MeetingID: meetingID,
			KeyPoints: []string{"No transcripts available"},
			FullText:  "No transcripts to summarize.",
			Language:  lang,
			CreatedAt: e.now(),
		})
	}

	freq := wordFrequency(sentences)

	type scored struct {
		sentence string
		index    int
		score    float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		ranked[i] = scored{sentence: s, index: i, score: scoreSentence(s, freq)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	pick := func(count int) []string {
		top := make([]scored, count)
		copy(top, ranked[:count])
		sort.Slice(top, func(i, j int) bool { return top[i].index < top[j].index })
		out := make([]string, count)
		for i, s := range top {
			out[i] = s.sentence
		}
		return out
	}

	// Key points: ~30% of the sentences, between 3 and 7. The full text
	// keeps ~50%, between 3 and 10. Both bounded by what exists.
	keyPoints := pick(clamp(ceilFrac(len(sentences), 0.3), 3, 7, len(sentences)))
	body := pick(clamp(ceilFrac(len(sentences), 0.5), 3, 10, len(sentences)))

	return meeting.NewSummary(meeting.SummaryRecord{
		ID:        e.newID(),
		MeetingID: meetingID,
		KeyPoints: keyPoints,
		FullText:  strings.Join(body, " "),
		Language:  lang,
		CreatedAt: e.now(),
	})
}

func ceilFrac(n int, f float64) int {
	v := int(float64(n) * f)
	if float64(v) < float64(n)*f {
		v++
	}
	return v
}

func clamp(v, lo, hi, avail int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	if v > avail {
		v = avail
	}
	return v
}

// wordFrequency counts token occurrences across all sentences.
func wordFrequency(sentences []string) map[string]int {
	freq := make(map[string]int)
	for _, s := range sentences {
		for _, w := range tokenize(s) {
			freq[w]++
		}
	}
	return freq
}

// scoreSentence averages the corpus frequency of the sentence's words, so
// long sentences get no free advantage.
func scoreSentence(sentence string, freq map[string]int) float64 {
	words := tokenize(sentence)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += freq[w]
	}
	return float64(total) / float64(len(words))
}

// tokenize lowercases, strips everything but letters and digits, and drops
// single-rune tokens. Works for both spaced (English) and particle-heavy
// (Korean, Japanese) text well enough for frequency scoring.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, text)

	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) > 1 {
			words = append(words, w)
		}
	}
	return words
}
