package meeting

import (
	"time"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

// Summary captures the key points and full text of a summarized meeting.
type Summary struct {
	id        string
	meetingID string
	keyPoints []string
	fullText  string
	language  Language
	createdAt time.Time
}

// SummaryRecord is the serializable form of a Summary.
type SummaryRecord struct {
	ID        string    `json:"id"`
	MeetingID string    `json:"meeting_id"`
	KeyPoints []string  `json:"key_points"`
	FullText  string    `json:"full_text"`
	Language  Language  `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSummary validates and constructs a Summary.
func NewSummary(rec SummaryRecord) (Summary, error) {
	if len(rec.KeyPoints) == 0 {
		return Summary{}, lmerrors.Validation("summary must have at least one key point")
	}
	if rec.FullText == "" {
		return Summary{}, lmerrors.Validation("summary full text cannot be empty")
	}
	return Summary{
		id:        rec.ID,
		meetingID: rec.MeetingID,
		keyPoints: append([]string(nil), rec.KeyPoints...),
		fullText:  rec.FullText,
		language:  rec.Language,
		createdAt: rec.CreatedAt,
	}, nil
}

func (s Summary) ID() string           { return s.id }
func (s Summary) MeetingID() string    { return s.meetingID }
func (s Summary) FullText() string     { return s.fullText }
func (s Summary) Language() Language   { return s.language }
func (s Summary) CreatedAt() time.Time { return s.createdAt }

// KeyPoints returns a copy of the key points.
func (s Summary) KeyPoints() []string {
	return append([]string(nil), s.keyPoints...)
}

// KeyPointCount returns the number of key points.
func (s Summary) KeyPointCount() int { return len(s.keyPoints) }

// Record returns the serializable form of s.
func (s Summary) Record() SummaryRecord {
	return SummaryRecord{
		ID:        s.id,
		MeetingID: s.meetingID,
		KeyPoints: append([]string(nil), s.keyPoints...),
		FullText:  s.fullText,
		Language:  s.language,
		CreatedAt: s.createdAt,
	}
}
