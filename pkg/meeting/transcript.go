package meeting

import (
	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

// Speaker identifies who produced a transcript. The zero value means the
// speaker is unknown (single-user local recording).
type Speaker struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Transcript is one speech-recognition result. Timestamp is milliseconds
// relative to the start of the whole recording, continuous across
// pause/resume. Session is the recording segment index that produced it.
type Transcript struct {
	id        string
	text      string
	timestamp int64
	language  Language
	isFinal   bool
	speaker   Speaker
	session   int
}

// TranscriptRecord is the serializable form of a Transcript, used by the
// persistence and realtime collaborators.
type TranscriptRecord struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
	Language  Language `json:"language"`
	IsFinal   bool     `json:"is_final"`
	Speaker   Speaker  `json:"speaker,omitempty"`
	Session   int      `json:"session,omitempty"`
}

// NewTranscript validates and constructs a Transcript.
func NewTranscript(rec TranscriptRecord) (Transcript, error) {
	if rec.ID == "" {
		return Transcript{}, lmerrors.Validation("transcript id cannot be empty")
	}
	if rec.Text == "" {
		return Transcript{}, lmerrors.Validation("transcript text cannot be empty")
	}
	if rec.Timestamp < 0 {
		return Transcript{}, lmerrors.Validation("transcript timestamp must be non-negative")
	}
	if !rec.Language.Valid() {
		return Transcript{}, lmerrors.Validation("unsupported language %q", rec.Language)
	}
	return Transcript{
		id:        rec.ID,
		text:      rec.Text,
		timestamp: rec.Timestamp,
		language:  rec.Language,
		isFinal:   rec.IsFinal,
		speaker:   rec.Speaker,
		session:   rec.Session,
	}, nil
}

func (t Transcript) ID() string         { return t.id }
func (t Transcript) Text() string       { return t.text }
func (t Transcript) Timestamp() int64   { return t.timestamp }
func (t Transcript) Language() Language { return t.language }
func (t Transcript) IsFinal() bool      { return t.isFinal }
func (t Transcript) Speaker() Speaker   { return t.speaker }
func (t Transcript) Session() int       { return t.session }

// Record returns the serializable form of t.
func (t Transcript) Record() TranscriptRecord {
	return TranscriptRecord{
		ID:        t.id,
		Text:      t.text,
		Timestamp: t.timestamp,
		Language:  t.language,
		IsFinal:   t.isFinal,
		Speaker:   t.speaker,
		Session:   t.session,
	}
}
