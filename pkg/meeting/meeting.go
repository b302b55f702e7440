package meeting

import (
	"time"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

// Status is the meeting lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusRecording, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// validTransitions is the full lifecycle table. Completed is terminal.
var validTransitions = map[Status][]Status{
	StatusIdle:      {StatusRecording},
	StatusRecording: {StatusPaused, StatusCompleted},
	StatusPaused:    {StatusRecording, StatusCompleted},
	StatusCompleted: {},
}

// CanTransition reports whether the lifecycle table allows from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Meeting is the aggregate root. It is immutable: every mutator returns a
// new Meeting with UpdatedAt refreshed and leaves the receiver untouched, so
// callers can hold old references as stable snapshots.
type Meeting struct {
	id             string
	userID         string
	hostID         string
	code           string
	title          string
	createdAt      time.Time
	updatedAt      time.Time
	sourceLanguage Language
	targetLanguage Language
	transcripts    []Transcript
	summary        *Summary
	status         Status
	participants   []Participant
}

// Snapshot is the serializable form of a Meeting. Rebuilding a Meeting from
// its own Snapshot yields identical observable fields.
type Snapshot struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id,omitempty"`
	HostID         string              `json:"host_id,omitempty"`
	Code           string              `json:"code,omitempty"`
	Title          string              `json:"title"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	SourceLanguage Language            `json:"source_language"`
	TargetLanguage Language            `json:"target_language"`
	Transcripts    []TranscriptRecord  `json:"transcripts"`
	Summary        *SummaryRecord      `json:"summary,omitempty"`
	Status         Status              `json:"status"`
	Participants   []ParticipantRecord `json:"participants,omitempty"`
}

// New constructs a fresh idle Meeting.
func New(id, title string, source, target Language, now time.Time) (Meeting, error) {
	return FromSnapshot(Snapshot{
		ID:             id,
		Title:          title,
		CreatedAt:      now,
		UpdatedAt:      now,
		SourceLanguage: source,
		TargetLanguage: target,
		Status:         StatusIdle,
	})
}

// FromSnapshot validates and rebuilds a Meeting from its serializable form.
func FromSnapshot(snap Snapshot) (Meeting, error) {
	if snap.ID == "" {
		return Meeting{}, lmerrors.Validation("meeting id cannot be empty")
	}
	if snap.Title == "" {
		return Meeting{}, lmerrors.Validation("meeting title cannot be empty")
	}
	if !snap.SourceLanguage.Valid() {
		return Meeting{}, lmerrors.Validation("unsupported source language %q", snap.SourceLanguage)
	}
	if !snap.TargetLanguage.Valid() {
		return Meeting{}, lmerrors.Validation("unsupported target language %q", snap.TargetLanguage)
	}
	if !snap.Status.Valid() {
		return Meeting{}, lmerrors.Validation("unknown meeting status %q", snap.Status)
	}

	transcripts := make([]Transcript, 0, len(snap.Transcripts))
	for _, rec := range snap.Transcripts {
		t, err := NewTranscript(rec)
		if err != nil {
			return Meeting{}, err
		}
		transcripts = append(transcripts, t)
	}

	participants := make([]Participant, 0, len(snap.Participants))
	for _, rec := range snap.Participants {
		p, err := NewParticipant(rec)
		if err != nil {
			return Meeting{}, err
		}
		participants = append(participants, p)
	}

	var summary *Summary
	if snap.Summary != nil {
		s, err := NewSummary(*snap.Summary)
		if err != nil {
			return Meeting{}, err
		}
		summary = &s
	}

	return Meeting{
		id:             snap.ID,
		userID:         snap.UserID,
		hostID:         snap.HostID,
		code:           snap.Code,
		title:          snap.Title,
		createdAt:      snap.CreatedAt,
		updatedAt:      snap.UpdatedAt,
		sourceLanguage: snap.SourceLanguage,
		targetLanguage: snap.TargetLanguage,
		transcripts:    transcripts,
		summary:        summary,
		status:         snap.Status,
		participants:   participants,
	}, nil
}

func (m Meeting) ID() string               { return m.id }
func (m Meeting) UserID() string           { return m.userID }
func (m Meeting) HostID() string           { return m.hostID }
func (m Meeting) Code() string             { return m.code }
func (m Meeting) Title() string            { return m.title }
func (m Meeting) CreatedAt() time.Time     { return m.createdAt }
func (m Meeting) UpdatedAt() time.Time     { return m.updatedAt }
func (m Meeting) SourceLanguage() Language { return m.sourceLanguage }
func (m Meeting) TargetLanguage() Language { return m.targetLanguage }
func (m Meeting) Status() Status           { return m.status }

// Transcripts returns a copy of the transcript list in arrival order.
func (m Meeting) Transcripts() []Transcript {
	return append([]Transcript(nil), m.transcripts...)
}

// TranscriptCount returns the number of accumulated transcripts.
func (m Meeting) TranscriptCount() int { return len(m.transcripts) }

// Summary returns the meeting summary, if one has been set.
func (m Meeting) Summary() (Summary, bool) {
	if m.summary == nil {
		return Summary{}, false
	}
	return *m.summary, true
}

// Participants returns a copy of the participant list in join order.
func (m Meeting) Participants() []Participant {
	return append([]Participant(nil), m.participants...)
}

// ParticipantCount returns the number of participants.
func (m Meeting) ParticipantCount() int { return len(m.participants) }

// IsHost reports whether userID is the meeting host.
func (m Meeting) IsHost(userID string) bool {
	return m.hostID != "" && m.hostID == userID
}

// Duration is the recording span in milliseconds: max − min transcript
// timestamp, 0 when there are no transcripts. Derived, never stored.
func (m Meeting) Duration() int64 {
	if len(m.transcripts) == 0 {
		return 0
	}
	min, max := m.transcripts[0].Timestamp(), m.transcripts[0].Timestamp()
	for _, t := range m.transcripts[1:] {
		if ts := t.Timestamp(); ts < min {
			min = ts
		} else if ts > max {
			max = ts
		}
	}
	return max - min
}

// transition moves the meeting to a new status or fails with an
// InvalidTransitionError, leaving the receiver unchanged either way.
func (m Meeting) transition(to Status, now time.Time) (Meeting, error) {
	if !CanTransition(m.status, to) {
		return m, &lmerrors.InvalidTransitionError{From: string(m.status), To: string(to)}
	}
	next := m.clone()
	next.status = to
	next.updatedAt = now
	return next, nil
}

// Start moves the meeting into recording (from idle, or resuming from paused).
func (m Meeting) Start(now time.Time) (Meeting, error) {
	return m.transition(StatusRecording, now)
}

// Pause suspends an active recording.
func (m Meeting) Pause(now time.Time) (Meeting, error) {
	return m.transition(StatusPaused, now)
}

// Complete finishes the meeting. Completed is terminal.
func (m Meeting) Complete(now time.Time) (Meeting, error) {
	return m.transition(StatusCompleted, now)
}

// AddTranscript appends a transcript. Status-independent: it never changes
// the lifecycle state.
func (m Meeting) AddTranscript(t Transcript, now time.Time) Meeting {
	next := m.clone()
	next.transcripts = append(next.transcripts, t)
	next.updatedAt = now
	return next
}

// SetSummary attaches (or replaces) the meeting summary.
func (m Meeting) SetSummary(s Summary, now time.Time) Meeting {
	next := m.clone()
	next.summary = &s
	next.updatedAt = now
	return next
}

// AddParticipant adds a participant, deduplicating by user id. When the user
// is already present the receiver is returned unchanged.
func (m Meeting) AddParticipant(p Participant, now time.Time) Meeting {
	for _, existing := range m.participants {
		if existing.UserID() == p.UserID() {
			return m
		}
	}
	next := m.clone()
	next.participants = append(next.participants, p)
	next.updatedAt = now
	return next
}

// RemoveParticipant removes the participant with the given user id.
func (m Meeting) RemoveParticipant(userID string, now time.Time) Meeting {
	next := m.clone()
	kept := make([]Participant, 0, len(next.participants))
	for _, p := range next.participants {
		if p.UserID() != userID {
			kept = append(kept, p)
		}
	}
	next.participants = kept
	next.updatedAt = now
	return next
}

// WithOwner returns a copy owned and hosted by the given user.
func (m Meeting) WithOwner(userID string) Meeting {
	next := m.clone()
	next.userID = userID
	next.hostID = userID
	return next
}

// WithCode returns a copy carrying the shareable room code.
func (m Meeting) WithCode(code string) Meeting {
	next := m.clone()
	next.code = code
	return next
}

// clone copies m with fresh backing slices so appends on the copy can never
// alias the receiver's storage.
func (m Meeting) clone() Meeting {
	next := m
	next.transcripts = append([]Transcript(nil), m.transcripts...)
	next.participants = append([]Participant(nil), m.participants...)
	return next
}

// Snapshot returns the serializable form of m.
func (m Meeting) Snapshot() Snapshot {
	transcripts := make([]TranscriptRecord, len(m.transcripts))
	for i, t := range m.transcripts {
		transcripts[i] = t.Record()
	}
	var participants []ParticipantRecord
	if len(m.participants) > 0 {
		participants = make([]ParticipantRecord, len(m.participants))
		for i, p := range m.participants {
			participants[i] = p.Record()
		}
	}
	var summary *SummaryRecord
	if m.summary != nil {
		rec := m.summary.Record()
		summary = &rec
	}
	return Snapshot{
		ID:             m.id,
		UserID:         m.userID,
		HostID:         m.hostID,
		Code:           m.code,
		Title:          m.title,
		CreatedAt:      m.createdAt,
		UpdatedAt:      m.updatedAt,
		SourceLanguage: m.sourceLanguage,
		TargetLanguage: m.targetLanguage,
		Transcripts:    transcripts,
		Summary:        summary,
		Status:         m.status,
		Participants:   participants,
	}
}
