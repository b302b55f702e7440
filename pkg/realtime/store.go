// Package realtime coordinates shared meeting rooms: room lifecycle,
// presence, transcript fan-out, and status broadcast between the host and
// remote participants.
package realtime

import (
	"context"
	"time"

	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// Unsubscribe tears down a single subscription. Safe to call more than once.
type Unsubscribe func()

// StatusEvent is a broadcast meeting status change. At orders concurrent
// updates: the latest write wins.
type StatusEvent struct {
	Status meeting.Status `json:"status"`
	At     time.Time      `json:"at"`
}

// PresenceKind distinguishes joins from leaves.
type PresenceKind string

const (
	PresenceJoined PresenceKind = "joined"
	PresenceLeft   PresenceKind = "left"
)

// PresenceEvent is a broadcast participant change.
type PresenceEvent struct {
	Kind        PresenceKind              `json:"kind"`
	Participant meeting.ParticipantRecord `json:"participant"`
}

// RoomStore is the remote room backend. Rooms are addressed by meeting code.
type RoomStore interface {
	// CreateRoom opens a room for the meeting, keyed by its code.
	CreateRoom(ctx context.Context, m meeting.Meeting) error

	// JoinRoom adds a participant to the room and returns the room's meeting
	// snapshot. A nil snapshot with a nil error means no such room exists:
	// an unknown code is an expected outcome, not a failure.
	JoinRoom(ctx context.Context, code string, p meeting.Participant) (*meeting.Snapshot, error)

	// Room returns the room's meeting snapshot without registering anyone
	// and without emitting presence. Same nil/nil convention as JoinRoom.
	// Used when a participant reconnects: they are already a member.
	Room(ctx context.Context, code string) (*meeting.Snapshot, error)

	// LeaveRoom removes a participant from the room.
	LeaveRoom(ctx context.Context, code, userID string) error

	// PushTranscript broadcasts a final transcript to the room.
	PushTranscript(ctx context.Context, code string, tr meeting.Transcript) error

	// UpdateStatus broadcasts a status change. Stores apply last-write-wins
	// ordering on the event timestamp.
	UpdateStatus(ctx context.Context, code string, ev StatusEvent) error

	// WatchTranscripts delivers broadcast transcripts to fn until
	// unsubscribed.
	WatchTranscripts(ctx context.Context, code string, fn func(meeting.TranscriptRecord)) (Unsubscribe, error)

	// WatchStatus delivers broadcast status changes to fn until unsubscribed.
	WatchStatus(ctx context.Context, code string, fn func(StatusEvent)) (Unsubscribe, error)

	// WatchPresence delivers joins and leaves to fn until unsubscribed.
	WatchPresence(ctx context.Context, code string, fn func(PresenceEvent)) (Unsubscribe, error)
}
