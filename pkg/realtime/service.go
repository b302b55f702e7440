package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
	"github.com/lingomeet/lingomeet/pkg/storage"
)

// Handlers bundles the room subscriptions a participant needs. Nil handlers
// skip that stream.
type Handlers struct {
	OnTranscript func(meeting.TranscriptRecord)
	OnStatus     func(StatusEvent)
	OnPresence   func(PresenceEvent)
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Logger logging.Logger

	// Now, NewID and NewCode are injectable for tests.
	Now     func() time.Time
	NewID   func() string
	NewCode func() string
}

// Coordinator runs shared meetings on top of a RoomStore and the local
// repository. Local persistence is authoritative; the room is a live relay.
type Coordinator struct {
	store   RoomStore
	repo    storage.MeetingRepository
	log     logging.Logger
	now     func() time.Time
	newID   func() string
	newCode func() string
}

// NewCoordinator builds a Coordinator.
func NewCoordinator(store RoomStore, repo storage.MeetingRepository, opts CoordinatorOptions) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.NewCode == nil {
		opts.NewCode = meeting.NewCode
	}
	return &Coordinator{
		store:   store,
		repo:    repo,
		log:     opts.Logger.With(logging.F("component", "realtime")),
		now:     opts.Now,
		newID:   opts.NewID,
		newCode: opts.NewCode,
	}
}

// CreateMeeting creates a shared meeting: a persisted meeting with a fresh
// room code, and its room. The operation is all-or-nothing: when the room
// cannot be opened the persisted meeting is rolled back and the whole call
// fails.
func (c *Coordinator) CreateMeeting(ctx context.Context, title string, source, target meeting.Language, host meeting.Participant) (meeting.Meeting, error) {
	now := c.now()
	m, err := meeting.New(c.newID(), title, source, target, now)
	if err != nil {
		return meeting.Meeting{}, err
	}
	m = m.WithOwner(host.UserID()).WithCode(c.newCode())
	m = m.AddParticipant(host, now)

	if err := c.repo.Save(ctx, m); err != nil {
		return meeting.Meeting{}, fmt.Errorf("failed to persist meeting: %w", err)
	}
	if err := c.store.CreateRoom(ctx, m); err != nil {
		if delErr := c.repo.Delete(ctx, m.ID()); delErr != nil {
			c.log.Warn("rollback of persisted meeting failed",
				logging.F("meeting_id", m.ID()), logging.Err(delErr))
		}
		return meeting.Meeting{}, fmt.Errorf("failed to open room: %w", err)
	}

	c.log.Info("shared meeting created",
		logging.F("meeting_id", m.ID()),
		logging.F("code", m.Code()))
	return m, nil
}

// Join adds a participant to the room with the given code. An unknown code
// returns (nil, nil): the caller renders "no such meeting", not an error.
func (c *Coordinator) Join(ctx context.Context, code string, p meeting.Participant) (*meeting.Meeting, error) {
	code = meeting.NormalizeCode(code)
	if !meeting.ValidCode(code) {
		return nil, lmerrors.Validation("malformed meeting code %q", code)
	}

	snap, err := c.store.JoinRoom(ctx, code, p)
	if err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", code, err)
	}
	if snap == nil {
		return nil, nil
	}

	m, err := meeting.FromSnapshot(*snap)
	if err != nil {
		return nil, fmt.Errorf("room %s holds a corrupt meeting: %w", code, err)
	}
	m = m.AddParticipant(p, c.now())

	c.log.Info("joined room",
		logging.F("code", code),
		logging.F("user_id", p.UserID()))
	return &m, nil
}

// Reconnect re-establishes a participant's view of the room after a dropped
// connection. The participant is still a member, so the room state is read
// back without a join: no re-registration, no presence broadcast. Callers
// re-attach their streams with Subscribe afterwards. An unknown code returns
// (nil, nil), matching Join: the room may have expired while offline.
func (c *Coordinator) Reconnect(ctx context.Context, code string, p meeting.Participant) (*meeting.Meeting, error) {
	code = meeting.NormalizeCode(code)
	if !meeting.ValidCode(code) {
		return nil, lmerrors.Validation("malformed meeting code %q", code)
	}

	snap, err := c.store.Room(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to reconnect to room %s: %w", code, err)
	}
	if snap == nil {
		return nil, nil
	}

	m, err := meeting.FromSnapshot(*snap)
	if err != nil {
		return nil, fmt.Errorf("room %s holds a corrupt meeting: %w", code, err)
	}
	m = m.AddParticipant(p, c.now())

	c.log.Debug("reconnected to room",
		logging.F("code", code),
		logging.F("user_id", p.UserID()))
	return &m, nil
}

// Leave removes the participant from the room. Remote failures are logged
// and swallowed: leaving must always succeed locally.
func (c *Coordinator) Leave(ctx context.Context, code, userID string) {
	if err := c.store.LeaveRoom(ctx, meeting.NormalizeCode(code), userID); err != nil {
		c.log.Warn("leave notification failed",
			logging.F("code", code),
			logging.F("user_id", userID),
			logging.Err(err))
	}
}

// PushTranscript broadcasts a final transcript to the room.
func (c *Coordinator) PushTranscript(ctx context.Context, code string, tr meeting.Transcript) error {
	return c.store.PushTranscript(ctx, meeting.NormalizeCode(code), tr)
}

// UpdateStatus broadcasts a status change stamped with the current time, so
// concurrent updates resolve to the latest write.
func (c *Coordinator) UpdateStatus(ctx context.Context, code string, status meeting.Status) error {
	return c.store.UpdateStatus(ctx, meeting.NormalizeCode(code), StatusEvent{
		Status: status,
		At:     c.now(),
	})
}

// Subscribe attaches the given handlers to the room's streams. The returned
// Unsubscribe tears all of them down together; a partial failure during
// setup tears down what was already attached and fails.
func (c *Coordinator) Subscribe(ctx context.Context, code string, h Handlers) (Unsubscribe, error) {
	code = meeting.NormalizeCode(code)

	var subs []Unsubscribe
	teardown := func() {
		for _, u := range subs {
			u()
		}
	}

	if h.OnTranscript != nil {
		u, err := c.store.WatchTranscripts(ctx, code, h.OnTranscript)
		if err != nil {
			teardown()
			return nil, fmt.Errorf("failed to watch transcripts: %w", err)
		}
		subs = append(subs, u)
	}
	if h.OnStatus != nil {
		u, err := c.store.WatchStatus(ctx, code, h.OnStatus)
		if err != nil {
			teardown()
			return nil, fmt.Errorf("failed to watch status: %w", err)
		}
		subs = append(subs, u)
	}
	if h.OnPresence != nil {
		u, err := c.store.WatchPresence(ctx, code, h.OnPresence)
		if err != nil {
			teardown()
			return nil, fmt.Errorf("failed to watch presence: %w", err)
		}
		subs = append(subs, u)
	}

	var once sync.Once
	return func() { once.Do(teardown) }, nil
}
