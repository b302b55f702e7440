package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// Redis key layout. Rooms expire on their own so abandoned meetings do not
// accumulate.
const (
	keyPrefixRoom         = "room:"
	suffixParticipants    = ":participants"
	suffixTranscriptsChan = ":transcripts"
	suffixStatusChan      = ":status"
	suffixPresenceChan    = ":presence"

	roomTTL = 24 * time.Hour
)

// statusScript applies a status update only when it is newer than the stored
// one, then broadcasts it. KEYS[1] = room hash, KEYS[2] = status channel,
// ARGV[1] = status, ARGV[2] = unix ms, ARGV[3] = event payload.
var statusScript = redis.NewScript(`
local at = redis.call('HGET', KEYS[1], 'status_at')
if at and tonumber(at) > tonumber(ARGV[2]) then
  return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[1], 'status_at', ARGV[2])
redis.call('PUBLISH', KEYS[2], ARGV[3])
return 1
`)

// RedisRoomStore implements RoomStore on Redis hashes and pub/sub.
type RedisRoomStore struct {
	client *redis.Client
	log    logging.Logger
}

// NewRedisRoomStore wraps an existing Redis client.
func NewRedisRoomStore(client *redis.Client, log logging.Logger) *RedisRoomStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RedisRoomStore{client: client, log: log.With(logging.F("component", "redis_room"))}
}

func roomKey(code string) string { return keyPrefixRoom + code }

func (s *RedisRoomStore) CreateRoom(ctx context.Context, m meeting.Meeting) error {
	if m.Code() == "" {
		return fmt.Errorf("meeting %s has no room code", m.ID())
	}
	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal meeting snapshot: %w", err)
	}

	key := roomKey(m.Code())
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"snapshot", raw,
		"status", string(m.Status()),
		"status_at", m.UpdatedAt().UnixMilli(),
	)
	pipe.Expire(ctx, key, roomTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create room %s: %w", m.Code(), err)
	}
	return nil
}

func (s *RedisRoomStore) Room(ctx context.Context, code string) (*meeting.Snapshot, error) {
	raw, err := s.client.HGet(ctx, roomKey(code), "snapshot").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read room %s: %w", code, err)
	}

	var snap meeting.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("room %s holds a corrupt snapshot: %w", code, err)
	}
	return &snap, nil
}

func (s *RedisRoomStore) JoinRoom(ctx context.Context, code string, p meeting.Participant) (*meeting.Snapshot, error) {
	snap, err := s.Room(ctx, code)
	if err != nil || snap == nil {
		return snap, err
	}

	rec := p.Record()
	recRaw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participant: %w", err)
	}
	if err := s.client.HSet(ctx, roomKey(code)+suffixParticipants, p.UserID(), recRaw).Err(); err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	s.publish(ctx, roomKey(code)+suffixPresenceChan, PresenceEvent{Kind: PresenceJoined, Participant: rec})
	return snap, nil
}

func (s *RedisRoomStore) LeaveRoom(ctx context.Context, code, userID string) error {
	raw, err := s.client.HGet(ctx, roomKey(code)+suffixParticipants, userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read participant: %w", err)
	}
	if err := s.client.HDel(ctx, roomKey(code)+suffixParticipants, userID).Err(); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}

	var rec meeting.ParticipantRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		rec = meeting.ParticipantRecord{UserID: userID}
	}
	s.publish(ctx, roomKey(code)+suffixPresenceChan, PresenceEvent{Kind: PresenceLeft, Participant: rec})
	return nil
}

func (s *RedisRoomStore) PushTranscript(ctx context.Context, code string, tr meeting.Transcript) error {
	raw, err := json.Marshal(tr.Record())
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := s.client.Publish(ctx, roomKey(code)+suffixTranscriptsChan, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish transcript: %w", err)
	}
	return nil
}

func (s *RedisRoomStore) UpdateStatus(ctx context.Context, code string, ev StatusEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}
	err = statusScript.Run(ctx, s.client,
		[]string{roomKey(code), roomKey(code) + suffixStatusChan},
		string(ev.Status), ev.At.UnixMilli(), payload,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	return nil
}

func (s *RedisRoomStore) WatchTranscripts(ctx context.Context, code string, fn func(meeting.TranscriptRecord)) (Unsubscribe, error) {
	return watch(ctx, s, roomKey(code)+suffixTranscriptsChan, fn)
}

func (s *RedisRoomStore) WatchStatus(ctx context.Context, code string, fn func(StatusEvent)) (Unsubscribe, error) {
	return watch(ctx, s, roomKey(code)+suffixStatusChan, fn)
}

func (s *RedisRoomStore) WatchPresence(ctx context.Context, code string, fn func(PresenceEvent)) (Unsubscribe, error) {
	return watch(ctx, s, roomKey(code)+suffixPresenceChan, fn)
}

// watch subscribes to a channel and decodes each payload into T. The
// subscription lives until the returned Unsubscribe is called or ctx is
// done.
func watch[T any](ctx context.Context, s *RedisRoomStore, channel string, fn func(T)) (Unsubscribe, error) {
	sub := s.client.Subscribe(ctx, channel)
	// Force the subscription onto the wire before returning, so callers do
	// not miss events published immediately after Subscribe.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	go func() {
		for msg := range sub.Channel() {
			var ev T
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.log.Warn("dropping undecodable event",
					logging.F("channel", channel), logging.Err(err))
				continue
			}
			fn(ev)
		}
	}()

	return func() { _ = sub.Close() }, nil
}

func (s *RedisRoomStore) publish(ctx context.Context, channel string, ev any) {
	raw, err := json.Marshal(ev)
	if err != nil {
		s.log.Warn("failed to marshal event", logging.Err(err))
		return
	}
	if err := s.client.Publish(ctx, channel, raw).Err(); err != nil {
		s.log.Warn("failed to publish event",
			logging.F("channel", channel), logging.Err(err))
	}
}
