// Package storage persists meetings. It offers an in-memory repository for
// tests and offline use, and a PostgreSQL repository for durable storage.
package storage

import (
	"context"
	"sort"
	"sync"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// MeetingRepository stores and retrieves meetings. Implementations return
// errors.ErrNotFound for unknown ids and codes.
type MeetingRepository interface {
	// Save upserts the meeting.
	Save(ctx context.Context, m meeting.Meeting) error

	// Get returns the meeting with the given id.
	Get(ctx context.Context, id string) (meeting.Meeting, error)

	// GetByCode returns the meeting carrying the given room code.
	GetByCode(ctx context.Context, code string) (meeting.Meeting, error)

	// List returns the meetings owned by userID, most recently updated first.
	List(ctx context.Context, userID string) ([]meeting.Meeting, error)

	// Delete removes the meeting with the given id.
	Delete(ctx context.Context, id string) error
}

// MemoryRepository is an in-memory MeetingRepository. Safe for concurrent
// use.
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string]meeting.Snapshot
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshots: make(map[string]meeting.Snapshot)}
}

func (r *MemoryRepository) Save(_ context.Context, m meeting.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[m.ID()] = m.Snapshot()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (meeting.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[id]
	if !ok {
		return meeting.Meeting{}, lmerrors.ErrNotFound
	}
	return meeting.FromSnapshot(snap)
}

func (r *MemoryRepository) GetByCode(_ context.Context, code string) (meeting.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, snap := range r.snapshots {
		if snap.Code != "" && snap.Code == code {
			return meeting.FromSnapshot(snap)
		}
	}
	return meeting.Meeting{}, lmerrors.ErrNotFound
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]meeting.Meeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []meeting.Meeting
	for _, snap := range r.snapshots {
		if snap.UserID != userID {
			continue
		}
		m, err := meeting.FromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt().After(out[j].UpdatedAt())
	})
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[id]; !ok {
		return lmerrors.ErrNotFound
	}
	delete(r.snapshots, id)
	return nil
}
