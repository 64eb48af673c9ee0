package store

import (
	"errors"
	"sync"
	"time"

	"github.com/shreyainlabcoat/Gotham/internal/air"
)

var (
	// ErrNotFound is returned when no data is available for a given area.
	ErrNotFound = errors.New("no air quality data for area")
)

// SnapshotHistory holds a time-ordered list of snapshots for one watched area.
type SnapshotHistory struct {
	Snapshots []air.AreaSnapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of air.Store.
// Snapshots live only for the lifetime of the process; nothing is written to
// disk.
type MemoryStore struct {
	mu sync.RWMutex

	// key: area key, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per area
	maxAge     time.Duration // optional max age for snapshots
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveSnapshot appends a new snapshot for an area and enforces retention.
func (s *MemoryStore) SaveSnapshot(q air.AreaQuery, snapshot air.AreaSnapshot) {
	key := q.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{}
		s.data[key] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots); i++ {
			if history.Snapshots[i].FetchedAt.After(cutoff) || history.Snapshots[i].FetchedAt.Equal(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.Snapshots) {
			history.Snapshots = history.Snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot for an area.
func (s *MemoryStore) GetLatest(q air.AreaQuery) (air.AreaSnapshot, error) {
	key := q.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return air.AreaSnapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for an area between from and to (inclusive).
func (s *MemoryStore) GetRange(q air.AreaQuery, from, to time.Time) ([]air.AreaSnapshot, error) {
	key := q.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []air.AreaSnapshot
	for _, snap := range history.Snapshots {
		if (snap.FetchedAt.Equal(from) || snap.FetchedAt.After(from)) &&
			(snap.FetchedAt.Equal(to) || snap.FetchedAt.Before(to)) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
