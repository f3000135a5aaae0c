// Package session keeps the rolling previous-frame luminance buffer for
// callers that analyze a stream of frames across separate requests.
//
// Each Session owns exactly one buffer and serializes the analyses that read
// and replace it, so a buffer is never handed to the engine while it is being
// written elsewhere. Parallel streams use separate sessions.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/motion-regions-mcp/internal/detection"
)

var (
	// ErrNotFound is returned for unknown or closed session IDs.
	ErrNotFound = errors.New("session not found")

	// ErrBusy is returned by TryAnalyze when another analysis of the same
	// session is still running. The frame should be dropped.
	ErrBusy = errors.New("session busy")
)

// Session is one stream's rolling detection state.
type Session struct {
	ID      string
	Created time.Time

	// mu serializes analyses; statsMu guards the counters so Stats never
	// waits on a running analysis.
	mu      sync.Mutex
	prev    *detection.Luma
	statsMu sync.Mutex
	stats   Stats
}

// Stats summarizes a session's activity.
type Stats struct {
	ID          string    `json:"id"`
	Created     time.Time `json:"created"`
	Frames      int       `json:"frames"`
	Dropped     int       `json:"dropped"`
	LastRegions int       `json:"last_regions"`
	HasPrevious bool      `json:"has_previous"`
}

// Analyze runs detection on f against the session's previous frame and
// stores f's luminance for the next call. Calls on the same session are
// serialized. An invalid frame returns the engine error and leaves the
// previous frame untouched.
func (s *Session) Analyze(f *detection.Frame, cfg detection.Config) (*detection.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzeLocked(f, cfg)
}

// TryAnalyze is like Analyze but never waits: if an analysis is already in
// progress it counts the frame as dropped and returns ErrBusy.
func (s *Session) TryAnalyze(f *detection.Frame, cfg detection.Config) (*detection.Result, error) {
	if !s.mu.TryLock() {
		s.statsMu.Lock()
		s.stats.Dropped++
		s.statsMu.Unlock()
		return nil, ErrBusy
	}
	defer s.mu.Unlock()
	return s.analyzeLocked(f, cfg)
}

func (s *Session) analyzeLocked(f *detection.Frame, cfg detection.Config) (*detection.Result, error) {
	res, err := detection.Detect(f, s.prev, cfg)
	if err != nil {
		return nil, err
	}
	s.prev = res.Luma

	s.statsMu.Lock()
	s.stats.Frames++
	s.stats.LastRegions = len(res.Regions)
	s.stats.HasPrevious = true
	s.statsMu.Unlock()

	return res, nil
}

// Reset forgets the previous frame; the next analysis behaves like the
// first frame of a stream.
func (s *Session) Reset() {
	s.mu.Lock()
	s.prev = nil
	s.mu.Unlock()

	s.statsMu.Lock()
	s.stats.HasPrevious = false
	s.statsMu.Unlock()
}

// Stats returns a snapshot of the session's counters.
func (s *Session) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	st := s.stats
	st.ID = s.ID
	st.Created = s.Created
	return st
}

// Store is a concurrency-safe registry of sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Open creates a session with a fresh random ID.
func (st *Store) Open() *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Created: st.now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Close removes a session. Analyses already holding the session finish
// normally.
func (st *Store) Close(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of open sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// List returns stats for all open sessions, oldest first.
func (st *Store) List() []Stats {
	st.mu.RLock()
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	st.mu.RUnlock()

	out := make([]Stats, 0, len(all))
	for _, s := range all {
		out = append(out, s.Stats())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}
