// Package chamber holds the pieces shared by both chambers: the event-log
// derivations, the adaptive refresh scheduler, and the per-chamber state a
// concrete chamber embeds. The House and Senate differ only in how they
// fetch and parse their feeds; everything downstream of the parsed events
// is the free functions and State methods in this package.
package chamber

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chrisgilldc/chambers/internal/cache"
	"github.com/chrisgilldc/chambers/internal/events"
)

// Chamber is one of the two tracked legislative bodies. Update is the only
// entry point that touches the network; everything else reads the in-memory
// log.
type Chamber interface {
	Name() string
	// Update refreshes the chamber if its scheduler says a refresh is due
	// (or force is set) and reports whether anything was refreshed. A false
	// return means the caller should not re-publish signals.
	Update(ctx context.Context, force bool) (bool, error)
	// Signals derives the four public values at the current instant.
	Signals() Signals
	// Activity returns the floor event nearest to at.
	Activity(at time.Time) (events.Event, bool)
	NextUpdate() time.Time
	Updated() time.Time
	// SaveCache writes a final snapshot; called once at shutdown.
	SaveCache() error
}

// State is the per-chamber bookkeeping both concrete chambers embed: the
// event log it exclusively owns, refresh instants, and the cache handle.
type State struct {
	name      string
	Log       events.Log
	updated   time.Time
	next      time.Time
	Clock     clockwork.Clock
	Logger    *slog.Logger
	CachePath string
}

// NewState builds chamber state around an injected clock. An empty cachePath
// disables persistence. When a cache file already exists its contents seed
// the log, so a restarted process resumes where it left off.
func NewState(name string, clock clockwork.Clock, logger *slog.Logger, cachePath string) *State {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{
		name:      name,
		Clock:     clock,
		Logger:    logger.With("chamber", name),
		CachePath: cachePath,
	}
	s.loadCache()
	return s
}

func (s *State) Name() string          { return s.name }
func (s *State) Updated() time.Time    { return s.updated }
func (s *State) NextUpdate() time.Time { return s.next }

// Due reports whether the scheduler wants a refresh now.
func (s *State) Due(force bool) bool {
	if force || s.next.IsZero() {
		return true
	}
	return !s.Clock.Now().Before(s.next)
}

// CompleteRefresh runs the post-refresh bookkeeping: re-sort and trim the
// log, record the refresh instant, recompute the next one, and persist the
// cache. It runs after every refresh, successful or degraded, so the
// scheduler always advances.
func (s *State) CompleteRefresh() {
	now := s.Clock.Now()
	s.Log.Sort()
	if n := s.Log.Trim(now, Eastern); n > 0 {
		s.Logger.Debug("trimmed event log", "removed", n, "remaining", len(s.Log))
	}
	s.updated = now.In(Eastern)
	s.next = NextUpdate(Derive(s.Log, now), s.updated, now)
	s.Logger.Debug("refresh complete", "events", len(s.Log), "next_update", s.next)
	if err := s.SaveCache(); err != nil {
		s.Logger.Warn("saving cache", "error", err)
	}
}

// Signals derives the public values at the current instant.
func (s *State) Signals() Signals {
	return Derive(s.Log, s.Clock.Now())
}

// Activity returns the floor event nearest to at.
func (s *State) Activity(at time.Time) (events.Event, bool) {
	return Activity(s.Log, s.Clock.Now(), at)
}

func (s *State) loadCache() {
	if s.CachePath == "" {
		return
	}
	snap, err := cache.Load(s.CachePath)
	if err != nil {
		s.Logger.Warn("loading cache", "path", s.CachePath, "error", err)
		return
	}
	if snap == nil {
		return
	}
	s.Log = snap.Events
	s.updated = snap.Updated
	s.next = snap.NextUpdate
	s.Log.Sort()
	s.Logger.Info("loaded cache", "path", s.CachePath, "events", len(s.Log))
}

// SaveCache snapshots the log and scheduler state. The write is atomic; a
// crash mid-write leaves the previous snapshot intact.
func (s *State) SaveCache() error {
	if s.CachePath == "" {
		return nil
	}
	return cache.Save(s.CachePath, &cache.Snapshot{
		Events:     s.Log,
		Updated:    s.updated,
		NextUpdate: s.next,
	})
}
