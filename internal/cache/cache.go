// Package cache persists a chamber's event log and scheduler state across
// restarts. The on-disk format is JSON with event kinds stored by name, so a
// snapshot written by a newer build that knows more kinds still loads here:
// entries with unknown kinds are dropped, everything else survives.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/chrisgilldc/chambers/internal/events"
)

// Snapshot is everything a chamber needs to resume after a restart.
type Snapshot struct {
	Events     events.Log
	Updated    time.Time
	NextUpdate time.Time
}

type fileSnapshot struct {
	Events     []fileEvent `json:"events"`
	Updated    time.Time   `json:"updated"`
	NextUpdate time.Time   `json:"next_update"`
}

type fileEvent struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	Updated     time.Time `json:"updated,omitzero"`
	ActID       string    `json:"act_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	ActionItem  string    `json:"action_item,omitempty"`
}

// Load reads a snapshot. A missing file is a silent empty start and returns
// (nil, nil). Events whose kind name is not recognized are discarded with a
// warning; the rest of the snapshot loads normally.
func Load(path string) (*Snapshot, error) {
	fl := flock.New(path + ".lock")
	if err := fl.RLock(); err != nil {
		return nil, fmt.Errorf("locking cache: %w", err)
	}
	defer fl.Unlock() //nolint:errcheck // best-effort unlock

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var fs fileSnapshot
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("decoding cache %s: %w", path, err)
	}

	snap := &Snapshot{Updated: fs.Updated, NextUpdate: fs.NextUpdate}
	for _, fe := range fs.Events {
		kind, ok := events.KindFromString(fe.Kind)
		if !ok {
			slog.Warn("dropping cached event with unknown kind", "kind", fe.Kind, "id", fe.ID)
			continue
		}
		snap.Events = append(snap.Events, events.Event{
			ID:          fe.ID,
			Kind:        kind,
			Timestamp:   fe.Timestamp,
			Updated:     fe.Updated,
			ActID:       fe.ActID,
			Description: fe.Description,
			Source:      events.Source(fe.Source),
			SourceURL:   fe.SourceURL,
			ActionItem:  fe.ActionItem,
		})
	}
	return snap, nil
}

// Save writes a snapshot atomically: serialize into <path>.new, then rename
// over <path>. A crash leaves either the old file or the new one, never a
// truncated mix.
func Save(path string, snap *Snapshot) error {
	fs := fileSnapshot{Updated: snap.Updated, NextUpdate: snap.NextUpdate}
	for _, e := range snap.Events {
		fs.Events = append(fs.Events, fileEvent{
			ID:          e.ID,
			Kind:        e.Kind.String(),
			Timestamp:   e.Timestamp,
			Updated:     e.Updated,
			ActID:       e.ActID,
			Description: e.Description,
			Source:      string(e.Source),
			SourceURL:   e.SourceURL,
			ActionItem:  e.ActionItem,
		})
	}

	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	data = append(data, '\n')

	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking cache: %w", err)
	}
	defer fl.Unlock() //nolint:errcheck // best-effort unlock

	tmp := path + ".new"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}
