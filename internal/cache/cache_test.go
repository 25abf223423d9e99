package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chrisgilldc/chambers/internal/events"
)

func snapshotFixture() *Snapshot {
	eastern, _ := time.LoadLocation("America/New_York")
	convene := time.Date(2024, 6, 12, 10, 0, 0, 0, eastern)
	return &Snapshot{
		Events: events.Log{
			{
				ID:          "2024061242",
				Kind:        events.VoteRecorded,
				Timestamp:   convene.Add(2 * time.Hour),
				Updated:     convene.Add(2*time.Hour + 5*time.Minute),
				ActID:       "H37100",
				Description: "On passage Passed by recorded vote: 220 - 210.",
				Source:      events.SourceJournal,
				SourceURL:   "https://clerk.house.gov/floor/20240612.xml",
				ActionItem:  "H.R. 1234",
			},
			{
				ID:        convene.Format(time.RFC3339),
				Kind:      events.Convene,
				Timestamp: convene,
				Source:    events.SourceXML,
			},
		},
		Updated:    convene.Add(3 * time.Hour),
		NextUpdate: convene.Add(3*time.Hour + 2*time.Minute),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house.cache")
	want := snapshotFixture()

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil for an existing snapshot")
	}

	if len(got.Events) != len(want.Events) {
		t.Fatalf("loaded %d events, want %d", len(got.Events), len(want.Events))
	}
	for i := range want.Events {
		w, g := want.Events[i], got.Events[i]
		if g.ID != w.ID || g.Kind != w.Kind || g.ActID != w.ActID ||
			g.Description != w.Description || g.Source != w.Source ||
			g.SourceURL != w.SourceURL || g.ActionItem != w.ActionItem {
			t.Errorf("event %d = %+v, want %+v", i, g, w)
		}
		if !g.Timestamp.Equal(w.Timestamp) || !g.Updated.Equal(w.Updated) {
			t.Errorf("event %d instants = %v/%v, want %v/%v", i, g.Timestamp, g.Updated, w.Timestamp, w.Updated)
		}
	}
	if !got.Updated.Equal(want.Updated) || !got.NextUpdate.Equal(want.NextUpdate) {
		t.Errorf("instants = %v/%v, want %v/%v", got.Updated, got.NextUpdate, want.Updated, want.NextUpdate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.cache"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatalf("Load = %+v, want nil for a missing file", got)
	}
}

// Kinds are stored by name so a snapshot from a build that knows more kinds
// still loads; its novel entries are dropped, the rest survive.
func TestLoadDropsUnknownKinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house.cache")
	doc := `{
  "events": [
    {"id": "a", "kind": "holographic_quorum", "timestamp": "2024-06-12T10:00:00-04:00"},
    {"id": "b", "kind": "convene", "timestamp": "2024-06-12T10:00:00-04:00"}
  ],
  "updated": "2024-06-12T13:00:00-04:00",
  "next_update": "2024-06-12T13:02:00-04:00"
}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Events) != 1 {
		t.Fatalf("loaded %d events, want the known one only: %+v", len(got.Events), got.Events)
	}
	if got.Events[0].ID != "b" || got.Events[0].Kind != events.Convene {
		t.Fatalf("kept event = %+v, want the convene", got.Events[0])
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house.cache")
	if err := os.WriteFile(path, []byte("{truncated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load of a corrupt file should error")
	}
}

// The write goes through a sibling temp file; after Save only the snapshot
// itself remains.
func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "house.cache")
	if err := Save(path, snapshotFixture()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".new") {
			t.Fatalf("temp file %s left behind", e.Name())
		}
	}
}
