package house

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/events"
	"github.com/chrisgilldc/chambers/internal/fetch"
)

// serveJournals points BaseURL at a test server that answers with the given
// per-date documents and 404s everything else.
func serveJournals(t *testing.T, docs map[string][]byte) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if doc, ok := docs[r.URL.Path]; ok {
			w.Write(doc)
			return
		}
		http.NotFound(w, r)
	}))
	old := BaseURL
	BaseURL = srv.URL + "/floor/"
	t.Cleanup(func() {
		BaseURL = old
		srv.Close()
	})
}

func TestUpdateSessionDay(t *testing.T) {
	today := journal(
		action("H20100", "1", "20240612T10:00", "20240612T10:00:00",
			"The House convened, starting a new legislative day.", ""),
	)
	yesterday := journal(
		action("H20100", "9", "20240611T10:00", "20240611T10:00:00",
			"The House convened, starting a new legislative day.", ""),
		action("H61000", "10", "20240611T18:01", "20240611T18:00:00",
			"The House adjourned.", ""),
		`<legislative_day_finished next-legislative-day-convenes="20240612T09:00"/>`,
	)
	serveJournals(t, map[string][]byte{
		"/floor/20240612.xml": today,
		"/floor/20240611.xml": yesterday,
	})

	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 12, 11, 0, 0, 0, chamber.Eastern))
	h := New(clock, nil, "", fetch.New(0))

	refreshed, err := h.Update(context.Background(), false)
	if err != nil || !refreshed {
		t.Fatalf("Update = %v, %v; want refreshed", refreshed, err)
	}

	// Today's convene plus only the prior day's end-of-day record; the prior
	// day's own floor actions stay out of the log.
	if len(h.Log) != 2 {
		t.Fatalf("log has %d events, want 2: %+v", len(h.Log), h.Log)
	}
	sig := h.Signals()
	if sig.Convened != chamber.ConvenedYes {
		t.Fatalf("Convened = %v, want yes", sig.Convened)
	}
	want := time.Date(2024, 6, 12, 10, 0, 0, 0, chamber.Eastern)
	if !sig.ConvenedAt.Equal(want) {
		t.Errorf("ConvenedAt = %v, want %v", sig.ConvenedAt, want)
	}
}

func TestUpdateWalksBackWhenTodayMissing(t *testing.T) {
	prior := journal(
		action("H20100", "9", "20240610T12:00", "20240610T12:00:00",
			"The House convened, starting a new legislative day.", ""),
		action("H61000", "10", "20240610T17:01", "20240610T17:00:00",
			"The House adjourned.", ""),
		`<legislative_day_finished next-legislative-day-convenes="20240617T14:00"/>`,
	)
	serveJournals(t, map[string][]byte{
		"/floor/20240610.xml": prior,
	})

	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 12, 11, 0, 0, 0, chamber.Eastern))
	h := New(clock, nil, "", fetch.New(0))

	if _, err := h.Update(context.Background(), false); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Today and yesterday 404'd, so the walk lands on the 10th and parses it
	// in full.
	if len(h.Log) != 3 {
		t.Fatalf("log has %d events, want 3: %+v", len(h.Log), h.Log)
	}
	sig := h.Signals()
	if sig.Convened != chamber.ConvenedNo {
		t.Fatalf("Convened = %v, want no", sig.Convened)
	}
	wantAdj := time.Date(2024, 6, 10, 17, 0, 0, 0, chamber.Eastern)
	if !sig.AdjournedAt.Equal(wantAdj) {
		t.Errorf("AdjournedAt = %v, want %v", sig.AdjournedAt, wantAdj)
	}
	wantNext := time.Date(2024, 6, 17, 14, 0, 0, 0, chamber.Eastern)
	if !sig.ConvenesAt.Equal(wantNext) {
		t.Errorf("ConvenesAt = %v, want %v", sig.ConvenesAt, wantNext)
	}
}

func TestUpdateNotDue(t *testing.T) {
	serveJournals(t, nil)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 12, 11, 0, 0, 0, chamber.Eastern))
	h := New(clock, nil, "", fetch.New(0))

	if _, err := h.Update(context.Background(), true); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	refreshed, err := h.Update(context.Background(), false)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if refreshed {
		t.Fatal("second Update refreshed before the scheduler was due")
	}
}

// A revised journal entry replaces the earlier revision instead of
// duplicating it.
func TestUpdateRevisedEntry(t *testing.T) {
	first := journal(
		action("H37100", "42", "20240612T12:02", "20240612T12:00:00",
			"On passage Passed by recorded vote: 220 - 210.", "H.R. 1234"),
	)
	docs := map[string][]byte{"/floor/20240612.xml": first}
	serveJournals(t, docs)

	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 12, 13, 0, 0, 0, chamber.Eastern))
	h := New(clock, nil, "", fetch.New(0))
	if _, err := h.Update(context.Background(), true); err != nil {
		t.Fatalf("first Update: %v", err)
	}

	docs["/floor/20240612.xml"] = journal(
		action("H37100", "42", "20240612T12:05", "20240612T12:00:00",
			"On passage Passed by recorded vote: 221 - 209.", "H.R. 1234"),
	)
	if _, err := h.Update(context.Background(), true); err != nil {
		t.Fatalf("second Update: %v", err)
	}

	var votes []events.Event
	for _, e := range h.Log {
		if e.Kind == events.VoteRecorded {
			votes = append(votes, e)
		}
	}
	if len(votes) != 1 {
		t.Fatalf("log has %d recorded votes, want the revision to replace: %+v", len(votes), votes)
	}
	if votes[0].Description != "On passage Passed by recorded vote: 221 - 209." {
		t.Errorf("kept description %q, want the newer revision", votes[0].Description)
	}
}
