package house

import (
	"fmt"
	"testing"
	"time"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/events"
)

const journalHeader = `<?xml version="1.0" encoding="UTF-8"?>
<floor_journal>
<pubDate>Wed, 12 Jun 2024 16:45:03 EDT</pubDate>
<floor_actions>`

const journalFooter = `</floor_actions>
</floor_journal>`

func action(actID, uniqueID, updated, forSearch, desc, item string) string {
	return fmt.Sprintf(`<floor_action act-id=%q unique-id=%q update-date-time=%q>
<action_time for-search=%q>10:00:00</action_time>
<action_description>%s</action_description>
<action_item>%s</action_item>
</floor_action>`, actID, uniqueID, updated, forSearch, desc, item)
}

func journal(body ...string) []byte {
	doc := journalHeader
	for _, b := range body {
		doc += "\n" + b
	}
	return []byte(doc + "\n" + journalFooter)
}

func TestParseJournalSessionDay(t *testing.T) {
	data := journal(
		action("H20100", "1", "20240612T10:00", "20240612T10:00:00",
			"The House convened, starting a new legislative day.", ""),
		action("H8D000", "2", "20240612T10:31", "20240612T10:30:00",
			"DEBATE - The House proceeded with one hour of debate on H.R. 1234.", "H.R. 1234"),
		action("H37100", "3", "20240612T12:02", "20240612T12:00:00",
			"On passage Passed by recorded vote: 220 - 210.", "H.R. 1234"),
		action("H61000", "4", "20240612T16:31", "20240612T16:30:00",
			"The House adjourned.", ""),
		`<legislative_day_finished next-legislative-day-convenes="20240613T10:00"/>`,
	)

	got := ParseJournal(data, "https://clerk.house.gov/floor/2024-06-12", false, nil)
	if len(got) != 5 {
		t.Fatalf("got %d events, want 5: %+v", len(got), got)
	}

	wantKinds := []events.Kind{events.ConveneScheduled, events.Convene,
		events.DebateBill, events.VoteRecorded, events.Adjourn}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("event %d kind = %v, want %v", i, got[i].Kind, k)
		}
	}

	convene := got[1]
	wantTS := time.Date(2024, 6, 12, 10, 0, 0, 0, chamber.Eastern)
	if !convene.Timestamp.Equal(wantTS) {
		t.Errorf("convene timestamp = %v, want %v", convene.Timestamp, wantTS)
	}
	if convene.ID != "1" || convene.Updated.IsZero() {
		t.Errorf("convene id/updated = %q/%v, want upstream id and revision stamp", convene.ID, convene.Updated)
	}
	if convene.Source != events.SourceJournal {
		t.Errorf("source = %q, want %q", convene.Source, events.SourceJournal)
	}

	if item := got[2].ActionItem; item != "H.R. 1234" {
		t.Errorf("debate action item = %q, want the bill", item)
	}
	if item := got[4].ActionItem; item != "" {
		t.Errorf("adjourn action item = %q, want empty", item)
	}

	sched := got[0]
	wantNext := time.Date(2024, 6, 13, 10, 0, 0, 0, chamber.Eastern)
	if !sched.Timestamp.Equal(wantNext) {
		t.Errorf("scheduled convening = %v, want %v", sched.Timestamp, wantNext)
	}
	if sched.ID != "" || !sched.Updated.IsZero() {
		t.Errorf("scheduled convening carries id=%q updated=%v, want neither", sched.ID, sched.Updated)
	}
}

func TestParseJournalOnlyEOD(t *testing.T) {
	data := journal(
		action("H20100", "1", "20240611T10:00", "20240611T10:00:00",
			"The House convened, starting a new legislative day.", ""),
		`<legislative_day_finished next-legislative-day-convenes="20240612T12:00"/>`,
	)

	got := ParseJournal(data, "u", true, nil)
	if len(got) != 1 {
		t.Fatalf("got %d events, want only the end-of-day record", len(got))
	}
	if got[0].Kind != events.ConveneScheduled {
		t.Fatalf("kind = %v, want ConveneScheduled", got[0].Kind)
	}
}

func TestParseJournalClassification(t *testing.T) {
	cases := []struct {
		actID, desc string
		want        events.Kind
	}{
		{"H20100", "The House convened, returning from a recess continuing the legislative day.", events.Reconvene},
		{"H61000", "Mr. Scalise moved that the House do now adjourn pursuant to clause 13 of Rule I.", events.Adjourn},
		{"H61000", "The Speaker announced that the House do now recess. The next meeting is scheduled for 2:00 p.m.", events.RecessTime},
		{"H61000", "The Chair declared the House in recess subject to the call of the Chair.", events.RecessCallOfChair},
		{"H61000", "The Speaker announced that the House do now recess for a period of less than 15 minutes.", events.RecessShort},
		{"H8D000", "MORNING-HOUR DEBATE - The House proceeded with morning-hour debate.", events.MorningDebate},
		{"H35000", "On agreeing to the resolution Agreed to by voice vote.", events.VoteVoice},
	}
	for _, tc := range cases {
		data := journal(action(tc.actID, "x", "20240612T10:31", "20240612T10:30:00", tc.desc, ""))
		got := ParseJournal(data, "u", false, nil)
		if len(got) != 1 {
			t.Errorf("%q: got %d events, want 1", tc.desc, len(got))
			continue
		}
		if got[0].Kind != tc.want {
			t.Errorf("%q: kind = %v, want %v", tc.desc, got[0].Kind, tc.want)
		}
	}
}

// A session-control act whose description matches nothing still produces an
// event, flagged Other, so the log records that something happened.
func TestParseJournalUnmatchedKnownAct(t *testing.T) {
	data := journal(action("H61000", "x", "20240612T10:31", "20240612T10:30:00",
		"Some novel adjournment phrasing the feed has not used before.", ""))
	got := ParseJournal(data, "u", false, nil)
	if len(got) != 1 || got[0].Kind != events.Other {
		t.Fatalf("got %+v, want one Other event", got)
	}
}

func TestParseJournalSkipsUnknownActs(t *testing.T) {
	data := journal(action("H12200", "x", "20240612T10:31", "20240612T10:30:00",
		"A bill was referred to committee.", ""))
	if got := ParseJournal(data, "u", false, nil); len(got) != 0 {
		t.Fatalf("got %+v, want no events for an untracked act", got)
	}
}

func TestParseJournalSoftFailures(t *testing.T) {
	if got := ParseJournal([]byte("<not-even"), "u", false, nil); got != nil {
		t.Errorf("malformed XML: got %+v, want nil", got)
	}

	noPub := []byte(`<floor_journal><floor_actions/></floor_journal>`)
	if got := ParseJournal(noPub, "u", false, nil); got != nil {
		t.Errorf("missing pubDate: got %+v, want nil", got)
	}

	badAction := journal(action("H20100", "x", "garbage", "also-garbage",
		"The House convened, starting a new legislative day.", ""))
	if got := ParseJournal(badAction, "u", false, nil); len(got) != 0 {
		t.Errorf("bad timestamps: got %+v, want the action skipped", got)
	}
}

func TestParsePubDate(t *testing.T) {
	got, err := parsePubDate("Wed, 12 Jun 2024 16:45:03 EDT")
	if err != nil {
		t.Fatalf("parsePubDate: %v", err)
	}
	want := time.Date(2024, 6, 12, 16, 45, 3, 0, chamber.Eastern)
	if !got.Equal(want) {
		t.Fatalf("parsePubDate = %v, want %v", got, want)
	}
	if _, err := parsePubDate(""); err == nil {
		t.Fatal("empty pubDate should error")
	}
}
