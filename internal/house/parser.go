package house

import (
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/events"
)

// The clerk's journal timestamps come in three shapes: the pubDate header
// (RFC-1123-ish with a trailing zone name), the per-action search timestamp,
// and the minute-resolution revision stamp.
const (
	pubDateLayout    = "Mon, 02 Jan 2006 15:04:05"
	actionTimeLayout = "20060102T15:04:05"
	updateTimeLayout = "20060102T15:04"
)

// Act codes the journal uses for session-control actions. Anything else in
// the feed (bill referrals, unanimous consent, etc.) is skipped.
const (
	actConvene = "H20100"
	actAdjourn = "H61000"
	actDebate  = "H8D000"
	actVoteRec = "H37100"
	actVoteVox = "H35000"
)

type journalDoc struct {
	PubDate      string       `xml:"pubDate"`
	FloorActions floorActions `xml:"floor_actions"`
}

type floorActions struct {
	DayFinished []dayFinished `xml:"legislative_day_finished"`
	Actions     []floorAction `xml:"floor_action"`
}

type dayFinished struct {
	NextConvenes string `xml:"next-legislative-day-convenes,attr"`
}

type floorAction struct {
	ActID       string     `xml:"act-id,attr"`
	UniqueID    string     `xml:"unique-id,attr"`
	UpdateTime  string     `xml:"update-date-time,attr"`
	ActionTime  actionTime `xml:"action_time"`
	Description string     `xml:"action_description"`
	ActionItem  string     `xml:"action_item"`
}

type actionTime struct {
	ForSearch string `xml:"for-search,attr"`
}

// ParseJournal turns one day's journal document into events. A document that
// cannot be parsed fails softly: the failure is logged and zero events come
// back, so a bad day never aborts a refresh.
//
// With onlyEOD set, output is restricted to at most the single
// ConveneScheduled event carried by the legislative_day_finished record.
// Prior days are fetched purely to recover the adjournment continuation, and
// that record is all they have to offer.
func ParseJournal(data []byte, sourceURL string, onlyEOD bool, logger *slog.Logger) []events.Event {
	if logger == nil {
		logger = slog.Default()
	}

	var doc journalDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		logger.Warn("unparseable journal, skipping", "url", sourceURL, "error", err)
		return nil
	}
	if _, err := parsePubDate(doc.PubDate); err != nil {
		logger.Warn("journal missing usable pubDate, skipping", "url", sourceURL, "error", err)
		return nil
	}

	var out []events.Event
	for _, eod := range doc.FloorActions.DayFinished {
		ts, err := time.ParseInLocation(updateTimeLayout, eod.NextConvenes, chamber.Eastern)
		if err != nil {
			logger.Warn("bad next-legislative-day-convenes, skipping", "value", eod.NextConvenes, "error", err)
			continue
		}
		out = append(out, events.Event{
			Kind:      events.ConveneScheduled,
			Timestamp: ts,
			Source:    events.SourceJournal,
			SourceURL: sourceURL,
		})
		if onlyEOD {
			// Only one end-of-day record exists per journal.
			return out
		}
	}
	if onlyEOD {
		return out
	}

	for _, fa := range doc.FloorActions.Actions {
		ev, ok := parseFloorAction(fa, sourceURL, logger)
		if !ok {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func parseFloorAction(fa floorAction, sourceURL string, logger *slog.Logger) (events.Event, bool) {
	kind, wantItem := classify(fa.ActID, strings.TrimSpace(fa.Description))
	if kind == events.Other && !knownAct(fa.ActID) {
		return events.Event{}, false
	}

	ts, err := time.ParseInLocation(actionTimeLayout, fa.ActionTime.ForSearch, chamber.Eastern)
	if err != nil {
		logger.Warn("floor action has bad action_time, skipping", "id", fa.UniqueID, "value", fa.ActionTime.ForSearch)
		return events.Event{}, false
	}
	updated, err := time.ParseInLocation(updateTimeLayout, fa.UpdateTime, chamber.Eastern)
	if err != nil {
		logger.Warn("floor action has bad update-date-time, skipping", "id", fa.UniqueID, "value", fa.UpdateTime)
		return events.Event{}, false
	}

	ev := events.Event{
		ID:          fa.UniqueID,
		Kind:        kind,
		Timestamp:   ts,
		Updated:     updated,
		ActID:       fa.ActID,
		Description: strings.TrimSpace(fa.Description),
		Source:      events.SourceJournal,
		SourceURL:   sourceURL,
	}
	if wantItem {
		ev.ActionItem = strings.TrimSpace(fa.ActionItem)
	}
	return ev, true
}

func knownAct(actID string) bool {
	switch actID {
	case actConvene, actAdjourn, actDebate, actVoteRec, actVoteVox:
		return true
	}
	return false
}

// classify maps an act code plus description text to an event kind. The
// second return reports whether the action's free-text item (vote counts,
// debate subject) should be retained.
func classify(actID, desc string) (events.Kind, bool) {
	switch actID {
	case actConvene:
		switch {
		case strings.Contains(desc, "returning from a recess"):
			return events.Reconvene, false
		case strings.Contains(desc, "starting a new legislative day"):
			return events.Convene, false
		}
	case actAdjourn:
		switch {
		case strings.Contains(desc, "The House adjourned"):
			return events.Adjourn, false
		case strings.Contains(desc, "do now adjourn pursuant to clause 13 of Rule I"):
			return events.Adjourn, false
		case strings.Contains(desc, "do now recess. The next meeting is scheduled for"):
			return events.RecessTime, false
		case strings.HasSuffix(desc, "subject to the call of the Chair."):
			return events.RecessCallOfChair, false
		case strings.Contains(desc, "less than 15 minutes"):
			return events.RecessShort, false
		}
	case actDebate:
		switch {
		case strings.Contains(desc, "MORNING-HOUR DEBATE"):
			return events.MorningDebate, false
		case strings.Contains(desc, "DEBATE - "):
			return events.DebateBill, true
		}
	case actVoteRec:
		return events.VoteRecorded, true
	case actVoteVox:
		return events.VoteVoice, true
	}
	return events.Other, false
}

func parsePubDate(raw string) (time.Time, error) {
	// The trailing " EST"/" EDT" is redundant with the civil zone.
	s := strings.TrimSpace(raw)
	if i := strings.LastIndex(s, " "); i > 0 {
		if zone := s[i+1:]; zone == "EST" || zone == "EDT" {
			s = s[:i]
		}
	}
	return time.ParseInLocation(pubDateLayout, s, chamber.Eastern)
}
