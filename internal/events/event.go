// Package events defines the typed session-control events extracted from the
// congressional floor feeds and the per-chamber ordered log that holds them.
//
// The log is the single source of truth for a chamber's derived state. It is
// kept sorted descending by timestamp, deduplicated by upstream id (journal
// events) or by exact timestamp (regex/record events), and trimmed to roughly
// the current and previous civil day.
package events

import (
	"fmt"
	"time"
)

// Kind classifies a floor event. The set is closed; anything a parser cannot
// classify becomes Other, which derivations and searches ignore.
type Kind int

const (
	Other Kind = iota
	Convene
	ConveneScheduled
	Reconvene
	Adjourn
	RecessTime
	RecessCallOfChair
	RecessShort // recess announced as lasting less than 15 minutes
	MorningDebate
	DebateBill
	VoteVoice
	VoteRecorded
)

var kindNames = map[Kind]string{
	Other:             "other",
	Convene:           "convene",
	ConveneScheduled:  "convene_scheduled",
	Reconvene:         "reconvene",
	Adjourn:           "adjourn",
	RecessTime:        "recess_time",
	RecessCallOfChair: "recess_coc",
	RecessShort:       "recess_15m",
	MorningDebate:     "morning_debate",
	DebateBill:        "debate_bill",
	VoteVoice:         "vote_voice",
	VoteRecorded:      "vote_recorded",
}

var kindValues = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the closed set of kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// KindFromString maps a stable kind name back to its Kind. Cache files written
// by newer versions may carry names this build does not know; callers drop
// those entries and continue.
func KindFromString(name string) (Kind, bool) {
	k, ok := kindValues[name]
	return k, ok
}

// Event groups.
var (
	// AllEvents covers every kind a state derivation cares about. Other,
	// ConveneScheduled and RecessShort are deliberately excluded: the first
	// is noise, the second is a prediction rather than something that
	// happened, and the third never changes session state.
	AllEvents = []Kind{Convene, Reconvene, Adjourn, RecessTime, RecessCallOfChair, MorningDebate, DebateBill, VoteVoice, VoteRecorded}

	Recess = []Kind{RecessTime, RecessCallOfChair}
	Vote   = []Kind{VoteVoice, VoteRecorded}
)

// Source identifies which feed produced an event.
type Source string

const (
	// SourceJournal is the House per-day journal (structured XML tree).
	SourceJournal Source = "journal"
	// SourceXML is the Senate per-day floor activity XML.
	SourceXML Source = "XML"
	// SourceJSON is the Senate floor schedule record.
	SourceJSON Source = "JSON"
)

// Event is one session-control record. Events are immutable once parsed; the
// log replaces rather than mutates.
//
// Journal events carry the upstream unique-id in ID and the upstream revision
// instant in Updated. Regex and schedule-record events carry neither; the log
// assigns them their own timestamp as ID on first append and dedupes them by
// exact timestamp.
type Event struct {
	ID          string
	Kind        Kind
	Timestamp   time.Time // Eastern civil time, offset always set
	Updated     time.Time // zero for regex/record events
	ActID       string    // House act code, verbatim
	Description string
	Source      Source
	SourceURL   string
	ActionItem  string // free text for votes and debates
}

// keyedByID reports whether the merge should dedupe this event by upstream id
// rather than by timestamp. Only journal floor actions carry an upstream
// revision time, so Updated doubles as the discriminator.
func (e Event) keyedByID() bool {
	return !e.Updated.IsZero()
}
