package chamber

import (
	"time"

	"github.com/chrisgilldc/chambers/internal/events"
)

// Convened is the tri-state answer to "is the chamber in session".
type Convened int

const (
	ConvenedUnknown Convened = iota
	ConvenedYes
	ConvenedNo
)

func (c Convened) String() string {
	switch c {
	case ConvenedYes:
		return "true"
	case ConvenedNo:
		return "false"
	default:
		return "unknown"
	}
}

// Signals are the four public values derived from a chamber's event log.
// Zero time.Time values mean "absent".
type Signals struct {
	Convened    Convened
	ConvenedAt  time.Time
	AdjournedAt time.Time
	ConvenesAt  time.Time
}

// Derive computes the public signals from the log at the given reference
// instant. It is a pure function; calling it never mutates the log.
func Derive(log events.Log, now time.Time) Signals {
	var sig Signals

	convene, haveConvene := log.Search(now, events.Backward, []events.Kind{events.Convene})
	adjourn, haveAdjourn := log.Search(now, events.Backward, []events.Kind{events.Adjourn})

	switch {
	case !haveConvene && !haveAdjourn:
		sig.Convened = ConvenedUnknown
	case !haveConvene:
		sig.Convened = ConvenedNo
	case !haveAdjourn:
		sig.Convened = ConvenedYes
	case convene.Timestamp.After(adjourn.Timestamp):
		sig.Convened = ConvenedYes
	default:
		sig.Convened = ConvenedNo
	}

	if sig.Convened == ConvenedYes {
		sig.ConvenedAt = convene.Timestamp
	}
	if haveAdjourn && (!haveConvene || adjourn.Timestamp.After(convene.Timestamp)) {
		sig.AdjournedAt = adjourn.Timestamp
	}
	if next, ok := log.Search(now, events.Forward, []events.Kind{events.ConveneScheduled}); ok {
		sig.ConvenesAt = next.Timestamp
	}
	return sig
}

// Activity returns the floor event nearest to at: the next upcoming event
// when at is in the future relative to now, otherwise the most recent one.
func Activity(log events.Log, now, at time.Time) (events.Event, bool) {
	if at.After(now) {
		return log.Search(at, events.Forward, nil)
	}
	return log.Search(at, events.Backward, nil)
}
