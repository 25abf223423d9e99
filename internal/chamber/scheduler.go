package chamber

import "time"

// Refresh cadences. A convened chamber is polled every two minutes; an
// adjourned one with no known convening every ten. When a convening is
// scheduled, polling resumes ten minutes before it, tightening to once a
// minute if the announced time has already slipped past.
const (
	convenedInterval   = 2 * time.Minute
	idleInterval       = 10 * time.Minute
	preConveneLead     = 10 * time.Minute
	missedConveneRetry = 60 * time.Second
)

// NextUpdate computes when the scheduler next wants a refresh, given the
// freshly derived signals, the instant of the last completed refresh, and
// the current instant.
func NextUpdate(sig Signals, updated, now time.Time) time.Time {
	if sig.Convened == ConvenedYes {
		return updated.Add(convenedInterval).Truncate(time.Minute)
	}
	if !sig.ConvenesAt.IsZero() {
		target := sig.ConvenesAt.Add(-preConveneLead)
		if target.After(now) {
			return target
		}
		// The announced convening was missed; poll hard until the feed
		// catches up.
		return updated.Add(missedConveneRetry)
	}
	return updated.Add(idleInterval)
}
