package events

import (
	"log/slog"
	"sort"
	"time"
)

// Direction selects which side of the reference instant a search considers.
type Direction int

const (
	// Backward returns the latest event at or before the reference instant.
	Backward Direction = iota
	// Forward returns the earliest event at or after the reference instant.
	Forward
)

// Log is a chamber's ordered event collection, sorted descending by
// timestamp. The zero value is an empty, usable log. A Log is owned by
// exactly one chamber and is not safe for concurrent mutation.
type Log []Event

// Merge folds a batch of newly parsed events into the log under the
// deduplication rules, then re-sorts. Merging the same batch twice is a
// no-op the second time.
//
// Journal events dedupe by upstream id: a record with the same id replaces
// the existing one only when its Updated is strictly newer. Regex/record
// events dedupe by exact timestamp: the newcomer replaces the incumbent,
// except that a realized Convene is never displaced by a ConveneScheduled
// at the same instant.
func (l *Log) Merge(batch []Event) int {
	merged := 0
	for _, e := range batch {
		if l.ingest(e) {
			merged++
		}
	}
	l.Sort()
	return merged
}

func (l *Log) ingest(e Event) bool {
	if e.keyedByID() {
		return l.ingestByID(e)
	}
	return l.ingestByTimestamp(e)
}

func (l *Log) ingestByID(e Event) bool {
	for i, existing := range *l {
		if existing.ID != e.ID {
			continue
		}
		if e.Updated.After(existing.Updated) {
			(*l)[i] = e
			return true
		}
		return false
	}
	*l = append(*l, e)
	return true
}

func (l *Log) ingestByTimestamp(e Event) bool {
	if e.ID == "" {
		e.ID = e.Timestamp.Format(time.RFC3339)
	}
	for i, existing := range *l {
		if !existing.Timestamp.Equal(e.Timestamp) {
			continue
		}
		// An already-realized convening wins over a scheduled one at the
		// same instant.
		if existing.Kind == Convene && e.Kind == ConveneScheduled {
			return false
		}
		(*l)[i] = e
		return true
	}
	*l = append(*l, e)
	return true
}

// Sort orders the log descending by timestamp.
func (l Log) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Timestamp.After(l[j].Timestamp)
	})
}

// Trim drops events older than the start of the previous civil day in loc.
// The three newest events are always preserved regardless of age, so a
// chamber that has been dark for a long weekend still derives its state.
// The log must be sorted.
func (l *Log) Trim(now time.Time, loc *time.Location) int {
	local := now.In(loc)
	limit := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)

	kept := *l
	removed := 0
	for i := len(kept) - 1; i >= 3; i-- {
		if kept[i].Timestamp.Before(limit) {
			kept = kept[:i]
			removed++
			continue
		}
		break
	}
	*l = kept
	return removed
}

// Search returns the single closest event to now in the given direction whose
// kind is in kinds. A nil kinds filter means AllEvents. Events carrying a
// kind outside the closed set are skipped with a warning rather than
// crashing the search.
func (l Log) Search(now time.Time, dir Direction, kinds []Kind) (Event, bool) {
	if kinds == nil {
		kinds = AllEvents
	}
	var best Event
	found := false
	for _, e := range l {
		if !e.Kind.Valid() {
			slog.Warn("event has unknown kind, skipping", "id", e.ID, "kind", int(e.Kind))
			continue
		}
		if !kindIn(e.Kind, kinds) {
			continue
		}
		switch dir {
		case Forward:
			if e.Timestamp.Before(now) {
				continue
			}
			if !found || e.Timestamp.Before(best.Timestamp) {
				best, found = e, true
			}
		default:
			if e.Timestamp.After(now) {
				continue
			}
			if !found || e.Timestamp.After(best.Timestamp) {
				best, found = e, true
			}
		}
	}
	return best, found
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}
