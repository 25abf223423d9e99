package senate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/events"
)

// ErrImpossibleConvene is the fatal "impossible state" condition: the
// schedule record's convene instant equals now at minute resolution, so
// there is no way to decide whether the convening is realized or still
// scheduled. The driver may log and terminate; guessing here would publish
// a wrong signal.
var ErrImpossibleConvene = errors.New("senate: schedule convene time equals now, cannot classify")

type scheduleDoc struct {
	FloorProceedings []proceeding `json:"floorProceedings"`
}

// The schedule record ships its convene fields as JSON strings most days and
// bare numbers on others; flexInt accepts both.
type proceeding struct {
	ConveneYear    flexInt `json:"conveneYear"`
	ConveneMonth   flexInt `json:"conveneMonth"`
	ConveneDay     flexInt `json:"conveneDay"`
	ConveneHour    flexInt `json:"conveneHour"`
	ConveneMinutes flexInt `json:"conveneMinutes"`
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("parsing %q as integer: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// ParseSchedule reads the floor schedule record and emits exactly one event:
// a realized Convene when the announced instant is past, a ConveneScheduled
// when it is still ahead. Equality at minute resolution is
// ErrImpossibleConvene. All other errors are recoverable.
func ParseSchedule(data []byte, now time.Time, sourceURL string) (events.Event, error) {
	var doc scheduleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return events.Event{}, fmt.Errorf("decoding schedule record: %w", err)
	}
	if len(doc.FloorProceedings) == 0 {
		return events.Event{}, errors.New("schedule record has no floorProceedings")
	}

	p := doc.FloorProceedings[0]
	ct := time.Date(int(p.ConveneYear), time.Month(p.ConveneMonth), int(p.ConveneDay),
		int(p.ConveneHour), int(p.ConveneMinutes), 0, 0, chamber.Eastern)

	ev := events.Event{
		Timestamp:   ct,
		Source:      events.SourceJSON,
		SourceURL:   sourceURL,
		Description: "Senate convenes at " + ct.Format("3:04 PM, January 2, 2006"),
	}

	nowMinute := now.In(chamber.Eastern).Truncate(time.Minute)
	switch {
	case ct.Before(nowMinute):
		ev.Kind = events.Convene
	case ct.After(nowMinute):
		ev.Kind = events.ConveneScheduled
	default:
		return events.Event{}, ErrImpossibleConvene
	}
	return ev, nil
}
