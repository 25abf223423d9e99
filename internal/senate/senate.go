// Package senate tracks the Senate by fusing two sources: the floor schedule
// record (a JSON document announcing the next convening) and the per-day
// floor activity XML (prose that has to be parsed with patterns). Neither
// source alone covers both ends of a session, which is why the refresh walks
// prior days until the log holds a convening and an adjournment.
package senate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/events"
	"github.com/chrisgilldc/chambers/internal/fetch"
)

// Feed roots. Vars so tests can point them at httptest servers. Not safe for
// parallel tests that mutate them.
var (
	ScheduleURL      = "https://www.senate.gov/legislative/schedule/floor_schedule.json"
	FloorActivityURL = "https://www.senate.gov/legislative/LIS/floor_activity/"
)

// DefaultLookbackDays bounds the prior-day walk when the caller does not
// supply a limit.
const DefaultLookbackDays = 6

// Senate is the Senate chamber.
type Senate struct {
	*chamber.State
	client   *fetch.Client
	lookback int

	// scheduleImplied is the convened state the schedule record last
	// implied. It answers for the chamber when the log itself holds no
	// convene or adjourn evidence.
	scheduleImplied chamber.Convened
}

// New builds the Senate chamber. A nil client gets the default fetch
// timeout; lookback <= 0 means DefaultLookbackDays.
func New(clock clockwork.Clock, logger *slog.Logger, cachePath string, client *fetch.Client, lookback int) *Senate {
	if client == nil {
		client = fetch.New(0)
	}
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	return &Senate{
		State:    chamber.NewState("senate", clock, logger, cachePath),
		client:   client,
		lookback: lookback,
	}
}

// Update refreshes the Senate if due. Fetch and parse failures degrade to
// fewer events; the only error that escapes is the fatal
// ErrImpossibleConvene, and the scheduler has already advanced by then.
func (s *Senate) Update(ctx context.Context, force bool) (bool, error) {
	if !s.Due(force) {
		return false, nil
	}
	err := s.refresh(ctx)
	s.CompleteRefresh()
	return true, err
}

func (s *Senate) refresh(ctx context.Context) error {
	if err := s.loadSchedule(ctx); err != nil {
		if errors.Is(err, ErrImpossibleConvene) {
			return err
		}
		s.Logger.Warn("loading schedule record", "error", err)
	}

	today := s.Clock.Now().In(chamber.Eastern)
	for i := 0; i < s.lookback; i++ {
		// Today always gets fetched so the current day's closing lands in
		// the log; the bound only stops the walk into prior days.
		if i > 0 && s.sessionBounded() {
			break
		}
		day := today.AddDate(0, 0, -i)
		url := floorURL(day)
		body, err := s.client.Get(ctx, url)
		if err != nil {
			// Missing days answer with a redirect to an HTML 404 page;
			// only a direct 200 is real content.
			var se *fetch.StatusError
			if !errors.As(err, &se) {
				s.Logger.Warn("fetching floor XML", "date", day.Format("2006-01-02"), "error", err)
			}
			continue
		}
		batch := ParseFloor(body, url, s.Logger)
		n := s.Log.Merge(batch)
		s.Logger.Info("loaded floor XML", "date", day.Format("2006-01-02"), "events", n)
	}
	return nil
}

// loadSchedule fetches the schedule record and merges its single event, but
// only when the state it implies disagrees with what the log already
// derives. Re-asserting an agreed state would just churn the log.
func (s *Senate) loadSchedule(ctx context.Context) error {
	body, err := s.client.Get(ctx, ScheduleURL)
	if err != nil {
		return err
	}
	ev, err := ParseSchedule(body, s.Clock.Now(), ScheduleURL)
	if err != nil {
		return err
	}

	implied := chamber.ConvenedNo
	if ev.Kind == events.Convene {
		implied = chamber.ConvenedYes
	}
	if current := s.Signals().Convened; current != implied {
		s.Log.Merge([]events.Event{ev})
	} else {
		s.Logger.Debug("schedule record agrees with derived state, not merging", "state", implied)
	}
	s.scheduleImplied = implied
	return nil
}

// Signals derives the public values, answering with the schedule record's
// implied state while the log alone cannot say whether the chamber is
// convened. An announced-but-future convening means not convened.
func (s *Senate) Signals() chamber.Signals {
	sig := s.State.Signals()
	if sig.Convened == chamber.ConvenedUnknown {
		sig.Convened = s.scheduleImplied
	}
	return sig
}

// sessionBounded reports whether the log already brackets a session with at
// least one convening and one adjournment.
func (s *Senate) sessionBounded() bool {
	// Search far in the future looking backward so every logged event
	// qualifies regardless of the current instant.
	horizon := s.Clock.Now().AddDate(1, 0, 0)
	_, haveConvene := s.Log.Search(horizon, events.Backward, []events.Kind{events.Convene})
	_, haveAdjourn := s.Log.Search(horizon, events.Backward, []events.Kind{events.Adjourn})
	return haveConvene && haveAdjourn
}

func floorURL(day time.Time) string {
	return fmt.Sprintf("%s%02d_%02d_%d_Senate_Floor.xml", FloorActivityURL, int(day.Month()), day.Day(), day.Year())
}

var _ chamber.Chamber = (*Senate)(nil)
