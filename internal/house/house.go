// Package house tracks the House of Representatives via the clerk's per-day
// journal feed: one structured XML document per civil day, keyed by date.
package house

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/fetch"
)

// BaseURL is the clerk's journal root. A var so tests can point it at an
// httptest server. Not safe for parallel tests that mutate it.
var BaseURL = "https://clerk.house.gov/floor/"

// lookbackDays bounds the walk into prior days for the adjournment
// continuation. A week comfortably spans any district work period gap that
// still matters for current state.
const lookbackDays = 7

// House is the House chamber.
type House struct {
	*chamber.State
	client *fetch.Client
}

// New builds the House chamber. A nil client gets the default fetch timeout.
func New(clock clockwork.Clock, logger *slog.Logger, cachePath string, client *fetch.Client) *House {
	if client == nil {
		client = fetch.New(0)
	}
	return &House{
		State:  chamber.NewState("house", clock, logger, cachePath),
		client: client,
	}
}

// Update refreshes the House if due. The refresh itself never fails the
// update: fetch and parse problems degrade to fewer events, and the
// scheduler advances regardless.
func (h *House) Update(ctx context.Context, force bool) (bool, error) {
	if !h.Due(force) {
		return false, nil
	}
	h.refresh(ctx)
	h.CompleteRefresh()
	return true, nil
}

// refresh fetches today's journal, then walks backward one day at a time for
// the most recent prior journal. When today loaded, the prior day is parsed
// in end-of-day-only mode purely to recover the adjournment continuation;
// when today 404'd (the House not yet in session), the prior day is parsed in
// full since it carries the freshest state we can get.
func (h *House) refresh(ctx context.Context) {
	today := h.Clock.Now().In(chamber.Eastern)

	todayOK := false
	if n, err := h.loadDay(ctx, today, false); err == nil {
		todayOK = true
		h.Logger.Info("loaded today's journal", "events", n)
	} else if !recoverable(err) {
		h.Logger.Warn("fetching today's journal", "error", err)
	}

	for i := 1; i <= lookbackDays; i++ {
		day := today.AddDate(0, 0, -i)
		n, err := h.loadDay(ctx, day, todayOK)
		if err != nil {
			if !recoverable(err) {
				h.Logger.Warn("fetching prior journal", "date", day.Format("2006-01-02"), "error", err)
			}
			continue
		}
		h.Logger.Info("loaded prior journal", "date", day.Format("2006-01-02"), "events", n, "only_eod", todayOK)
		return
	}
	h.Logger.Warn("no prior-day journal found", "lookback_days", lookbackDays)
}

func (h *House) loadDay(ctx context.Context, day time.Time, onlyEOD bool) (int, error) {
	url := journalURL(day)
	body, err := h.client.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	batch := ParseJournal(body, url, onlyEOD, h.Logger)
	return h.Log.Merge(batch), nil
}

// recoverable reports whether err is the routine "no journal for that day"
// answer, which is logged at debug elsewhere rather than warned about.
func recoverable(err error) bool {
	var se *fetch.StatusError
	return errors.As(err, &se)
}

func journalURL(day time.Time) string {
	return BaseURL + day.Format("20060102") + ".xml"
}

var _ chamber.Chamber = (*House)(nil)
