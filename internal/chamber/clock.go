package chamber

import "time"

// Eastern is the civil timezone of both feeds. Every persisted timestamp in
// the engine carries this zone's offset; naive instants never escape a
// parser's scratch space.
var Eastern = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("chamber: loading America/New_York: " + err.Error())
	}
	return loc
}
