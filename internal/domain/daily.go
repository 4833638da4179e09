package domain

import "time"

// CanOpenOn reports whether a pack last opened at lastOpened is eligible
// again at now. Eligibility resets at local midnight in loc, not on a
// rolling 24-hour window: an open at 23:59:59 is eligible again at 00:00:01
// the next day.
func CanOpenOn(lastOpened, now time.Time, loc *time.Location) bool {
	if lastOpened.IsZero() {
		return true
	}
	ly, lm, ld := lastOpened.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	last := time.Date(ly, lm, ld, 0, 0, 0, 0, loc)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)
	return today.After(last)
}
