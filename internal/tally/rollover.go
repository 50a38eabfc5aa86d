package tally

import "time"

// DayFormat is the local calendar date layout used for aggregate stamping
// and ledger naming.
const DayFormat = "2006-01-02"

// LocalDay returns the calendar date of t in local time. Local, not UTC:
// a UTC date would roll the ledger over up to a day early or late relative
// to the user's wall clock.
func LocalDay(t time.Time) string {
	return t.Local().Format(DayFormat)
}
