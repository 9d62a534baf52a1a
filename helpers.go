package newswire

import "time"

// NowFunc returns the current time. Tests swap it out to control story
// dates.
var NowFunc func() time.Time = time.Now

// DateOnly truncates a time to its calendar date. Story dates carry no
// time-of-day component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
