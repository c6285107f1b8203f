package availability

import (
	"fmt"
	"time"
)

// Interval is a half-open instant range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Overlaps(o Interval) bool {
	return Overlaps(i.Start, i.End, o.Start, o.End)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share at least
// one instant. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On places c on the calendar day of day, in day's location.
func (c ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

func (c ClockTime) Before(o ClockTime) bool {
	return c.Hour*60+c.Minute < o.Hour*60+o.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
