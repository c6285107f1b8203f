package timezone

import (
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Sao_Paulo"

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

// Clock returns the current instant. Use cases receive one so tests can
// pin "now".
type Clock func() time.Time

func SystemClock() Clock {
	return time.Now
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func ParseDate(tz, value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location(tz))
}

func ParseDateTime(tz, date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, date+" "+clock, Location(tz))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
