package convert

import (
	"fmt"
	"time"

	"github.com/wippyai/hostinterop/errors"
)

// LocalDate is the protocol view of a calendar date without a zone
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// LocalTime is the protocol view of a wall clock time without a zone
type LocalTime struct {
	Hour   int
	Minute int
	Second int
	Nano   int
}

func (t LocalTime) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nano != 0 {
		s += fmt.Sprintf(".%09d", t.Nano)
	}
	return s
}

// DateOf returns the date part of t in t's location
func DateOf(t time.Time) LocalDate {
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// TimeOf returns the wall clock part of t in t's location
func TimeOf(t time.Time) LocalTime {
	return LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nano: t.Nanosecond()}
}

// Combine resolves a date and time in zone to an instant, returned in UTC
func Combine(d LocalDate, t LocalTime, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
			Value(zone).
			Cause(err).
			Detail("unknown time zone %q", zone).
			Build()
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, t.Nano, loc).UTC(), nil
}
