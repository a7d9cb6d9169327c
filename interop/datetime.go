package interop

import (
	"math"
	"time"

	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

func localDate(recv managed.Object) (convert.LocalDate, error) {
	rt := runtimeOf(recv)
	y, err := sendInt(rt, recv, "getYear")
	if err != nil {
		return convert.LocalDate{}, err
	}
	m, err := sendInt(rt, recv, "getMonthValue")
	if err != nil {
		return convert.LocalDate{}, err
	}
	d, err := sendInt(rt, recv, "getDayOfMonth")
	if err != nil {
		return convert.LocalDate{}, err
	}
	return convert.LocalDate{Year: y, Month: time.Month(m), Day: d}, nil
}

func localTime(recv managed.Object) (convert.LocalTime, error) {
	rt := runtimeOf(recv)
	var parts [4]int
	for i, name := range [...]string{"getHour", "getMinute", "getSecond", "getNano"} {
		n, err := sendInt(rt, recv, name)
		if err != nil {
			return convert.LocalTime{}, err
		}
		parts[i] = n
	}
	return convert.LocalTime{Hour: parts[0], Minute: parts[1], Second: parts[2], Nano: parts[3]}, nil
}

func zoneOf(recv managed.Object) (*time.Location, error) {
	rt := runtimeOf(recv)
	v, err := sendKnown(rt, recv, managed.MethodZoneIDGetID)
	if err != nil {
		return nil, err
	}
	o, ok := v.(managed.Object)
	if !ok {
		return nil, mismatch(recv, "zone id is not a string")
	}
	id, ok := rt.HostString(o)
	if !ok {
		return nil, mismatch(recv, "zone id is not a string")
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			ManagedType(recv.Type().Name()).
			Value(id).
			Cause(err).
			Detail("unknown time zone").
			Build()
	}
	return loc, nil
}

func instantOf(recv managed.Object) (time.Time, error) {
	rt := runtimeOf(recv)
	sec, err := sendNamed(rt, recv, "getEpochSecond")
	if err != nil {
		return time.Time{}, err
	}
	s, ok := sec.(int64)
	if !ok {
		return time.Time{}, mismatch(recv, "epoch second is not a long")
	}
	nano, err := sendInt(rt, recv, "getNano")
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(s, int64(nano)).UTC(), nil
}

// via converts recv to another date/time object and reads that instead
func via[T any](wk managed.WellKnownMethod, read func(managed.Object) (T, error)) func(managed.Object) (T, error) {
	return func(recv managed.Object) (T, error) {
		o, err := sendObject(runtimeOf(recv), recv, wk)
		if err != nil {
			var zero T
			return zero, err
		}
		return read(o)
	}
}

func fromInstant[T any](read func(managed.Object) (time.Time, error), pick func(time.Time) T) func(managed.Object) (T, error) {
	return func(recv managed.Object) (T, error) {
		t, err := read(recv)
		if err != nil {
			var zero T
			return zero, err
		}
		return pick(t), nil
	}
}

func reader[T any](fn func(managed.Object) (T, error)) dispatch.Handler {
	return func(recv managed.Object, _ []any) (any, error) {
		return fn(recv)
	}
}

func durationOf(recv managed.Object) (time.Duration, error) {
	rt := runtimeOf(recv)
	sec, err := sendNamed(rt, recv, "getSeconds")
	if err != nil {
		return 0, err
	}
	s, ok := sec.(int64)
	if !ok {
		return 0, mismatch(recv, "duration seconds is not a long")
	}
	nano, err := sendInt(rt, recv, "getNano")
	if err != nil {
		return 0, err
	}
	if s > math.MaxInt64/int64(time.Second)-1 || s < math.MinInt64/int64(time.Second)+1 {
		return 0, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
			ManagedType(recv.Type().Name()).
			Value(s).
			Detail("duration of %d seconds does not fit", s).
			Build()
	}
	return time.Duration(s)*time.Second + time.Duration(nano), nil
}

func utc(time.Time) *time.Location { return time.UTC }

func installLocalDate(t *dispatch.Table) {
	t.Handle(dispatch.IsDate, always(true))
	t.Handle(dispatch.AsDate, reader(localDate))
}

func installLocalTime(t *dispatch.Table) {
	t.Handle(dispatch.IsTime, always(true))
	t.Handle(dispatch.AsTime, reader(localTime))
}

func installZoneID(t *dispatch.Table) {
	t.Handle(dispatch.IsTimeZone, always(true))
	t.Handle(dispatch.AsTimeZone, reader(zoneOf))
}

// installInstantLike wires a category whose value is an instant read by
// instant; date and time are its UTC wall clock.
func installInstantLike(t *dispatch.Table, instant func(managed.Object) (time.Time, error)) {
	t.Handle(dispatch.IsDate, always(true))
	t.Handle(dispatch.IsTime, always(true))
	t.Handle(dispatch.IsTimeZone, always(true))
	t.Handle(dispatch.AsDate, reader(fromInstant(instant, convert.DateOf)))
	t.Handle(dispatch.AsTime, reader(fromInstant(instant, convert.TimeOf)))
	t.Handle(dispatch.AsTimeZone, reader(fromInstant(instant, utc)))
	t.Handle(dispatch.AsInstant, reader(instant))
}

func installInstant(t *dispatch.Table) {
	installInstantLike(t, instantOf)
}

func installDate(t *dispatch.Table) {
	installInstantLike(t, via(managed.MethodDateToInstant, instantOf))
}

// installZonedDateTime leaves AsInstant to the default, which combines
// the date, time and zone.
func installZonedDateTime(t *dispatch.Table) {
	t.Handle(dispatch.IsDate, always(true))
	t.Handle(dispatch.IsTime, always(true))
	t.Handle(dispatch.IsTimeZone, always(true))
	t.Handle(dispatch.AsDate, reader(via(managed.MethodZonedToLocalDate, localDate)))
	t.Handle(dispatch.AsTime, reader(via(managed.MethodZonedToLocalTime, localTime)))
	t.Handle(dispatch.AsTimeZone, reader(via(managed.MethodZonedGetZone, zoneOf)))
}

func installDuration(t *dispatch.Table) {
	t.Handle(dispatch.IsDuration, always(true))
	t.Handle(dispatch.AsDuration, reader(durationOf))
}
