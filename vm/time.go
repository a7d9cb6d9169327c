package vm

import (
	"fmt"
	"time"

	"github.com/wippyai/hostinterop/managed"
)

type dateState struct{ year, month, day int32 }

type timeState struct{ hour, minute, second, nano int32 }

type instantState struct {
	seconds int64
	nanos   int32
}

type zonedState struct {
	date dateState
	tod  timeState
	zone *Object
}

type durationState struct {
	seconds int64
	nanos   int32
}

func (m *Machine) bootstrapTime() {
	str := m.known[managed.TypeString]
	i32 := m.prims[managed.PrimInt]
	i64 := m.prims[managed.PrimLong]

	getter := func(name string, ret *Class, get func(self *Object) managed.Value) MethodSpec {
		return MethodSpec{Name: name, Return: ret, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return get(self), nil
		}}
	}
	stringer := func(render func(self *Object) string) MethodSpec {
		return MethodSpec{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.Str(render(self)), nil
		}}
	}

	date := m.register(ClassSpec{Name: managed.TypeLocalDate.Name(), Final: true})
	m.known[managed.TypeLocalDate] = date
	ds := func(self *Object) dateState { return *self.native.(*dateState) }
	m.addMethods(date,
		getter("getYear", i32, func(self *Object) managed.Value { return ds(self).year }),
		getter("getMonthValue", i32, func(self *Object) managed.Value { return ds(self).month }),
		getter("getDayOfMonth", i32, func(self *Object) managed.Value { return ds(self).day }),
		stringer(func(self *Object) string {
			d := ds(self)
			return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
		}),
		MethodSpec{Name: "of", Static: true, Params: []*Class{i32, i32, i32}, Return: date, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			y, mo, d := args[0].(int32), args[1].(int32), args[2].(int32)
			if !validDate(y, mo, d) {
				return nil, m.Throwf(managed.TypeIllegalArgument, "invalid date %d-%d-%d", y, mo, d)
			}
			return m.NewLocalDate(int(y), time.Month(mo), int(d)), nil
		}},
	)

	tod := m.register(ClassSpec{Name: managed.TypeLocalTime.Name(), Final: true})
	m.known[managed.TypeLocalTime] = tod
	ts := func(self *Object) timeState { return *self.native.(*timeState) }
	m.addMethods(tod,
		getter("getHour", i32, func(self *Object) managed.Value { return ts(self).hour }),
		getter("getMinute", i32, func(self *Object) managed.Value { return ts(self).minute }),
		getter("getSecond", i32, func(self *Object) managed.Value { return ts(self).second }),
		getter("getNano", i32, func(self *Object) managed.Value { return ts(self).nano }),
		stringer(func(self *Object) string {
			t := ts(self)
			s := fmt.Sprintf("%02d:%02d:%02d", t.hour, t.minute, t.second)
			if t.nano != 0 {
				s += fmt.Sprintf(".%09d", t.nano)
			}
			return s
		}),
	)

	zone := m.register(ClassSpec{Name: managed.TypeZoneID.Name(), Final: true})
	m.known[managed.TypeZoneID] = zone
	m.addMethods(zone,
		getter("getId", str, func(self *Object) managed.Value { return m.Str(self.native.(*time.Location).String()) }),
		stringer(func(self *Object) string { return self.native.(*time.Location).String() }),
		MethodSpec{Name: "of", Static: true, Params: []*Class{str}, Return: zone, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			id, ok := m.HostString(args[0].(managed.Object))
			if !ok {
				return nil, m.Throw(managed.TypeNullPointer, "ZoneId.of(null)")
			}
			z, err := m.NewZoneID(id)
			if err != nil {
				return nil, err
			}
			return z, nil
		}},
	)

	instant := m.register(ClassSpec{Name: managed.TypeInstant.Name(), Final: true})
	m.known[managed.TypeInstant] = instant
	is := func(self *Object) instantState { return *self.native.(*instantState) }
	m.addMethods(instant,
		getter("getEpochSecond", i64, func(self *Object) managed.Value { return is(self).seconds }),
		getter("getNano", i32, func(self *Object) managed.Value { return is(self).nanos }),
		stringer(func(self *Object) string {
			st := is(self)
			return time.Unix(st.seconds, int64(st.nanos)).UTC().Format(time.RFC3339Nano)
		}),
	)

	zoned := m.register(ClassSpec{Name: managed.TypeZonedDateTime.Name(), Final: true})
	m.known[managed.TypeZonedDateTime] = zoned
	zs := func(self *Object) *zonedState { return self.native.(*zonedState) }
	m.addMethods(zoned,
		MethodSpec{Name: "toLocalDate", Return: date, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			d := zs(self).date
			return &Object{class: date, native: &d}, nil
		}},
		MethodSpec{Name: "toLocalTime", Return: tod, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			t := zs(self).tod
			return &Object{class: tod, native: &t}, nil
		}},
		MethodSpec{Name: "getZone", Return: zone, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return zs(self).zone, nil
		}},
		MethodSpec{Name: "toInstant", Return: instant, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.NewInstant(zonedTime(zs(self))), nil
		}},
		stringer(func(self *Object) string {
			st := zs(self)
			return zonedTime(st).Format(time.RFC3339Nano) + "[" + st.zone.native.(*time.Location).String() + "]"
		}),
	)

	legacy := m.register(ClassSpec{Name: managed.TypeDate.Name()})
	m.known[managed.TypeDate] = legacy
	m.addMethods(legacy,
		getter("getTime", i64, func(self *Object) managed.Value { return self.native.(int64) }),
		MethodSpec{Name: "toInstant", Return: instant, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.NewInstant(time.UnixMilli(self.native.(int64))), nil
		}},
		stringer(func(self *Object) string { return time.UnixMilli(self.native.(int64)).UTC().String() }),
	)

	duration := m.register(ClassSpec{Name: managed.TypeDuration.Name(), Final: true})
	m.known[managed.TypeDuration] = duration
	dus := func(self *Object) durationState { return *self.native.(*durationState) }
	m.addMethods(duration,
		getter("getSeconds", i64, func(self *Object) managed.Value { return dus(self).seconds }),
		getter("getNano", i32, func(self *Object) managed.Value { return dus(self).nanos }),
		stringer(func(self *Object) string {
			d := dus(self)
			return fmt.Sprintf("PT%d.%09dS", d.seconds, d.nanos)
		}),
	)
}

func validDate(y, mo, d int32) bool {
	if mo < 1 || mo > 12 || d < 1 {
		return false
	}
	t := time.Date(int(y), time.Month(mo), int(d), 0, 0, 0, 0, time.UTC)
	return t.Day() == int(d)
}

func zonedTime(st *zonedState) time.Time {
	loc := st.zone.native.(*time.Location)
	return time.Date(int(st.date.year), time.Month(st.date.month), int(st.date.day),
		int(st.tod.hour), int(st.tod.minute), int(st.tod.second), int(st.tod.nano), loc)
}

// NewLocalDate creates a java.time.LocalDate
func (m *Machine) NewLocalDate(year int, month time.Month, day int) *Object {
	return &Object{class: m.known[managed.TypeLocalDate], native: &dateState{int32(year), int32(month), int32(day)}}
}

// NewLocalTime creates a java.time.LocalTime
func (m *Machine) NewLocalTime(hour, minute, second, nano int) *Object {
	return &Object{class: m.known[managed.TypeLocalTime], native: &timeState{int32(hour), int32(minute), int32(second), int32(nano)}}
}

// NewZoneID resolves a zone id through the Go time zone database
func (m *Machine) NewZoneID(id string) (*Object, error) {
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, m.Throwf(managed.TypeIllegalArgument, "unknown time-zone ID: %s", id)
	}
	return &Object{class: m.known[managed.TypeZoneID], native: loc}, nil
}

// NewInstant creates a java.time.Instant at t
func (m *Machine) NewInstant(t time.Time) *Object {
	return &Object{class: m.known[managed.TypeInstant], native: &instantState{seconds: t.Unix(), nanos: int32(t.Nanosecond())}}
}

// NewZonedDateTime creates a java.time.ZonedDateTime for t in its location
func (m *Machine) NewZonedDateTime(t time.Time) *Object {
	zone := &Object{class: m.known[managed.TypeZoneID], native: t.Location()}
	return &Object{class: m.known[managed.TypeZonedDateTime], native: &zonedState{
		date: dateState{int32(t.Year()), int32(t.Month()), int32(t.Day())},
		tod:  timeState{int32(t.Hour()), int32(t.Minute()), int32(t.Second()), int32(t.Nanosecond())},
		zone: zone,
	}}
}

// NewDate creates a java.util.Date at t with millisecond precision
func (m *Machine) NewDate(t time.Time) *Object {
	return &Object{class: m.known[managed.TypeDate], native: t.UnixMilli()}
}

// NewDuration creates a java.time.Duration
func (m *Machine) NewDuration(seconds int64, nanos int32) *Object {
	return &Object{class: m.known[managed.TypeDuration], native: &durationState{seconds: seconds, nanos: nanos}}
}
