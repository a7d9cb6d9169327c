package managed

import "errors"

// Throwable is the Go error carrying a managed exception object.
// Runtimes return it from Invoke and Throw.
type Throwable struct {
	Exception Object
	Message   string
}

func (t *Throwable) Error() string {
	name := "<exception>"
	if t.Exception != nil && t.Exception.Type() != nil {
		name = t.Exception.Type().Name()
	}
	if t.Message == "" {
		return name
	}
	return name + ": " + t.Message
}

// AsThrowable extracts a managed exception from err
func AsThrowable(err error) (*Throwable, bool) {
	var t *Throwable
	if errors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// IsThrowableOf reports whether err is a managed exception that is an
// instance of the well-known type k in runtime rt.
func IsThrowableOf(rt Runtime, err error, k WellKnown) bool {
	t, ok := AsThrowable(err)
	if !ok || t.Exception == nil {
		return false
	}
	return rt.IsInstanceOf(t.Exception, rt.Known(k))
}

// IsPrimitiveValue reports whether v is a Go primitive managed value
func IsPrimitiveValue(v Value) bool {
	switch v.(type) {
	case bool, int8, int16, int32, int64, float32, float64, uint16:
		return true
	}
	return false
}
