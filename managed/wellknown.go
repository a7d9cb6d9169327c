package managed

import "fmt"

// WellKnown names the runtime types the interop layer needs to recognize
type WellKnown uint8

const (
	TypeObject WellKnown = iota
	TypeString
	TypeBoolean
	TypeByte
	TypeCharacter
	TypeShort
	TypeInteger
	TypeLong
	TypeFloat
	TypeDouble
	TypeNumber
	TypeBigInteger
	TypeClass
	TypeIterable
	TypeList
	TypeMap
	TypeMapEntry
	TypeIterator
	TypeByteBuffer
	TypeByteOrder
	TypeThrowable
	TypeIndexOutOfBounds
	TypeUnsupportedOperation
	TypeNoSuchElement
	TypeClassCast
	TypeIllegalArgument
	TypeNullPointer
	TypeReadOnlyBuffer
	TypeLocalDate
	TypeLocalTime
	TypeZoneID
	TypeInstant
	TypeZonedDateTime
	TypeDate
	TypeDuration

	WellKnownCount
)

var wellKnownNames = [...]string{
	TypeObject:               "java.lang.Object",
	TypeString:               "java.lang.String",
	TypeBoolean:              "java.lang.Boolean",
	TypeByte:                 "java.lang.Byte",
	TypeCharacter:            "java.lang.Character",
	TypeShort:                "java.lang.Short",
	TypeInteger:              "java.lang.Integer",
	TypeLong:                 "java.lang.Long",
	TypeFloat:                "java.lang.Float",
	TypeDouble:               "java.lang.Double",
	TypeNumber:               "java.lang.Number",
	TypeBigInteger:           "java.math.BigInteger",
	TypeClass:                "java.lang.Class",
	TypeIterable:             "java.lang.Iterable",
	TypeList:                 "java.util.List",
	TypeMap:                  "java.util.Map",
	TypeMapEntry:             "java.util.Map$Entry",
	TypeIterator:             "java.util.Iterator",
	TypeByteBuffer:           "java.nio.ByteBuffer",
	TypeByteOrder:            "java.nio.ByteOrder",
	TypeThrowable:            "java.lang.Throwable",
	TypeIndexOutOfBounds:     "java.lang.IndexOutOfBoundsException",
	TypeUnsupportedOperation: "java.lang.UnsupportedOperationException",
	TypeNoSuchElement:        "java.util.NoSuchElementException",
	TypeClassCast:            "java.lang.ClassCastException",
	TypeIllegalArgument:      "java.lang.IllegalArgumentException",
	TypeNullPointer:          "java.lang.NullPointerException",
	TypeReadOnlyBuffer:       "java.nio.ReadOnlyBufferException",
	TypeLocalDate:            "java.time.LocalDate",
	TypeLocalTime:            "java.time.LocalTime",
	TypeZoneID:               "java.time.ZoneId",
	TypeInstant:              "java.time.Instant",
	TypeZonedDateTime:        "java.time.ZonedDateTime",
	TypeDate:                 "java.util.Date",
	TypeDuration:             "java.time.Duration",
}

// Name returns the qualified managed name of the type
func (k WellKnown) Name() string {
	if int(k) < len(wellKnownNames) {
		return wellKnownNames[k]
	}
	return fmt.Sprintf("wellknown(%d)", k)
}

func (k WellKnown) String() string { return k.Name() }

// WellKnownMethod names a method the adapters reach by vtable slot
// instead of by name resolution.
type WellKnownMethod uint8

const (
	MethodToString WellKnownMethod = iota
	MethodHashCode
	MethodEquals

	MethodIterableIterator
	MethodIteratorHasNext
	MethodIteratorNext

	MethodListSize
	MethodListGet
	MethodListSet
	MethodListAdd
	MethodListRemove

	MethodMapSize
	MethodMapContainsKey
	MethodMapGet
	MethodMapPut
	MethodMapRemove
	MethodMapEntrySet

	MethodEntryGetKey
	MethodEntryGetValue
	MethodEntrySetValue

	MethodBufferLimit
	MethodBufferIsReadOnly
	MethodBufferOrder
	MethodBufferSetOrder
	MethodBufferGet
	MethodBufferPut
	MethodBufferGetShort
	MethodBufferPutShort
	MethodBufferGetInt
	MethodBufferPutInt
	MethodBufferGetLong
	MethodBufferPutLong
	MethodBufferGetFloat
	MethodBufferPutFloat
	MethodBufferGetDouble
	MethodBufferPutDouble
	MethodBufferBulkGet

	MethodThrowableGetMessage
	MethodThrowableGetCause
	MethodThrowableGetStackTrace

	MethodBigIntegerToByteArray

	MethodZoneIDGetID
	MethodZonedToLocalDate
	MethodZonedToLocalTime
	MethodZonedGetZone
	MethodZonedToInstant
	MethodDateToInstant

	WellKnownMethodCount
)

// Selector identifies a well-known method by name and arity
type Selector struct {
	Name  string
	Arity int
}

func (s Selector) String() string { return fmt.Sprintf("%s/%d", s.Name, s.Arity) }

var selectors = [...]Selector{
	MethodToString: {"toString", 0},
	MethodHashCode: {"hashCode", 0},
	MethodEquals:   {"equals", 1},

	MethodIterableIterator: {"iterator", 0},
	MethodIteratorHasNext:  {"hasNext", 0},
	MethodIteratorNext:     {"next", 0},

	MethodListSize:   {"size", 0},
	MethodListGet:    {"get", 1},
	MethodListSet:    {"set", 2},
	MethodListAdd:    {"add", 1},
	MethodListRemove: {"remove", 1},

	MethodMapSize:        {"size", 0},
	MethodMapContainsKey: {"containsKey", 1},
	MethodMapGet:         {"get", 1},
	MethodMapPut:         {"put", 2},
	MethodMapRemove:      {"remove", 1},
	MethodMapEntrySet:    {"entrySet", 0},

	MethodEntryGetKey:   {"getKey", 0},
	MethodEntryGetValue: {"getValue", 0},
	MethodEntrySetValue: {"setValue", 1},

	MethodBufferLimit:      {"limit", 0},
	MethodBufferIsReadOnly: {"isReadOnly", 0},
	MethodBufferOrder:      {"order", 0},
	MethodBufferSetOrder:   {"order", 1},
	MethodBufferGet:        {"get", 1},
	MethodBufferPut:        {"put", 2},
	MethodBufferGetShort:   {"getShort", 1},
	MethodBufferPutShort:   {"putShort", 2},
	MethodBufferGetInt:     {"getInt", 1},
	MethodBufferPutInt:     {"putInt", 2},
	MethodBufferGetLong:    {"getLong", 1},
	MethodBufferPutLong:    {"putLong", 2},
	MethodBufferGetFloat:   {"getFloat", 1},
	MethodBufferPutFloat:   {"putFloat", 2},
	MethodBufferGetDouble:  {"getDouble", 1},
	MethodBufferPutDouble:  {"putDouble", 2},
	MethodBufferBulkGet:    {"get", 4},

	MethodThrowableGetMessage:    {"getMessage", 0},
	MethodThrowableGetCause:      {"getCause", 0},
	MethodThrowableGetStackTrace: {"getStackTrace", 0},

	MethodBigIntegerToByteArray: {"toByteArray", 0},

	MethodZoneIDGetID:      {"getId", 0},
	MethodZonedToLocalDate: {"toLocalDate", 0},
	MethodZonedToLocalTime: {"toLocalTime", 0},
	MethodZonedGetZone:     {"getZone", 0},
	MethodZonedToInstant:   {"toInstant", 0},
	MethodDateToInstant:    {"toInstant", 0},
}

// Selector returns the name and arity the method is bound under
func (m WellKnownMethod) Selector() Selector {
	if int(m) < len(selectors) {
		return selectors[m]
	}
	return Selector{Name: fmt.Sprintf("method(%d)", m)}
}

func (m WellKnownMethod) String() string { return m.Selector().String() }
