package interop

import (
	"github.com/wippyai/hostinterop/managed"
)

// Dispatch ids of the built-in categories. IDBoxed is abstract: no type is
// classified as it, the boxed categories inherit from it.
const (
	IDObject managed.DispatchID = iota + 1
	IDNull
	IDBoxed
	IDBoolean
	IDByte
	IDShort
	IDInteger
	IDLong
	IDFloat
	IDDouble
	IDCharacter
	IDString
	IDBigInteger
	IDArray
	IDIterable
	IDList
	IDMap
	IDMapEntry
	IDIterator
	IDByteBuffer
	IDThrowable
	IDClass
	IDLocalDate
	IDLocalTime
	IDZoneID
	IDInstant
	IDZonedDateTime
	IDDate
	IDDuration

	idCount
)

var categoryNames = [idCount]string{
	IDObject:        "object",
	IDNull:          "null",
	IDBoxed:         "boxed",
	IDBoolean:       "boolean",
	IDByte:          "byte",
	IDShort:         "short",
	IDInteger:       "integer",
	IDLong:          "long",
	IDFloat:         "float",
	IDDouble:        "double",
	IDCharacter:     "character",
	IDString:        "string",
	IDBigInteger:    "biginteger",
	IDArray:         "array",
	IDIterable:      "iterable",
	IDList:          "list",
	IDMap:           "map",
	IDMapEntry:      "map-entry",
	IDIterator:      "iterator",
	IDByteBuffer:    "byte-buffer",
	IDThrowable:     "throwable",
	IDClass:         "class",
	IDLocalDate:     "local-date",
	IDLocalTime:     "local-time",
	IDZoneID:        "zone-id",
	IDInstant:       "instant",
	IDZonedDateTime: "zoned-date-time",
	IDDate:          "date",
	IDDuration:      "duration",
}

// CategoryName returns the name of a built-in dispatch id
func CategoryName(id managed.DispatchID) string {
	if id < idCount && categoryNames[id] != "" {
		return categoryNames[id]
	}
	return "unknown"
}

// exact categories match the type itself, not its subtypes
var exact = []struct {
	k  managed.WellKnown
	id managed.DispatchID
}{
	{managed.TypeBoolean, IDBoolean},
	{managed.TypeByte, IDByte},
	{managed.TypeShort, IDShort},
	{managed.TypeInteger, IDInteger},
	{managed.TypeLong, IDLong},
	{managed.TypeFloat, IDFloat},
	{managed.TypeDouble, IDDouble},
	{managed.TypeCharacter, IDCharacter},
	{managed.TypeString, IDString},
	{managed.TypeBigInteger, IDBigInteger},
	{managed.TypeClass, IDClass},
	{managed.TypeLocalDate, IDLocalDate},
	{managed.TypeLocalTime, IDLocalTime},
	{managed.TypeInstant, IDInstant},
	{managed.TypeZonedDateTime, IDZonedDateTime},
	{managed.TypeDuration, IDDuration},
}

// subtype categories match the type and everything assignable to it, in
// precedence order: a type that is both a List and an Iterable is a List.
var subtype = []struct {
	k  managed.WellKnown
	id managed.DispatchID
}{
	{managed.TypeZoneID, IDZoneID},
	{managed.TypeDate, IDDate},
	{managed.TypeThrowable, IDThrowable},
	{managed.TypeByteBuffer, IDByteBuffer},
	{managed.TypeMapEntry, IDMapEntry},
	{managed.TypeList, IDList},
	{managed.TypeMap, IDMap},
	{managed.TypeIterator, IDIterator},
	{managed.TypeIterable, IDIterable},
}

// Classify assigns the dispatch id of a managed type. Ambiguity between
// categories is settled here, once per type, by a fixed precedence: null,
// arrays, exact well-known types, then subtype categories in order, then
// plain objects.
func Classify(t managed.Type) managed.DispatchID {
	rt := t.Runtime()
	if rt == nil {
		return IDObject
	}
	if t == rt.TypeOf(nil) {
		return IDNull
	}
	switch t.Kind() {
	case managed.KindArray:
		return IDArray
	case managed.KindPrimitive:
		return IDObject
	}
	for _, e := range exact {
		if k := rt.Known(e.k); k != nil && t == k {
			return e.id
		}
	}
	for _, e := range subtype {
		if k := rt.Known(e.k); k != nil && t.IsSubtypeOf(k) {
			return e.id
		}
	}
	return IDObject
}
