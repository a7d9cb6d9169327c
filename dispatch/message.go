package dispatch

import (
	"fmt"
	"strings"

	"github.com/wippyai/hostinterop/errors"
)

// Message is one entry of the closed protocol message catalogue
type Message uint8

const (
	// identity and execution
	IsNull Message = iota
	IsBoolean
	AsBoolean
	IsExecutable
	Execute
	HasExecutableName
	GetExecutableName
	HasDeclaringMetaObject
	GetDeclaringMetaObject
	IsInstantiable
	Instantiate

	// strings
	IsString
	AsString
	AsTruffleString

	// numbers
	IsNumber
	FitsInByte
	FitsInShort
	FitsInInt
	FitsInLong
	FitsInFloat
	FitsInDouble
	FitsInBigInteger
	AsByte
	AsShort
	AsInt
	AsLong
	AsFloat
	AsDouble
	AsBigInteger

	// members
	HasMembers
	GetMembers
	IsMemberReadable
	ReadMember
	IsMemberModifiable
	IsMemberInsertable
	WriteMember
	IsMemberRemovable
	RemoveMember
	IsMemberInvocable
	InvokeMember
	IsMemberInternal
	HasMemberReadSideEffects
	HasMemberWriteSideEffects

	// hashes
	HasHashEntries
	GetHashSize
	IsHashEntryReadable
	ReadHashValue
	ReadHashValueOrDefault
	IsHashEntryModifiable
	IsHashEntryInsertable
	IsHashEntryWritable
	WriteHashEntry
	IsHashEntryRemovable
	RemoveHashEntry
	IsHashEntryExisting
	GetHashEntriesIterator
	GetHashKeysIterator
	GetHashValuesIterator

	// arrays
	HasArrayElements
	ReadArrayElement
	GetArraySize
	IsArrayElementReadable
	WriteArrayElement
	RemoveArrayElement
	IsArrayElementModifiable
	IsArrayElementInsertable
	IsArrayElementRemovable

	// buffers
	HasBufferElements
	IsBufferWritable
	GetBufferSize
	ReadBufferByte
	ReadBuffer
	WriteBufferByte
	ReadBufferShort
	WriteBufferShort
	ReadBufferInt
	WriteBufferInt
	ReadBufferLong
	WriteBufferLong
	ReadBufferFloat
	WriteBufferFloat
	ReadBufferDouble
	WriteBufferDouble

	// native pointers
	IsPointer
	AsPointer
	ToNative

	// date and time
	AsInstant
	IsTimeZone
	AsTimeZone
	IsDate
	AsDate
	IsTime
	AsTime
	IsDuration
	AsDuration

	// exceptions
	IsException
	ThrowException
	GetExceptionType
	IsExceptionIncompleteSource
	GetExceptionExitStatus
	HasExceptionCause
	GetExceptionCause
	HasExceptionMessage
	GetExceptionMessage
	HasExceptionStackTrace
	GetExceptionStackTrace

	// iterators
	HasIterator
	GetIterator
	IsIterator
	HasIteratorNextElement
	GetIteratorNextElement

	// source and language
	HasSourceLocation
	GetSourceLocation
	HasLanguage
	GetLanguage

	// meta-objects
	HasMetaObject
	GetMetaObject
	ToDisplayString
	IsMetaObject
	GetMetaQualifiedName
	GetMetaSimpleName
	IsMetaInstance
	HasMetaParents
	GetMetaParents

	// identity and scopes
	IsIdenticalOrUndefined
	IsIdentical
	IdentityHashCode
	IsScope
	HasScopeParent
	GetScopeParent

	// MessageCount is the size of the catalogue
	MessageCount
)

// messageNames is indexed by Message, in declaration order
var messageNames = [MessageCount]string{
	// identity and execution
	"IsNull",
	"IsBoolean",
	"AsBoolean",
	"IsExecutable",
	"Execute",
	"HasExecutableName",
	"GetExecutableName",
	"HasDeclaringMetaObject",
	"GetDeclaringMetaObject",
	"IsInstantiable",
	"Instantiate",

	// strings
	"IsString",
	"AsString",
	"AsTruffleString",

	// numbers
	"IsNumber",
	"FitsInByte",
	"FitsInShort",
	"FitsInInt",
	"FitsInLong",
	"FitsInFloat",
	"FitsInDouble",
	"FitsInBigInteger",
	"AsByte",
	"AsShort",
	"AsInt",
	"AsLong",
	"AsFloat",
	"AsDouble",
	"AsBigInteger",

	// members
	"HasMembers",
	"GetMembers",
	"IsMemberReadable",
	"ReadMember",
	"IsMemberModifiable",
	"IsMemberInsertable",
	"WriteMember",
	"IsMemberRemovable",
	"RemoveMember",
	"IsMemberInvocable",
	"InvokeMember",
	"IsMemberInternal",
	"HasMemberReadSideEffects",
	"HasMemberWriteSideEffects",

	// hashes
	"HasHashEntries",
	"GetHashSize",
	"IsHashEntryReadable",
	"ReadHashValue",
	"ReadHashValueOrDefault",
	"IsHashEntryModifiable",
	"IsHashEntryInsertable",
	"IsHashEntryWritable",
	"WriteHashEntry",
	"IsHashEntryRemovable",
	"RemoveHashEntry",
	"IsHashEntryExisting",
	"GetHashEntriesIterator",
	"GetHashKeysIterator",
	"GetHashValuesIterator",

	// arrays
	"HasArrayElements",
	"ReadArrayElement",
	"GetArraySize",
	"IsArrayElementReadable",
	"WriteArrayElement",
	"RemoveArrayElement",
	"IsArrayElementModifiable",
	"IsArrayElementInsertable",
	"IsArrayElementRemovable",

	// buffers
	"HasBufferElements",
	"IsBufferWritable",
	"GetBufferSize",
	"ReadBufferByte",
	"ReadBuffer",
	"WriteBufferByte",
	"ReadBufferShort",
	"WriteBufferShort",
	"ReadBufferInt",
	"WriteBufferInt",
	"ReadBufferLong",
	"WriteBufferLong",
	"ReadBufferFloat",
	"WriteBufferFloat",
	"ReadBufferDouble",
	"WriteBufferDouble",

	// native pointers
	"IsPointer",
	"AsPointer",
	"ToNative",

	// date and time
	"AsInstant",
	"IsTimeZone",
	"AsTimeZone",
	"IsDate",
	"AsDate",
	"IsTime",
	"AsTime",
	"IsDuration",
	"AsDuration",

	// exceptions
	"IsException",
	"ThrowException",
	"GetExceptionType",
	"IsExceptionIncompleteSource",
	"GetExceptionExitStatus",
	"HasExceptionCause",
	"GetExceptionCause",
	"HasExceptionMessage",
	"GetExceptionMessage",
	"HasExceptionStackTrace",
	"GetExceptionStackTrace",

	// iterators
	"HasIterator",
	"GetIterator",
	"IsIterator",
	"HasIteratorNextElement",
	"GetIteratorNextElement",

	// source and language
	"HasSourceLocation",
	"GetSourceLocation",
	"HasLanguage",
	"GetLanguage",

	// meta-objects
	"HasMetaObject",
	"GetMetaObject",
	"ToDisplayString",
	"IsMetaObject",
	"GetMetaQualifiedName",
	"GetMetaSimpleName",
	"IsMetaInstance",
	"HasMetaParents",
	"GetMetaParents",

	// identity and scopes
	"IsIdenticalOrUndefined",
	"IsIdentical",
	"IdentityHashCode",
	"IsScope",
	"HasScopeParent",
	"GetScopeParent",
}

var messagesByName = func() map[string]Message {
	out := make(map[string]Message, MessageCount)
	for i, n := range messageNames {
		out[strings.ToLower(n)] = Message(i)
	}
	return out
}()

func (m Message) String() string {
	if m < MessageCount {
		return messageNames[m]
	}
	return fmt.Sprintf("message(%d)", m)
}

// IsQuery reports whether m is a query-style message (Is*, Has*, FitsIn*).
// Query messages answer with a value and are never expected to raise.
func (m Message) IsQuery() bool {
	n := m.String()
	return strings.HasPrefix(n, "Is") || strings.HasPrefix(n, "Has") || strings.HasPrefix(n, "Fits")
}

// Arity is the number of arguments m requires. Execute, Instantiate and
// InvokeMember accept more; ToDisplayString takes an optional flag.
func (m Message) Arity() int {
	switch m {
	case IsMemberReadable, ReadMember, IsMemberModifiable, IsMemberInsertable,
		IsMemberRemovable, RemoveMember, IsMemberInvocable, InvokeMember,
		IsMemberInternal, HasMemberReadSideEffects, HasMemberWriteSideEffects,
		IsHashEntryReadable, ReadHashValue, IsHashEntryModifiable,
		IsHashEntryInsertable, IsHashEntryWritable, IsHashEntryRemovable,
		RemoveHashEntry, IsHashEntryExisting,
		ReadArrayElement, IsArrayElementReadable, RemoveArrayElement,
		IsArrayElementModifiable, IsArrayElementInsertable, IsArrayElementRemovable,
		ReadBufferByte, IsMetaInstance, IsIdenticalOrUndefined, IsIdentical:
		return 1
	case WriteMember, ReadHashValueOrDefault, WriteHashEntry, WriteArrayElement,
		WriteBufferByte, ReadBufferShort, ReadBufferInt, ReadBufferLong,
		ReadBufferFloat, ReadBufferDouble:
		return 2
	case WriteBufferShort, WriteBufferInt, WriteBufferLong, WriteBufferFloat,
		WriteBufferDouble:
		return 3
	case ReadBuffer:
		return 4
	}
	return 0
}

// CheckArgs fails with errors.KindArity when args is shorter than msg
// requires
func CheckArgs(msg Message, args []any) error {
	if n := msg.Arity(); len(args) < n {
		return errors.New(errors.PhaseDispatch, errors.KindArity).
			Path(msg.String()).
			Value(len(args)).
			Detail("takes %d argument(s), got %d", n, len(args)).
			Build()
	}
	return nil
}

// ParseMessage looks a message up by name, ignoring case
func ParseMessage(name string) (Message, bool) {
	m, ok := messagesByName[strings.ToLower(name)]
	return m, ok
}

// Messages returns the full catalogue in declaration order
func Messages() []Message {
	out := make([]Message, MessageCount)
	for i := range out {
		out[i] = Message(i)
	}
	return out
}
