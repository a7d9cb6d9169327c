package interop

import (
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
)

func (l *Library) HasMembers(v any) bool { return l.query(v, dispatch.HasMembers) }

// GetMembers lists member names, sorted and without duplicates
func (l *Library) GetMembers(v any) ([]string, error) {
	return typed[[]string](l, v, dispatch.GetMembers)
}

func (l *Library) IsMemberReadable(v any, name string) bool {
	return l.query(v, dispatch.IsMemberReadable, name)
}

func (l *Library) IsMemberModifiable(v any, name string) bool {
	return l.query(v, dispatch.IsMemberModifiable, name)
}

func (l *Library) IsMemberInsertable(v any, name string) bool {
	return l.query(v, dispatch.IsMemberInsertable, name)
}

func (l *Library) IsMemberRemovable(v any, name string) bool {
	return l.query(v, dispatch.IsMemberRemovable, name)
}

func (l *Library) IsMemberInvocable(v any, name string) bool {
	return l.query(v, dispatch.IsMemberInvocable, name)
}

func (l *Library) IsMemberInternal(v any, name string) bool {
	return l.query(v, dispatch.IsMemberInternal, name)
}

func (l *Library) HasMemberReadSideEffects(v any, name string) bool {
	return l.query(v, dispatch.HasMemberReadSideEffects, name)
}

func (l *Library) HasMemberWriteSideEffects(v any, name string) bool {
	return l.query(v, dispatch.HasMemberWriteSideEffects, name)
}

// ReadMember returns a field value or, for a method, a *BoundMethod
func (l *Library) ReadMember(v any, name string) (any, error) {
	return l.Send(v, dispatch.ReadMember, name)
}

func (l *Library) WriteMember(v any, name string, value any) error {
	_, err := l.Send(v, dispatch.WriteMember, name, value)
	return err
}

func (l *Library) RemoveMember(v any, name string) error {
	_, err := l.Send(v, dispatch.RemoveMember, name)
	return err
}

// InvokeMember invokes the member name with overload resolution over args
func (l *Library) InvokeMember(v any, name string, args ...any) (any, error) {
	return l.Send(v, dispatch.InvokeMember, append([]any{name}, args...)...)
}

func (l *Library) IsExecutable(v any) bool { return l.query(v, dispatch.IsExecutable) }

func (l *Library) Execute(v any, args ...any) (any, error) {
	return l.Send(v, dispatch.Execute, args...)
}

func (l *Library) HasExecutableName(v any) bool { return l.query(v, dispatch.HasExecutableName) }

func (l *Library) GetExecutableName(v any) (string, error) {
	return typed[string](l, v, dispatch.GetExecutableName)
}

func (l *Library) IsInstantiable(v any) bool { return l.query(v, dispatch.IsInstantiable) }

// Instantiate runs the constructor of the type meta-object v mirrors
func (l *Library) Instantiate(v any, args ...any) (any, error) {
	return l.Send(v, dispatch.Instantiate, args...)
}

func (l *Library) HasMetaObject(v any) bool { return l.query(v, dispatch.HasMetaObject) }

func (l *Library) GetMetaObject(v any) (any, error) {
	return l.Send(v, dispatch.GetMetaObject)
}

func (l *Library) IsMetaObject(v any) bool { return l.query(v, dispatch.IsMetaObject) }

func (l *Library) GetMetaQualifiedName(v any) (string, error) {
	return typed[string](l, v, dispatch.GetMetaQualifiedName)
}

func (l *Library) GetMetaSimpleName(v any) (string, error) {
	return typed[string](l, v, dispatch.GetMetaSimpleName)
}

// IsMetaInstance reports whether instance is an instance of meta-object v
func (l *Library) IsMetaInstance(v, instance any) bool {
	return l.query(v, dispatch.IsMetaInstance, instance)
}

func (l *Library) HasMetaParents(v any) bool { return l.query(v, dispatch.HasMetaParents) }

// GetMetaParents returns an array of meta-objects: the superclass first,
// then the directly implemented interfaces.
func (l *Library) GetMetaParents(v any) (any, error) {
	return l.Send(v, dispatch.GetMetaParents)
}

func (l *Library) HasDeclaringMetaObject(v any) bool {
	return l.query(v, dispatch.HasDeclaringMetaObject)
}

func (l *Library) GetDeclaringMetaObject(v any) (any, error) {
	return l.Send(v, dispatch.GetDeclaringMetaObject)
}

func (l *Library) IsException(v any) bool { return l.query(v, dispatch.IsException) }

// ThrowException returns the exception v as a *errors.ManagedFault
func (l *Library) ThrowException(v any) error {
	_, err := l.Send(v, dispatch.ThrowException)
	if err == nil {
		return errors.New(errors.PhaseDispatch, errors.KindUnsupported).
			Path(dispatch.ThrowException.String()).
			Detail("receiver did not raise").
			Build()
	}
	return err
}

func (l *Library) GetExceptionType(v any) (string, error) {
	return typed[string](l, v, dispatch.GetExceptionType)
}

func (l *Library) IsExceptionIncompleteSource(v any) bool {
	return l.query(v, dispatch.IsExceptionIncompleteSource)
}

func (l *Library) GetExceptionExitStatus(v any) (int32, error) {
	return typed[int32](l, v, dispatch.GetExceptionExitStatus)
}

func (l *Library) HasExceptionMessage(v any) bool { return l.query(v, dispatch.HasExceptionMessage) }

func (l *Library) GetExceptionMessage(v any) (string, error) {
	return typed[string](l, v, dispatch.GetExceptionMessage)
}

func (l *Library) HasExceptionCause(v any) bool { return l.query(v, dispatch.HasExceptionCause) }

func (l *Library) GetExceptionCause(v any) (any, error) {
	return l.Send(v, dispatch.GetExceptionCause)
}

func (l *Library) HasExceptionStackTrace(v any) bool {
	return l.query(v, dispatch.HasExceptionStackTrace)
}

// GetExceptionStackTrace returns the frames as an array of strings
func (l *Library) GetExceptionStackTrace(v any) (any, error) {
	return l.Send(v, dispatch.GetExceptionStackTrace)
}
