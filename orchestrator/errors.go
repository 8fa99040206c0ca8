package orchestrator

import "github.com/pkg/errors"

// ErrorKind classifies the ways an orchestrator operation can fail.
type ErrorKind int

const (
	NotInitialized ErrorKind = iota
	AlreadyRunning
	InvalidInstance
	InvalidConfig
	Cancelled
	EvaluationFailed
	ExportFailed
	ImportFailed
)

func (k ErrorKind) String() string {
	switch k {
	case NotInitialized:
		return "NotInitialized"
	case AlreadyRunning:
		return "AlreadyRunning"
	case InvalidInstance:
		return "InvalidInstance"
	case InvalidConfig:
		return "InvalidConfig"
	case Cancelled:
		return "Cancelled"
	case EvaluationFailed:
		return "EvaluationFailed"
	case ExportFailed:
		return "ExportFailed"
	case ImportFailed:
		return "ImportFailed"
	default:
		return "Unknown"
	}
}

// Error wraps an ErrorKind with its underlying cause. NotInitialized,
// AlreadyRunning, InvalidInstance, and InvalidConfig surface to the caller.
// InitializeRandomInstance, Run, and StartStepMode set status to Error when
// they return one; SetPSOConfig, SetGAConfig, and Step return theirs and
// leave status unchanged. A cancelled Run transitions to Stopped without
// returning an error.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }
