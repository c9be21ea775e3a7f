package bridge

import "errors"

var (
	// ErrEmptyName is returned when binding a function without a name.
	ErrEmptyName = errors.New("bridge: binding name cannot be empty")
	// ErrNilHandler is returned when binding a nil handler.
	ErrNilHandler = errors.New("bridge: binding handler cannot be nil")
	// ErrInvalidCallbackID is returned for the reserved push callback id.
	ErrInvalidCallbackID = errors.New("bridge: callback id is reserved for host pushes")
	// ErrDuplicateCallback is returned when a callback id is already awaiting a reply.
	ErrDuplicateCallback = errors.New("bridge: callback id already in flight")
	// ErrNotBound is wrapped by the not_found error of an unresolved call.
	ErrNotBound = errors.New("bridge: function is not bound")
	// ErrClosed is returned by PostMessage after Close.
	ErrClosed = errors.New("bridge: closed")
)
