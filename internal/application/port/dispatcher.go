package port

//go:generate mockgen -source=dispatcher.go -destination=mocks/mock_dispatcher.go -package=mocks

import "context"

// Dispatcher runs tasks on the single UI-affinity goroutine.
type Dispatcher interface {
	// Post queues fn; tasks run in submission order.
	Post(fn func()) error
	// Invoke runs fn on the UI goroutine and waits for it.
	Invoke(ctx context.Context, fn func() error) error
	// IsOwner reports whether the caller is the UI goroutine.
	IsOwner() bool
}

// Task is an opaque unit of work run by an Executor.
type Task func(ctx context.Context)

// Executor runs fire-and-forget tasks off the UI goroutine.
type Executor interface {
	Submit(task Task) error
}
