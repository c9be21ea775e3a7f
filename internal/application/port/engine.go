// Package port defines application-layer interfaces for external capabilities.
// Ports abstract infrastructure concerns, allowing the bridge and views to
// remain independent of a specific content engine, queue, or store.
package port

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

import (
	"context"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// ScriptHost receives script-initiated calls from a content engine.
type ScriptHost interface {
	// Invoke runs the named binding inline and returns its result.
	Invoke(ctx context.Context, function, params string) (any, error)
	// PostMessage queues the named binding; the result arrives later as a
	// reply correlated by callbackID.
	PostMessage(ctx context.Context, callbackID entity.CallbackID, function, params string) error
}

// MessageSink delivers encoded reply and push envelopes to script.
// Implementations may only be called on the UI-affinity goroutine.
type MessageSink interface {
	DeliverMessage(msg string) error
}

// EngineObserver receives fire-and-forget notifications from a content engine.
type EngineObserver interface {
	OnCookieAdded(domain, name, value string)
	OnCookieRemoved(domain, name string)
	OnEngineEvent(event entity.Event)
}

// ContentEngine abstracts the embedded web-content runtime.
type ContentEngine interface {
	MessageSink

	// Attach wires the engine's inbound calls and notifications.
	Attach(host ScriptHost, observer EngineObserver)
	// InjectScript registers a script run at document creation, before page script.
	InjectScript(name, source string) error
	// Load navigates to url.
	Load(ctx context.Context, url string) error
	// Reload re-runs the current document.
	Reload(ctx context.Context) error
	// RunJavaScript evaluates code in the current document and returns its
	// exported value.
	RunJavaScript(ctx context.Context, code string) (any, error)
	// Close releases the engine.
	Close() error
}
