// Package webview is the host-facing content view: it owns a bridge, a
// cookie cache and an event registry around one content engine.
package webview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/assets"
	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/bridge"
	"github.com/bnema/webbridge/internal/cache"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/events"
	"github.com/bnema/webbridge/internal/logging"
	"github.com/bnema/webbridge/internal/ui/mainloop"
)

// DescribeFunction is bound on every view and returns the binding schemas.
const DescribeFunction = "__bridge_describe"

const (
	clientScriptName  = "webbridge"
	cookiesChangedKey = "cookies-changed"
)

var nextViewID atomic.Uint64

// Config wires a WebView.
type Config struct {
	Engine     port.ContentEngine
	Dispatcher port.Dispatcher
	Executor   port.Executor

	Journal   port.CallJournal
	Metrics   port.BridgeMetrics
	SessionID entity.SessionID
}

// WebView routes script calls to bound host functions and engine
// notifications to host listeners.
type WebView struct {
	id         uint64
	engine     port.ContentEngine
	dispatcher port.Dispatcher
	bridge     *bridge.Bridge
	cookies    *cache.CookieJar
	events     *events.Registry
	coalescer  *mainloop.Coalescer

	closed atomic.Bool
	log    zerolog.Logger
}

var _ port.EngineObserver = (*WebView)(nil)

// New creates a view, injects the client runtime into the engine and
// attaches itself as the engine's host and observer.
func New(ctx context.Context, cfg Config) (*WebView, error) {
	if cfg.Engine == nil {
		return nil, errors.New("webview: engine is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("webview: dispatcher is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id := nextViewID.Add(1)
	ctx = logging.WithViewID(logging.WithComponent(ctx, "webview"), id)

	b, err := bridge.New(ctx, bridge.Config{
		Sink:       cfg.Engine,
		Dispatcher: cfg.Dispatcher,
		Executor:   cfg.Executor,
		Journal:    cfg.Journal,
		Metrics:    cfg.Metrics,
		SessionID:  cfg.SessionID,
		ViewID:     id,
	})
	if err != nil {
		return nil, fmt.Errorf("create bridge: %w", err)
	}

	v := &WebView{
		id:         id,
		engine:     cfg.Engine,
		dispatcher: cfg.Dispatcher,
		bridge:     b,
		cookies:    cache.NewCookieJar(ctx),
		events:     events.NewRegistry(ctx),
		coalescer:  mainloop.NewCoalescer(cfg.Dispatcher),
		log:        *logging.FromContext(ctx),
	}

	if err := b.Bind(DescribeFunction, bridge.RawFunc(v.describe)); err != nil {
		return nil, err
	}
	if err := cfg.Engine.InjectScript(clientScriptName, assets.ClientScript); err != nil {
		return nil, fmt.Errorf("inject client runtime: %w", err)
	}
	cfg.Engine.Attach(b, v)

	v.log.Debug().Msg("webview created")
	return v, nil
}

// ID returns the view's process-unique identifier.
func (v *WebView) ID() uint64 {
	return v.id
}

// Bridge returns the view's bridge.
func (v *WebView) Bridge() *bridge.Bridge {
	return v.bridge
}

// BindFunction exposes h to script under name.
func (v *WebView) BindFunction(name string, h bridge.Handler) error {
	return v.bridge.Bind(name, h)
}

// UnbindFunction removes name. Unknown names are a no-op.
func (v *WebView) UnbindFunction(name string) bool {
	return v.bridge.Unbind(name)
}

// SendMessage pushes value to script as a "message" event.
func (v *WebView) SendMessage(value any) error {
	return v.bridge.SendMessage(value)
}

// RegisterEventListener subscribes fn to events of type t. Listeners run on
// the UI goroutine.
func (v *WebView) RegisterEventListener(t entity.EventType, fn events.Listener) entity.ListenerID {
	return v.events.Subscribe(t, fn)
}

// UnregisterEventListener removes a listener. Unknown ids are a no-op.
func (v *WebView) UnregisterEventListener(t entity.EventType, id entity.ListenerID) bool {
	return v.events.Unsubscribe(t, id)
}

// GetCookie reads the cached engine cookie.
func (v *WebView) GetCookie(domain, name string) (string, bool) {
	return v.cookies.Get(domain, name)
}

// Cookies returns every cached cookie.
func (v *WebView) Cookies() []entity.Cookie {
	return v.cookies.Snapshot()
}

// RunJavaScript evaluates code in the current document.
func (v *WebView) RunJavaScript(ctx context.Context, code string) (any, error) {
	return v.engine.RunJavaScript(ctx, code)
}

// InjectScript adds a script run before page script on every load.
func (v *WebView) InjectScript(name, source string) error {
	return v.engine.InjectScript(name, source)
}

// LoadURL navigates the engine.
func (v *WebView) LoadURL(ctx context.Context, url string) error {
	return v.engine.Load(ctx, url)
}

// Reload reloads the current document.
func (v *WebView) Reload(ctx context.Context) error {
	return v.engine.Reload(ctx)
}

// Close stops accepting async calls and releases the engine. Calls already
// accepted still reply if the dispatcher is running.
func (v *WebView) Close() error {
	if !v.closed.CompareAndSwap(false, true) {
		return nil
	}
	v.bridge.Close()
	v.coalescer.Destroy()
	if err := v.engine.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	v.log.Debug().Msg("webview closed")
	return nil
}

// OnCookieAdded implements port.EngineObserver.
func (v *WebView) OnCookieAdded(domain, name, value string) {
	v.cookies.Add(domain, name, value)
	v.cookiesChanged()
}

// OnCookieRemoved implements port.EngineObserver.
func (v *WebView) OnCookieRemoved(domain, name string) {
	v.cookies.Remove(domain, name)
	v.cookiesChanged()
}

// OnEngineEvent implements port.EngineObserver.
func (v *WebView) OnEngineEvent(ev entity.Event) {
	if err := v.dispatcher.Post(func() { v.events.Emit(ev) }); err != nil {
		v.log.Debug().Err(err).Str("event", string(ev.Type)).Msg("event dropped")
	}
}

func (v *WebView) cookiesChanged() {
	if v.events.Count(entity.EventCookiesChanged) == 0 {
		return
	}
	err := v.coalescer.Post(cookiesChangedKey, func() {
		v.events.Emit(entity.Event{Type: entity.EventCookiesChanged, Data: v.cookies.Snapshot()})
	})
	if err != nil {
		v.log.Debug().Err(err).Msg("cookies_changed dropped")
	}
}

func (v *WebView) describe(context.Context, json.RawMessage) (any, error) {
	return v.bridge.Registry().Describe(), nil
}
