// Package jsengine is a headless content engine: each loaded document is a
// sobek runtime driven exclusively from the UI dispatcher goroutine.
package jsengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/grafana/sobek"
	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("jsengine: closed")
	// ErrNoDocument is returned when no document has been loaded yet.
	ErrNoDocument = errors.New("jsengine: no document loaded")
	// ErrNotOwner is returned when DeliverMessage is called off the UI goroutine.
	ErrNotOwner = errors.New("jsengine: message delivery must run on the UI goroutine")
	// ErrNotAttached is thrown into script when no host is attached.
	ErrNotAttached = errors.New("jsengine: no script host attached")
	// ErrPendingPromise is returned when RunJavaScript yields an unsettled promise.
	ErrPendingPromise = errors.New("jsengine: script returned a pending promise")
	// ErrForeignCallback is thrown into script for a callback id outside the
	// document's block.
	ErrForeignCallback = errors.New("jsengine: callback id does not belong to this document")
)

const aboutBlank = "about:blank"

// Config configures an Engine.
type Config struct {
	// Dispatcher is the UI-affinity queue every runtime access goes through.
	Dispatcher port.Dispatcher
	// DevMode logs console output at info level instead of debug.
	DevMode bool
	// ReplyTimeout is exposed to the client runtime as the default timeout
	// of asynchronous calls. Zero disables it.
	ReplyTimeout time.Duration
}

type injectedScript struct {
	name   string
	source string
}

// Engine implements port.ContentEngine on top of sobek.
type Engine struct {
	dispatcher   port.Dispatcher
	devMode      bool
	replyTimeout time.Duration

	baseCtx context.Context
	log     zerolog.Logger

	mu       sync.Mutex
	host     port.ScriptHost
	observer port.EngineObserver
	injected []injectedScript
	doc      *document
	url      string
	cookies  map[entity.CookieKey]string
	loads    int64
	closed   bool

	quit chan int
}

var _ port.ContentEngine = (*Engine)(nil)

// New creates an engine with no document loaded. ctx carries the logger.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("jsengine: dispatcher is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithComponent(ctx, "jsengine")

	return &Engine{
		dispatcher:   cfg.Dispatcher,
		devMode:      cfg.DevMode,
		replyTimeout: cfg.ReplyTimeout,
		baseCtx:      ctx,
		log:          *logging.FromContext(ctx),
		cookies:      make(map[entity.CookieKey]string),
		quit:         make(chan int, 1),
	}, nil
}

// Attach wires script calls to host and notifications to observer.
func (e *Engine) Attach(host port.ScriptHost, observer port.EngineObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.host = host
	e.observer = observer
}

// InjectScript registers source to run at document creation, before page
// script, in registration order. Re-injecting a name replaces its source.
func (e *Engine) InjectScript(name, source string) error {
	if name == "" {
		return errors.New("jsengine: script name cannot be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	for i := range e.injected {
		if e.injected[i].name == name {
			e.injected[i].source = source
			return nil
		}
	}
	e.injected = append(e.injected, injectedScript{name: name, source: source})
	return nil
}

// Load creates a fresh document for url and runs its script. Supported
// schemes are about:blank, file:// and data:.
func (e *Engine) Load(ctx context.Context, url string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if url == "" {
		url = aboutBlank
	}

	source, err := resolveDocument(url)
	if err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return e.dispatcher.Invoke(ctx, func() error {
		return e.loadDocument(ctx, url, source)
	})
}

// Reload loads the current URL again.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	url := e.url
	e.mu.Unlock()

	if url == "" {
		return ErrNoDocument
	}
	return e.Load(ctx, url)
}

// URL returns the address of the current document.
func (e *Engine) URL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}

// RunJavaScript evaluates code in the current document and returns the
// exported value. A settled promise is unwrapped.
func (e *Engine) RunJavaScript(ctx context.Context, code string) (any, error) {
	var result any
	err := e.dispatcher.Invoke(ctx, func() error {
		doc, err := e.current()
		if err != nil {
			return err
		}
		v, err := doc.run(ctx, "eval", code)
		if err != nil {
			return err
		}
		result, err = exportValue(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeliverMessage hands an encoded reply or push to the client runtime.
// It must be called on the dispatcher goroutine. Replies to calls made by a
// document that has since been replaced are dropped.
func (e *Engine) DeliverMessage(msg string) error {
	if !e.dispatcher.IsOwner() {
		return ErrNotOwner
	}
	doc, err := e.current()
	if err != nil {
		return err
	}
	if id, ok := replyCallbackID(msg); ok && !id.IsPush() && !doc.ownsCallback(id) {
		e.log.Debug().Int64("callback_id", int64(id)).Str("url", doc.url).Msg("reply for replaced document dropped")
		return nil
	}
	return doc.receive(msg)
}

func replyCallbackID(msg string) (entity.CallbackID, bool) {
	var env struct {
		CallbackID *entity.CallbackID `json:"callback_id"`
	}
	if err := json.Unmarshal([]byte(msg), &env); err != nil || env.CallbackID == nil {
		return 0, false
	}
	return *env.CallbackID, true
}

// Quit is signalled with the exit code passed to webbridge.quit.
func (e *Engine) Quit() <-chan int {
	return e.quit
}

// Close interrupts any running script and cancels pending timers.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	doc := e.doc
	e.doc = nil
	e.mu.Unlock()

	if doc != nil {
		doc.vm.Interrupt(ErrClosed)
		doc.dispose()
	}
	e.log.Debug().Msg("engine closed")
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) current() (*document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	return e.doc, nil
}

func (e *Engine) scriptHost() port.ScriptHost {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.host
}

// loadDocument runs on the dispatcher goroutine.
func (e *Engine) loadDocument(ctx context.Context, url, source string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	previous := e.doc
	prevURL := e.url
	generation := e.loads
	e.loads++
	injected := append([]injectedScript(nil), e.injected...)
	e.mu.Unlock()

	e.notify(entity.Event{Type: entity.EventLoadStarted, Data: url})

	doc := newDocument(e, url, generation)
	if previous != nil {
		previous.dispose()
	}

	e.mu.Lock()
	e.doc = doc
	e.url = url
	e.mu.Unlock()

	if url != prevURL {
		e.notify(entity.Event{Type: entity.EventURLChanged, Data: url})
	}

	for _, s := range injected {
		if _, err := doc.run(ctx, s.name, s.source); err != nil {
			e.log.Warn().Err(err).Str("script", s.name).Msg("injected script failed")
		}
	}

	_, runErr := doc.run(ctx, url, source)
	finished := entity.LoadFinished{URL: url, Success: runErr == nil}
	if runErr != nil {
		finished.Error = runErr.Error()
	}
	e.notify(entity.Event{Type: entity.EventPageLoadFinished, Data: finished})

	if runErr != nil {
		return fmt.Errorf("load %s: %w", url, runErr)
	}
	e.log.Debug().Str("url", url).Int("injected", len(injected)).Msg("document loaded")
	return nil
}

func (e *Engine) notify(ev entity.Event) {
	e.mu.Lock()
	observer := e.observer
	e.mu.Unlock()

	if observer != nil {
		observer.OnEngineEvent(ev)
	}
}

// setCookie and removeCookie model the engine's own cookie store; the
// observer hears about every change.
func (e *Engine) setCookie(domain, name, value string) {
	e.mu.Lock()
	e.cookies[entity.CookieKey{Domain: domain, Name: name}] = value
	observer := e.observer
	e.mu.Unlock()

	if observer != nil {
		observer.OnCookieAdded(domain, name, value)
	}
}

func (e *Engine) removeCookie(domain, name string) {
	key := entity.CookieKey{Domain: domain, Name: name}

	e.mu.Lock()
	_, ok := e.cookies[key]
	delete(e.cookies, key)
	observer := e.observer
	e.mu.Unlock()

	if ok && observer != nil {
		observer.OnCookieRemoved(domain, name)
	}
}

func (e *Engine) signalQuit(code int) {
	select {
	case e.quit <- code:
	default:
	}
}

func exportValue(v sobek.Value) (any, error) {
	if v == nil || sobek.IsUndefined(v) || sobek.IsNull(v) {
		return nil, nil
	}
	exported := v.Export()
	p, ok := exported.(*sobek.Promise)
	if !ok {
		return exported, nil
	}
	switch p.State() {
	case sobek.PromiseStateFulfilled:
		return exportValue(p.Result())
	case sobek.PromiseStateRejected:
		return nil, fmt.Errorf("promise rejected: %s", p.Result().String())
	default:
		return nil, ErrPendingPromise
	}
}
