// Package bridge implements the host side of the script invocation protocol:
// a registry of bound host functions, synchronous calls answered inline,
// asynchronous calls run on an executor and answered with correlated replies,
// and unsolicited host pushes.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

// Config wires a Bridge to its collaborators.
type Config struct {
	// Registry holds the bindings; a new one is created when nil.
	Registry *Registry
	// Sink receives encoded replies and pushes on the dispatcher goroutine.
	Sink port.MessageSink
	// Dispatcher is the UI-affinity queue replies are delivered through.
	Dispatcher port.Dispatcher
	// Executor runs asynchronous calls.
	Executor port.Executor

	Journal port.CallJournal
	Metrics port.BridgeMetrics

	SessionID entity.SessionID
	ViewID    uint64
}

// UnboundMetricLabel replaces the function name in metrics for calls that
// resolved to nothing, so script-chosen names cannot grow label cardinality.
const UnboundMetricLabel = "(unbound)"

// Bridge answers script invocations. It implements port.ScriptHost.
type Bridge struct {
	registry   *Registry
	sink       port.MessageSink
	dispatcher port.Dispatcher
	executor   port.Executor
	journal    port.CallJournal
	metrics    port.BridgeMetrics

	sessionID entity.SessionID
	viewID    uint64

	baseCtx context.Context
	log     zerolog.Logger

	mu       sync.Mutex
	inFlight map[entity.CallbackID]struct{}
	closed   bool
}

var _ port.ScriptHost = (*Bridge)(nil)

// New creates a bridge. ctx carries the logger.
func New(ctx context.Context, cfg Config) (*Bridge, error) {
	if cfg.Sink == nil {
		return nil, errors.New("bridge: message sink is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("bridge: dispatcher is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("bridge: executor is required")
	}
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx = logging.WithComponent(ctx, "bridge")
	if cfg.ViewID != 0 {
		ctx = logging.WithViewID(ctx, cfg.ViewID)
	}

	return &Bridge{
		registry:   cfg.Registry,
		sink:       cfg.Sink,
		dispatcher: cfg.Dispatcher,
		executor:   cfg.Executor,
		journal:    cfg.Journal,
		metrics:    cfg.Metrics,
		sessionID:  cfg.SessionID,
		viewID:     cfg.ViewID,
		baseCtx:    ctx,
		log:        *logging.FromContext(ctx),
		inFlight:   make(map[entity.CallbackID]struct{}),
	}, nil
}

// Registry returns the binding registry.
func (b *Bridge) Registry() *Registry {
	return b.registry
}

// Bind registers h under name. See Registry.Bind.
func (b *Bridge) Bind(name string, h Handler) error {
	if err := b.registry.Bind(name, h); err != nil {
		return err
	}
	b.log.Debug().Str("function", name).Msg("function bound")
	return nil
}

// Unbind removes name. Unknown names are a no-op.
func (b *Bridge) Unbind(name string) bool {
	removed := b.registry.Unbind(name)
	if removed {
		b.log.Debug().Str("function", name).Msg("function unbound")
	}
	return removed
}

// Invoke runs function inline on the caller's goroutine. An unknown
// function yields (nil, nil). Handler failures are returned as
// *entity.ReplyError.
func (b *Bridge) Invoke(ctx context.Context, function, params string) (any, error) {
	if ctx == nil {
		ctx = b.baseCtx
	}
	start := time.Now()
	h, ok := b.registry.Resolve(function)
	if !ok {
		b.observe(0, function, entity.InvocationSync, errNotBound(function), time.Since(start))
		b.log.Warn().Str("function", function).Msg("sync invoke of unbound function")
		return nil, nil
	}

	result, err := b.run(ctx, function, h, json.RawMessage(params))
	b.observe(0, function, entity.InvocationSync, err, time.Since(start))
	return result, err
}

// PostMessage runs function on the executor and later delivers exactly one
// reply carrying callbackID. It never waits for the call to run.
func (b *Bridge) PostMessage(ctx context.Context, callbackID entity.CallbackID, function, params string) error {
	if callbackID.IsPush() {
		return ErrInvalidCallbackID
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if _, ok := b.inFlight[callbackID]; ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrDuplicateCallback, callbackID)
	}
	b.inFlight[callbackID] = struct{}{}
	n := len(b.inFlight)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.SetInFlight(n)
	}

	start := time.Now()
	raw := json.RawMessage(params)
	task := func(taskCtx context.Context) {
		callCtx := logging.WithContext(taskCtx, b.log)
		result, err := b.call(callCtx, function, raw)
		b.reply(callbackID, function, result, err, start)
	}

	if err := b.executor.Submit(task); err != nil {
		b.log.Warn().Err(err).Int64("callback_id", int64(callbackID)).Str("function", function).Msg("executor rejected call")
		b.reply(callbackID, function, nil, entity.NewReplyError(entity.ErrorUnavailable, err), start)
	}
	return nil
}

// SendMessage pushes value to script as an unsolicited message.
func (b *Bridge) SendMessage(value any) error {
	msg, err := entity.NewPush(value).Encode()
	if err != nil {
		return err
	}
	if err := b.deliver(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if b.metrics != nil {
		b.metrics.ObservePush()
	}
	return nil
}

// InFlight returns the number of asynchronous calls awaiting a reply.
func (b *Bridge) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inFlight)
}

// Close stops accepting asynchronous calls. Calls already accepted still reply.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.log.Debug().Int("in_flight", len(b.inFlight)).Msg("bridge closed")
}

// call resolves and runs function, converting every failure into a
// *entity.ReplyError.
func (b *Bridge) call(ctx context.Context, function string, params json.RawMessage) (any, error) {
	h, ok := b.registry.Resolve(function)
	if !ok {
		return nil, errNotBound(function)
	}
	return b.run(ctx, function, h, params)
}

func errNotBound(function string) error {
	return entity.NewReplyError(entity.ErrorNotFound, fmt.Errorf("%w: %q", ErrNotBound, function))
}

// run decodes params and calls h, recovering a panic into a callable failure.
func (b *Bridge) run(ctx context.Context, function string, h Handler, params json.RawMessage) (result any, err error) {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	} else if !json.Valid(params) {
		return nil, entity.NewReplyError(entity.ErrorInvalidParams, errors.New("params are not valid JSON"))
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Str("function", function).Interface("panic", r).Msg("bound function panicked")
			result = nil
			err = entity.NewReplyError(entity.ErrorCallableFailed, fmt.Errorf("panic: %v", r))
		}
	}()

	result, err = h.Call(ctx, params)
	if err != nil {
		return nil, entity.AsReplyError(err)
	}
	return result, nil
}

// reply encodes and delivers the single reply for callbackID.
func (b *Bridge) reply(callbackID entity.CallbackID, function string, result any, err error, start time.Time) {
	b.mu.Lock()
	delete(b.inFlight, callbackID)
	n := len(b.inFlight)
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.SetInFlight(n)
	}

	env := entity.InvocationReply{CallbackID: callbackID, Result: result}
	if err != nil {
		env = entity.InvocationReply{CallbackID: callbackID, Error: entity.AsReplyError(err)}
	}

	msg, encErr := env.Encode()
	if encErr != nil {
		err = entity.NewReplyError(entity.ErrorCallableFailed, encErr)
		env = entity.InvocationReply{CallbackID: callbackID, Error: entity.AsReplyError(err)}
		msg, _ = env.Encode()
	}

	b.observe(callbackID, function, entity.InvocationAsync, err, time.Since(start))

	if derr := b.deliver(msg); derr != nil {
		b.log.Warn().Err(derr).Int64("callback_id", int64(callbackID)).Msg("reply dropped")
	}
}

func (b *Bridge) deliver(msg string) error {
	return b.dispatcher.Post(func() {
		if err := b.sink.DeliverMessage(msg); err != nil {
			b.log.Warn().Err(err).Msg("message delivery failed")
		}
	})
}

func (b *Bridge) observe(callbackID entity.CallbackID, function string, mode entity.InvocationMode, err error, d time.Duration) {
	status := entity.StatusFromError(err)

	ev := b.log.Debug()
	if err != nil {
		ev = b.log.Info().Err(err)
	}
	ev.Str("function", function).
		Str("mode", string(mode)).
		Int64("callback_id", int64(callbackID)).
		Dur("duration", d).
		Msg("invocation finished")

	if b.metrics != nil {
		label := function
		if errors.Is(err, ErrNotBound) {
			label = UnboundMetricLabel
		}
		b.metrics.ObserveInvocation(label, mode, status, d)
	}
	if b.journal == nil {
		return
	}
	rec := entity.CallRecord{
		SessionID:  b.sessionID,
		ViewID:     b.viewID,
		CallbackID: callbackID,
		Function:   function,
		Mode:       mode,
		Status:     status,
		Duration:   d,
		CreatedAt:  time.Now(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	b.journal.Record(b.baseCtx, rec)
}
