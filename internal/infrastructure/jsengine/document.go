package jsengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grafana/sobek"

	"github.com/bnema/webbridge/internal/domain/entity"
)

const (
	nativeObject   = "__webbridge_native"
	configObject   = "__webbridge_config"
	receiveFunc    = "__webbridge_receive"
	rejectedCode   = "rejected"
	maxTimerDelay  = 24 * time.Hour
	callStackLimit = 1024

	// Each document hands out callback ids from its own block so replies
	// for a replaced document can never match a call of the current one.
	callbackSpan    = int64(1) << 32
	generationLimit = int64(1) << 21
)

// document is one loaded page: a runtime plus its timers. The runtime is
// only touched on the dispatcher goroutine; timers are guarded by mu.
type document struct {
	engine       *Engine
	url          string
	vm           *sobek.Runtime
	callbackBase int64

	mu        sync.Mutex
	timers    map[int64]*time.Timer
	nextTimer int64
	disposed  bool
}

func newDocument(e *Engine, url string, generation int64) *document {
	vm := sobek.New()
	vm.SetMaxCallStackSize(callStackLimit)

	d := &document{
		engine:       e,
		url:          url,
		vm:           vm,
		callbackBase: (generation % generationLimit) * callbackSpan,
		timers:       make(map[int64]*time.Timer),
	}
	d.installGlobals()
	return d
}

func (d *document) installGlobals() {
	vm := d.vm
	_ = vm.Set("window", vm.GlobalObject())

	console := vm.NewObject()
	for _, level := range []string{"log", "debug", "info", "warn", "error"} {
		_ = console.Set(level, d.consoleFunc(level))
	}
	_ = vm.Set("console", console)

	_ = vm.Set("setTimeout", d.setTimeout)
	_ = vm.Set("clearTimeout", d.clearTimeout)

	native := vm.NewObject()
	_ = native.Set("invoke", d.nativeInvoke)
	_ = native.Set("postMessage", d.nativePostMessage)
	_ = native.Set("setCookie", d.nativeSetCookie)
	_ = native.Set("removeCookie", d.nativeRemoveCookie)
	_ = native.Set("quit", d.nativeQuit)
	_ = vm.Set(nativeObject, native)

	cfg := vm.NewObject()
	_ = cfg.Set("replyTimeoutMs", d.engine.replyTimeout.Milliseconds())
	_ = cfg.Set("devMode", d.engine.devMode)
	_ = cfg.Set("url", d.url)
	_ = cfg.Set("callbackBase", d.callbackBase)
	_ = vm.Set(configObject, cfg)
}

// run executes source, interrupting it when ctx is done.
func (d *document) run(ctx context.Context, name, source string) (sobek.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	d.vm.ClearInterrupt()
	stop := context.AfterFunc(ctx, func() {
		d.vm.Interrupt(ctx.Err())
	})
	defer func() {
		stop()
		d.vm.ClearInterrupt()
	}()

	v, err := d.vm.RunScript(name, source)
	if err != nil {
		return nil, scriptError(err)
	}
	return v, nil
}

// ownsCallback reports whether id lies in this document's callback block.
func (d *document) ownsCallback(id entity.CallbackID) bool {
	n := int64(id)
	return n >= d.callbackBase && n < d.callbackBase+callbackSpan
}

// receive calls the client runtime's receive hook with msg.
func (d *document) receive(msg string) error {
	fn, ok := sobek.AssertFunction(d.vm.Get(receiveFunc))
	if !ok {
		d.engine.log.Debug().Str("url", d.url).Msg("no client runtime, message dropped")
		return nil
	}
	if _, err := fn(sobek.Undefined(), d.vm.ToValue(msg)); err != nil {
		return fmt.Errorf("deliver message: %w", scriptError(err))
	}
	return nil
}

func (d *document) dispose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed {
		return
	}
	d.disposed = true
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}

func (d *document) consoleFunc(level string) func(sobek.FunctionCall) sobek.Value {
	return func(call sobek.FunctionCall) sobek.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		log := d.engine.log
		ev := log.Debug()
		switch {
		case level == "error":
			ev = log.Error()
		case level == "warn":
			ev = log.Warn()
		case d.engine.devMode:
			ev = log.Info()
		}
		ev.Str("console", level).Str("url", d.url).Msg(msg)
		return sobek.Undefined()
	}
}

func (d *document) setTimeout(call sobek.FunctionCall) sobek.Value {
	fn, ok := sobek.AssertFunction(call.Argument(0))
	if !ok {
		panic(d.vm.NewTypeError("setTimeout: callback is not a function"))
	}
	delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
	if delay < 0 {
		delay = 0
	}
	if delay > maxTimerDelay {
		delay = maxTimerDelay
	}
	var args []sobek.Value
	if len(call.Arguments) > 2 {
		args = append(args, call.Arguments[2:]...)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed {
		return sobek.Undefined()
	}
	d.nextTimer++
	id := d.nextTimer
	d.timers[id] = time.AfterFunc(delay, func() {
		err := d.engine.dispatcher.Post(func() {
			d.fireTimer(id, fn, args)
		})
		if err != nil {
			d.engine.log.Debug().Err(err).Int64("timer", id).Msg("timer dropped")
		}
	})
	return d.vm.ToValue(id)
}

func (d *document) clearTimeout(call sobek.FunctionCall) sobek.Value {
	id := call.Argument(0).ToInteger()

	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[id]; ok {
		t.Stop()
		delete(d.timers, id)
	}
	return sobek.Undefined()
}

// fireTimer runs on the dispatcher goroutine.
func (d *document) fireTimer(id int64, fn sobek.Callable, args []sobek.Value) {
	d.mu.Lock()
	_, pending := d.timers[id]
	delete(d.timers, id)
	live := !d.disposed
	d.mu.Unlock()

	if !pending || !live {
		return
	}
	if _, err := fn(sobek.Undefined(), args...); err != nil {
		d.engine.log.Warn().Err(scriptError(err)).Str("url", d.url).Msg("timer callback failed")
	}
}

func (d *document) nativeInvoke(call sobek.FunctionCall) sobek.Value {
	host := d.engine.scriptHost()
	if host == nil {
		panic(d.throwable(ErrNotAttached))
	}

	result, err := host.Invoke(d.engine.baseCtx, argString(call, 0), argString(call, 1))
	if err != nil {
		panic(d.throwable(err))
	}
	data, err := json.Marshal(result)
	if err != nil {
		panic(d.throwable(entity.NewReplyError(entity.ErrorCallableFailed, err)))
	}
	return d.vm.ToValue(string(data))
}

func (d *document) nativePostMessage(call sobek.FunctionCall) sobek.Value {
	host := d.engine.scriptHost()
	if host == nil {
		panic(d.throwable(ErrNotAttached))
	}

	id := entity.CallbackID(call.Argument(0).ToInteger())
	if !d.ownsCallback(id) {
		panic(d.throwable(fmt.Errorf("%w: %d", ErrForeignCallback, id)))
	}
	if err := host.PostMessage(d.engine.baseCtx, id, argString(call, 1), argString(call, 2)); err != nil {
		panic(d.throwable(err))
	}
	return sobek.Undefined()
}

func (d *document) nativeSetCookie(call sobek.FunctionCall) sobek.Value {
	d.engine.setCookie(argString(call, 0), argString(call, 1), argString(call, 2))
	return sobek.Undefined()
}

func (d *document) nativeRemoveCookie(call sobek.FunctionCall) sobek.Value {
	d.engine.removeCookie(argString(call, 0), argString(call, 1))
	return sobek.Undefined()
}

func (d *document) nativeQuit(call sobek.FunctionCall) sobek.Value {
	d.engine.signalQuit(int(call.Argument(0).ToInteger()))
	return sobek.Undefined()
}

// throwable converts err into a script Error carrying a code property.
func (d *document) throwable(err error) *sobek.Object {
	code := rejectedCode
	var re *entity.ReplyError
	if errors.As(err, &re) {
		code = string(re.Code)
	}
	obj := d.vm.NewGoError(err)
	_ = obj.Set("code", code)
	return obj
}

func argString(call sobek.FunctionCall, i int) string {
	v := call.Argument(i)
	if sobek.IsUndefined(v) || sobek.IsNull(v) {
		return ""
	}
	return v.String()
}

// scriptError unwraps sobek exceptions into a plain error with the script
// stack trace.
func scriptError(err error) error {
	var exc *sobek.Exception
	if errors.As(err, &exc) {
		return fmt.Errorf("script error: %s", exc.String())
	}
	var interrupted *sobek.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return fmt.Errorf("script interrupted: %w", cause)
		}
		return fmt.Errorf("script interrupted: %v", interrupted.Value())
	}
	return err
}
