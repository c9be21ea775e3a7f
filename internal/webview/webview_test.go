package webview

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/bridge"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/jsengine"
	"github.com/bnema/webbridge/internal/infrastructure/workerpool"
	"github.com/bnema/webbridge/internal/ui/mainloop"
)

const pageScript = `
var results = {};
webbridge.addEventListener('message', function (ev) { results.push = ev.data; });
results.sync = webbridge.invokeSync('echo', {msg: 'hi'});
results.missing = webbridge.invokeSync('missing_fn', {});
try { webbridge.invokeSync('echo', {wrong: 1}); } catch (e) { results.syncErr = e.code; }
webbridge.invoke('echo', {msg: 'async'}).then(function (r) { results.async = r; });
webbridge.invoke('nope', {}).catch(function (e) { results.asyncErr = e.code; });
webbridge.invokeCallback('echo', {msg: 'cb'}, function (err, r) { results.callback = r; });
results.bindings = webbridge.describe().map(function (b) { return b.name; }).join(',');
webbridge.setCookie('.x.com', 'SID', 'abc');
`

type echoParams struct {
	Msg string `json:"msg"`
}

type viewFixture struct {
	view   *WebView
	loop   *mainloop.Loop
	engine *jsengine.Engine
}

func newViewFixture(t *testing.T) *viewFixture {
	t.Helper()
	ctx := context.Background()

	loop := mainloop.New(ctx)
	require.NoError(t, loop.Start(ctx))
	pool := workerpool.New(ctx, workerpool.Config{MaxWorkers: 4})
	engine, err := jsengine.New(ctx, jsengine.Config{Dispatcher: loop, ReplyTimeout: 2 * time.Second})
	require.NoError(t, err)

	view, err := New(ctx, Config{Engine: engine, Dispatcher: loop, Executor: pool})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = view.Close()
		_ = pool.Shutdown(context.Background())
		loop.Stop()
	})

	require.NoError(t, view.BindFunction("echo", bridge.Func(func(_ context.Context, p echoParams) (string, error) {
		return p.Msg, nil
	})))
	return &viewFixture{view: view, loop: loop, engine: engine}
}

func (f *viewFixture) load(t *testing.T, script string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.js")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))
	u, err := jsengine.FileURL(path)
	require.NoError(t, err)
	require.NoError(t, f.view.LoadURL(context.Background(), u))
}

func (f *viewFixture) eventually(t *testing.T, expr string, want any) {
	t.Helper()
	assert.Eventually(t, func() bool {
		got, err := f.view.RunJavaScript(context.Background(), expr)
		return err == nil && got == want
	}, 2*time.Second, 5*time.Millisecond, "%s never became %v", expr, want)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestViewEndToEnd(t *testing.T) {
	f := newViewFixture(t)
	f.load(t, pageScript)

	f.eventually(t, "results.sync", "hi")
	f.eventually(t, "results.missing", nil)
	f.eventually(t, "results.syncErr", "invalid_params")
	f.eventually(t, "results.async", "async")
	f.eventually(t, "results.asyncErr", "not_found")
	f.eventually(t, "results.callback", "cb")
	f.eventually(t, "results.bindings", DescribeFunction+",echo")
	f.eventually(t, "webbridge.pending()", int64(0))

	require.NoError(t, f.view.SendMessage(map[string]int{"n": 7}))
	f.eventually(t, "results.push && results.push.n", int64(7))

	got, ok := f.view.GetCookie(".x.com", "SID")
	require.True(t, ok)
	assert.Equal(t, "abc", got)
	assert.Equal(t, []entity.Cookie{{Domain: ".x.com", Name: "SID", Value: "abc"}}, f.view.Cookies())
}

func TestViewAsyncReplyTimeout(t *testing.T) {
	f := newViewFixture(t)
	release := make(chan struct{})
	defer close(release)
	require.NoError(t, f.view.BindFunction("slow", bridge.Func(func(ctx context.Context, _ struct{}) (any, error) {
		<-release
		return nil, nil
	})))

	f.load(t, `
		var outcome = null;
		webbridge.invoke('slow', {}, 20).catch(function (e) { outcome = e.code; });
	`)
	f.eventually(t, "outcome", "timeout")
}

func TestViewEventListeners(t *testing.T) {
	f := newViewFixture(t)

	var (
		mu       sync.Mutex
		seen     []entity.EventType
		offOwner atomic.Bool
	)
	record := func(t entity.EventType) func(any) {
		return func(any) {
			if !f.loop.IsOwner() {
				offOwner.Store(true)
			}
			mu.Lock()
			seen = append(seen, t)
			mu.Unlock()
		}
	}
	f.view.RegisterEventListener(entity.EventLoadStarted, record(entity.EventLoadStarted))
	f.view.RegisterEventListener(entity.EventURLChanged, record(entity.EventURLChanged))
	finishedID := f.view.RegisterEventListener(entity.EventPageLoadFinished, record(entity.EventPageLoadFinished))

	cookieEvents := make(chan []entity.Cookie, 4)
	f.view.RegisterEventListener(entity.EventCookiesChanged, func(data any) {
		cookieEvents <- data.([]entity.Cookie)
	})

	require.NoError(t, f.view.LoadURL(context.Background(), "data:,webbridge.setCookie('a.test','k','1');webbridge.setCookie('a.test','j','2');"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []entity.EventType{
		entity.EventLoadStarted,
		entity.EventURLChanged,
		entity.EventPageLoadFinished,
	}, seen)
	mu.Unlock()
	assert.False(t, offOwner.Load(), "listeners run on the UI goroutine")

	select {
	case cookies := <-cookieEvents:
		assert.Len(t, cookies, 2, "burst of cookie changes is coalesced")
	case <-time.After(time.Second):
		t.Fatal("cookies_changed not emitted")
	}

	assert.True(t, f.view.UnregisterEventListener(entity.EventPageLoadFinished, finishedID))
	assert.False(t, f.view.UnregisterEventListener(entity.EventPageLoadFinished, finishedID))
}

func TestViewUnbindFunction(t *testing.T) {
	f := newViewFixture(t)
	f.load(t, "")

	assert.True(t, f.view.UnbindFunction("echo"))
	assert.False(t, f.view.UnbindFunction("echo"))

	got, err := f.view.RunJavaScript(context.Background(), "webbridge.invokeSync('echo', {msg: 'x'})")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestViewInjectScriptAndReload(t *testing.T) {
	f := newViewFixture(t)
	require.NoError(t, f.view.InjectScript("counter", "var loads = (typeof loads === 'number' ? loads : 0) + 1;"))
	f.load(t, "var bridgeReady = typeof webbridge === 'object';")

	f.eventually(t, "bridgeReady", true)
	require.NoError(t, f.view.Reload(context.Background()))
	f.eventually(t, "loads", int64(1))
}

func TestViewReloadWithCallInFlight(t *testing.T) {
	f := newViewFixture(t)
	releaseSlow := make(chan struct{})
	releaseGate := make(chan struct{})
	var slowOnce, gateOnce sync.Once
	t.Cleanup(func() {
		slowOnce.Do(func() { close(releaseSlow) })
		gateOnce.Do(func() { close(releaseGate) })
	})
	require.NoError(t, f.view.BindFunction("slow", bridge.Func(func(_ context.Context, _ struct{}) (string, error) {
		<-releaseSlow
		return "slow", nil
	})))
	require.NoError(t, f.view.BindFunction("gate", bridge.Func(func(_ context.Context, _ struct{}) (string, error) {
		<-releaseGate
		return "gate", nil
	})))

	f.load(t, "webbridge.invoke('slow', {}, 0);")
	assert.Eventually(t, func() bool { return f.view.Bridge().InFlight() == 1 }, time.Second, 5*time.Millisecond)

	f.load(t, `
		var echoed = null;
		var gated = null;
		webbridge.invoke('echo', {msg: 'b'}, 0).then(
			function (r) { echoed = r; },
			function (e) { echoed = 'error ' + e.code; });
		webbridge.invoke('gate', {}, 0).then(function (r) { gated = r; });
	`)
	f.eventually(t, "echoed", "b")

	slowOnce.Do(func() { close(releaseSlow) })
	assert.Eventually(t, func() bool { return f.view.Bridge().InFlight() == 1 }, time.Second, 5*time.Millisecond)
	// the replaced document's reply must not settle anything here
	f.eventually(t, "webbridge.pending()", int64(1))
	f.eventually(t, "gated", nil)

	gateOnce.Do(func() { close(releaseGate) })
	f.eventually(t, "gated", "gate")
	f.eventually(t, "webbridge.pending()", int64(0))
	assert.Eventually(t, func() bool { return f.view.Bridge().InFlight() == 0 }, time.Second, 5*time.Millisecond)
}

func TestViewClose(t *testing.T) {
	f := newViewFixture(t)
	f.load(t, "")

	require.NoError(t, f.view.Close())
	require.NoError(t, f.view.Close())

	_, err := f.view.RunJavaScript(context.Background(), "1")
	assert.ErrorIs(t, err, jsengine.ErrClosed)
	assert.ErrorIs(t, f.view.Bridge().PostMessage(context.Background(), 1, "echo", `{}`), bridge.ErrClosed)
}
