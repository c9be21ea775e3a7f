package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bnema/webbridge/internal/bridge"
	"github.com/bnema/webbridge/internal/webview"
)

const maxDemoSleep = 10 * time.Second

type addParams struct {
	A float64 `json:"a" jsonschema:"description=First addend"`
	B float64 `json:"b" jsonschema:"description=Second addend"`
}

type sleepParams struct {
	Ms int `json:"ms" jsonschema:"minimum=0,maximum=10000"`
}

type sleepResult struct {
	SleptMs int64 `json:"slept_ms"`
}

type failParams struct {
	Message string `json:"message,omitempty"`
}

type cookieParams struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type cookieResult struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// RegisterDemoBindings binds the functions the run command exposes to script:
// echo, add, sleep, fail, now and cookie.
func RegisterDemoBindings(view *webview.WebView) error {
	bindings := map[string]bridge.Handler{
		"echo": bridge.RawFunc(func(_ context.Context, params json.RawMessage) (any, error) {
			return params, nil
		}),
		"add": bridge.Func(func(_ context.Context, p addParams) (float64, error) {
			return p.A + p.B, nil
		}),
		"sleep": bridge.Func(func(ctx context.Context, p sleepParams) (sleepResult, error) {
			d := min(time.Duration(p.Ms)*time.Millisecond, maxDemoSleep)
			start := time.Now()
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return sleepResult{}, ctx.Err()
			}
			return sleepResult{SleptMs: time.Since(start).Milliseconds()}, nil
		}),
		"fail": bridge.Func(func(_ context.Context, p failParams) (any, error) {
			msg := p.Message
			if msg == "" {
				msg = "fail called"
			}
			return nil, errors.New(msg)
		}),
		"now": bridge.RawFunc(func(context.Context, json.RawMessage) (any, error) {
			return time.Now().UTC().Format(time.RFC3339Nano), nil
		}),
		"cookie": bridge.Func(func(_ context.Context, p cookieParams) (cookieResult, error) {
			value, ok := view.GetCookie(p.Domain, p.Name)
			return cookieResult{Value: value, Found: ok}, nil
		}),
	}

	for name, h := range bindings {
		if err := view.BindFunction(name, h); err != nil {
			return err
		}
	}
	return nil
}
