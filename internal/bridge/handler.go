package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// Handler is a bound host function. Params is the raw JSON object sent by
// script; an empty call arrives as "{}".
type Handler interface {
	Call(ctx context.Context, params json.RawMessage) (any, error)
	// Schema describes the accepted params, or nil for free-form handlers.
	Schema() *jsonschema.Schema
}

// RawFunc adapts a function taking undecoded params to the Handler interface.
type RawFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Call calls f(ctx, params).
func (f RawFunc) Call(ctx context.Context, params json.RawMessage) (any, error) {
	return f(ctx, params)
}

// Schema returns nil: raw handlers accept any JSON.
func (f RawFunc) Schema() *jsonschema.Schema {
	return nil
}

type typedHandler[P, R any] struct {
	fn     func(context.Context, P) (R, error)
	schema *jsonschema.Schema
}

// Func builds a Handler whose params are decoded into P. The JSON schema of P
// is reflected once; unknown keys and missing required keys are rejected with
// an invalid_params error before fn runs.
func Func[P, R any](fn func(ctx context.Context, params P) (R, error)) Handler {
	t := reflect.TypeOf((*P)(nil)).Elem()
	r := &jsonschema.Reflector{
		ExpandedStruct: t.Kind() == reflect.Struct,
		DoNotReference: true,
	}
	return &typedHandler[P, R]{
		fn:     fn,
		schema: r.Reflect(new(P)),
	}
}

func (h *typedHandler[P, R]) Schema() *jsonschema.Schema {
	return h.schema
}

func (h *typedHandler[P, R]) Call(ctx context.Context, raw json.RawMessage) (any, error) {
	var params P
	if err := decodeParams(h.schema, raw, &params); err != nil {
		return nil, entity.NewReplyError(entity.ErrorInvalidParams, err)
	}
	return h.fn(ctx, params)
}

// decodeParams checks raw against the object-level constraints of schema
// and unmarshals it into dst.
func decodeParams(schema *jsonschema.Schema, raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	if schema != nil && schema.Type == "object" {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("params must be a JSON object: %w", err)
		}
		if fields == nil {
			return fmt.Errorf("params must be a JSON object, got null")
		}
		if schema.AdditionalProperties == jsonschema.FalseSchema {
			for key := range fields {
				if !hasProperty(schema, key) {
					return fmt.Errorf("unknown parameter %q", key)
				}
			}
		}
		for _, key := range schema.Required {
			if _, ok := fields[key]; !ok {
				return fmt.Errorf("missing required parameter %q", key)
			}
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

func hasProperty(schema *jsonschema.Schema, key string) bool {
	if schema.Properties == nil {
		return false
	}
	_, ok := schema.Properties.Get(key)
	return ok
}
