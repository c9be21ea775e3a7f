package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/domain/entity"
)

func TestRegistryEmitsInSubscriptionOrder(t *testing.T) {
	r := NewRegistry(context.Background())

	var calls []string
	r.Subscribe(entity.EventURLChanged, func(data any) { calls = append(calls, "first:"+data.(string)) })
	r.Subscribe(entity.EventURLChanged, func(data any) { calls = append(calls, "second:"+data.(string)) })
	r.Subscribe(entity.EventLoadStarted, func(any) { calls = append(calls, "other") })

	r.Emit(entity.Event{Type: entity.EventURLChanged, Data: "about:blank"})

	assert.Equal(t, []string{"first:about:blank", "second:about:blank"}, calls)
}

func TestRegistryUnsubscribe(t *testing.T) {
	r := NewRegistry(context.Background())

	var hits int
	id := r.Subscribe(entity.EventURLChanged, func(any) { hits++ })
	keep := r.Subscribe(entity.EventURLChanged, func(any) { hits += 10 })
	require.NotEqual(t, id, keep)

	assert.True(t, r.Unsubscribe(entity.EventURLChanged, id))
	assert.False(t, r.Unsubscribe(entity.EventURLChanged, id), "second unsubscribe is a no-op")
	assert.False(t, r.Unsubscribe(entity.EventType("unknown"), keep))
	assert.False(t, r.Unsubscribe(entity.EventLoadStarted, keep), "id belongs to another type")

	r.Emit(entity.Event{Type: entity.EventURLChanged})
	assert.Equal(t, 10, hits)
	assert.Equal(t, 1, r.Count(entity.EventURLChanged))
}

func TestRegistryEmitUnknownTypeIsNoop(t *testing.T) {
	r := NewRegistry(context.Background())
	assert.NotPanics(t, func() {
		r.Emit(entity.Event{Type: entity.EventType("nobody-listens")})
	})
	assert.Zero(t, r.Count(entity.EventType("nobody-listens")))
}

func TestRegistryListenerPanicDoesNotStopOthers(t *testing.T) {
	r := NewRegistry(context.Background())

	var reached bool
	r.Subscribe(entity.EventPageLoadFinished, func(any) { panic("listener bug") })
	r.Subscribe(entity.EventPageLoadFinished, func(any) { reached = true })

	assert.NotPanics(t, func() {
		r.Emit(entity.Event{Type: entity.EventPageLoadFinished})
	})
	assert.True(t, reached)
}

func TestRegistryMutationDuringEmit(t *testing.T) {
	r := NewRegistry(context.Background())

	var second int
	var secondID entity.ListenerID
	r.Subscribe(entity.EventURLChanged, func(any) {
		r.Unsubscribe(entity.EventURLChanged, secondID)
		r.Subscribe(entity.EventURLChanged, func(any) { second += 100 })
	})
	secondID = r.Subscribe(entity.EventURLChanged, func(any) { second++ })

	r.Emit(entity.Event{Type: entity.EventURLChanged})
	assert.Equal(t, 1, second, "snapshot taken before the first listener ran")
	assert.Equal(t, 2, r.Count(entity.EventURLChanged))
}

func TestRegistryNilListener(t *testing.T) {
	r := NewRegistry(context.Background())
	assert.Zero(t, r.Subscribe(entity.EventURLChanged, nil))
	assert.Zero(t, r.Count(entity.EventURLChanged))
}
