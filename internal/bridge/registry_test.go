package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constHandler(v any) Handler {
	return RawFunc(func(context.Context, json.RawMessage) (any, error) { return v, nil })
}

func TestRegistryBindResolveUnbind(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Bind("f", constHandler(1)))
	h, ok := r.Resolve("f")
	require.True(t, ok)
	got, err := h.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	assert.True(t, r.Unbind("f"))
	_, ok = r.Resolve("f")
	assert.False(t, ok)
	assert.False(t, r.Unbind("f"), "unbinding an absent name is a no-op")
}

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Bind("f", constHandler("old")))
	require.NoError(t, r.Bind("f", constHandler("new")))

	h, ok := r.Resolve("f")
	require.True(t, ok)
	got, _ := h.Call(context.Background(), nil)
	assert.Equal(t, "new", got)
	assert.Equal(t, []string{"f"}, r.Names())
}

func TestRegistryBindValidation(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Bind("", constHandler(1)), ErrEmptyName)
	assert.ErrorIs(t, r.Bind("f", nil), ErrNilHandler)
	assert.Empty(t, r.Names())
}

func TestRegistryDescribeSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Bind("zeta", constHandler(nil)))
	require.NoError(t, r.Bind("alpha", Func(func(_ context.Context, p addParams) (int, error) {
		return p.A + p.B, nil
	})))

	infos := r.Describe()
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	require.NotNil(t, infos[0].Params)
	assert.Equal(t, "object", infos[0].Params.Type)
	assert.Equal(t, "zeta", infos[1].Name)
	assert.Nil(t, infos[1].Params)
}
