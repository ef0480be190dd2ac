package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hooked struct {
	calls []string
	got   Args
}

func (h *hooked) Calibrate(_ context.Context, args Args) error {
	h.calls = append(h.calls, "Calibrate")
	h.got = args
	return nil
}

func (h *hooked) Publish(context.Context) error {
	h.calls = append(h.calls, "Publish")
	return nil
}

func (h *hooked) Close() error { return errors.New("closed") }

func (h *hooked) Reset() { h.calls = append(h.calls, "Reset") }

func (h *hooked) Read(int) (string, error) { return "", nil }

type provider struct{ hooked }

func (p *provider) Method(name string) (Method, bool) {
	if name == "custom" {
		return func(context.Context, Args) error { p.calls = append(p.calls, "custom"); return nil }, true
	}
	return nil, false
}

func TestLookupMethod_Signatures(t *testing.T) {
	h := &hooked{}
	ctx := context.Background()

	m, ok := LookupMethod(h, "Calibrate")
	require.True(t, ok)
	args := Args{Keyword: map[string]any{"offset": 1}}
	require.NoError(t, m(ctx, args))
	assert.Equal(t, args, h.got)

	m, ok = LookupMethod(h, "publish")
	require.True(t, ok, "lower-case configuration names bind to exported methods")
	require.NoError(t, m(ctx, Args{}))

	m, ok = LookupMethod(h, "Close")
	require.True(t, ok)
	assert.EqualError(t, m(ctx, Args{}), "closed")

	m, ok = LookupMethod(h, "reset")
	require.True(t, ok)
	require.NoError(t, m(ctx, Args{}))

	assert.Equal(t, []string{"Calibrate", "Publish", "Reset"}, h.calls)
}

func TestLookupMethod_NotFound(t *testing.T) {
	h := &hooked{}

	_, ok := LookupMethod(h, "Missing")
	assert.False(t, ok)

	_, ok = LookupMethod(h, "Read")
	assert.False(t, ok, "unsupported signature counts as absent")

	_, ok = LookupMethod(nil, "Publish")
	assert.False(t, ok)

	_, ok = LookupMethod(h, "")
	assert.False(t, ok)

	_, ok = LookupMethod(5, "String")
	assert.False(t, ok)
}

func TestLookupMethod_ProviderWins(t *testing.T) {
	p := &provider{}

	m, ok := LookupMethod(p, "custom")
	require.True(t, ok)
	require.NoError(t, m(context.Background(), Args{}))
	assert.Equal(t, []string{"custom"}, p.calls)

	_, ok = LookupMethod(p, "Publish")
	assert.True(t, ok, "falls back to reflection for names the provider does not know")
}
