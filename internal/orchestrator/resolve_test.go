package orchestrator

import (
	"testing"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveValue(t *testing.T) {
	reg := registry.New()
	thermo := &widget{name: "thermo"}
	require.NoError(t, reg.Register("thermo", thermo))
	require.NoError(t, reg.Register("banner", nil))

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"registered name", "thermo", thermo},
		{"unknown name stays literal", "28FF4A", "28FF4A"},
		{"service name stays literal", "banner", "banner"},
		{"empty string", "", ""},
		{"number", 5, 5},
		{"nil", nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveValue(reg, tc.in))
		})
	}

	// Nested containers are not searched.
	nested := []any{"thermo"}
	assert.Equal(t, nested, ResolveValue(reg, nested))
}

func TestResolveArgs(t *testing.T) {
	reg := registry.New()
	thermo := &widget{name: "thermo"}
	require.NoError(t, reg.Register("thermo", thermo))

	in := component.Args{
		Positional: []any{"thermo", "other", 3},
		Keyword:    map[string]any{"source": "thermo", "label": "kitchen"},
	}
	out := ResolveArgs(reg, in)

	assert.Same(t, thermo, out.Positional[0])
	assert.Equal(t, "other", out.Positional[1])
	assert.Equal(t, 3, out.Positional[2])
	assert.Same(t, thermo, out.Keyword["source"])
	assert.Equal(t, "kitchen", out.Keyword["label"])

	assert.Equal(t, "thermo", in.Positional[0], "input must not be modified")
	assert.Equal(t, "thermo", in.Keyword["source"], "input must not be modified")

	empty := ResolveArgs(reg, component.Args{})
	assert.True(t, empty.IsEmpty())
}
