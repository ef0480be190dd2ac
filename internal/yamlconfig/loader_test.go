package yamlconfig

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OriginalLayout(t *testing.T) {
	raw := testutil.Unindent(`
		_order: [thermo, printer]
		thermo:
		  package: .sensors.virtual
		  component: Thermometer
		  constructor_args: {min: 18, max: 24}
		  init_function: Calibrate
		  init_args: [0.5]
		  call_function_regularly: Publish
		  call_interval: 30s
		printer:
		  package: .utils.print
		  component: Printer
		  constructor_args: [thermo]
		  call_function_regularly: Print
		  call_interval: 2
	`)

	model, err := NewLoader().Parse([]byte(raw), "node.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"thermo", "printer"}, model.Order)
	want := map[string]*config.Descriptor{
		"thermo": {
			Name:            "thermo",
			Package:         ".sensors.virtual",
			Component:       "Thermometer",
			ConstructorArgs: component.Args{Keyword: map[string]any{"min": 18, "max": 24}},
			Init:            &config.InitHook{Method: "Calibrate", Args: component.Args{Positional: []any{0.5}}},
			Recurring:       &config.RecurringHook{Method: "Publish", Interval: 30 * time.Second},
			Source:          "node.yaml",
		},
		"printer": {
			Name:            "printer",
			Package:         ".utils.print",
			Component:       "Printer",
			ConstructorArgs: component.Args{Positional: []any{"thermo"}},
			Recurring:       &config.RecurringHook{Method: "Print", Interval: 2 * time.Second},
			Source:          "node.yaml",
		},
	}
	if diff := cmp.Diff(want, model.Components); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_DocumentOrderWithoutOrderKey(t *testing.T) {
	raw := testutil.Unindent(`
		zeta: {package: .x, component: Z}
		alpha: {package: .x, component: A}
	`)
	model, err := NewLoader().Parse([]byte(raw), "a.yaml")
	require.NoError(t, err)

	assert.Empty(t, model.Order)
	ds, missing := model.Ordered()
	assert.Empty(t, missing)
	require.Len(t, ds, 2)
	assert.Equal(t, "zeta", ds[0].Name)
	assert.Equal(t, "alpha", ds[1].Name)
}

func TestParse_JSON(t *testing.T) {
	raw := `{"_order": ["a"], "a": {"package": ".x", "component": "A", "constructor_args": {"nested": {"k": [1, 2]}}}}`
	model, err := NewLoader().Parse([]byte(raw), "a.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": []any{1, 2}}, model.Components["a"].ConstructorArgs.Keyword["nested"])
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("SMARTNODE_TEST_PIN", "17")
	t.Setenv("SMARTNODE_TEST_HOST", "10.0.0.5")
	t.Setenv("SMARTNODE_TEST_EMPTY", "")

	raw := testutil.Unindent(`
		pin:
		  package: .devices.remotegpio
		  component: Pin
		  constructor_args:
		    pin: ${SMARTNODE_TEST_PIN}
		    label: "${SMARTNODE_TEST_PIN}"
		    url: http://${SMARTNODE_TEST_HOST}:3000
		    password: "pa$$w0rd"
		    pattern: $1
		    price: 5$
		    home: $HOME
		    empty: x${SMARTNODE_TEST_EMPTY}y
		    unset: ${SMARTNODE_TEST_UNSET}
	`)
	model, err := NewLoader().Parse([]byte(raw), "a.yaml")
	require.NoError(t, err)

	tests := []struct {
		key  string
		want any
	}{
		{"pin", 17},
		{"label", "17"},
		{"url", "http://10.0.0.5:3000"},
		{"password", "pa$$w0rd"},
		{"pattern", "$1"},
		{"price", "5$"},
		{"home", "$HOME"},
		{"empty", "xy"},
		{"unset", nil},
	}
	kw := model.Components["pin"].ConstructorArgs.Keyword
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, kw[tc.key])
		})
	}
}

func TestParse_EnvExpansionKeepsStructure(t *testing.T) {
	t.Setenv("SMARTNODE_TEST_INJECT", "x\n  component: Other")
	raw := testutil.Unindent(`
		thermo:
		  package: .sensors.virtual
		  component: Thermometer
		  constructor_args: {label: "${SMARTNODE_TEST_INJECT}"}
	`)
	model, err := NewLoader().Parse([]byte(raw), "a.yaml")
	require.NoError(t, err)

	d := model.Components["thermo"]
	assert.Equal(t, "Thermometer", d.Component)
	assert.Equal(t, "x\n  component: Other", d.ConstructorArgs.Keyword["label"])
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "# only a comment\n", "~\n"} {
		model, err := NewLoader().Parse([]byte(raw), "a.yaml")
		require.NoError(t, err, "input %q", raw)
		assert.Empty(t, model.Components)
	}
}

func TestParse_OptionalFields(t *testing.T) {
	raw := testutil.Unindent(`
		bare: {}
		hooked:
		  init_function: Setup
		  call_function_regularly: Tick
		scalar:
		  constructor_args: hello
	`)
	model, err := NewLoader().Parse([]byte(raw), "a.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"package", "component"}, model.Components["bare"].MissingFields())
	assert.True(t, model.Components["hooked"].Init.Args.IsEmpty())
	assert.Zero(t, model.Components["hooked"].Recurring.Interval)
	assert.True(t, model.Components["scalar"].ConstructorArgs.IsEmpty())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		errContains string
	}{
		{"top level list", "- a\n- b\n", "top level must be a mapping"},
		{"component not a mapping", "a: 5\n", `component "a" must be a mapping`},
		{"unknown key", "a: {pakage: .x}\n", "unknown keys: pakage"},
		{"order not a list", "_order: {a: 1}\n", "_order must be a list"},
		{"bad interval", "a: {call_function_regularly: Tick, call_interval: soon}\n", "invalid call_interval"},
		{"negative interval", "a: {call_function_regularly: Tick, call_interval: -5}\n", "must not be negative"},
		{"duplicate key", "a: {}\na: {}\n", `component "a" declared twice`},
		{"syntax", "a: [\n", "did not find expected"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Parse([]byte(tc.raw), "a.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoad_MergesFiles(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"10-base.yaml": "_order: [a]\na: {package: .x, component: A}\n",
		"20-extra.yml": "_order: [b]\nb: {package: .x, component: B}\n",
		"30-more.json": `{"c": {"package": ".x", "component": "C"}}`,
		"ignored.hcl":  `component "z" {}`,
	})

	model, err := NewLoader().Load(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, model.Order)
	assert.Equal(t, []string{"a", "b", "c"}, model.Declared())
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"a.yaml": "x: {}\n",
		"b.yaml": "x: {}\n",
	})
	_, err := NewLoader().Load(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `component "x" declared twice`)
}
