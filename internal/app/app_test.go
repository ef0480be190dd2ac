package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/hclconfig"
	"github.com/specialistvlad/smartnodego/internal/orchestrator"
	"github.com/specialistvlad/smartnodego/internal/testutil"
	"github.com/specialistvlad/smartnodego/internal/yamlconfig"
	"github.com/specialistvlad/smartnodego/modules/virtual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodeHCL = `
	component "thermo" {
	  package                 = ".sensors.virtual"
	  component               = "Thermometer"
	  constructor_args        = { min = 20, max = 21, seed = 7 }
	  init_function           = "Calibrate"
	  init_args               = { offset = 0.5 }
	  call_function_regularly = "Publish"
	  call_interval           = 60
	}

	component "printer" {
	  package          = ".utils.print"
	  component        = "Printer"
	  constructor_args = { source = component.thermo, label = "lab" }
	}

	component "ghost" {
	  package   = ".sensors.virtual"
	  component = "Barometer"
	}

	component "banner" {
	  package   = ".machine.sysinfo"
	  component = "Banner"
	}
`

func states(outcomes []orchestrator.Outcome) []orchestrator.State {
	out := make([]orchestrator.State, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, o.State)
	}
	return out
}

func TestBoot_HCL(t *testing.T) {
	res := RunBoot(t, map[string]string{"node.hcl": nodeHCL}, "node.hcl")
	require.NoError(t, res.Err)

	assert.Equal(t, []orchestrator.State{
		orchestrator.Registered,
		orchestrator.Registered,
		orchestrator.Failed,
		orchestrator.Registered,
	}, states(res.Outcomes))
	assert.ErrorIs(t, res.Outcomes[2].Err, orchestrator.ErrSymbolNotFound)
	assert.True(t, res.Outcomes[3].Service)

	thermo, ok := res.App.Registry().Lookup("thermo")
	require.True(t, ok)
	assert.IsType(t, &virtual.Sensor{}, thermo)
	assert.True(t, res.App.Registry().Has("printer"))
	assert.False(t, res.App.Registry().Has("ghost"))

	logs := res.LogOutput.String()
	assert.Contains(t, logs, `Added component \"thermo\", version 0.3`)
	assert.Contains(t, logs, `Added component \"banner\", version 0.2 as service`)
	assert.Contains(t, logs, "level=CRITICAL")
	assert.Contains(t, logs, "boot_id="+res.App.BootID())
}

func TestBoot_YAMLOrder(t *testing.T) {
	res := RunBoot(t, map[string]string{
		"node.yaml": `
			_order: [hygro, mem]
			mem:
			  package: .machine.sysinfo
			  component: Memory
			hygro:
			  package: .sensors.virtual
			  component: Hygrometer
			  constructor_args: {seed: 3}
		`,
	}, "node.yaml")
	require.NoError(t, res.Err)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, "hygro", res.Outcomes[0].Name)
	assert.Equal(t, "mem", res.Outcomes[1].Name)
	assert.Equal(t, []string{"hygro", "mem"}, res.App.Registry().Names())
}

func TestBoot_Directory(t *testing.T) {
	res := RunBoot(t, map[string]string{
		"conf/sensors.hcl": `
			component "thermo" {
			  package   = ".sensors.virtual"
			  component = "Thermometer"
			}
		`,
		"conf/notes.yaml": `ignored: true`,
	}, "conf")
	require.NoError(t, res.Err)
	require.Len(t, res.Outcomes, 1)
	assert.True(t, res.Outcomes[0].Registered())
}

func TestBoot_LoadError(t *testing.T) {
	res := RunBoot(t, map[string]string{"node.hcl": `component "x" {`}, "node.hcl")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "failed to load configuration")
	assert.Empty(t, res.Outcomes)
}

func TestBoot_Twice(t *testing.T) {
	res := RunBoot(t, map[string]string{"node.hcl": nodeHCL}, "node.hcl")
	require.NoError(t, res.Err)

	_, err := res.App.Boot(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyBooted)
}

func TestBoot_ConcurrentCallsBootOnce(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{"node.hcl": nodeHCL})
	a, _ := SetupAppTest(t, Config{ConfigPath: filepath.Join(root, "node.hcl")})

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Boot(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	booted := 0
	for err := range errs {
		if err == nil {
			booted++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyBooted)
	}
	assert.Equal(t, 1, booted)
	assert.Len(t, a.Outcomes(), 4)
}

func TestBoot_RetryAfterLoadError(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{"node.hcl": `component "x" {`})
	path := filepath.Join(root, "node.hcl")
	a, _ := SetupAppTest(t, Config{ConfigPath: path})

	_, err := a.Boot(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyBooted)

	require.NoError(t, os.WriteFile(path, []byte(nodeHCL), 0o644))
	outcomes, err := a.Boot(context.Background())
	require.NoError(t, err)
	assert.Len(t, outcomes, 4)
}

func TestLoad_RequiresPath(t *testing.T) {
	a, _ := SetupAppTest(t, Config{})
	_, err := a.Load(context.Background())
	assert.ErrorContains(t, err, "ConfigPath is a required configuration field")
}

func TestLoaderFor(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"a.hcl":        `component "a" {}`,
		"b.yml":        `a: {}`,
		"c.txt":        `nothing`,
		"hcl/x.hcl":    `component "x" {}`,
		"yaml/x.json":  `{}`,
		"mixed/x.hcl":  `component "x" {}`,
		"mixed/y.yaml": `y: {}`,
	})

	tests := []struct {
		path    string
		want    any
		wantErr string
	}{
		{path: "a.hcl", want: &hclconfig.Loader{}},
		{path: "b.yml", want: &yamlconfig.Loader{}},
		{path: "hcl", want: &hclconfig.Loader{}},
		{path: "yaml", want: &yamlconfig.Loader{}},
		{path: "mixed", want: &hclconfig.Loader{}},
		{path: "c.txt", wantErr: "unsupported configuration file"},
		{path: "missing", wantErr: "error accessing path"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			loader, err := loaderFor(filepath.Join(root, tc.path))
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tc.want, loader)
		})
	}
}

func TestValidate(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{"node.hcl": nodeHCL})
	a, logs := SetupAppTest(t, Config{ConfigPath: filepath.Join(root, "node.hcl")})

	outcomes, err := a.Validate(context.Background())
	require.NoError(t, err)

	require.Len(t, outcomes, 4)
	assert.NoError(t, outcomes[0].Err)
	assert.NoError(t, outcomes[1].Err)
	assert.ErrorIs(t, outcomes[2].Err, orchestrator.ErrSymbolNotFound)
	assert.NoError(t, outcomes[3].Err)

	assert.Zero(t, a.Registry().Len(), "validate must not register anything")
	assert.NotContains(t, logs.String(), "Added component")
}

func TestUnits(t *testing.T) {
	a, _ := SetupAppTest(t, Config{})

	units := a.Units(context.Background())

	refs := make([]string, 0, len(units))
	for _, u := range units {
		require.NoError(t, u.Err)
		assert.NotEmpty(t, u.Version, u.Ref)
		assert.NotEmpty(t, u.Symbols, u.Ref)
		refs = append(refs, u.Ref)
	}
	assert.Equal(t, []string{
		"smartnode.components.devices.remotegpio",
		"smartnode.components.machine.sysinfo",
		"smartnode.components.net.http",
		"smartnode.components.sensors.virtual",
		"smartnode.components.utils.print",
	}, refs)
}

func TestComponentsEndpoint(t *testing.T) {
	res := RunBoot(t, map[string]string{"node.hcl": nodeHCL}, "node.hcl")
	require.NoError(t, res.Err)

	rec := httptest.NewRecorder()
	res.App.healthMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/components", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body componentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, res.App.BootID(), body.BootID)
	assert.Equal(t, 3, body.Registered)
	require.Len(t, body.Components, 4)
	assert.Equal(t, "thermo", body.Components[0].Name)
	assert.Equal(t, "0.3", body.Components[0].Version)
	assert.Equal(t, "failed", body.Components[2].State)
	assert.Contains(t, body.Components[2].Error, "symbol not found")
	assert.True(t, body.Components[3].Service)
}

func TestHealthEndpoint(t *testing.T) {
	a, _ := SetupAppTest(t, Config{})

	rec := httptest.NewRecorder()
	a.healthMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

// closer records the order in which instances are closed.
type closer struct {
	name   string
	mu     *sync.Mutex
	closed *[]string
}

func (c *closer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.closed = append(*c.closed, c.name)
	return nil
}

func TestShutdown_ClosesInReverseOrder(t *testing.T) {
	var (
		mu     sync.Mutex
		closed []string
	)
	factory := component.FactoryFunc(func(_ context.Context, args component.Args) (any, error) {
		name, err := args.String(0, "name", "")
		if err != nil {
			return nil, err
		}
		return &closer{name: name, mu: &mu, closed: &closed}, nil
	})
	module := &testutil.SimpleModule{Ref: ".test.closers", Version: "1.0", Symbols: map[string]component.Factory{"Closer": factory}}

	res := RunBoot(t, map[string]string{
		"node.yaml": `
			first:
			  package: .test.closers
			  component: Closer
			  constructor_args: [first]
			second:
			  package: .test.closers
			  component: Closer
			  constructor_args: [second]
		`,
	}, "node.yaml", module)
	require.NoError(t, res.Err)

	require.NoError(t, res.App.Shutdown(context.Background()))
	require.NoError(t, res.App.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"second", "first"}, closed)
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{"node.hcl": nodeHCL})
	a, logs := SetupAppTest(t, Config{ConfigPath: filepath.Join(root, "node.hcl")})

	ctx, cancel := context.WithCancel(context.Background())
	var report bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, &report) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Node booted.")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Contains(t, report.String(), "Boot report")
	assert.Contains(t, report.String(), "3 registered, 1 failed")
	assert.Contains(t, logs.String(), "Stop requested, shutting down.")
}

func TestRun_ServesHealthCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	root := testutil.WriteFiles(t, map[string]string{"node.hcl": nodeHCL})
	a, logs := SetupAppTest(t, Config{ConfigPath: filepath.Join(root, "node.hcl"), HealthcheckPort: port})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, &bytes.Buffer{}) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/components", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body componentsResponse
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body.Registered == 3
	}, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Contains(t, logs.String(), "Health check server shut down gracefully.")
	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestNewApp_BaseNamespace(t *testing.T) {
	module := &testutil.SimpleModule{Ref: "acme.units.probe", Symbols: map[string]component.Factory{"Probe": testutil.Value(1)}}
	a, _ := SetupAppTest(t, Config{BaseNamespace: "acme.units"}, module)

	assert.Equal(t, "acme.units", a.Catalog().Base())
	_, err := a.Catalog().Resolve(context.Background(), ".probe")
	assert.NoError(t, err)
	_, err = a.Catalog().Resolve(context.Background(), ".sensors.virtual")
	assert.ErrorIs(t, err, catalog.ErrUnitNotFound)
}
