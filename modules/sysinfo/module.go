// Package sysinfo exposes the node itself as components: a heap monitor and
// a start-up banner listing the node's environment.
package sysinfo

import (
	"context"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// Ref is the unit reference configuration uses.
const Ref = ".machine.sysinfo"

// Version is reported when a component of this unit is registered.
const Version = "0.2"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register provides the unit with its factories.
func (m *Module) Register(c *catalog.Catalog) {
	c.Provide(&component.Unit{
		Ref:     Ref,
		Version: Version,
		Symbols: map[string]component.Factory{
			"Memory": component.FactoryFunc(NewMemory),
			"Banner": component.FactoryFunc(Banner),
		},
	})
}

// Memory reports heap usage of the running process.
type Memory struct {
	warnAbove uint64
}

var _ component.Reader = (*Memory)(nil)

// NewMemory builds a heap monitor. The optional "warn_above_mb" keyword turns
// Report into a warning when the heap grows beyond that many megabytes.
func NewMemory(_ context.Context, args component.Args) (any, error) {
	mb, err := args.Int(0, "warn_above_mb", 0)
	if err != nil {
		return nil, err
	}
	return &Memory{warnAbove: uint64(max(mb, 0)) << 20}, nil
}

// Read returns current heap statistics.
func (m *Memory) Read(context.Context) (map[string]any, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return map[string]any{
		"heap_alloc":   ms.HeapAlloc,
		"heap_objects": ms.HeapObjects,
		"num_gc":       ms.NumGC,
		"goroutines":   runtime.NumGoroutine(),
	}, nil
}

// Report logs the current heap statistics.
func (m *Memory) Report(ctx context.Context) error {
	reading, err := m.Read(ctx)
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)
	attrs := []any{
		"heap_alloc", reading["heap_alloc"],
		"heap_objects", reading["heap_objects"],
		"num_gc", reading["num_gc"],
		"goroutines", reading["goroutines"],
	}
	if m.warnAbove > 0 && reading["heap_alloc"].(uint64) > m.warnAbove {
		logger.Warn("Heap usage above threshold.", attrs...)
		return nil
	}
	logger.Info("Heap usage.", attrs...)
	return nil
}

// Banner logs the node's platform and the environment variables whose names
// start with the "prefix" keyword (default "SMARTNODE_"). It keeps no state
// and registers as a service.
func Banner(ctx context.Context, args component.Args) (any, error) {
	prefix, err := args.String(0, "prefix", "SMARTNODE_")
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	logger := ctxlog.FromContext(ctx)
	logger.Info("Node starting.",
		"hostname", hostname,
		"go", runtime.Version(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"cpus", runtime.NumCPU(),
	)

	vars := Environment(prefix)
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		logger.Info("Environment.", "name", k, "value", vars[k])
	}
	return nil, nil
}

// Environment returns the process environment variables whose names start
// with prefix.
func Environment(prefix string) map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}
