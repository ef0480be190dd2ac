// Package catalog resolves the dotted unit references used in configuration
// (".sensors.virtual", "smartnode.components.net.http") to compiled units.
//
// Nothing is loaded dynamically. Every unit compiled into the binary registers
// a Loader under its fully-qualified reference at startup; resolving a
// reference runs the loader once and caches the unit, the way an import would.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// DefaultBase is the namespace relative references are qualified against.
const DefaultBase = "smartnode.components"

// ErrUnitNotFound is returned when no loader is registered for a reference.
var ErrUnitNotFound = errors.New("unit not found")

// Loader produces a unit. It may fail, for example when the unit needs a
// resource the node does not have.
type Loader func(ctx context.Context) (*component.Unit, error)

// Module is implemented by every package that contributes units.
type Module interface {
	Register(c *Catalog)
}

// Catalog is the registry of unit loaders.
type Catalog struct {
	base string

	mu      sync.Mutex
	loaders map[string]Loader
	loaded  map[string]*component.Unit
}

// New creates a Catalog that qualifies relative references against base.
// An empty base means DefaultBase.
func New(base string) *Catalog {
	if base == "" {
		base = DefaultBase
	}
	return &Catalog{
		base:    strings.TrimSuffix(base, "."),
		loaders: make(map[string]Loader),
		loaded:  make(map[string]*component.Unit),
	}
}

// Base returns the namespace relative references are resolved against.
func (c *Catalog) Base() string {
	return c.base
}

// Qualify turns a relative reference (leading '.') into a fully-qualified one.
func (c *Catalog) Qualify(ref string) string {
	if strings.HasPrefix(ref, ".") {
		return c.base + ref
	}
	return ref
}

// Register adds a loader under ref. Registering the same reference twice is a
// wiring mistake and panics.
func (c *Catalog) Register(ref string, loader Loader) {
	ref = c.Qualify(ref)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.loaders[ref]; exists {
		panic(fmt.Sprintf("unit with reference '%s' already registered", ref))
	}
	slog.Debug("Registering unit.", "ref", ref)
	c.loaders[ref] = loader
}

// Provide registers a unit that needs no loading step.
func (c *Catalog) Provide(u *component.Unit) {
	u.Ref = c.Qualify(u.Ref)
	c.Register(u.Ref, func(context.Context) (*component.Unit, error) { return u, nil })
}

// Resolve loads the unit behind ref. Failed loads are not cached, so a later
// descriptor may try again.
func (c *Catalog) Resolve(ctx context.Context, ref string) (*component.Unit, error) {
	qualified := c.Qualify(ref)
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	if u, ok := c.loaded[qualified]; ok {
		c.mu.Unlock()
		logger.Debug("Unit already loaded.", "ref", qualified)
		return u, nil
	}
	loader, ok := c.loaders[qualified]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnitNotFound, qualified)
	}

	u, err := loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unit %s: %w", qualified, err)
	}
	if u == nil {
		return nil, fmt.Errorf("loading unit %s: loader returned no unit", qualified)
	}
	if u.Ref == "" {
		u.Ref = qualified
	}

	c.mu.Lock()
	c.loaded[qualified] = u
	c.mu.Unlock()

	logger.Debug("Unit loaded.", "ref", qualified, "version", u.Version)
	return u, nil
}

// Refs returns every registered reference, sorted.
func (c *Catalog) Refs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	refs := make([]string, 0, len(c.loaders))
	for ref := range c.loaders {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// Install registers every module with the catalog.
func (c *Catalog) Install(modules ...Module) {
	for _, m := range modules {
		m.Register(c)
	}
}
