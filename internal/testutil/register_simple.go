package testutil

import (
	"context"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
)

// SimpleModule is a test helper for easily creating a mock unit that exposes
// a fixed set of symbols. When Err is set the unit fails to load instead.
type SimpleModule struct {
	Ref     string
	Version string
	Symbols map[string]component.Factory
	Err     error
}

var _ catalog.Module = (*SimpleModule)(nil)

// Register implements the catalog.Module interface.
func (m *SimpleModule) Register(c *catalog.Catalog) {
	c.Register(m.Ref, func(context.Context) (*component.Unit, error) {
		if m.Err != nil {
			return nil, m.Err
		}
		return &component.Unit{Ref: c.Qualify(m.Ref), Version: m.Version, Symbols: m.Symbols}, nil
	})
}

// Value returns a factory that always builds v.
func Value(v any) component.Factory {
	return component.FactoryFunc(func(context.Context, component.Args) (any, error) {
		return v, nil
	})
}
