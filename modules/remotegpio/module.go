// Package remotegpio controls GPIO pins of a remote microcontroller through a
// socket.io bridge. The Bridge factory is asynchronous: it returns only once
// the connection is up, so pins declared after it can rely on it.
package remotegpio

import (
	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
)

// Ref is the unit reference configuration uses.
const Ref = ".devices.remotegpio"

// Version is reported when a component of this unit is registered.
const Version = "0.2"

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Register provides the unit with the Bridge and Pin factories.
func (m *Module) Register(c *catalog.Catalog) {
	c.Provide(&component.Unit{
		Ref:     Ref,
		Version: Version,
		Symbols: map[string]component.Factory{
			"Bridge": component.FactoryFunc(NewBridge),
			"Pin":    component.FactoryFunc(NewPin),
		},
	})
}
