// Package http_client provides a shareable HTTP client component and a
// publisher that sends another component's readings to an HTTP endpoint.
package http_client

import (
	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
)

// Ref is the unit reference configuration uses.
const Ref = ".net.http"

// Version is reported when a component of this unit is registered.
const Version = "0.4"

// Module implements the catalog.Module interface. It's the main entrypoint
// for the http_client module.
type Module struct{}

// Register provides the unit with the Client and Publisher factories.
func (m *Module) Register(c *catalog.Catalog) {
	c.Provide(&component.Unit{
		Ref:     Ref,
		Version: Version,
		Symbols: map[string]component.Factory{
			"Client":    component.FactoryFunc(NewClient),
			"Publisher": component.FactoryFunc(NewPublisher),
		},
	})
}
