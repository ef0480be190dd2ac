package component

import (
	"context"
	"sort"
)

// Factory builds one component instance. Plain constructors return at once;
// factories that wait on I/O (a network handshake, a bus scan) block until ctx
// is done. Returning a nil instance with a nil error registers the component
// as a service: it did its work during construction and leaves nothing to
// refer to.
type Factory interface {
	Build(ctx context.Context, args Args) (any, error)
}

// FactoryFunc adapts an ordinary function to the Factory interface.
type FactoryFunc func(ctx context.Context, args Args) (any, error)

// Build calls f(ctx, args).
func (f FactoryFunc) Build(ctx context.Context, args Args) (any, error) {
	return f(ctx, args)
}

// Unit is a loadable collection of named factories, the Go counterpart of a
// module that configuration refers to by its dotted reference.
type Unit struct {
	Ref     string
	Version string
	Symbols map[string]Factory
}

// Symbol looks up an exported factory by name.
func (u *Unit) Symbol(name string) (Factory, bool) {
	if u == nil {
		return nil, false
	}
	f, ok := u.Symbols[name]
	return f, ok && f != nil
}

// SymbolNames returns the exported symbol names sorted alphabetically.
func (u *Unit) SymbolNames() []string {
	names := make([]string, 0, len(u.Symbols))
	for name := range u.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reader is implemented by components that produce readings other components
// can consume (printers, publishers).
type Reader interface {
	Read(ctx context.Context) (map[string]any, error)
}
