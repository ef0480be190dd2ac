package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/diag"
)

// instantiate builds the instance for d. A nil instance with a nil error is
// a service.
func (o *Orchestrator) instantiate(ctx context.Context, d *config.Descriptor, out *Outcome) (any, error) {
	factory, err := o.locate(ctx, d, out, o.registry.Has)
	if err != nil {
		return nil, err
	}

	args := ResolveArgs(o.registry, d.ConstructorArgs)

	out.transition(Constructing)
	var instance any
	err = safeCall(func() error {
		var buildErr error
		instance, buildErr = factory.Build(ctx, args)
		return buildErr
	})
	if err != nil {
		return nil, o.fail(ctx, out, diag.Error, ErrConstruction, err,
			fmt.Sprintf("Error during creation of object %q, %q, version %s: %v",
				d.Component, d.Name, displayVersion(out.Version), err))
	}
	return instance, nil
}

// locate runs every step that precedes construction and returns the factory
// named by d. taken reports whether a component name is already in use.
func (o *Orchestrator) locate(ctx context.Context, d *config.Descriptor, out *Outcome, taken func(string) bool) (component.Factory, error) {
	out.transition(Resolving)

	if missing := d.MissingFields(); len(missing) > 0 {
		return nil, o.fail(ctx, out, diag.Error, ErrMissingField,
			fmt.Errorf("%s", strings.Join(missing, ", ")),
			fmt.Sprintf("Missing required value %q in component %q.", missing[0], d.Name))
	}

	if taken(d.Name) {
		return nil, o.fail(ctx, out, diag.Critical, ErrDuplicateComponent, nil,
			fmt.Sprintf("Component %q already added.", d.Name))
	}

	unit, err := o.units.Resolve(ctx, d.Package)
	if err != nil {
		return nil, o.fail(ctx, out, diag.Critical, ErrImport, err,
			fmt.Sprintf("Error importing package %s: %v", d.Package, err))
	}
	out.Version = unit.Version

	factory, ok := unit.Symbol(d.Component)
	if !ok {
		return nil, o.fail(ctx, out, diag.Critical, ErrSymbolNotFound, nil,
			fmt.Sprintf("Package %s has no component %q.", d.Package, d.Component))
	}
	return factory, nil
}

// safeCall runs fn and turns a panic into a *PanicError.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}

func invoke(ctx context.Context, m component.Method, args component.Args) error {
	return safeCall(func() error { return m(ctx, args) })
}
