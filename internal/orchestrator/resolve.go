package orchestrator

import (
	"github.com/specialistvlad/smartnodego/internal/component"
)

// Lookuper is the read side of the registry the resolver needs.
type Lookuper interface {
	Lookup(name string) (any, bool)
}

// ResolveValue returns the registered instance named by v when v is a string
// equal to the name of a component registered with a non-nil instance.
// Anything else, including unknown names, passes through unchanged.
func ResolveValue(reg Lookuper, v any) any {
	name, ok := v.(string)
	if !ok || name == "" {
		return v
	}
	instance, ok := reg.Lookup(name)
	if !ok || instance == nil {
		return v
	}
	return instance
}

// ResolveArgs substitutes references in positional and keyword arguments.
// Only top-level values are considered. The input is never modified.
func ResolveArgs(reg Lookuper, args component.Args) component.Args {
	out := args.Clone()
	for i, v := range out.Positional {
		out.Positional[i] = ResolveValue(reg, v)
	}
	for k, v := range out.Keyword {
		out.Keyword[k] = ResolveValue(reg, v)
	}
	return out
}
