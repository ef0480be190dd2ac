package orchestrator

import (
	"context"

	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// Check runs the steps that precede construction for every descriptor: the
// required fields, the name, the unit and the symbol. Nothing is built and the
// registry is left untouched. Failures are reported the way RegisterAll
// reports them; descriptors that pass come back Pending.
func (o *Orchestrator) Check(ctx context.Context, descriptors []*config.Descriptor) []Outcome {
	ctx = context.WithoutCancel(ctx)

	seen := make(map[string]bool, len(descriptors))
	taken := func(name string) bool { return seen[name] || o.registry.Has(name) }

	results := make([]Outcome, 0, len(descriptors))
	for _, d := range descriptors {
		if d == nil {
			continue
		}
		out := Outcome{Name: d.Name, Package: d.Package, Symbol: d.Component, State: Pending}
		dctx := ctxlog.With(ctx, "component", d.Name)
		if _, err := o.locate(dctx, d, &out, taken); err == nil {
			out.State = Pending
		}
		if d.Name != "" {
			seen[d.Name] = true
		}
		results = append(results, out)
	}
	return results
}

// CheckModel is Check over the model's registration order, reporting order
// entries that have no descriptor.
func (o *Orchestrator) CheckModel(ctx context.Context, m *config.Model) []Outcome {
	descriptors, missing := m.Ordered()
	o.reportMissing(ctx, missing)
	return o.Check(ctx, descriptors)
}
