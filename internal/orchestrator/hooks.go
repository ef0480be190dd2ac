package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/diag"
)

// runHooks runs the init hook and schedules the recurring hook. Services have
// nothing to hook into and skip both.
func (o *Orchestrator) runHooks(ctx context.Context, d *config.Descriptor, instance any, out *Outcome) error {
	out.transition(Hooking)
	if instance == nil {
		out.Service = true
		return nil
	}

	if d.Init != nil && d.Init.Method != "" {
		hook, ok := component.LookupMethod(instance, d.Init.Method)
		if !ok {
			return o.fail(ctx, out, diag.Critical, ErrHookNotFound, nil,
				fmt.Sprintf("Init function %q does not exist for object %q, version %s.",
					d.Init.Method, d.Name, displayVersion(out.Version)))
		}
		args := ResolveArgs(o.registry, d.Init.Args)
		if err := invoke(ctx, hook, args); err != nil {
			return o.fail(ctx, out, diag.Error, ErrHookExecution, err,
				fmt.Sprintf("Error calling init function %q, %q, version %s: %v",
					d.Init.Method, d.Name, displayVersion(out.Version), err))
		}
	}

	if d.Recurring != nil && d.Recurring.Method != "" {
		o.schedule(ctx, d, instance)
	}
	return nil
}

// schedule registers the recurring hook. A missing method is only a warning;
// the component stays usable without its background work.
func (o *Orchestrator) schedule(ctx context.Context, d *config.Descriptor, instance any) {
	method, ok := component.LookupMethod(instance, d.Recurring.Method)
	if !ok {
		o.sink.Report(ctx, diag.Warning,
			fmt.Sprintf("Object %q has no function %q.", d.Name, d.Recurring.Method),
			slog.String("component", d.Name),
			slog.String("method", d.Recurring.Method))
		return
	}

	name := d.Name + "." + d.Recurring.Method
	o.sched.Every(name, d.Recurring.Interval, func(ctx context.Context) error {
		return method(ctx, component.Args{})
	})
}
