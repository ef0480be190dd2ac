package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"github.com/specialistvlad/smartnodego/internal/diag"
	"github.com/specialistvlad/smartnodego/internal/registry"
	"github.com/specialistvlad/smartnodego/internal/scheduler"
)

// UnitResolver maps a unit reference from configuration to a loaded unit.
// *catalog.Catalog implements it.
type UnitResolver interface {
	Resolve(ctx context.Context, ref string) (*component.Unit, error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPacing sets the pause between two descriptors. Zero only yields.
func WithPacing(d time.Duration) Option {
	return func(o *Orchestrator) { o.pacing = d }
}

// Orchestrator is the registration driver.
type Orchestrator struct {
	units    UnitResolver
	registry *registry.Registry
	sched    scheduler.Scheduler
	sink     diag.Sink
	pacing   time.Duration

	// mu serializes registrations; outMu guards outcomes.
	mu       sync.Mutex
	outMu    sync.Mutex
	outcomes []Outcome
}

// New creates an Orchestrator. A nil sink reports through the context logger.
func New(units UnitResolver, reg *registry.Registry, sched scheduler.Scheduler, sink diag.Sink, opts ...Option) *Orchestrator {
	if sink == nil {
		sink = diag.NewLogSink(nil)
	}
	o := &Orchestrator{
		units:    units,
		registry: reg,
		sched:    sched,
		sink:     sink,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RegisterModel registers the model's descriptors in its registration order.
// Order entries without a descriptor are reported and skipped.
func (o *Orchestrator) RegisterModel(ctx context.Context, m *config.Model) []Outcome {
	descriptors, missing := m.Ordered()
	o.reportMissing(ctx, missing)
	return o.RegisterAll(ctx, descriptors)
}

func (o *Orchestrator) reportMissing(ctx context.Context, missing []string) {
	for _, name := range missing {
		o.sink.Report(ctx, diag.Error,
			fmt.Sprintf("Component %q of order is not in the component configuration.", name),
			slog.String("component", name))
	}
}

// RegisterAll processes descriptors one after another and returns one Outcome
// per descriptor. It never fails: every problem is reported to the sink and
// recorded in the corresponding Outcome. Cancelling ctx does not interrupt the
// sequence.
func (o *Orchestrator) RegisterAll(ctx context.Context, descriptors []*config.Descriptor) []Outcome {
	ctx = context.WithoutCancel(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registering components.", "count", len(descriptors), "pacing", o.pacing)

	base := logHeap(ctx, "start", 0)
	results := make([]Outcome, 0, len(descriptors))
	for i, d := range descriptors {
		if d == nil {
			continue
		}
		if i > 0 {
			o.pause()
		}
		results = append(results, o.register(ctx, d))
		logHeap(ctx, d.Name, base)
	}

	registered := 0
	for _, r := range results {
		if r.Registered() {
			registered++
		}
	}
	logger.Info("Component registration finished.", "registered", registered, "failed", len(results)-registered)
	return results
}

// RegisterOne processes a single descriptor and reports whether it ended in
// Registered.
func (o *Orchestrator) RegisterOne(ctx context.Context, d *config.Descriptor) bool {
	if d == nil {
		return false
	}
	return o.register(context.WithoutCancel(ctx), d).Registered()
}

// Lookup returns a previously registered instance.
func (o *Orchestrator) Lookup(name string) (any, bool) {
	return o.registry.Lookup(name)
}

// Outcomes returns every outcome recorded so far, in processing order.
func (o *Orchestrator) Outcomes() []Outcome {
	o.outMu.Lock()
	defer o.outMu.Unlock()
	out := make([]Outcome, len(o.outcomes))
	copy(out, o.outcomes)
	return out
}

func (o *Orchestrator) register(ctx context.Context, d *config.Descriptor) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()
	out := Outcome{Name: d.Name, Package: d.Package, Symbol: d.Component, State: Pending}
	ctx = ctxlog.With(ctx, "component", d.Name)

	instance, err := o.instantiate(ctx, d, &out)
	if err == nil {
		err = o.runHooks(ctx, d, instance, &out)
	}
	if err == nil {
		o.insert(ctx, instance, &out)
	}

	out.Elapsed = time.Since(start)
	o.outMu.Lock()
	o.outcomes = append(o.outcomes, out)
	o.outMu.Unlock()
	ctxlog.FromContext(ctx).Debug("Descriptor processed.", "state", out.State, "elapsed", out.Elapsed)
	return out
}

func (o *Orchestrator) insert(ctx context.Context, instance any, out *Outcome) {
	if err := o.registry.Register(out.Name, instance); err != nil {
		o.fail(ctx, out, diag.Critical, ErrDuplicateComponent, err,
			fmt.Sprintf("Component %q already added.", out.Name))
		return
	}
	out.transition(Registered)

	msg := fmt.Sprintf("Added component %q, version %s", out.Name, displayVersion(out.Version))
	if out.Service {
		msg += " as service"
	}
	o.sink.Report(ctx, diag.Info, msg, attrs(out, nil)...)
}

// fail marks out as Failed, reports msg and returns the recorded error.
func (o *Orchestrator) fail(ctx context.Context, out *Outcome, sev diag.Severity, kind, cause error, msg string) error {
	err := &ComponentError{
		Component: out.Name,
		Symbol:    out.Symbol,
		Version:   out.Version,
		Kind:      kind,
		Err:       cause,
	}
	out.transition(Failed)
	out.Err = err
	o.sink.Report(ctx, sev, msg, attrs(out, cause)...)
	return err
}

func (o *Orchestrator) pause() {
	runtime.Gosched()
	if o.pacing > 0 {
		time.Sleep(o.pacing)
	}
}

func attrs(out *Outcome, cause error) []slog.Attr {
	a := []slog.Attr{
		slog.String("component", out.Name),
		slog.String("package", out.Package),
		slog.String("symbol", out.Symbol),
		slog.String("version", displayVersion(out.Version)),
	}
	if cause != nil {
		a = append(a, slog.String("error", cause.Error()))
	}
	return a
}

func displayVersion(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
