package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/config"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"github.com/specialistvlad/smartnodego/internal/diag"
	"github.com/specialistvlad/smartnodego/internal/orchestrator"
	"github.com/specialistvlad/smartnodego/internal/registry"
	"github.com/specialistvlad/smartnodego/internal/report"
	"github.com/specialistvlad/smartnodego/internal/scheduler"
)

// ErrAlreadyBooted is returned when Boot is called a second time.
var ErrAlreadyBooted = errors.New("node already booted")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger   *slog.Logger
	config   *Config
	bootID   string
	catalog  *catalog.Catalog
	registry *registry.Registry

	mu         sync.Mutex
	model      *config.Model
	sched      *scheduler.Group
	orch       *orchestrator.Orchestrator
	httpServer *http.Server
	booting    bool
	closed     bool
}

// NewApp is the constructor for the main application. It returns an App with
// its own logger, catalog and registry. Without modules the core units are
// installed.
func NewApp(outW io.Writer, cfg *Config, modules ...catalog.Module) *App {
	bootID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("boot_id", bootID)
	logger.Debug("Logger configured successfully.")

	cat := catalog.New(cfg.BaseNamespace)
	if len(modules) == 0 {
		modules = coreModules
	}
	cat.Install(modules...)
	logger.Debug("All units registered.", "count", len(modules), "base", cat.Base())

	return &App{
		logger:   logger,
		config:   cfg,
		bootID:   bootID,
		catalog:  cat,
		registry: registry.New(),
	}
}

// BootID identifies this run in every log line.
func (a *App) BootID() string {
	return a.bootID
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Catalog returns the units compiled into the application.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Outcomes returns the registration outcomes of the current boot.
func (a *App) Outcomes() []orchestrator.Outcome {
	a.mu.Lock()
	orch := a.orch
	a.mu.Unlock()
	if orch == nil {
		return nil
	}
	return orch.Outcomes()
}

// Boot loads the configuration and registers every component. Component
// failures are not errors: they are logged and recorded in the outcomes.
// Recurring hooks keep running until Shutdown or until ctx is done. A boot
// whose configuration failed to load may be retried.
func (a *App) Boot(ctx context.Context) ([]orchestrator.Outcome, error) {
	ctx = a.withLogger(ctx)

	a.mu.Lock()
	if a.booting {
		a.mu.Unlock()
		return nil, ErrAlreadyBooted
	}
	a.booting = true
	a.mu.Unlock()

	model, err := a.Load(ctx)
	if err != nil {
		a.mu.Lock()
		a.booting = false
		a.mu.Unlock()
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	a.mu.Lock()
	sched := a.tasksLocked(ctx)
	orch := orchestrator.New(a.catalog, a.registry, sched, diag.NewLogSink(a.logger),
		orchestrator.WithPacing(a.config.Pacing))
	a.orch = orch
	a.mu.Unlock()

	a.logger.Info("🚀 Booting node...", "config", a.config.ConfigPath)
	outcomes := orch.RegisterModel(ctx, model)
	a.logger.Info("🏁 Node booted.", "components", a.registry.Len(), "tasks", sched.Running())
	return outcomes, nil
}

// tasksLocked returns the background task group, creating it bound to ctx on
// first use. a.mu must be held.
func (a *App) tasksLocked(ctx context.Context) *scheduler.Group {
	if a.sched == nil {
		a.sched = scheduler.New(ctx)
	}
	return a.sched
}

// Run boots the node, writes the boot report to reportW and serves until ctx
// is done. It then shuts everything down.
func (a *App) Run(ctx context.Context, reportW io.Writer) error {
	ctx = a.withLogger(ctx)
	a.logger.Debug("App.Run method started.")

	if err := a.startHealthCheckServer(ctx); err != nil {
		return err
	}

	outcomes, err := a.Boot(ctx)
	if err != nil {
		return errors.Join(err, a.Shutdown(context.WithoutCancel(ctx)))
	}
	if err := report.New(reportW).Boot(outcomes); err != nil {
		a.logger.Warn("Could not write boot report.", "error", err)
	}

	<-ctx.Done()
	a.logger.Info("Stop requested, shutting down.", "cause", context.Cause(ctx))
	return a.Shutdown(context.WithoutCancel(ctx))
}

// Validate loads the configuration and checks that every descriptor names a
// loadable unit and an existing symbol. Nothing is constructed.
func (a *App) Validate(ctx context.Context) ([]orchestrator.Outcome, error) {
	ctx = a.withLogger(ctx)

	model, err := a.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// A registry of its own keeps the check away from a running boot.
	orch := orchestrator.New(a.catalog, registry.New(), nil, diag.NewLogSink(a.logger))
	return orch.CheckModel(ctx, model), nil
}

// Units loads every unit of the catalog and describes it.
func (a *App) Units(ctx context.Context) []report.Unit {
	ctx = a.withLogger(ctx)

	refs := a.catalog.Refs()
	units := make([]report.Unit, 0, len(refs))
	for _, ref := range refs {
		u, err := a.catalog.Resolve(ctx, ref)
		if err != nil {
			units = append(units, report.Unit{Ref: ref, Err: err})
			continue
		}
		units = append(units, report.Unit{Ref: ref, Version: u.Version, Symbols: u.SymbolNames()})
	}
	return units
}

// Shutdown stops the health check server, stops background tasks and closes
// registered components in reverse registration order. It is safe to call
// more than once.
func (a *App) Shutdown(ctx context.Context) error {
	ctx = a.withLogger(ctx)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	sched := a.sched
	a.mu.Unlock()

	var errs []error
	if err := a.closeHealthCheckServer(ctx); err != nil {
		errs = append(errs, err)
	}
	if sched != nil {
		a.logger.Debug("Stopping scheduler...", "tasks", sched.Running())
		if err := sched.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping scheduler: %w", err))
		}
	}
	errs = append(errs, a.closeComponents(ctx)...)
	return errors.Join(errs...)
}

// closeComponents calls Close on every registered instance that has one.
func (a *App) closeComponents(ctx context.Context) []error {
	outcomes := a.Outcomes()
	var errs []error
	for _, o := range slices.Backward(outcomes) {
		if !o.Registered() || o.Service {
			continue
		}
		instance, ok := a.registry.Lookup(o.Name)
		if !ok {
			continue
		}
		closeFn, ok := component.LookupMethod(instance, "Close")
		if !ok {
			continue
		}
		if err := closeFn(ctx, component.Args{}); err != nil {
			errs = append(errs, fmt.Errorf("closing component %q: %w", o.Name, err))
			continue
		}
		a.logger.Debug("Component closed.", "component", o.Name)
	}
	return errs
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
