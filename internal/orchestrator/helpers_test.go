package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/registry"
	"github.com/specialistvlad/smartnodego/internal/scheduler"
	"github.com/specialistvlad/smartnodego/internal/testutil"
)

// widget is a component with every supported hook shape.
type widget struct {
	name       string
	calibrated float64
	setupErr   error
	ticks      int
	mu         sync.Mutex
}

func (w *widget) Calibrate(_ context.Context, args component.Args) error {
	offset, err := args.Float(0, "offset", 0)
	if err != nil {
		return err
	}
	w.calibrated = offset
	return nil
}

func (w *widget) Setup() error { return w.setupErr }

func (w *widget) Explode() { panic("boom") }

func (w *widget) Tick(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ticks++
	return nil
}

// Wrong has a signature hooks cannot call.
func (w *widget) Wrong(int) {}

type scheduledTask struct {
	name     string
	interval time.Duration
	task     scheduler.Task
}

var _ scheduler.Scheduler = (*fakeScheduler)(nil)

// fakeScheduler records tasks instead of running them.
type fakeScheduler struct {
	mu    sync.Mutex
	every []scheduledTask
	once  []scheduledTask
}

func (s *fakeScheduler) Go(name string, task scheduler.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.once = append(s.once, scheduledTask{name: name, task: task})
}

func (s *fakeScheduler) Every(name string, interval time.Duration, task scheduler.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.every = append(s.every, scheduledTask{name: name, interval: interval, task: task})
}

type fixture struct {
	orch  *Orchestrator
	reg   *registry.Registry
	sink  *testutil.RecordingSink
	sched *fakeScheduler
}

var errBuild = errors.New("sensor not responding")

// newFixture wires an orchestrator against a catalog holding the ".test" unit
// and a ".broken" unit that fails to load.
func newFixture(symbols map[string]component.Factory) *fixture {
	cat := catalog.New("")
	cat.Install(
		&testutil.SimpleModule{Ref: ".test", Version: "1.2.0", Symbols: symbols},
		&testutil.SimpleModule{Ref: ".broken", Err: errors.New("no module named machine")},
	)
	f := &fixture{
		reg:   registry.New(),
		sink:  &testutil.RecordingSink{},
		sched: &fakeScheduler{},
	}
	f.orch = New(cat, f.reg, f.sched, f.sink)
	return f
}

func constant(v any) component.Factory {
	return testutil.Value(v)
}

func newWidget(name string) component.Factory {
	return component.FactoryFunc(func(context.Context, component.Args) (any, error) {
		return &widget{name: name}, nil
	})
}

func failing(err error) component.Factory {
	return component.FactoryFunc(func(context.Context, component.Args) (any, error) {
		return nil, err
	})
}
