package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/smartnodego/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval is used for recurring tasks configured without an interval.
const DefaultInterval = 10 * time.Minute

// Group is the default Scheduler. Tasks run in an errgroup bound to the
// context passed to New.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	g      errgroup.Group

	running atomic.Int32
	stopped atomic.Bool
}

var _ Scheduler = (*Group)(nil)

// New creates a Group whose tasks stop when ctx is done or Stop is called.
func New(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{ctx: ctx, cancel: cancel}
}

// Go implements Scheduler.
func (s *Group) Go(name string, task Task) {
	if !s.accept(name) {
		return
	}
	s.running.Add(1)
	s.g.Go(func() error {
		defer s.running.Add(-1)
		s.invoke(name, task)
		return nil
	})
}

// Every implements Scheduler.
func (s *Group) Every(name string, interval time.Duration, task Task) {
	if !s.accept(name) {
		return
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	logger := ctxlog.FromContext(s.ctx)
	logger.Debug("Scheduling recurring task.", "task", name, "interval", interval.String())

	s.running.Add(1)
	s.g.Go(func() error {
		defer s.running.Add(-1)

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-s.ctx.Done():
				logger.Debug("Recurring task stopped.", "task", name)
				return nil
			case <-timer.C:
			}
			s.invoke(name, task)
			timer.Reset(interval)
		}
	})
}

// Running returns the number of tasks that have not returned yet.
func (s *Group) Running() int {
	return int(s.running.Load())
}

// Stop cancels all tasks and waits for them to return. It is safe to call
// more than once.
func (s *Group) Stop() error {
	s.stopped.Store(true)
	s.cancel()
	return s.g.Wait()
}

func (s *Group) accept(name string) bool {
	if s.stopped.Load() {
		ctxlog.FromContext(s.ctx).Warn("Scheduler stopped, task not started.", "task", name)
		return false
	}
	return true
}

// invoke runs one task invocation and contains its failures.
func (s *Group) invoke(name string, task Task) {
	logger := ctxlog.FromContext(s.ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task panicked.", "task", name, "panic", fmt.Sprint(r))
		}
	}()

	if err := task(s.ctx); err != nil && s.ctx.Err() == nil {
		logger.Error("Task failed.", "task", name, "error", err)
	}
}
