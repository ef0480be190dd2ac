package scheduler

import (
	"context"
	"time"
)

// Task is a unit of background work. Returning an error logs it; a recurring
// task keeps running after a failed invocation.
type Task func(ctx context.Context) error

// Scheduler is the capability the orchestration engine needs to start
// background work without blocking the boot sequence.
type Scheduler interface {
	// Go runs task once in the background.
	Go(name string, task Task)

	// Every runs task immediately and then again each interval until the
	// scheduler stops. A non-positive interval means DefaultInterval.
	Every(name string, interval time.Duration, task Task)
}
