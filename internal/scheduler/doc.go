// Package scheduler runs the background work that components ask for once
// they are registered: one-off asynchronous tasks and recurring callbacks.
//
// # Why a separate scheduler
//
// Registration is strictly sequential and must never wait on a component's
// background loop. The orchestration driver therefore hands recurring hooks to
// a Scheduler and moves on; the task's own failures are logged by the
// scheduler and never roll back the registration that created it.
//
// # Lifetime
//
// All tasks share the context the Group was created with. Stop cancels that
// context and waits for every task to return, which keeps shutdown free of
// leaked goroutines.
package scheduler
