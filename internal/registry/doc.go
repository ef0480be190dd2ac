// Package registry holds the process-wide mapping from component name to the
// live instance built for it.
//
// The registry is created once at startup and only ever grows: a name can be
// registered once, and a second registration under the same name is rejected
// rather than overwriting the first. During boot it is written by the
// orchestration driver alone; afterwards recurring tasks, the health server and
// the rest of the application treat it as read-only.
//
// Components that exist only for their construction side effects ("services")
// are recorded with a nil instance so their name stays reserved.
package registry
