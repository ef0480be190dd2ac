// Package orchestrator turns an ordered list of component descriptors into
// live, registered instances.
//
// Each descriptor goes through the same sequence: validate, resolve the unit
// and its symbol, substitute references in the arguments, build, run the
// lifecycle hooks and finally insert the instance into the registry. The
// sequence is strictly one descriptor at a time, because a descriptor may
// only refer to components registered before it.
//
// A failure is contained to its own descriptor. It is reported to the
// diagnostic sink, recorded as an Outcome and the driver moves on; nothing
// propagates out of RegisterAll.
package orchestrator
