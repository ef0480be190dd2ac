// Package config defines the format-agnostic model of a node's component
// configuration together with the Loader interface concrete formats
// implement.
//
// A Model is an ordered list of component names plus one Descriptor per name.
// The order is the only dependency mechanism: a component may refer by name
// to components that appear before it. Loaders for HCL and YAML/JSON live in
// their own packages and both produce this model, so the orchestration engine
// never sees a configuration syntax.
package config
