// Package component defines the contract between the orchestration engine and
// the units it builds: the argument bag handed to factories and init hooks,
// the single Factory interface every exported symbol implements, and the
// lookup of lifecycle methods on a freshly built instance.
//
// Units never see the registry or the configuration format. They receive an
// Args value whose references have already been replaced by live instances,
// and they return whatever instance (or nil, for a pure side-effect service)
// the rest of the node should be able to refer to by name.
package component
