// Package app wires the node together: it loads the component configuration,
// builds the catalog of compiled units, boots every component through the
// orchestrator and serves the health check until it is stopped. It is
// decoupled from any specific entrypoint like a CLI.
package app
