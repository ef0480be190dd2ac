// Package cli turns the command line into application configuration and
// commands. It owns the process-level concerns: the env file, flag parsing
// and mapping failures to exit codes through ExitError.
package cli
