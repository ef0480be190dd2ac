package orchestrator

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure recorded in an Outcome wraps exactly one of them.
var (
	ErrMissingField       = errors.New("missing required field")
	ErrDuplicateComponent = errors.New("component already added")
	ErrImport             = errors.New("import failed")
	ErrSymbolNotFound     = errors.New("symbol not found")
	ErrConstruction       = errors.New("construction failed")
	ErrHookNotFound       = errors.New("init hook not found")
	ErrHookExecution      = errors.New("init hook failed")
)

// ComponentError describes why one descriptor did not reach Registered.
type ComponentError struct {
	Component string
	Symbol    string
	Version   string
	Kind      error
	Err       error
}

func (e *ComponentError) Error() string {
	msg := fmt.Sprintf("component %q", e.Component)
	if e.Symbol != "" {
		msg += fmt.Sprintf(" (%s", e.Symbol)
		if e.Version != "" {
			msg += ", version " + e.Version
		}
		msg += ")"
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ComponentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// PanicError carries a value recovered from a factory or hook.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
