// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Descriptor, the declarative record describing how to
// build and wire one component, and the Model that orders them.
//
// Why keep constructor arguments untyped?
//
// Units are compiled into the binary but configured at boot. Arguments arrive
// as plain values (strings, numbers, lists, mappings) and a string may turn
// out to be the name of an already registered component. That decision can
// only be made at registration time, against the registry as it is at that
// moment, so the model keeps the literal values and leaves resolution to the
// orchestrator.
package config

import (
	"fmt"
	"time"

	"github.com/specialistvlad/smartnodego/internal/component"
)

// Descriptor describes one component. It is immutable once loaded.
type Descriptor struct {
	// Name is the registry key and the token other descriptors use to
	// refer to this component.
	Name string
	// Package is the unit reference, e.g. ".sensors.virtual".
	Package string
	// Component is the exported symbol looked up on the unit.
	Component string
	// ConstructorArgs are passed to the factory after reference resolution.
	ConstructorArgs component.Args
	// Init is the optional post-construction initializer.
	Init *InitHook
	// Recurring is the optional background callback.
	Recurring *RecurringHook
	// Source is the file the descriptor was read from, for diagnostics.
	Source string
}

// InitHook names a method invoked once on the freshly built instance.
type InitHook struct {
	Method string
	Args   component.Args
}

// RecurringHook names a method scheduled to run every Interval. A zero
// interval means the scheduler default.
type RecurringHook struct {
	Method   string
	Interval time.Duration
}

// MissingFields lists the required fields that are empty.
func (d *Descriptor) MissingFields() []string {
	var missing []string
	if d.Package == "" {
		missing = append(missing, "package")
	}
	if d.Component == "" {
		missing = append(missing, "component")
	}
	return missing
}

// Model is the complete component configuration of a node.
type Model struct {
	// Order is the explicit registration order. When empty, declaration
	// order is used.
	Order []string
	// Components maps names to descriptors.
	Components map[string]*Descriptor

	declared []string
}

// NewModel creates an empty Model.
func NewModel() *Model {
	return &Model{Components: make(map[string]*Descriptor)}
}

// Add appends a descriptor in declaration order. Names must be unique within
// a model.
func (m *Model) Add(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("component descriptor without a name")
	}
	if prev, exists := m.Components[d.Name]; exists {
		return fmt.Errorf("component %q declared twice (%s and %s)", d.Name, prev.Source, d.Source)
	}
	m.Components[d.Name] = d
	m.declared = append(m.declared, d.Name)
	return nil
}

// Declared returns component names in declaration order.
func (m *Model) Declared() []string {
	out := make([]string, len(m.declared))
	copy(out, m.declared)
	return out
}

// Merge folds other into m. Components must not overlap; an explicit order
// in other extends the explicit order of m.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	for _, name := range other.declared {
		if err := m.Add(other.Components[name]); err != nil {
			return err
		}
	}
	m.Order = append(m.Order, other.Order...)
	return nil
}

// Ordered returns descriptors in registration order. Names listed in the
// order without a descriptor are returned separately so the caller can report
// them. Repeated names yield the same descriptor more than once.
func (m *Model) Ordered() (descriptors []*Descriptor, missing []string) {
	order := m.Order
	if len(order) == 0 {
		order = m.declared
	}
	for _, name := range order {
		d, ok := m.Components[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, missing
}
