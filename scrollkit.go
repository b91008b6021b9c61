// Package scrollkit provides the public API for the scrollkit property
// engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/scrollkit-dev/scrollkit"
//
// Usage:
//
//	scrollTop := scrollkit.NewValue("scrollTop", 0, scrollkit.WithPolicy(scrollkit.Eager))
//	first := scrollkit.New("firstVisible", readFirstVisible,
//		scrollkit.DependsOn("scrollTop", "itemHeight"),
//		scrollkit.WithPolicy(scrollkit.Eager))
//	m, err := scrollkit.NewManager([]*scrollkit.Property{scrollTop, first, ...})
package scrollkit

import (
	"github.com/scrollkit-dev/scrollkit/pkg/prop"
)

// =============================================================================
// Core engine (pkg/prop exposed at the root)
// =============================================================================

// Manager owns a property graph: snapshots, versions, and change
// propagation.
type Manager = prop.Manager

// Property is one named node in the graph.
type Property = prop.Property

// Policy selects when a property recomputes.
type Policy = prop.Policy

// Evaluation policies.
const (
	Lazy  = prop.Lazy
	Eager = prop.Eager
)

// Change describes one committed value change, as delivered to
// watchers.
type Change = prop.Change

// Accessor is a typed handle on one property.
type Accessor = prop.Accessor

// Stats are the manager's evaluation counters.
type Stats = prop.Stats

// Reader and hook signatures.
type (
	ReadFunc   = prop.ReadFunc
	ReuseFunc  = prop.ReuseFunc
	ChangeFunc = prop.ChangeFunc
	WatchFunc  = prop.WatchFunc
)

// Property options.
var (
	WithPolicy   = prop.WithPolicy
	DependsOn    = prop.DependsOn
	WithOnChange = prop.WithOnChange
)

// Manager options.
var (
	WithLogger     = prop.WithLogger
	WithTracerName = prop.WithTracerName
)

// Sentinel errors.
var (
	ErrDuplicateProperty = prop.ErrDuplicateProperty
	ErrUnknownProperty   = prop.ErrUnknownProperty
	ErrCyclicDependency  = prop.ErrCyclicDependency
	ErrNilProperty       = prop.ErrNilProperty
)

// New declares a computed property with the given reader.
func New(name string, read ReadFunc, opts ...prop.Option) *Property {
	return prop.New(name, read, opts...)
}

// NewValue declares a plain value property with no reader.
func NewValue(name string, initial any, opts ...prop.Option) *Property {
	return prop.NewValue(name, initial, opts...)
}

// NewManager builds the graph: discovers prerequisites, promotes
// policies, assigns tiers, and warms every snapshot.
func NewManager(props []*Property, opts ...prop.ManagerOption) (*Manager, error) {
	return prop.NewManager(props, opts...)
}

// ValueAs reads a property and asserts its type.
func ValueAs[T any](m *Manager, name string) (T, error) {
	return prop.ValueAs[T](m, name)
}
