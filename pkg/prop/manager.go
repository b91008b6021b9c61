package prop

import (
	"fmt"
	"log/slog"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Manager owns a fixed set of properties, their prerequisite graph, and
// their snapshots. The graph is derived and frozen at construction; all
// later calls read and write through it.
type Manager struct {
	logger *slog.Logger
	tracer trace.Tracer

	props map[string]*Property
	order []string

	// prereqs holds consumer -> producers edges; active holds the
	// reverse edges restricted to eager consumers; tiers is the
	// topological depth per property. All frozen by NewManager.
	prereqs map[string][]string
	active  map[string][]string
	tiers   map[string]int

	store map[string]*snapshot

	// propagating is the reentrancy flag: true while a propagation
	// pass is in flight. It truncates recursive propagation, it is not
	// a thread-safety mechanism.
	propagating bool
	batchDepth  int
	pending     []string
	pushFn      func(string)

	// computing guards against re-entering a reader that is already on
	// the evaluation stack, which turns runaway recursion into a
	// cyclic-dependency error.
	computing map[string]bool

	discovering bool
	probed      map[string]bool
	recStack    []*recordingFrame

	watchers  []watcher
	nextWatch int

	bindings map[string][]reflect.Value

	stats Stats
}

// ManagerOption configures a Manager at construction.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTracerName enables an OpenTelemetry span per propagation pass,
// resolved from the global tracer provider. Without this option no
// spans are created.
func WithTracerName(name string) ManagerOption {
	return func(m *Manager) {
		m.tracer = otel.Tracer(name)
	}
}

// Stats are cumulative counters over the manager's lifetime.
type Stats struct {
	// Passes counts propagation passes triggered by external changes.
	Passes uint64
	// Recomputes counts reader executions, probe runs included.
	Recomputes uint64
	// Reuses counts reads satisfied by a reuse predicate.
	Reuses uint64
	// Writes counts stores of a changed value.
	Writes uint64
	// Bumps counts explicit BumpVersion calls.
	Bumps uint64
}

// Stats returns a copy of the manager's counters.
func (m *Manager) Stats() Stats { return m.stats }

// Names returns the property names in declaration order.
func (m *Manager) Names() []string {
	return append([]string(nil), m.order...)
}

// Prerequisites returns the producers the named property reads.
func (m *Manager) Prerequisites(name string) ([]string, error) {
	if _, ok := m.props[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return append([]string(nil), m.prereqs[name]...), nil
}

// Dependents returns the named property's active-dependency set: the
// eager consumers visited when it changes.
func (m *Manager) Dependents(name string) ([]string, error) {
	if _, ok := m.props[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return append([]string(nil), m.active[name]...), nil
}

// Tier returns the property's topological depth: 0 for properties with
// no prerequisites, otherwise 1 + the maximum prerequisite tier.
func (m *Manager) Tier(name string) (int, error) {
	if _, ok := m.props[name]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return m.tiers[name], nil
}

// PolicyOf returns the property's post-promotion policy.
func (m *Manager) PolicyOf(name string) (Policy, error) {
	p, ok := m.props[name]
	if !ok {
		return Lazy, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return p.policy, nil
}

// Value returns the property's current value, recomputing it unless its
// reuse predicate holds. Reading inside another property's reader
// establishes a dependency edge during the construction probe.
func (m *Manager) Value(name string) (any, error) {
	p, ok := m.props[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	if f := m.topFrame(); f != nil {
		f.record(name)
	}
	v, err := m.getValue(p)
	if err != nil {
		return nil, err
	}
	// A recompute may have changed values and deferred propagation
	// until the evaluation stack unwound; run it now so the reader's
	// caller observes (and receives errors from) the pass it caused.
	if err := m.flushPending(name); err != nil {
		return v, err
	}
	return v, nil
}

// ValueAs reads a property and asserts its dynamic type.
func ValueAs[T any](m *Manager, name string) (T, error) {
	var zero T
	v, err := m.Value(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("prop: %q holds %T, not %T", name, v, zero)
	}
	return t, nil
}

// SetValue force-stores v for the named property through the regular
// store path: the version bumps and change hooks fire only if v
// actually differs from the stored snapshot. The returned error is any
// propagation failure the change caused.
func (m *Manager) SetValue(name string, v any) error {
	p, ok := m.props[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return m.write(p, v)
}

// SetSnapshot stores v and returns the previously stored value (nil if
// none). Leaf producer properties with no dependents of their own use
// this as their assignment primitive.
func (m *Manager) SetSnapshot(name string, v any) (any, error) {
	p, ok := m.props[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	old := m.snap(name).value
	if err := m.write(p, v); err != nil {
		return old, err
	}
	return old, nil
}

// MarkChanged tells the propagator the named property changed. The
// default on-change hook calls this; custom hooks that still want
// propagation call it explicitly.
func (m *Manager) MarkChanged(name string) error {
	p, ok := m.props[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return m.markChanged(p)
}

// getValue implements the reuse-or-recompute read for a known property.
func (m *Manager) getValue(p *Property) (any, error) {
	s := m.snap(p.name)
	if p.reuse != nil && s.has && p.reuse(p, m) {
		m.stats.Reuses++
		return s.value, nil
	}
	return m.recompute(p)
}

// recompute runs the property's reader (or resolves a value property's
// snapshot) and stores the result. During the construction probe the
// run happens inside a fresh recording frame and the store is silent.
func (m *Manager) recompute(p *Property) (any, error) {
	if m.computing[p.name] {
		return nil, fmt.Errorf("%w: %q re-entered while computing it", ErrCyclicDependency, p.name)
	}
	m.computing[p.name] = true
	defer delete(m.computing, p.name)

	var frame *recordingFrame
	if m.discovering {
		frame = m.pushFrame()
	}

	var v any
	var err error
	if p.read == nil {
		s := m.snap(p.name)
		if s.has {
			v = s.value
		} else {
			v = p.initial
		}
	} else {
		m.stats.Recomputes++
		v, err = p.read(p, m)
	}

	if frame != nil {
		m.popFrame()
		if err == nil && !p.explicit && !m.probed[p.name] {
			m.prereqs[p.name] = frame.names
			m.probed[p.name] = true
		}
	}
	if err != nil {
		return nil, fmt.Errorf("prop: computing %q: %w", p.name, err)
	}

	if m.discovering {
		m.writeSilent(p, v)
		return v, nil
	}
	if err := m.write(p, v); err != nil {
		return v, err
	}
	return v, nil
}
