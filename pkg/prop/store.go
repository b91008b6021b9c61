package prop

import (
	"fmt"
	"reflect"
)

// snapshot is a property's last stored value plus its monotonic version
// counter. Snapshots are created lazily on first access and live for
// the manager's lifetime.
type snapshot struct {
	value   any
	version uint64
	has     bool
}

// snap returns the snapshot cell for name, creating it on first use.
func (m *Manager) snap(name string) *snapshot {
	s, ok := m.store[name]
	if !ok {
		s = &snapshot{}
		m.store[name] = s
	}
	return s
}

// write stores v for p. If v differs from the stored snapshot (or none
// is stored) it bumps the version, updates bound fields and watchers,
// and invokes the on-change hook, which by default hands the change to
// the propagator. The returned error is any propagation failure caused
// by the change.
func (m *Manager) write(p *Property, v any) error {
	s := m.snap(p.name)
	if s.has && valuesEqual(s.value, v) {
		return nil
	}
	old := s.value
	s.value = v
	s.has = true
	s.version++
	m.stats.Writes++

	m.updateBindings(p.name, v)
	m.notifyWatchers(Change{Name: p.name, Old: old, New: v, Version: s.version})

	if p.onChange != nil {
		p.onChange(old, v, p, m)
		return nil
	}
	return m.markChanged(p)
}

// writeSilent performs the same storage and version update as write but
// never invokes hooks, bindings, or watchers. Used to settle values
// during the construction probe without firing propagation.
func (m *Manager) writeSilent(p *Property, v any) {
	s := m.snap(p.name)
	if s.has && valuesEqual(s.value, v) {
		return
	}
	s.value = v
	s.has = true
	s.version++
	m.stats.Writes++
}

// BumpVersion increments the property's version counter without
// changing its value and without invoking the on-change hook. Producers
// that mutate a stored value in place use this to make version guards
// observe the mutation.
func (m *Manager) BumpVersion(name string) error {
	if _, ok := m.props[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	m.snap(name).version++
	m.stats.Bumps++
	return nil
}

// Version returns the property's current version counter. Versions
// start at 0 and bump on every store of a different value.
func (m *Manager) Version(name string) (uint64, error) {
	if _, ok := m.props[name]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return m.snap(name).version, nil
}

// IsCurrent reports whether the property's version still equals
// observed. Readers use this to build cheap reuse predicates; external
// callers use it to detect staleness without re-reading. Unknown names
// report false.
func (m *Manager) IsCurrent(name string, observed uint64) bool {
	if _, ok := m.props[name]; !ok {
		return false
	}
	return m.snap(name).version == observed
}

// HasValue reports whether the property has a stored snapshot.
func (m *Manager) HasValue(name string) bool {
	s, ok := m.store[name]
	return ok && s.has
}

// valuesEqual is the change-detection equality: == fast paths for the
// common comparable types, reflect.DeepEqual for everything else.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return reflect.DeepEqual(a, b)
	}
}
