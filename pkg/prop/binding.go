package prop

import (
	"fmt"
	"reflect"
)

// Accessor is a live read/write handle for one property, the seam
// through which a host object exposes a derived, auto-updating field
// without importing the manager's full surface.
type Accessor struct {
	Name      string
	Get       func() (any, error)
	Set       func(v any) error
	Version   func() uint64
	IsCurrent func(observed uint64) bool
}

// Accessor returns a live accessor for the named property.
func (m *Manager) Accessor(name string) (Accessor, error) {
	if _, ok := m.props[name]; !ok {
		return Accessor{}, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return Accessor{
		Name: name,
		Get:  func() (any, error) { return m.Value(name) },
		Set:  func(v any) error { return m.SetValue(name, v) },
		Version: func() uint64 {
			ver, _ := m.Version(name)
			return ver
		},
		IsCurrent: func(observed uint64) bool { return m.IsCurrent(name, observed) },
	}, nil
}

// BindAll projects managed properties onto target, a pointer to a
// struct whose fields carry `prop:"name"` tags. Tagged fields are
// populated from the current values immediately and kept live: every
// later store of a different value for a bound property is mirrored
// into the field. Lazy properties refresh their field whenever a read
// recomputes them.
//
// Unknown tag names, unexported tagged fields, and value/field type
// mismatches fail fast.
func (m *Manager) BindAll(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("prop: BindAll target must be a non-nil pointer to struct, got %T", target)
	}
	sv := rv.Elem()
	st := sv.Type()

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag := field.Tag.Get("prop")
		if tag == "" || tag == "-" {
			continue
		}
		p, ok := m.props[tag]
		if !ok {
			return fmt.Errorf("%w: %q (field %s.%s)", ErrUnknownProperty, tag, st.Name(), field.Name)
		}
		fv := sv.Field(i)
		if !fv.CanSet() {
			return fmt.Errorf("prop: cannot bind unexported field %s.%s", st.Name(), field.Name)
		}
		v, err := m.getValue(p)
		if err != nil {
			return err
		}
		if err := setField(fv, v); err != nil {
			return fmt.Errorf("prop: binding %q to %s.%s: %w", tag, st.Name(), field.Name, err)
		}
		m.bindings[tag] = append(m.bindings[tag], fv)
	}
	return nil
}

// updateBindings mirrors a stored value into every field bound to the
// property. Runs on the write path, before change hooks.
func (m *Manager) updateBindings(name string, v any) {
	for _, fv := range m.bindings[name] {
		if err := setField(fv, v); err != nil {
			m.logger.Warn("bound field not updated",
				"property", name,
				"field_type", fv.Type().String(),
				"error", err,
			)
		}
	}
}

func setField(fv reflect.Value, v any) error {
	if v == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	val := reflect.ValueOf(v)
	if !val.Type().AssignableTo(fv.Type()) {
		return fmt.Errorf("value of type %T is not assignable to %s", v, fv.Type())
	}
	fv.Set(val)
	return nil
}
