package prop

// Policy selects when a property recomputes after a prerequisite
// changes.
type Policy int

const (
	// Lazy defers recomputation until the next read. The cached value
	// may be stale in between, but any read returns a value consistent
	// with the current producer values.
	Lazy Policy = iota

	// Eager recomputes as soon as any prerequisite changes. Eagerness
	// propagates: every prerequisite of an Eager property is promoted
	// to Eager at construction, transitively.
	Eager
)

func (p Policy) String() string {
	switch p {
	case Eager:
		return "eager"
	default:
		return "lazy"
	}
}

// ReadFunc computes a property's value. Readers consult other managed
// properties through m; those reads define the property's prerequisite
// edges. A returned error aborts the read (and any in-flight
// propagation pass) and leaves the property's snapshot untouched.
type ReadFunc func(self *Property, m *Manager) (any, error)

// ReuseFunc reports whether the cached snapshot can be returned without
// recomputing. Installed by a reader via SetReuse as a side effect of
// its last run.
type ReuseFunc func(self *Property, m *Manager) bool

// ChangeFunc observes a stored value change. A custom hook replaces the
// default behavior of notifying the propagator; hooks that still want
// propagation call m.MarkChanged themselves.
type ChangeFunc func(old, new any, self *Property, m *Manager)

// Property is one named, possibly-derived value in the graph. The zero
// value is not usable; construct with New or NewValue.
type Property struct {
	name     string
	read     ReadFunc
	deps     []string
	explicit bool
	initial  any
	policy   Policy
	reuse    ReuseFunc
	onChange ChangeFunc
}

// Option configures a Property at construction.
type Option func(*Property)

// WithPolicy sets the recomputation policy. The default is Lazy.
func WithPolicy(p Policy) Option {
	return func(prop *Property) {
		prop.policy = p
	}
}

// DependsOn declares the property's prerequisites explicitly and
// disables probe-based discovery for it. DependsOn() with no names
// declares a prerequisite-free property.
func DependsOn(names ...string) Option {
	return func(prop *Property) {
		prop.deps = append([]string(nil), names...)
		prop.explicit = true
	}
}

// WithOnChange replaces the default on-change hook. The default tells
// the manager the property changed, which triggers propagation to its
// eager dependents.
func WithOnChange(fn ChangeFunc) Option {
	return func(prop *Property) {
		prop.onChange = fn
	}
}

// New creates a derived property computed by read.
func New(name string, read ReadFunc, opts ...Option) *Property {
	p := &Property{
		name: name,
		read: read,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewValue creates a leaf value property holding initial until a
// producer assigns it via SetValue or SetSnapshot. Value properties
// have no prerequisites.
func NewValue(name string, initial any, opts ...Option) *Property {
	p := New(name, nil, opts...)
	p.initial = initial
	p.deps = nil
	p.explicit = true
	return p
}

// Name returns the property's unique name.
func (p *Property) Name() string { return p.name }

// Policy returns the property's recomputation policy. After
// construction this reflects any promotion to Eager.
func (p *Property) Policy() Policy { return p.policy }

// SetReuse installs the reuse predicate consulted on the next read.
// Meant to be called by the property's own reader, capturing the
// versions of the producers it just read.
func (p *Property) SetReuse(fn ReuseFunc) { p.reuse = fn }

// ClearReuse removes the reuse predicate, forcing the next read to
// recompute.
func (p *Property) ClearReuse() { p.reuse = nil }
