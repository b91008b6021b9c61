package prop

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/scrollkit-dev/scrollkit/pkg/traverse"
)

// NewManager analyzes the declared property set once and returns a
// manager with frozen edges, tiers, and active-dependency sets.
//
// Construction fails fast on duplicate names, references to undeclared
// properties, cyclic prerequisite graphs, and reader errors during the
// discovery probe. No partially built manager is ever returned.
func NewManager(props []*Property, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		logger:    slog.Default(),
		props:     make(map[string]*Property, len(props)),
		prereqs:   make(map[string][]string, len(props)),
		active:    make(map[string][]string),
		tiers:     make(map[string]int, len(props)),
		store:     make(map[string]*snapshot, len(props)),
		computing: make(map[string]bool),
		probed:    make(map[string]bool),
		bindings:  make(map[string][]reflect.Value),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, p := range props {
		if p == nil {
			return nil, ErrNilProperty
		}
		if _, dup := m.props[p.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProperty, p.name)
		}
		m.props[p.name] = p
		m.order = append(m.order, p.name)
	}

	if err := m.discover(); err != nil {
		return nil, err
	}
	m.promote()
	if err := m.assignTiers(); err != nil {
		return nil, err
	}
	m.collectActive()

	m.logger.Debug("property graph built",
		"properties", len(m.order),
		"tiers", m.maxTier()+1,
	)
	return m, nil
}

// discover resolves every property's prerequisite list and warms every
// snapshot. Declared lists are validated against the managed set;
// undeclared properties get their edges from a recording scope wrapped
// around their probe run. Every property is computed once here, through
// silent stores, so construction never fires change hooks and the first
// runtime read finds a settled snapshot instead of an initial "change".
func (m *Manager) discover() error {
	m.discovering = true
	defer func() { m.discovering = false }()

	for _, name := range m.order {
		p := m.props[name]
		if !p.explicit {
			continue
		}
		for _, dep := range p.deps {
			if _, ok := m.props[dep]; !ok {
				return fmt.Errorf("%w: %q depends on %q", ErrUnknownProperty, name, dep)
			}
		}
		m.prereqs[name] = append([]string(nil), p.deps...)
	}

	for _, name := range m.order {
		// Already settled as a prerequisite of an earlier probe.
		if m.snap(name).has {
			continue
		}
		if _, err := m.recompute(m.props[name]); err != nil {
			return fmt.Errorf("prop: probing %q: %w", name, err)
		}
	}
	return nil
}

// promote propagates eagerness from consumers to producers until a
// fixed point: every prerequisite of an Eager property becomes Eager,
// transitively. Promoting a property re-queues it so its own
// prerequisites are revisited.
func (m *Manager) promote() {
	var queue []string
	for _, name := range m.order {
		if m.props[name].policy == Eager {
			queue = append(queue, name)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, pre := range m.prereqs[name] {
			if p := m.props[pre]; p.policy != Eager {
				p.policy = Eager
				queue = append(queue, pre)
			}
		}
	}
}

// assignTiers computes each property's topological depth by a shared
// multi-root depth-first walk over prerequisite edges. The post-subtree
// fold sets tier(consumer) = max over prerequisites of tier+1; an edge
// back onto the active stack is a cycle and rejects the graph.
func (m *Manager) assignTiers() error {
	explored := make(map[string]bool, len(m.order))
	for _, root := range m.order {
		err := traverse.DepthFirst([]string{root},
			func(n string) []string { return m.prereqs[n] },
			traverse.DepthFirstOpts[string]{
				Explored: explored,
				OnBackEdge: func(from, to string) error {
					return fmt.Errorf("%w: %q -> %q", ErrCyclicDependency, from, to)
				},
				PostVisit: func(n string) {
					tier := 0
					for _, pre := range m.prereqs[n] {
						if t := m.tiers[pre] + 1; t > tier {
							tier = t
						}
					}
					m.tiers[n] = tier
				},
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// collectActive builds each producer's active-dependency set: its
// consumers with (post-promotion) Eager policy, in declaration order.
func (m *Manager) collectActive() {
	for _, name := range m.order {
		if m.props[name].policy != Eager {
			continue
		}
		for _, pre := range m.prereqs[name] {
			m.active[pre] = append(m.active[pre], name)
		}
	}
}

func (m *Manager) maxTier() int {
	max := 0
	for _, t := range m.tiers {
		if t > max {
			max = t
		}
	}
	return max
}
