// Package prop implements a dependency-tracked property evaluation
// engine: a set of named, interdependent computed values declared once,
// with automatic prerequisite discovery, topological tiering, and
// change propagation that recomputes each affected value at most once
// per external change.
//
// # Properties
//
// A Property wraps one computation over the graph. Derived properties
// carry a reader that consults other properties through the Manager;
// value properties (NewValue) simply hold a snapshot that producers
// assign directly. Each property has a recomputation policy: Eager
// properties recompute as soon as a prerequisite changes, Lazy
// properties defer until the next read.
//
// # Dependency discovery
//
// Prerequisites are discovered once at construction. A property that
// declares DependsOn uses exactly that list. Otherwise its reader is
// executed once inside a recording scope and every property read during
// that probe becomes a prerequisite. Readers whose set of reads depends
// on branches taken at runtime should declare their dependencies
// explicitly; the probe only observes the branch it executes.
//
// The property set, edges, tiers, and active-dependency sets are frozen
// when NewManager returns. Duplicate names, references to undeclared
// properties, and cyclic prerequisite graphs are construction errors.
//
// # Reuse
//
// A reader may install a reuse predicate as a side effect of its run,
// typically a version guard over the producers it just read:
//
//	total := prop.New("total", func(self *prop.Property, m *prop.Manager) (any, error) {
//		n, err := prop.ValueAs[int](m, "count")
//		if err != nil {
//			return nil, err
//		}
//		ver, _ := m.Version("count")
//		self.SetReuse(func(self *prop.Property, m *prop.Manager) bool {
//			return m.IsCurrent("count", ver)
//		})
//		return n * 10, nil
//	})
//
// While the predicate holds, reads return the cached snapshot without
// recomputing and without bumping the version.
//
// # Concurrency
//
// A Manager is single-threaded: one goroutine owns the graph. Hosts
// that expose a manager to several goroutines must serialize every call
// behind one lock held for a whole propagation pass (the inspect
// package does exactly that).
package prop
