package prop

import "github.com/scrollkit-dev/scrollkit/pkg/traverse"

// markChanged hands one changed property to the propagator. Its
// active-dependency set joins the frontier; whether a pass runs now
// depends on where the call came from:
//
//   - inside an in-flight pass, the dependents feed that pass's
//     frontier and the call returns immediately (reentrancy is
//     absorbed, never an error);
//   - inside a Batch, the dependents accumulate until the outermost
//     batch closes;
//   - otherwise a pass runs to completion before markChanged returns.
func (m *Manager) markChanged(p *Property) error {
	deps := m.active[p.name]
	if len(deps) == 0 {
		return nil
	}
	if m.propagating {
		for _, d := range deps {
			m.pushFn(d)
		}
		return nil
	}
	m.pending = append(m.pending, deps...)
	return m.flushPending(p.name)
}

// flushPending starts a pass for the accumulated frontier unless one
// must wait: for an open batch to close, or for the evaluation stack to
// unwind so the pass never re-enters a reader that is still computing.
func (m *Manager) flushPending(root string) error {
	if m.propagating || m.batchDepth > 0 || len(m.computing) > 0 {
		return nil
	}
	return m.runPending(root)
}

// Batch coalesces the propagation of several writes into one pass.
// Changes made inside fn accumulate their eager dependents; when the
// outermost batch closes, a single pass visits each affected property
// at most once. The returned error is that pass's failure, if any.
func (m *Manager) Batch(fn func()) (err error) {
	m.batchDepth++
	// Deferred so a panic inside fn still closes the batch; the pending
	// frontier flushes during unwinding instead of leaking.
	defer func() {
		m.batchDepth--
		if m.batchDepth == 0 {
			err = m.flushPending("batch")
		}
	}()
	fn()
	return nil
}

// runPending drains the pending frontier in one propagation pass,
// visiting affected properties in ascending tier order. Tier ordering
// guarantees a property's producers have settled before it is visited,
// which together with the search's visited set gives at-most-once
// recomputation per external change.
//
// A reader error aborts the pass: the remaining frontier is discarded,
// the failing property's snapshot is left untouched, and the error
// surfaces to whichever caller triggered the pass.
func (m *Manager) runPending(root string) error {
	if m.propagating || len(m.pending) == 0 {
		return nil
	}
	m.propagating = true
	m.stats.Passes++
	seeds := m.pending
	m.pending = nil

	span := m.startPassSpan(root)
	visited := 0
	var err error
	// Deferred so a panicking reader (recovered upstream) cannot leave
	// the reentrancy flag stuck and disable propagation for good.
	defer func() {
		m.pushFn = nil
		m.propagating = false
		m.pending = nil
		m.endPassSpan(span, visited, err)
	}()
	err = traverse.PriorityFirst(seeds,
		func(n string) int { return m.tiers[n] },
		func(n string, push func(string)) error {
			m.pushFn = push
			visited++
			_, verr := m.getValue(m.props[n])
			return verr
		})
	return err
}
