package prop

// Change describes one stored value change, as seen by watchers.
type Change struct {
	Name    string
	Old     any
	New     any
	Version uint64
}

// WatchFunc observes changes. It runs synchronously on the writing
// goroutine, after the snapshot is updated and before propagation;
// implementations must not write back into the manager.
type WatchFunc func(Change)

type watcher struct {
	id int
	fn WatchFunc
}

// Watch registers a change observer for every managed property and
// returns a cancel function. Observers fire for real value changes
// only: equal-value stores, silent probe stores, and version bumps are
// not reported.
func (m *Manager) Watch(fn WatchFunc) (cancel func()) {
	id := m.nextWatch
	m.nextWatch++
	m.watchers = append(m.watchers, watcher{id: id, fn: fn})
	return func() {
		for i, w := range m.watchers {
			if w.id == id {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				return
			}
		}
	}
}

// notifyWatchers delivers c to every watcher registered at the time of
// the change. It iterates a copy so a callback can cancel itself (or a
// neighbor) without perturbing the delivery loop.
func (m *Manager) notifyWatchers(c Change) {
	watchers := append([]watcher(nil), m.watchers...)
	for _, w := range watchers {
		w.fn(c)
	}
}
