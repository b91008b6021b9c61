package prop

import (
	"errors"
	"testing"
)

// chained returns a reader computing src+1 that appends its property
// name to runs and installs a version guard over src, the way real
// readers keep themselves cheap to re-read.
func chained(name, src string, runs *[]string) ReadFunc {
	return func(self *Property, m *Manager) (any, error) {
		*runs = append(*runs, name)
		v, err := ValueAs[int](m, src)
		if err != nil {
			return nil, err
		}
		ver, _ := m.Version(src)
		self.SetReuse(func(self *Property, m *Manager) bool {
			return m.IsCurrent(src, ver)
		})
		return v + 1, nil
	}
}

func mustManager(t *testing.T, props []*Property, opts ...ManagerOption) *Manager {
	t.Helper()
	m, err := NewManager(props, opts...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func mustInt(t *testing.T, m *Manager, name string) int {
	t.Helper()
	v, err := ValueAs[int](m, name)
	if err != nil {
		t.Fatalf("Value(%q): %v", name, err)
	}
	return v
}

func TestManagerDuplicateName(t *testing.T) {
	_, err := NewManager([]*Property{
		NewValue("a", 1),
		NewValue("a", 2),
	})
	if !errors.Is(err, ErrDuplicateProperty) {
		t.Fatalf("expected ErrDuplicateProperty, got %v", err)
	}
}

func TestManagerNilProperty(t *testing.T) {
	_, err := NewManager([]*Property{NewValue("a", 1), nil})
	if !errors.Is(err, ErrNilProperty) {
		t.Fatalf("expected ErrNilProperty, got %v", err)
	}
}

func TestManagerUnknownDependency(t *testing.T) {
	var runs []string
	_, err := NewManager([]*Property{
		NewValue("a", 1),
		New("b", chained("b", "missing", &runs), DependsOn("missing")),
	})
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
}

func TestManagerCycleExplicit(t *testing.T) {
	// Readers are constant so the probe succeeds; the declared edges
	// still form a cycle and must be rejected by tiering.
	_, err := NewManager([]*Property{
		New("a", func(self *Property, m *Manager) (any, error) { return 1, nil }, DependsOn("b")),
		New("b", func(self *Property, m *Manager) (any, error) { return 2, nil }, DependsOn("a")),
	})
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestManagerCycleTracked(t *testing.T) {
	_, err := NewManager([]*Property{
		New("a", func(self *Property, m *Manager) (any, error) { return m.Value("b") }),
		New("b", func(self *Property, m *Manager) (any, error) { return m.Value("a") }),
	})
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestValueUnknown(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("a", 1)})
	if _, err := m.Value("nope"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
	if err := m.SetValue("nope", 1); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty from SetValue, got %v", err)
	}
	if _, err := m.Version("nope"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty from Version, got %v", err)
	}
}

func TestValueAsTypeMismatch(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("a", "hello")})
	if _, err := ValueAs[int](m, "a"); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestSetSnapshotReturnsOldAndSkipsEqual(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("a", 5)})

	var changes int
	m.Watch(func(Change) { changes++ })

	ver, _ := m.Version("a")

	old, err := m.SetSnapshot("a", 5)
	if err != nil {
		t.Fatalf("SetSnapshot: %v", err)
	}
	if old != 5 {
		t.Errorf("expected old value 5, got %v", old)
	}
	if got, _ := m.Version("a"); got != ver {
		t.Errorf("equal-value store must not bump version: %d -> %d", ver, got)
	}
	if changes != 0 {
		t.Errorf("equal-value store must not notify, got %d changes", changes)
	}

	old, err = m.SetSnapshot("a", 7)
	if err != nil {
		t.Fatalf("SetSnapshot: %v", err)
	}
	if old != 5 {
		t.Errorf("expected old value 5, got %v", old)
	}
	if got, _ := m.Version("a"); got != ver+1 {
		t.Errorf("expected version %d, got %d", ver+1, got)
	}
	if changes != 1 {
		t.Errorf("expected 1 change notification, got %d", changes)
	}
}

func TestBumpVersion(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("a", 5)})

	var changes int
	m.Watch(func(Change) { changes++ })

	ver, _ := m.Version("a")
	if err := m.BumpVersion("a"); err != nil {
		t.Fatalf("BumpVersion: %v", err)
	}
	if got, _ := m.Version("a"); got != ver+1 {
		t.Errorf("expected version %d, got %d", ver+1, got)
	}
	if got := mustInt(t, m, "a"); got != 5 {
		t.Errorf("BumpVersion must not change the value, got %d", got)
	}
	if changes != 0 {
		t.Errorf("BumpVersion must not notify, got %d changes", changes)
	}
}

func TestIsCurrent(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("a", 1)})

	ver, _ := m.Version("a")
	if !m.IsCurrent("a", ver) {
		t.Error("expected captured version to be current")
	}
	if err := m.SetValue("a", 2); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if m.IsCurrent("a", ver) {
		t.Error("expected captured version to be stale after change")
	}
	if m.IsCurrent("nope", 0) {
		t.Error("unknown property must never be current")
	}
}

func TestReuseSkipsRecompute(t *testing.T) {
	var runs []string
	m := mustManager(t, []*Property{
		NewValue("a", 1),
		New("b", chained("b", "a", &runs), DependsOn("a")),
	})

	base := len(runs) // the construction probe ran the reader once
	reuses := m.Stats().Reuses

	if got := mustInt(t, m, "b"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := mustInt(t, m, "b"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if len(runs) != base {
		t.Errorf("guarded reads must reuse the snapshot, reader ran %d more times", len(runs)-base)
	}
	if got := m.Stats().Reuses; got < reuses+2 {
		t.Errorf("expected at least %d reuses, got %d", reuses+2, got)
	}
}

func TestWatchCancel(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("a", 0)})

	var seen []Change
	cancel := m.Watch(func(c Change) { seen = append(seen, c) })

	if err := m.SetValue("a", 1); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if len(seen) != 1 || seen[0].Name != "a" || seen[0].New != 1 || seen[0].Old != 0 {
		t.Fatalf("unexpected changes: %+v", seen)
	}

	cancel()
	if err := m.SetValue("a", 2); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if len(seen) != 1 {
		t.Errorf("expected no notifications after cancel, got %d", len(seen))
	}
}

// A watcher may cancel itself from inside its own callback; the
// delivery loop must still reach every watcher registered at the time
// of the change.
func TestWatchCancelInsideCallback(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("a", 1, WithPolicy(Eager))})

	var first, second int
	var cancelFirst func()
	cancelFirst = m.Watch(func(Change) {
		first++
		cancelFirst()
	})
	m.Watch(func(Change) { second++ })

	if err := m.SetValue("a", 2); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if first != 1 || second != 1 {
		t.Fatalf("first fired %d times, second %d, want 1 and 1", first, second)
	}

	if err := m.SetValue("a", 3); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if first != 1 {
		t.Errorf("cancelled watcher fired again")
	}
	if second != 2 {
		t.Errorf("surviving watcher fired %d times, want 2", second)
	}
}
