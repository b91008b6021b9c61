package prop

import (
	"testing"
)

func TestTiersChain(t *testing.T) {
	var runs []string
	m := mustManager(t, []*Property{
		NewValue("a", 0),
		New("b", chained("b", "a", &runs), DependsOn("a")),
		New("c", chained("c", "b", &runs), DependsOn("b")),
	})

	want := map[string]int{"a": 0, "b": 1, "c": 2}
	for name, wantTier := range want {
		got, err := m.Tier(name)
		if err != nil {
			t.Fatalf("Tier(%q): %v", name, err)
		}
		if got != wantTier {
			t.Errorf("tier(%q) = %d, want %d", name, got, wantTier)
		}
	}

	// tier(consumer) > tier(producer) for every edge.
	for _, name := range m.Names() {
		ct, _ := m.Tier(name)
		pres, _ := m.Prerequisites(name)
		for _, pre := range pres {
			pt, _ := m.Tier(pre)
			if ct <= pt {
				t.Errorf("edge %q -> %q violates tier order: %d <= %d", name, pre, ct, pt)
			}
		}
	}
}

func TestTiersDiamond(t *testing.T) {
	sum := func(self *Property, m *Manager) (any, error) {
		b, err := ValueAs[int](m, "b")
		if err != nil {
			return nil, err
		}
		d, err := ValueAs[int](m, "d")
		if err != nil {
			return nil, err
		}
		return b + d + 1, nil
	}
	var runs []string
	m := mustManager(t, []*Property{
		NewValue("a", 0),
		New("b", chained("b", "a", &runs), DependsOn("a")),
		New("d", chained("d", "a", &runs), DependsOn("a")),
		New("c", sum, DependsOn("b", "d")),
	})

	for name, want := range map[string]int{"a": 0, "b": 1, "d": 1, "c": 2} {
		if got, _ := m.Tier(name); got != want {
			t.Errorf("tier(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestPolicyPromotionFixedPoint(t *testing.T) {
	var runs []string
	m := mustManager(t, []*Property{
		NewValue("a", 0), // lazy
		New("b", chained("b", "a", &runs), DependsOn("a")), // lazy
		New("c", chained("c", "b", &runs), DependsOn("b"), WithPolicy(Eager)),
	})

	// Eagerness must reach the fixed point: c's prerequisite b becomes
	// Eager, which in turn promotes b's prerequisite a.
	for _, name := range []string{"a", "b", "c"} {
		p, err := m.PolicyOf(name)
		if err != nil {
			t.Fatalf("PolicyOf(%q): %v", name, err)
		}
		if p != Eager {
			t.Errorf("expected %q to be promoted to eager, got %v", name, p)
		}
	}
}

func TestLazyChainStaysLazy(t *testing.T) {
	var runs []string
	m := mustManager(t, []*Property{
		NewValue("a", 0),
		New("b", chained("b", "a", &runs), DependsOn("a")),
	})

	for _, name := range []string{"a", "b"} {
		if p, _ := m.PolicyOf(name); p != Lazy {
			t.Errorf("expected %q to stay lazy, got %v", name, p)
		}
	}
	if deps, _ := m.Dependents("a"); len(deps) != 0 {
		t.Errorf("lazy consumers must not join the active set, got %v", deps)
	}
}

func TestActiveDependencySets(t *testing.T) {
	var runs []string
	m := mustManager(t, []*Property{
		NewValue("a", 0),
		New("b", chained("b", "a", &runs), DependsOn("a"), WithPolicy(Eager)),
		New("c", chained("c", "a", &runs), DependsOn("a")), // lazy
	})

	deps, err := m.Dependents("a")
	if err != nil {
		t.Fatalf("Dependents: %v", err)
	}
	if len(deps) != 1 || deps[0] != "b" {
		t.Errorf("active set of a = %v, want [b]", deps)
	}
}

func TestTrackedDiscovery(t *testing.T) {
	double := func(src string) ReadFunc {
		return func(self *Property, m *Manager) (any, error) {
			v, err := ValueAs[int](m, src)
			if err != nil {
				return nil, err
			}
			return v * 2, nil
		}
	}
	m := mustManager(t, []*Property{
		NewValue("a", 2),
		New("b", double("a")),
		New("c", double("b")),
	})

	// Reads made while computing b must not leak into c's edges.
	pres, err := m.Prerequisites("c")
	if err != nil {
		t.Fatalf("Prerequisites: %v", err)
	}
	if len(pres) != 1 || pres[0] != "b" {
		t.Errorf("prerequisites of c = %v, want [b]", pres)
	}
	if pres, _ := m.Prerequisites("b"); len(pres) != 1 || pres[0] != "a" {
		t.Errorf("prerequisites of b = %v, want [a]", pres)
	}
	if pres, _ := m.Prerequisites("a"); len(pres) != 0 {
		t.Errorf("value property must have no prerequisites, got %v", pres)
	}

	if got := mustInt(t, m, "c"); got != 8 {
		t.Errorf("c = %d, want 8", got)
	}
	if tier, _ := m.Tier("c"); tier != 2 {
		t.Errorf("tier(c) = %d, want 2", tier)
	}
}

func TestDiscoveryDeduplicatesReads(t *testing.T) {
	m := mustManager(t, []*Property{
		NewValue("a", 3),
		New("b", func(self *Property, m *Manager) (any, error) {
			x, _ := ValueAs[int](m, "a")
			y, _ := ValueAs[int](m, "a")
			return x + y, nil
		}),
	})
	if pres, _ := m.Prerequisites("b"); len(pres) != 1 {
		t.Errorf("duplicate reads must collapse to one edge, got %v", pres)
	}
}
