package scrollkit

import (
	"testing"
)

func TestRootFacade(t *testing.T) {
	total := New("total", func(self *Property, m *Manager) (any, error) {
		count, err := ValueAs[int](m, "count")
		if err != nil {
			return nil, err
		}
		return count * 10, nil
	}, DependsOn("count"), WithPolicy(Eager))

	m, err := NewManager([]*Property{
		NewValue("count", 3, WithPolicy(Eager)),
		total,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	var changes []Change
	m.Watch(func(c Change) { changes = append(changes, c) })

	if err := m.SetValue("count", 5); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	got, err := ValueAs[int](m, "total")
	if err != nil {
		t.Fatalf("ValueAs: %v", err)
	}
	if got != 50 {
		t.Errorf("total = %d, want 50", got)
	}
	if len(changes) != 2 {
		t.Errorf("expected count and total changes, got %d", len(changes))
	}
}
