package prop

import (
	"errors"
	"testing"
)

func TestAccessor(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("count", 2)})

	acc, err := m.Accessor("count")
	if err != nil {
		t.Fatalf("Accessor: %v", err)
	}

	v, err := acc.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 2 {
		t.Errorf("expected 2, got %v", v)
	}

	ver := acc.Version()
	if !acc.IsCurrent(ver) {
		t.Error("expected captured version to be current")
	}

	if err := acc.Set(7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := acc.Get(); v != 7 {
		t.Errorf("expected 7, got %v", v)
	}
	if acc.IsCurrent(ver) {
		t.Error("expected captured version to be stale after Set")
	}

	if _, err := m.Accessor("nope"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
}

func TestBindAllPopulatesAndTracks(t *testing.T) {
	var runs []string
	m := mustManager(t, []*Property{
		NewValue("count", 2, WithPolicy(Eager)),
		New("total", func(self *Property, m *Manager) (any, error) {
			runs = append(runs, "total")
			v, err := ValueAs[int](m, "count")
			if err != nil {
				return nil, err
			}
			ver, _ := m.Version("count")
			self.SetReuse(func(self *Property, m *Manager) bool {
				return m.IsCurrent("count", ver)
			})
			return v * 10, nil
		}, DependsOn("count"), WithPolicy(Eager)),
	})

	var view struct {
		Count   int    `prop:"count"`
		Total   int    `prop:"total"`
		Ignored string // untagged fields are left alone
	}
	view.Ignored = "keep"

	if err := m.BindAll(&view); err != nil {
		t.Fatalf("BindAll: %v", err)
	}
	if view.Count != 2 || view.Total != 20 {
		t.Fatalf("expected populated view {2 20}, got {%d %d}", view.Count, view.Total)
	}
	if view.Ignored != "keep" {
		t.Errorf("untagged field was touched: %q", view.Ignored)
	}

	if err := m.SetValue("count", 3); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if view.Count != 3 {
		t.Errorf("bound leaf field not updated, got %d", view.Count)
	}
	if view.Total != 30 {
		t.Errorf("bound derived field not updated, got %d", view.Total)
	}
}

func TestBindAllErrors(t *testing.T) {
	m := mustManager(t, []*Property{NewValue("count", 2)})

	if err := m.BindAll(struct{}{}); err == nil {
		t.Error("expected error for non-pointer target")
	}

	var unknown struct {
		X int `prop:"missing"`
	}
	if err := m.BindAll(&unknown); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("expected ErrUnknownProperty, got %v", err)
	}

	var mismatch struct {
		X string `prop:"count"`
	}
	if err := m.BindAll(&mismatch); err == nil {
		t.Error("expected error for type mismatch")
	}

	var unexported struct {
		x int `prop:"count"`
	}
	if err := m.BindAll(&unexported); err == nil {
		t.Error("expected error for unexported tagged field")
	}
	_ = unexported.x
}
