// Package window computes the visible slice of a virtually scrolled
// list: given a scroll offset, item geometry, and list length, it
// derives which logical indices belong in the rendered window and where
// that window sits. The arithmetic is declared as properties on the
// prop engine, so derived values recompute exactly when their inputs
// change and downstream consumers can watch them.
package window

import (
	"fmt"

	"github.com/scrollkit-dev/scrollkit/pkg/prop"
)

// Property names of the window graph. Leaves are written by the host;
// everything else is derived.
const (
	PropScrollTop      = "scrollTop"
	PropItemHeight     = "itemHeight"
	PropViewportHeight = "viewportHeight"
	PropItemCount      = "itemCount"
	PropOverscan       = "overscan"

	PropFirstVisible = "firstVisible"
	PropLastVisible  = "lastVisible"
	PropRange        = "range"
	PropOffsetY      = "offsetY"
)

// Range is a half-open index window [Start, End) into the logical list,
// overscan included.
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range.
func (r Range) Len() int { return r.End - r.Start }

// Config holds the window's initial geometry.
type Config struct {
	// ItemHeight is the fixed pixel height of one item. Must be > 0.
	ItemHeight int

	// ViewportHeight is the visible pixel height of the scroll area.
	ViewportHeight int

	// ItemCount is the logical list length.
	ItemCount int

	// Overscan is how many extra items to keep rendered on each side
	// of the visible span, so small scrolls reuse existing rows.
	Overscan int
}

func (c Config) validate() error {
	if c.ItemHeight <= 0 {
		return fmt.Errorf("window: item height must be positive, got %d", c.ItemHeight)
	}
	if c.ViewportHeight < 0 || c.ItemCount < 0 || c.Overscan < 0 {
		return fmt.Errorf("window: negative geometry: viewport=%d items=%d overscan=%d",
			c.ViewportHeight, c.ItemCount, c.Overscan)
	}
	return nil
}

// Window is a typed facade over the window property graph.
type Window struct {
	m *prop.Manager
}

// New builds the window graph for the given geometry. The derived
// properties are eager: every scroll or resize settles the whole window
// before the write returns.
func New(cfg Config, opts ...prop.ManagerOption) (*Window, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	props := []*prop.Property{
		prop.NewValue(PropScrollTop, 0, prop.WithPolicy(prop.Eager)),
		prop.NewValue(PropItemHeight, cfg.ItemHeight, prop.WithPolicy(prop.Eager)),
		prop.NewValue(PropViewportHeight, cfg.ViewportHeight, prop.WithPolicy(prop.Eager)),
		prop.NewValue(PropItemCount, cfg.ItemCount, prop.WithPolicy(prop.Eager)),
		prop.NewValue(PropOverscan, cfg.Overscan, prop.WithPolicy(prop.Eager)),

		prop.New(PropFirstVisible, readFirstVisible,
			prop.DependsOn(PropScrollTop, PropItemHeight),
			prop.WithPolicy(prop.Eager)),
		prop.New(PropLastVisible, readLastVisible,
			prop.DependsOn(PropScrollTop, PropItemHeight, PropViewportHeight, PropItemCount),
			prop.WithPolicy(prop.Eager)),
		prop.New(PropRange, readRange,
			prop.DependsOn(PropFirstVisible, PropLastVisible, PropOverscan, PropItemCount),
			prop.WithPolicy(prop.Eager)),
		prop.New(PropOffsetY, readOffsetY,
			prop.DependsOn(PropRange, PropItemHeight),
			prop.WithPolicy(prop.Eager)),
	}

	m, err := prop.NewManager(props, opts...)
	if err != nil {
		return nil, err
	}
	return &Window{m: m}, nil
}

// Manager exposes the underlying property graph, e.g. for the
// inspection server or for binding onto a host struct.
func (w *Window) Manager() *prop.Manager { return w.m }

// SetScrollTop records a new scroll offset and settles the window.
func (w *Window) SetScrollTop(px int) error {
	if px < 0 {
		px = 0
	}
	return w.m.SetValue(PropScrollTop, px)
}

// SetItemCount records a new logical list length and settles the
// window.
func (w *Window) SetItemCount(n int) error {
	if n < 0 {
		n = 0
	}
	return w.m.SetValue(PropItemCount, n)
}

// SetViewportHeight records a resized viewport and settles the window.
func (w *Window) SetViewportHeight(px int) error {
	if px < 0 {
		px = 0
	}
	return w.m.SetValue(PropViewportHeight, px)
}

// ScrollTop returns the current scroll offset.
func (w *Window) ScrollTop() (int, error) {
	return prop.ValueAs[int](w.m, PropScrollTop)
}

// FirstVisible returns the index of the first item intersecting the
// viewport.
func (w *Window) FirstVisible() (int, error) {
	return prop.ValueAs[int](w.m, PropFirstVisible)
}

// LastVisible returns the index of the last item intersecting the
// viewport, or -1 for an empty list.
func (w *Window) LastVisible() (int, error) {
	return prop.ValueAs[int](w.m, PropLastVisible)
}

// Visible returns the render window, overscan included.
func (w *Window) Visible() (Range, error) {
	return prop.ValueAs[Range](w.m, PropRange)
}

// OffsetY returns the pixel offset of the render window's first item
// from the top of the scroll content.
func (w *Window) OffsetY() (int, error) {
	return prop.ValueAs[int](w.m, PropOffsetY)
}

func readFirstVisible(self *prop.Property, m *prop.Manager) (any, error) {
	top, err := prop.ValueAs[int](m, PropScrollTop)
	if err != nil {
		return nil, err
	}
	h, err := prop.ValueAs[int](m, PropItemHeight)
	if err != nil {
		return nil, err
	}
	if h <= 0 {
		return nil, fmt.Errorf("window: item height must be positive, got %d", h)
	}
	installGuard(self, m, PropScrollTop, PropItemHeight)
	return top / h, nil
}

func readLastVisible(self *prop.Property, m *prop.Manager) (any, error) {
	top, err := prop.ValueAs[int](m, PropScrollTop)
	if err != nil {
		return nil, err
	}
	h, err := prop.ValueAs[int](m, PropItemHeight)
	if err != nil {
		return nil, err
	}
	vh, err := prop.ValueAs[int](m, PropViewportHeight)
	if err != nil {
		return nil, err
	}
	count, err := prop.ValueAs[int](m, PropItemCount)
	if err != nil {
		return nil, err
	}
	if h <= 0 {
		return nil, fmt.Errorf("window: item height must be positive, got %d", h)
	}
	installGuard(self, m, PropScrollTop, PropItemHeight, PropViewportHeight, PropItemCount)

	if count == 0 {
		return -1, nil
	}
	span := vh
	if span <= 0 {
		// Degenerate viewport: the row under the offset still counts.
		span = 1
	}
	last := (top + span - 1) / h
	if last > count-1 {
		last = count - 1
	}
	return last, nil
}

func readRange(self *prop.Property, m *prop.Manager) (any, error) {
	first, err := prop.ValueAs[int](m, PropFirstVisible)
	if err != nil {
		return nil, err
	}
	last, err := prop.ValueAs[int](m, PropLastVisible)
	if err != nil {
		return nil, err
	}
	over, err := prop.ValueAs[int](m, PropOverscan)
	if err != nil {
		return nil, err
	}
	count, err := prop.ValueAs[int](m, PropItemCount)
	if err != nil {
		return nil, err
	}
	installGuard(self, m, PropFirstVisible, PropLastVisible, PropOverscan, PropItemCount)

	if count == 0 || last < 0 {
		return Range{}, nil
	}
	start := first - over
	if start < 0 {
		start = 0
	}
	end := last + 1 + over
	if end > count {
		end = count
	}
	if start > end {
		start = end
	}
	return Range{Start: start, End: end}, nil
}

func readOffsetY(self *prop.Property, m *prop.Manager) (any, error) {
	r, err := prop.ValueAs[Range](m, PropRange)
	if err != nil {
		return nil, err
	}
	h, err := prop.ValueAs[int](m, PropItemHeight)
	if err != nil {
		return nil, err
	}
	installGuard(self, m, PropRange, PropItemHeight)
	return r.Start * h, nil
}

// installGuard gives the reader a version-guard reuse predicate over
// the producers it just read, so re-reads inside the same propagation
// pass return the cached value instead of recomputing.
func installGuard(self *prop.Property, m *prop.Manager, producers ...string) {
	versions := make(map[string]uint64, len(producers))
	for _, name := range producers {
		v, _ := m.Version(name)
		versions[name] = v
	}
	self.SetReuse(func(self *prop.Property, m *prop.Manager) bool {
		for name, ver := range versions {
			if !m.IsCurrent(name, ver) {
				return false
			}
		}
		return true
	})
}
