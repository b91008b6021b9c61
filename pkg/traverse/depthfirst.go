package traverse

// DepthFirstOpts configures a DepthFirst walk. All hooks are optional.
type DepthFirstOpts[N comparable] struct {
	// PreVisit runs when a node is first entered, before its edges are
	// explored. Returning false skips the node's subtree entirely: the
	// node is not marked explored, its edges are not followed, and
	// PostVisit does not run for it.
	PreVisit func(n N) bool

	// PostVisit runs after a node's entire subtree has been explored.
	// By this point PostVisit has already run for every node reachable
	// from n, which makes it the natural place for bottom-up folds
	// such as depth computation.
	PostVisit func(n N)

	// OnBackEdge is invoked for an edge whose target is still on the
	// active walk stack, i.e. an edge that closes a cycle. Returning a
	// non-nil error aborts the walk.
	OnBackEdge func(from, to N) error

	// Explored is a shared visited set. Nodes already present are not
	// re-entered, and nodes visited by this walk are added to it.
	// Passing the same map across several DepthFirst calls lets
	// multi-root walks explore each subtree once. Allocated internally
	// when nil.
	Explored map[N]bool
}

// DepthFirst walks the graph reachable from roots along the edges
// function, depth first. Each node is entered at most once per
// Explored set.
func DepthFirst[N comparable](roots []N, edges func(N) []N, opts DepthFirstOpts[N]) error {
	explored := opts.Explored
	if explored == nil {
		explored = make(map[N]bool)
	}
	onStack := make(map[N]bool)

	var walk func(n N) error
	walk = func(n N) error {
		if explored[n] {
			return nil
		}
		if opts.PreVisit != nil && !opts.PreVisit(n) {
			return nil
		}
		explored[n] = true
		onStack[n] = true
		for _, next := range edges(n) {
			if onStack[next] {
				if opts.OnBackEdge != nil {
					if err := opts.OnBackEdge(n, next); err != nil {
						return err
					}
				}
				continue
			}
			if err := walk(next); err != nil {
				return err
			}
		}
		delete(onStack, n)
		if opts.PostVisit != nil {
			opts.PostVisit(n)
		}
		return nil
	}

	for _, r := range roots {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}
