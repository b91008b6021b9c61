// Package traverse provides small generic graph-search primitives:
// a depth-first walk with pre/post visit hooks and back-edge reporting,
// and a priority-first (best-first) search over a dynamically grown
// frontier.
//
// The primitives are deliberately unopinionated about the node type and
// edge representation; callers supply an edge function and hooks. The
// property engine uses DepthFirst for tier assignment and cycle
// rejection, and PriorityFirst for tier-ordered change propagation.
package traverse
