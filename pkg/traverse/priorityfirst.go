package traverse

import "container/heap"

// PriorityFirst runs a best-first search over a dynamically grown
// frontier. It repeatedly pops the unvisited node with the smallest
// priority, marks it visited, and calls visit on it. The visit callback
// receives a push function for adding newly discovered nodes to the
// frontier; pushing an already-visited node is a no-op, so each node is
// visited at most once per search even when it is reachable through
// several pushes.
//
// A visit error aborts the search immediately and is returned; the
// remaining frontier is discarded.
func PriorityFirst[N comparable](seeds []N, priority func(N) int, visit func(n N, push func(N)) error) error {
	h := &nodeHeap[N]{priority: priority}
	visited := make(map[N]bool)

	push := func(n N) {
		if visited[n] {
			return
		}
		heap.Push(h, n)
	}
	for _, s := range seeds {
		push(s)
	}

	for h.Len() > 0 {
		n := heap.Pop(h).(N)
		if visited[n] {
			// Duplicate frontier entry; already handled.
			continue
		}
		visited[n] = true
		if err := visit(n, push); err != nil {
			return err
		}
	}
	return nil
}

// nodeHeap is a min-heap of nodes ordered by the priority function.
type nodeHeap[N comparable] struct {
	nodes    []N
	priority func(N) int
}

func (h *nodeHeap[N]) Len() int { return len(h.nodes) }

func (h *nodeHeap[N]) Less(i, j int) bool {
	return h.priority(h.nodes[i]) < h.priority(h.nodes[j])
}

func (h *nodeHeap[N]) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
}

func (h *nodeHeap[N]) Push(x any) {
	h.nodes = append(h.nodes, x.(N))
}

func (h *nodeHeap[N]) Pop() any {
	old := h.nodes
	n := old[len(old)-1]
	h.nodes = old[:len(old)-1]
	return n
}
