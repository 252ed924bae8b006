package graph

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrCycle is returned by Sort when the graph cannot be linearized.
var ErrCycle = errors.New("graph: cycle detected, topology unchanged")

// snapshot is the immutable view the realtime thread reads: the node arena
// plus the cached schedule derived from it. Publishing nodes and schedule
// together means a single atomic load gives the render loop a fully
// consistent view for the whole callback (spec §5's ordering guarantee) —
// this is strategy (a) of spec §5, a double-buffered snapshot published
// with one pointer swap between device callbacks.
type snapshot struct {
	nodes  []Node // nil entry = empty slot; never mutated in place once published
	order  []int
	sinked []int
}

// Graph owns nodes by stable slot index and caches a topological ordering
// plus the sink set for the renderer. All mutation methods are meant to be
// called from a single control thread; the realtime thread only ever reads
// the published snapshot and the per-node atomic fields, never the mutex.
type Graph struct {
	mu       sync.Mutex
	nodes    []Node // control thread's working copy; copied-on-write into snapshots
	freeIDs  []int
	parents  [][]int
	children [][]int

	snap atomic.Pointer[snapshot]
}

// New returns an empty graph with an empty published snapshot.
func New() *Graph {
	g := &Graph{}
	g.snap.Store(&snapshot{})
	return g
}

// publishNodes copies the current working node slice and swaps it into the
// snapshot, carrying over the previous schedule (order/sinked) unchanged —
// used when a node is added or removed without requiring an immediate
// re-sort (the renderer only ever indexes into the cached order, so a node
// invisible to that order is simply never reached until the next Sort).
// Must be called with g.mu held.
func (g *Graph) publishNodes() {
	cp := make([]Node, len(g.nodes))
	copy(cp, g.nodes)
	prev := g.snap.Load()
	g.snap.Store(&snapshot{nodes: cp, order: prev.order, sinked: prev.sinked})
}

// AddNode places node into a free slot (reusing one if available) or
// extends the arena by one. It does not alter the cached topological
// order — callers must call Sort before the next render that needs the
// node visible (spec §4.1).
func (g *Graph) AddNode(node Node) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id int
	if n := len(g.freeIDs); n > 0 {
		id = g.freeIDs[n-1]
		g.freeIDs = g.freeIDs[:n-1]
		g.nodes[id] = node
	} else {
		g.nodes = append(g.nodes, node)
		g.parents = append(g.parents, nil)
		g.children = append(g.children, nil)
		id = len(g.nodes) - 1
	}
	g.publishNodes()
	return id
}

// RemoveNode empties the slot, strips every incident edge symmetrically,
// re-queues the slot for reuse, and re-sorts. Removing a node cannot create
// a cycle; if an earlier AddEdge left a cycle among the remaining nodes,
// the re-sort returns ErrCycle, RemoveNode discards that error, and the
// previously published snapshot stays in place.
func (g *Graph) RemoveNode(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeNodeLocked(id)
	g.sortLocked()
}

func (g *Graph) removeNodeLocked(id int) {
	if id < 0 || id >= len(g.nodes) || g.nodes[id] == nil {
		return
	}
	g.nodes[id] = nil

	for _, p := range g.parents[id] {
		g.children[p] = removeValue(g.children[p], id)
	}
	g.parents[id] = nil

	for _, c := range g.children[id] {
		g.parents[c] = removeValue(g.parents[c], id)
	}
	g.children[id] = nil

	g.freeIDs = append(g.freeIDs, id)
}

func removeValue(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// AddEdge appends an edge parent -> child. Duplicate edges are accepted;
// removal (via RemoveNode) strips all occurrences symmetrically, so
// duplicates never leave a dangling reference.
func (g *Graph) AddEdge(parent, child int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children[parent] = append(g.children[parent], child)
	g.parents[child] = append(g.parents[child], parent)
}

// Sort runs Kahn's algorithm over live nodes and publishes the result. On
// success the new order (and a refreshed sink set, plus the current node
// arena) become visible to the realtime thread via a single atomic pointer
// swap. On a cycle it returns ErrCycle and leaves the previously published
// snapshot untouched.
func (g *Graph) Sort() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sortLocked()
}

func (g *Graph) sortLocked() error {
	n := len(g.nodes)
	inDegree := make([]int, n)
	live := 0
	for i := range g.nodes {
		if g.nodes[i] == nil {
			continue
		}
		live++
		inDegree[i] = len(g.parents[i])
	}

	// Seed with ascending indices so the result is deterministic.
	queue := make([]int, 0, live)
	for i := 0; i < n; i++ {
		if g.nodes[i] != nil && inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, live)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, c := range g.children[node] {
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) != live {
		return ErrCycle
	}

	sinked := make([]int, 0)
	for _, i := range order {
		if g.nodes[i].Sinked() {
			sinked = append(sinked, i)
		}
	}

	cp := make([]Node, len(g.nodes))
	copy(cp, g.nodes)
	g.snap.Store(&snapshot{nodes: cp, order: order, sinked: sinked})
	return nil
}

// Traverse invokes fn on each live node in the cached topological order.
// Safe to call from the realtime thread: it only reads the published
// snapshot, never locks and never touches g.mu.
func (g *Graph) Traverse(fn func(Node)) {
	s := g.snap.Load()
	for _, i := range s.order {
		if n := s.nodes[i]; n != nil {
			fn(n)
		}
	}
}

// MixSinks sums Out() over every currently-sinked node, skipping empty
// slots. Safe to call from the realtime thread.
func (g *Graph) MixSinks() float32 {
	s := g.snap.Load()
	var sum float32
	for _, i := range s.sinked {
		if n := s.nodes[i]; n != nil {
			sum += n.Out()
		}
	}
	return sum
}

// NodeAt returns the node stored at id, or nil if the slot is empty or out
// of range. Used by the script host to resolve handles.
func (g *Graph) NodeAt(id int) Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// SetSink marks id as contributing to the output mix and re-sorts so the
// renderer observes it. Returns an error if id is out of range or empty.
func (g *Graph) SetSink(id int) error {
	g.mu.Lock()
	if id < 0 || id >= len(g.nodes) || g.nodes[id] == nil {
		g.mu.Unlock()
		return errors.New("graph: invalid sink node")
	}
	g.nodes[id].SetSinked(true)
	g.mu.Unlock()
	return g.Sort()
}

// Clear removes every live node and empties the sink set — used by the file
// watcher on hot reload.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.nodes {
		g.removeNodeLocked(i)
	}
	g.snap.Store(&snapshot{})
}

// Len reports the current arena size (including empty slots), mostly useful
// for tests and bounds-checking callers.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}
