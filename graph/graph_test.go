package graph

import "testing"

// fakeNode is a minimal Node used to exercise graph mechanics without
// pulling in the dsp package.
type fakeNode struct {
	Base
	updates int
}

func newFakeNode() *fakeNode {
	n := &fakeNode{Base: NewBase(PerVoice)}
	return n
}

func (n *fakeNode) Update() {
	n.updates++
	n.Publish(float32(n.updates))
}

func TestAddNodeReusesFreeSlotBeforeExtending(t *testing.T) {
	g := New()
	a := g.AddNode(newFakeNode())
	b := g.AddNode(newFakeNode())
	if a != 0 || b != 1 {
		t.Fatalf("got ids %d,%d want 0,1", a, b)
	}

	g.RemoveNode(a)
	c := g.AddNode(newFakeNode())
	if c != a {
		t.Fatalf("expected slot reuse: got %d want %d", c, a)
	}
	if g.Len() != 2 {
		t.Fatalf("expected arena to stay at 2 slots, got %d", g.Len())
	}
}

func TestSortProducesValidTopoOrder(t *testing.T) {
	g := New()
	ids := make([]int, 5)
	for i := range ids {
		ids[i] = g.AddNode(newFakeNode())
	}
	// chain: 0 -> 1 -> 2, and 3 -> 4
	g.AddEdge(ids[0], ids[1])
	g.AddEdge(ids[1], ids[2])
	g.AddEdge(ids[3], ids[4])
	if err := g.Sort(); err != nil {
		t.Fatalf("Sort: %v", err)
	}

	pos := map[int]int{}
	g.Traverse(func(n Node) {})
	s := g.snap.Load()
	for i, id := range s.order {
		pos[id] = i
	}
	if pos[ids[0]] >= pos[ids[1]] || pos[ids[1]] >= pos[ids[2]] {
		t.Fatalf("order violates chain dependency: %v", s.order)
	}
	if pos[ids[3]] >= pos[ids[4]] {
		t.Fatalf("order violates second chain: %v", s.order)
	}
	if len(s.order) != 5 {
		t.Fatalf("expected all 5 live nodes in order, got %d", len(s.order))
	}
}

func TestSortFailsOnCycleAndLeavesOrderUnchanged(t *testing.T) {
	g := New()
	ids := make([]int, 3)
	for i := range ids {
		ids[i] = g.AddNode(newFakeNode())
	}
	g.AddEdge(ids[0], ids[1])
	g.AddEdge(ids[1], ids[2])
	if err := g.Sort(); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	before := g.snap.Load()

	g.AddEdge(ids[2], ids[0]) // closes the cycle
	if err := g.Sort(); err != ErrCycle {
		t.Fatalf("Sort: got %v want ErrCycle", err)
	}
	after := g.snap.Load()
	if len(after.order) != len(before.order) {
		t.Fatalf("topoOrder mutated after failed sort: before=%v after=%v", before.order, after.order)
	}
}

func TestRemoveNodeClearsAdjacencyAndRendererTolerates(t *testing.T) {
	g := New()
	a := g.AddNode(newFakeNode())
	b := g.AddNode(newFakeNode())
	c := g.AddNode(newFakeNode())
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	if err := g.Sort(); err != nil {
		t.Fatalf("Sort: %v", err)
	}

	g.RemoveNode(b)

	visited := 0
	g.Traverse(func(n Node) { visited++ })
	if visited != 2 {
		t.Fatalf("expected 2 live nodes visited, got %d", visited)
	}

	// a subsequent addNode must reuse b's slot before extending.
	d := g.AddNode(newFakeNode())
	if d != b {
		t.Fatalf("expected reused slot %d, got %d", b, d)
	}
}

func TestMixSinksSkipsEmptyAndNonSinkedSlots(t *testing.T) {
	g := New()
	n1 := newFakeNode()
	n2 := newFakeNode()
	g.AddNode(n1)
	id2 := g.AddNode(n2)
	n1.SetSinked(true)
	if err := g.Sort(); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	g.Traverse(func(n Node) { n.Update() })
	if got := g.MixSinks(); got != n1.Out() {
		t.Fatalf("MixSinks = %v, want %v (only sinked node)", got, n1.Out())
	}

	g.RemoveNode(id2)
	if got := g.MixSinks(); got != n1.Out() {
		t.Fatalf("MixSinks after emptying slot %d = %v, want %v", id2, got, n1.Out())
	}
}

func TestSetSinkAddsToSinkedSetAndResorts(t *testing.T) {
	g := New()
	id := g.AddNode(newFakeNode())
	if err := g.Sort(); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if err := g.SetSink(id); err != nil {
		t.Fatalf("SetSink: %v", err)
	}
	s := g.snap.Load()
	if len(s.sinked) != 1 || s.sinked[0] != id {
		t.Fatalf("sinked = %v, want [%d]", s.sinked, id)
	}
}

func TestClearEmptiesGraph(t *testing.T) {
	g := New()
	g.AddNode(newFakeNode())
	g.AddNode(newFakeNode())
	g.Clear()
	visited := 0
	g.Traverse(func(n Node) { visited++ })
	if visited != 0 {
		t.Fatalf("expected no live nodes after Clear, got %d", visited)
	}
}
