package dom

import (
	"github.com/oleiade/lane"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
)

// None marks a node without an immediate dominator (entry, unreachable)
const None = -1

// Tree is the dominator tree: idom map plus its inverse
type Tree struct {
	IDom     []int
	Children [][]int
}

// BuildTree picks, for every node, the strict dominator with the
// largest dominator set. Strict dominators form a chain, so it is unique.
func BuildTree(doms Sets) *Tree {
	n := len(doms)
	t := &Tree{
		IDom:     make([]int, n),
		Children: make([][]int, n),
	}

	for id := 0; id < n; id++ {
		t.IDom[id] = None
		if id == cfg.Entry || doms[id] == nil {
			continue
		}

		best := None
		for _, d := range doms[id].Sorted() {
			if d == id {
				continue
			}
			if best == None || doms[d].Len() > doms[best].Len() {
				best = d
			}
		}
		if best != None {
			t.IDom[id] = best
			t.Children[best] = append(t.Children[best], id)
		}
	}
	return t
}

// Len returns the number of nodes the tree was built over
func (t *Tree) Len() int { return len(t.IDom) }

// BreadthFirst lists tree nodes level by level from the entry
func (t *Tree) BreadthFirst() []int {
	if t.Len() == 0 {
		return nil
	}

	order := make([]int, 0, t.Len())
	q := lane.NewQueue()
	for q.Enqueue(cfg.Entry); !q.Empty(); {
		id := q.Dequeue().(int)
		order = append(order, id)
		for _, c := range t.Children[id] {
			q.Enqueue(c)
		}
	}
	return order
}

// Depth returns the number of idom steps from id to the entry
func (t *Tree) Depth(id int) int {
	d := 0
	for t.IDom[id] != None {
		id = t.IDom[id]
		d++
	}
	return d
}
