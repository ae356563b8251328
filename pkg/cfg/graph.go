package cfg

import (
	"fmt"

	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// Entry is the id of the function's entry node
const Entry = 0

// Graph is the control flow graph of one function.
// Invariant: v ∈ Succs(u) ⟺ u ∈ Preds(v).
type Graph struct {
	blocks []*Block
	names  []string
	ids    map[string]int
	succs  []Set
	preds  []Set
}

// FromFunction forms blocks from fn's body and builds their graph
func FromFunction(fn *ir.Function) (*Graph, error) {
	g, err := Build(FormBlocks(fn.Instrs))
	if err != nil {
		return nil, ir.WithFunc(err, fn.Name)
	}
	return g, nil
}

// Build derives node names and edges for blocks in program order
func Build(blocks []*Block) (*Graph, error) {
	n := len(blocks)
	g := &Graph{
		blocks: blocks,
		names:  make([]string, n),
		ids:    make(map[string]int, n),
		succs:  make([]Set, n),
		preds:  make([]Set, n),
	}

	for i, b := range blocks {
		if l := b.Label(); l != "" {
			if _, dup := g.ids[l]; dup {
				return nil, ir.Malformed(l, l, "duplicate block label")
			}
			g.ids[l] = i
			g.names[i] = l
		}
		g.succs[i] = make(Set)
		g.preds[i] = make(Set)
	}
	for i := range blocks {
		if g.names[i] == "" {
			g.names[i] = g.synthesizeName(i)
			g.ids[g.names[i]] = i
		}
	}

	for i, b := range blocks {
		targets, err := g.successors(i, b)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			g.succs[i].Add(t)
			g.preds[t].Add(i)
		}
	}

	logger.Debug("Built control flow graph", "blocks", n)
	return g, nil
}

func (g *Graph) synthesizeName(i int) string {
	name := fmt.Sprintf("b%d", i)
	for k := 1; ; k++ {
		if _, taken := g.ids[name]; !taken {
			return name
		}
		name = fmt.Sprintf("b%d.%d", i, k)
	}
}

func (g *Graph) successors(i int, b *Block) ([]int, error) {
	term := b.Terminator()
	if term == nil {
		if i+1 < len(g.blocks) {
			return []int{i + 1}, nil
		}
		return nil, nil
	}

	switch term.Op {
	case ir.OpRet:
		return nil, nil
	case ir.OpJmp:
		if len(term.Labels) != 1 {
			return nil, ir.Malformed(g.names[i], "", "jmp needs 1 target, has %d", len(term.Labels))
		}
	case ir.OpBr:
		if len(term.Labels) != 2 {
			return nil, ir.Malformed(g.names[i], "", "br needs 2 targets, has %d", len(term.Labels))
		}
	}

	targets := make([]int, 0, len(term.Labels))
	for _, l := range term.Labels {
		id, ok := g.ids[l]
		if !ok || g.blocks[id].Label() != l {
			return nil, ir.Malformed(g.names[i], l, "branch target does not exist")
		}
		targets = append(targets, id)
	}
	return targets, nil
}

// Len returns the number of nodes
func (g *Graph) Len() int { return len(g.blocks) }

// Blocks returns the blocks in program order
func (g *Graph) Blocks() []*Block { return g.blocks }

func (g *Graph) Block(id int) *Block { return g.blocks[id] }

// Name returns the block's label, or its synthesized name
func (g *Graph) Name(id int) string { return g.names[id] }

// ID resolves a block name
func (g *Graph) ID(name string) (int, bool) {
	id, ok := g.ids[name]
	return id, ok
}

// Succs returns the successor ids in ascending order
func (g *Graph) Succs(id int) []int { return g.succs[id].Sorted() }

// Preds returns the predecessor ids in ascending order
func (g *Graph) Preds(id int) []int { return g.preds[id].Sorted() }

// SuccSet and PredSet expose the adjacency sets; callers must not modify them
func (g *Graph) SuccSet(id int) Set { return g.succs[id] }
func (g *Graph) PredSet(id int) Set { return g.preds[id] }

// Reachable returns the ids reachable from the entry node
func (g *Graph) Reachable() Set {
	seen := make(Set)
	if g.Len() == 0 {
		return seen
	}
	stack := []int{Entry}
	seen.Add(Entry)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for s := range g.succs[id] {
			if seen.Add(s) {
				stack = append(stack, s)
			}
		}
	}
	return seen
}

// ReversePostorder lists reachable nodes so that, ignoring back edges,
// every node follows its predecessors
func (g *Graph) ReversePostorder() []int {
	if g.Len() == 0 {
		return nil
	}
	seen := make(Set)
	post := make([]int, 0, g.Len())

	var visit func(id int)
	visit = func(id int) {
		seen.Add(id)
		for _, s := range g.Succs(id) {
			if !seen.Has(s) {
				visit(s)
			}
		}
		post = append(post, id)
	}
	visit(Entry)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// Instructions flattens the blocks back into one instruction list.
// Unlabeled blocks that a phi names as a predecessor get an explicit label.
func (g *Graph) Instructions() []*ir.Instruction {
	named := make(map[string]bool)
	for _, b := range g.blocks {
		for _, phi := range b.Phis() {
			for _, l := range phi.Labels {
				named[l] = true
			}
		}
	}

	var out []*ir.Instruction
	for i, b := range g.blocks {
		if b.Label() == "" && named[g.names[i]] {
			out = append(out, &ir.Instruction{Label: g.names[i]})
		}
		out = append(out, b.Instrs...)
	}
	return out
}
