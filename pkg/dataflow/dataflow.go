// Package dataflow - Generic worklist dataflow solver
// Design: One engine parameterized by direction, merge and transfer. The fixpoint
// does not depend on pop order; Order only changes how many steps it takes.
package dataflow

import (
	"fmt"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// Direction of propagation
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Analysis describes one dataflow problem over facts of type F.
// Facts must only grow, and Height bounds how often one fact can grow.
type Analysis[F any] struct {
	Name      string
	Direction Direction
	Merge     func(facts []F) F
	Transfer  func(b *cfg.Block, in F) F
	Equal     func(a, b F) bool
	Height    int
}

// Result holds the fixpoint: In is at block entry, Out at block exit,
// regardless of direction
type Result[F any] struct {
	In         []F
	Out        []F
	Iterations int
}

// Options tune the solver
type Options struct {
	Order         Order
	Seed          int64
	MaxIterations int
}

// Solve runs a to a fixpoint over g
func Solve[F any](g *cfg.Graph, a Analysis[F], opts Options) (*Result[F], error) {
	n := g.Len()
	before := make([]F, n) // merge side
	after := make([]F, n)  // transfer side
	known := make([]bool, n)

	sources, sinks := g.PredSet, g.SuccSet
	if a.Direction == Backward {
		sources, sinks = g.SuccSet, g.PredSet
	}

	w := newWorklist(opts.Order, opts.Seed, n)
	for _, id := range initialOrder(g, a.Direction) {
		w.push(id)
	}

	limit := opts.MaxIterations
	if limit <= 0 {
		limit = n + n*n*(a.Height+2)
	}

	iter := 0
	for !w.empty() {
		if iter >= limit {
			return nil, &ir.Error{
				Kind: ir.ErrNonTerminatingFixpoint,
				Msg:  fmt.Sprintf("%s analysis exceeded %d worklist steps", a.Name, limit),
			}
		}
		iter++

		id := w.pop()
		inputs := make([]F, 0, sources(id).Len())
		for _, s := range sources(id).Sorted() {
			if known[s] {
				inputs = append(inputs, after[s])
			}
		}
		before[id] = a.Merge(inputs)

		out := a.Transfer(g.Block(id), before[id])
		if known[id] && a.Equal(out, after[id]) {
			continue
		}
		after[id] = out
		known[id] = true
		for _, t := range sinks(id).Sorted() {
			w.push(t)
		}
	}

	logger.LogFixpoint(a.Name, "", iter)
	if a.Direction == Backward {
		return &Result[F]{In: after, Out: before, Iterations: iter}, nil
	}
	return &Result[F]{In: before, Out: after, Iterations: iter}, nil
}

// initialOrder seeds the worklist with every block, reachable ones first
// in the order that converges fastest for the direction
func initialOrder(g *cfg.Graph, dir Direction) []int {
	rpo := g.ReversePostorder()
	if dir == Backward {
		for i, j := 0, len(rpo)-1; i < j; i, j = i+1, j-1 {
			rpo[i], rpo[j] = rpo[j], rpo[i]
		}
	}

	seen := cfg.NewSet(rpo...)
	for id := 0; id < g.Len(); id++ {
		if !seen.Has(id) {
			rpo = append(rpo, id)
		}
	}
	return rpo
}
