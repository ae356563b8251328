// Package dom - Dominators, dominator trees and dominance frontiers
// Design: Iterative set-based dominators; idom derived algebraically from
// the verified sets, never from a traversal order.
package dom

import (
	"fmt"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// Sets holds Dom(n) for every node. Unreachable nodes have a nil set.
type Sets []cfg.Set

// Compute runs the classic iterative dominator fixpoint
func Compute(g *cfg.Graph) (Sets, error) {
	n := g.Len()
	doms := make(Sets, n)
	if n == 0 {
		return doms, nil
	}

	reach := g.Reachable()
	order := g.ReversePostorder()
	for _, id := range order {
		if id == cfg.Entry {
			doms[id] = cfg.NewSet(cfg.Entry)
		} else {
			doms[id] = reach.Clone()
		}
	}

	// Every productive pass removes at least one element from some set.
	limit := n*n + 2
	for pass := 1; pass <= limit; pass++ {
		changed := false
		for _, id := range order {
			if id == cfg.Entry {
				continue
			}
			meet := doms.meetPreds(g, id)
			meet.Add(id)
			if !meet.Equal(doms[id]) {
				doms[id] = meet
				changed = true
			}
		}
		if !changed {
			logger.LogFixpoint("dominators", "", pass)
			return doms, nil
		}
	}

	return nil, &ir.Error{
		Kind: ir.ErrNonTerminatingFixpoint,
		Msg:  fmt.Sprintf("dominators still changing after %d passes over %d nodes", limit, n),
	}
}

// meetPreds intersects the sets of id's reachable predecessors
func (s Sets) meetPreds(g *cfg.Graph, id int) cfg.Set {
	var meet cfg.Set
	for _, p := range g.Preds(id) {
		if s[p] == nil {
			continue
		}
		if meet == nil {
			meet = s[p].Clone()
		} else {
			meet = meet.Intersect(s[p])
		}
	}
	if meet == nil {
		meet = make(cfg.Set)
	}
	return meet
}

// Dominates reports whether a dominates b
func (s Sets) Dominates(a, b int) bool {
	return s[b] != nil && s[b].Has(a)
}

// StrictlyDominates reports whether a dominates b and a != b
func (s Sets) StrictlyDominates(a, b int) bool {
	return a != b && s.Dominates(a, b)
}

// Reachable reports whether id has a dominator set
func (s Sets) Reachable(id int) bool {
	return s[id] != nil
}
