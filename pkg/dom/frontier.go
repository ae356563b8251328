package dom

import (
	"fmt"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
)

// Frontier holds DF(d) for every node
type Frontier []cfg.Set

// Algorithm selects how dominance frontiers are computed
type Algorithm int

const (
	// Direct applies the definition to every (dominator, predecessor) pair
	Direct Algorithm = iota
	// Cooper walks the idom chain up from each predecessor of a join
	Cooper
)

func (a Algorithm) String() string {
	switch a {
	case Direct:
		return "direct"
	case Cooper:
		return "cooper"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm maps "direct" or "cooper" to an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "direct", "":
		return Direct, nil
	case "cooper":
		return Cooper, nil
	}
	return Direct, fmt.Errorf("unknown frontier algorithm %q", s)
}

// ComputeFrontier dispatches to the selected algorithm
func ComputeFrontier(alg Algorithm, g *cfg.Graph, doms Sets, tree *Tree) Frontier {
	if alg == Cooper {
		return FrontierCooper(g, tree)
	}
	return FrontierDirect(g, doms)
}

func newFrontier(n int) Frontier {
	df := make(Frontier, n)
	for i := range df {
		df[i] = make(cfg.Set)
	}
	return df
}

// FrontierDirect: n ∈ DF(d) iff d dominates a predecessor of n
// and does not strictly dominate n
func FrontierDirect(g *cfg.Graph, doms Sets) Frontier {
	df := newFrontier(g.Len())
	for n := 0; n < g.Len(); n++ {
		if !doms.Reachable(n) {
			continue
		}
		for _, p := range g.Preds(n) {
			if !doms.Reachable(p) {
				continue
			}
			for d := range doms[p] {
				if !doms.StrictlyDominates(d, n) {
					df[d].Add(n)
				}
			}
		}
	}
	return df
}

// FrontierCooper implements Cooper, Harvey and Kennedy's frontier walk.
// The entry counts as a join as soon as it has a predecessor, since
// control also reaches it from outside the function.
func FrontierCooper(g *cfg.Graph, tree *Tree) Frontier {
	df := newFrontier(g.Len())
	for n := 0; n < g.Len(); n++ {
		if n != cfg.Entry && tree.IDom[n] == None {
			continue
		}

		preds := make([]int, 0)
		for _, p := range g.Preds(n) {
			if p == cfg.Entry || tree.IDom[p] != None {
				preds = append(preds, p)
			}
		}
		if len(preds) < 2 && !(n == cfg.Entry && len(preds) > 0) {
			continue
		}

		for _, p := range preds {
			for runner := p; runner != tree.IDom[n]; runner = tree.IDom[runner] {
				df[runner].Add(n)
			}
		}
	}
	return df
}
