// Loop analysis - natural loops from dominator back edges
package optimizer

import (
	"sort"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/dom"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// Loop is a natural loop: a header plus every block that reaches one of
// its latches without passing through the header
type Loop struct {
	Header  int
	Latches []int
	Body    cfg.Set
}

// FindLoops detects the natural loops of g. Back edges with the same
// header share one loop. Loops are ordered by header id.
func FindLoops(g *cfg.Graph, doms dom.Sets) []Loop {
	latches := make(map[int][]int)
	for id := 0; id < g.Len(); id++ {
		if !doms.Reachable(id) {
			continue
		}
		for _, s := range g.Succs(id) {
			// Back edge: the target dominates the source
			if doms.Dominates(s, id) {
				latches[s] = append(latches[s], id)
			}
		}
	}

	headers := make([]int, 0, len(latches))
	for h := range latches {
		headers = append(headers, h)
	}
	sort.Ints(headers)

	loops := make([]Loop, 0, len(headers))
	for _, h := range headers {
		loop := Loop{Header: h, Latches: latches[h], Body: loopBody(g, doms, h, latches[h])}
		logger.Debug("Detected loop", "header", g.Name(h), "blocks", loop.Body.Len())
		loops = append(loops, loop)
	}
	return loops
}

// loopBody walks predecessors backwards from the latches, stopping at the header
func loopBody(g *cfg.Graph, doms dom.Sets, header int, latches []int) cfg.Set {
	body := cfg.NewSet(header)
	stack := make([]int, 0, len(latches))
	for _, l := range latches {
		if body.Add(l) {
			stack = append(stack, l)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Preds(id) {
			if doms.Reachable(p) && body.Add(p) {
				stack = append(stack, p)
			}
		}
	}
	return body
}

// Contains reports whether block id belongs to the loop
func (l Loop) Contains(id int) bool {
	return l.Body.Has(id)
}
