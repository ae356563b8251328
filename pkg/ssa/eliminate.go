package ssa

import (
	"fmt"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// Verify checks that every phi pairs each predecessor of its block exactly once
func Verify(g *cfg.Graph) error {
	for id, b := range g.Blocks() {
		phis := b.Phis()
		if len(phis) == 0 {
			continue
		}

		preds := make(map[string]bool)
		for _, p := range g.Preds(id) {
			preds[g.Name(p)] = true
		}

		for _, phi := range phis {
			if len(phi.Args) != len(phi.Labels) {
				return ir.Malformed(g.Name(id), "", "phi %s has %d args for %d labels",
					phi.Dest, len(phi.Args), len(phi.Labels))
			}
			seen := make(map[string]bool, len(phi.Labels))
			for _, l := range phi.Labels {
				if !preds[l] {
					return ir.Malformed(g.Name(id), l, "phi %s names a block that is not a predecessor", phi.Dest)
				}
				if seen[l] {
					return ir.Malformed(g.Name(id), l, "phi %s names a predecessor twice", phi.Dest)
				}
				seen[l] = true
			}
			if len(seen) != len(preds) {
				for p := range preds {
					if !seen[p] {
						return ir.Malformed(g.Name(id), p, "phi %s has no operand for predecessor", phi.Dest)
					}
				}
			}
		}
	}
	return nil
}

// Eliminate replaces every phi by copies at the end of its predecessors and
// returns how many phis were removed. The copies of one edge form a parallel
// move and are ordered so that no copy overwrites a value another still reads.
func Eliminate(g *cfg.Graph) (int, error) {
	if err := Verify(g); err != nil {
		return 0, err
	}

	names := newNamer(g)
	removed := 0
	for id, b := range g.Blocks() {
		phis := append([]*ir.Instruction(nil), b.Phis()...)
		if len(phis) == 0 {
			continue
		}

		for _, p := range g.Preds(id) {
			label := g.Name(p)
			moves := make([]move, 0, len(phis))
			for _, phi := range phis {
				for i, l := range phi.Labels {
					if l == label {
						moves = append(moves, move{dst: phi.Dest, src: phi.Args[i], typ: phi.Type})
					}
				}
			}

			pred := g.Block(p)
			for _, c := range sequentialize(moves, names.fresh) {
				pred.InsertBeforeTerminator(c)
			}
		}
		removed += b.RemovePhis()
	}

	logger.Debug("Phi elimination complete", "phis", removed)
	return removed, nil
}

type move struct {
	dst string
	src string
	typ any
}

// sequentialize orders a parallel move. Self copies and undefined sources
// are dropped; a cycle is broken by saving one destination in a temporary.
func sequentialize(moves []move, fresh func(string) string) []*ir.Instruction {
	pending := make([]move, 0, len(moves))
	for _, m := range moves {
		if m.src == m.dst || m.src == ir.Undefined {
			continue
		}
		pending = append(pending, m)
	}

	var out []*ir.Instruction
	for len(pending) > 0 {
		ready := -1
		for i, m := range pending {
			if !readByOthers(pending, i, m.dst) {
				ready = i
				break
			}
		}

		if ready >= 0 {
			m := pending[ready]
			out = append(out, ir.Copy(m.dst, m.typ, m.src))
			pending = append(pending[:ready], pending[ready+1:]...)
			continue
		}

		// Only cycles remain
		m := pending[0]
		tmp := fresh(m.dst)
		out = append(out, ir.Copy(tmp, m.typ, m.dst))
		for i := range pending {
			if pending[i].src == m.dst {
				pending[i].src = tmp
			}
		}
	}
	return out
}

func readByOthers(pending []move, skip int, name string) bool {
	for j, m := range pending {
		if j != skip && m.src == name {
			return true
		}
	}
	return false
}

// namer hands out temporaries that collide with no existing variable
type namer struct {
	taken map[string]bool
	next  int
}

func newNamer(g *cfg.Graph) *namer {
	taken := make(map[string]bool)
	for _, b := range g.Blocks() {
		for _, in := range b.Instrs {
			if in.HasDest() {
				taken[in.Dest] = true
			}
			for _, a := range in.Args {
				taken[a] = true
			}
		}
	}
	return &namer{taken: taken}
}

func (n *namer) fresh(base string) string {
	for {
		name := fmt.Sprintf("%s.swap%d", base, n.next)
		n.next++
		if !n.taken[name] {
			n.taken[name] = true
			return name
		}
	}
}
