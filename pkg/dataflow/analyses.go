package dataflow

import (
	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
)

// Defined computes, per block, the variables assigned on some path reaching it
func Defined(g *cfg.Graph, opts Options) (*Result[VarSet], error) {
	return Solve(g, Analysis[VarSet]{
		Name:      "defined",
		Direction: Forward,
		Merge:     UnionAll,
		Transfer:  transferDefined,
		Equal:     VarSet.Equal,
		Height:    universe(g),
	}, opts)
}

// Live computes, per block, the variables read before being redefined
// on some path from it
func Live(g *cfg.Graph, opts Options) (*Result[VarSet], error) {
	return Solve(g, Analysis[VarSet]{
		Name:      "live",
		Direction: Backward,
		Merge:     UnionAll,
		Transfer:  transferLive,
		Equal:     VarSet.Equal,
		Height:    universe(g),
	}, opts)
}

func transferDefined(b *cfg.Block, in VarSet) VarSet {
	defs := make(VarSet)
	for _, instr := range b.Instrs {
		if instr.HasDest() {
			defs.Add(instr.Dest)
		}
	}
	return in.Union(defs)
}

func transferLive(b *cfg.Block, out VarSet) VarSet {
	kill, gen := killGen(b)
	return gen.Union(out.Minus(kill))
}

// killGen returns the block's assigned variables and the ones it reads
// before any same-block redefinition
func killGen(b *cfg.Block) (kill, gen VarSet) {
	kill = make(VarSet)
	killedAt := make(map[string]int)
	for i, instr := range b.Instrs {
		if !instr.HasDest() {
			continue
		}
		kill.Add(instr.Dest)
		if _, ok := killedAt[instr.Dest]; !ok {
			killedAt[instr.Dest] = i
		}
	}

	gen = make(VarSet)
	for i, instr := range b.Instrs {
		for _, arg := range instr.Args {
			if at, ok := killedAt[arg]; ok && at < i {
				continue
			}
			gen.Add(arg)
		}
	}
	return kill, gen
}

// universe counts the distinct variable names in g
func universe(g *cfg.Graph) int {
	names := make(VarSet)
	for _, b := range g.Blocks() {
		for _, instr := range b.Instrs {
			if instr.HasDest() {
				names.Add(instr.Dest)
			}
			for _, arg := range instr.Args {
				names.Add(arg)
			}
		}
	}
	return len(names)
}
