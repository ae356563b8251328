// Package ssa implements Static Single Assignment form construction.
//
// Design: Minimal SSA - phi nodes at iterated dominance frontiers,
// renaming along the dominator tree. Following the classic algorithm from
// Cytron et al. Destruction lowers phis to parallel copies in predecessors.
package ssa

import (
	"fmt"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/dom"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// Options control SSA construction
type Options struct {
	Frontier dom.Algorithm
	// Strict fails on uses with no reaching definition instead of reporting them.
	// Phi operands that no definition reaches are always only reported.
	Strict bool
}

// Function is one function's CFG together with the analyses SSA construction needs
type Function struct {
	Name     string
	Params   []ir.Param
	Graph    *cfg.Graph
	Doms     dom.Sets
	Tree     *dom.Tree
	Frontier dom.Frontier

	// Origin maps every SSA name (and parameter) to its original variable
	Origin map[string]string
	// Unresolved lists uses that no definition reaches
	Unresolved []Unresolved

	phiVar map[*ir.Instruction]string
}

// Unresolved is a use with no reaching definition. Pred is set for phi
// operands and names the incoming edge's source block.
type Unresolved struct {
	Block string
	Pred  string
	Var   string
}

func (u Unresolved) String() string {
	if u.Pred != "" {
		return fmt.Sprintf("%s: phi operand for %s from %s", u.Block, u.Var, u.Pred)
	}
	return fmt.Sprintf("%s: use of %s", u.Block, u.Var)
}

// Analyze builds the CFG, dominators, dominator tree and frontier of fn
func Analyze(fn *ir.Function, alg dom.Algorithm) (*Function, error) {
	g, err := cfg.FromFunction(fn)
	if err != nil {
		return nil, err
	}
	doms, err := dom.Compute(g)
	if err != nil {
		return nil, ir.WithFunc(err, fn.Name)
	}
	tree := dom.BuildTree(doms)

	return &Function{
		Name:     fn.Name,
		Params:   fn.Args,
		Graph:    g,
		Doms:     doms,
		Tree:     tree,
		Frontier: dom.ComputeFrontier(alg, g, doms, tree),
		Origin:   make(map[string]string),
		phiVar:   make(map[*ir.Instruction]string),
	}, nil
}

// ToSSA converts a copy of fn to SSA form
func ToSSA(fn *ir.Function, opts Options) (*ir.Function, *Function, error) {
	work := withFreshEntry(fn.Clone())

	f, err := Analyze(work, opts.Frontier)
	if err != nil {
		return nil, nil, err
	}

	logger.LogPhis(fn.Name, InsertPhis(f))
	if err := Rename(f, opts.Strict); err != nil {
		return nil, nil, err
	}

	out := &ir.Function{
		Name:   fn.Name,
		Args:   work.Args,
		Type:   work.Type,
		Instrs: f.Graph.Instructions(),
	}
	logger.LogSSAGeneration(fn.Name, f.Graph.Len())
	return out, f, nil
}

// FromSSA lowers the phis of a copy of fn into copies
func FromSSA(fn *ir.Function) (*ir.Function, error) {
	work := fn.Clone()
	g, err := cfg.FromFunction(work)
	if err != nil {
		return nil, err
	}
	if _, err := Eliminate(g); err != nil {
		return nil, ir.WithFunc(err, fn.Name)
	}

	return &ir.Function{
		Name:   fn.Name,
		Args:   work.Args,
		Type:   work.Type,
		Instrs: g.Instructions(),
	}, nil
}

// withFreshEntry prepends an empty entry block when branches target the
// first block, so phis placed there never need an edge from outside the function
func withFreshEntry(fn *ir.Function) *ir.Function {
	if len(fn.Instrs) == 0 || !fn.Instrs[0].IsLabel() {
		return fn
	}

	first := fn.Instrs[0].Label
	labels := make(map[string]bool)
	targeted := false
	for _, in := range fn.Instrs {
		if in.IsLabel() {
			labels[in.Label] = true
		}
		for _, l := range in.Labels {
			if l == first && !in.IsPhi() {
				targeted = true
			}
		}
	}
	if !targeted {
		return fn
	}

	name := "entry"
	for k := 1; labels[name]; k++ {
		name = fmt.Sprintf("entry.%d", k)
	}
	fn.Instrs = append([]*ir.Instruction{{Label: name}}, fn.Instrs...)
	return fn
}
