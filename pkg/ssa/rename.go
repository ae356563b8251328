package ssa

import (
	"fmt"

	"github.com/oleiade/lane"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// renamer holds the state of one renaming pass. It never outlives Rename.
type renamer struct {
	f      *Function
	stacks map[string]*lane.Stack
	count  map[string]int
	taken  map[string]bool
	strict bool
	dead   bool
}

// Rename gives every definition a fresh name and rewrites uses to the
// definition that reaches them, walking the dominator tree from the entry.
// Parameters are defined on entry under their own names.
func Rename(f *Function, strict bool) error {
	if f.Graph.Len() == 0 {
		return nil
	}

	r := &renamer{
		f:      f,
		stacks: make(map[string]*lane.Stack),
		count:  make(map[string]int),
		taken:  usedNames(f),
		strict: strict,
	}
	for _, p := range f.Params {
		r.stack(p.Name).Push(p.Name)
		f.Origin[p.Name] = p.Name
	}

	if err := r.block(cfg.Entry); err != nil {
		return err
	}

	// Blocks the walk never reaches still get single-assignment names
	r.dead = true
	for id := 0; id < f.Graph.Len(); id++ {
		if !f.Doms.Reachable(id) {
			if err := r.block(id); err != nil {
				return err
			}
		}
	}
	r.undefineUnreachableOperands()
	return nil
}

func (r *renamer) stack(v string) *lane.Stack {
	s, ok := r.stacks[v]
	if !ok {
		s = lane.NewStack()
		r.stacks[v] = s
	}
	return s
}

func (r *renamer) top(v string) (string, bool) {
	s, ok := r.stacks[v]
	if !ok || s.Empty() {
		return "", false
	}
	return s.Head().(string), true
}

// fresh returns the next unused version of v
func (r *renamer) fresh(v string) string {
	for {
		name := fmt.Sprintf("%s.%d", v, r.count[v])
		r.count[v]++
		if !r.taken[name] {
			r.taken[name] = true
			return name
		}
	}
}

func (r *renamer) block(id int) error {
	g := r.f.Graph
	name := g.Name(id)

	// Versions pushed here are popped on every way out of the subtree
	var pushed []string
	defer func() {
		for _, v := range pushed {
			r.stacks[v].Pop()
		}
	}()

	for _, in := range g.Block(id).Instrs {
		if !in.IsPhi() {
			for i, arg := range in.Args {
				cur, ok := r.top(arg)
				if !ok {
					if err := r.unresolved(Unresolved{Block: name, Var: arg}); err != nil {
						return err
					}
					continue
				}
				in.Args[i] = cur
			}
		}

		if in.HasDest() {
			orig := in.Dest
			if v, ok := r.f.phiVar[in]; ok {
				orig = v
			}
			next := r.fresh(orig)
			r.stack(orig).Push(next)
			pushed = append(pushed, orig)
			in.Dest = next
			r.f.Origin[next] = orig
		}
	}

	for _, s := range g.Succs(id) {
		for _, phi := range g.Block(s).Phis() {
			v, ok := r.f.phiVar[phi]
			if !ok {
				continue
			}
			for i, l := range phi.Labels {
				if l != name {
					continue
				}
				cur, ok := r.top(v)
				if !ok {
					phi.Args[i] = ir.Undefined
					if err := r.unresolved(Unresolved{Block: g.Name(s), Pred: name, Var: v}); err != nil {
						return err
					}
					continue
				}
				phi.Args[i] = cur
			}
		}
	}

	for _, c := range r.f.Tree.Children[id] {
		if err := r.block(c); err != nil {
			return err
		}
	}
	return nil
}

// unresolved records a use no definition reaches. Strict mode only
// rejects real uses; a phi operand may legitimately be undefined on an edge.
func (r *renamer) unresolved(u Unresolved) error {
	if r.dead {
		return nil
	}
	if r.strict && u.Pred == "" {
		return &ir.Error{
			Kind:  ir.ErrUnresolvedDefinition,
			Func:  r.f.Name,
			Block: u.Block,
			Label: u.Pred,
			Var:   u.Var,
		}
	}
	r.f.Unresolved = append(r.f.Unresolved, u)
	logger.LogUnresolved(r.f.Name, u.Block, u.Var)
	return nil
}

// undefineUnreachableOperands clears phi operands on edges from blocks the
// walk never visits; those edges are never taken
func (r *renamer) undefineUnreachableOperands() {
	g := r.f.Graph
	for id, b := range g.Blocks() {
		if !r.f.Doms.Reachable(id) {
			continue
		}
		for _, phi := range b.Phis() {
			if _, ok := r.f.phiVar[phi]; !ok {
				continue
			}
			for i, l := range phi.Labels {
				if p, ok := g.ID(l); ok && !r.f.Doms.Reachable(p) {
					phi.Args[i] = ir.Undefined
				}
			}
		}
	}
}

// usedNames collects every variable name already present in f
func usedNames(f *Function) map[string]bool {
	taken := make(map[string]bool)
	for _, p := range f.Params {
		taken[p.Name] = true
	}
	for _, b := range f.Graph.Blocks() {
		for _, in := range b.Instrs {
			if in.HasDest() {
				taken[in.Dest] = true
			}
			for _, a := range in.Args {
				taken[a] = true
			}
		}
	}
	return taken
}
