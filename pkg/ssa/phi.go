package ssa

import (
	"sort"

	"github.com/oleiade/lane"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
)

// InsertPhis places a phi for every variable at the iterated dominance
// frontier of its definition sites and returns how many were inserted.
// Each phi starts as v = phi v v ... with one label per predecessor.
func InsertPhis(f *Function) int {
	g := f.Graph
	defsites := make(map[string]cfg.Set)
	types := make(map[string]any)

	for id, b := range g.Blocks() {
		for _, in := range b.Instrs {
			if !in.HasDest() {
				continue
			}
			if defsites[in.Dest] == nil {
				defsites[in.Dest] = make(cfg.Set)
			}
			defsites[in.Dest].Add(id)
			if _, ok := types[in.Dest]; !ok && in.Type != nil {
				types[in.Dest] = in.Type
			}
		}
	}

	vars := make([]string, 0, len(defsites))
	for v := range defsites {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	count := 0
	for _, v := range vars {
		sites := defsites[v]
		placed := make(cfg.Set)

		q := lane.NewQueue()
		for _, id := range sites.Sorted() {
			q.Enqueue(id)
		}

		for !q.Empty() {
			b := q.Dequeue().(int)
			for _, j := range f.Frontier[b].Sorted() {
				if !placed.Add(j) {
					continue
				}
				f.insertPhi(j, v, types[v])
				count++

				// The phi is a new definition of v
				if sites.Add(j) {
					q.Enqueue(j)
				}
			}
		}
	}
	return count
}

func (f *Function) insertPhi(id int, v string, typ any) {
	preds := f.Graph.Preds(id)
	phi := &ir.Instruction{
		Op:     ir.OpPhi,
		Dest:   v,
		Type:   typ,
		Args:   make([]string, len(preds)),
		Labels: make([]string, len(preds)),
	}
	for i, p := range preds {
		phi.Args[i] = v
		phi.Labels[i] = f.Graph.Name(p)
	}

	f.Graph.Block(id).InsertAtTop(phi)
	f.phiVar[phi] = v
}
