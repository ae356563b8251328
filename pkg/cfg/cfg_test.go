package cfg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir/irtest"
)

func blockNames(g *Graph, ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.Name(id)
	}
	return out
}

func TestFormBlocks(t *testing.T) {
	tests := []struct {
		name   string
		instrs []*ir.Instruction
		sizes  []int
	}{
		{"empty", nil, nil},
		{"straight line", []*ir.Instruction{irtest.Const("a", 1), irtest.Const("b", 2), irtest.Ret()}, []int{3}},
		{"label starts block", []*ir.Instruction{irtest.Const("a", 1), irtest.Label("L"), irtest.Ret()}, []int{1, 2}},
		{"terminator ends block", []*ir.Instruction{irtest.Jmp("L"), irtest.Const("dead", 0), irtest.Label("L"), irtest.Ret()}, []int{1, 1, 2}},
		{"adjacent labels", []*ir.Instruction{irtest.Label("A"), irtest.Label("B"), irtest.Ret()}, []int{1, 2}},
		{"trailing label", []*ir.Instruction{irtest.Ret(), irtest.Label("end")}, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := FormBlocks(tt.instrs)
			require.Len(t, blocks, len(tt.sizes))
			for i, b := range blocks {
				require.Len(t, b.Instrs, tt.sizes[i], "block %d", i)
			}
		})
	}
}

func TestDiamondGraph(t *testing.T) {
	g, err := FromFunction(irtest.Diamond())
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())

	require.Equal(t, "b0", g.Name(Entry))
	id, ok := g.ID("join")
	require.True(t, ok)
	require.Equal(t, 3, id)
	_, ok = g.ID("nowhere")
	require.False(t, ok)

	require.Equal(t, []string{"left", "right"}, blockNames(g, g.Succs(Entry)))
	require.Equal(t, []string{"left", "right"}, blockNames(g, g.Preds(3)))
	require.Empty(t, g.Succs(3))
	require.Empty(t, g.Preds(Entry))

	// Edge symmetry
	for u := 0; u < g.Len(); u++ {
		for _, v := range g.Succs(u) {
			require.True(t, g.PredSet(v).Has(u))
		}
		for _, p := range g.Preds(u) {
			require.True(t, g.SuccSet(p).Has(u))
		}
	}

	rpo := g.ReversePostorder()
	require.Len(t, rpo, 4)
	require.Equal(t, Entry, rpo[0])
	require.Equal(t, 3, rpo[3])
}

func TestFallthroughAndNames(t *testing.T) {
	fn := irtest.Func("f",
		irtest.Label("b1"),
		irtest.Const("a", 1),
		irtest.Ret(),
		irtest.Const("dead", 2),
		irtest.Label("next"),
		irtest.Effect("print", "a"),
	)
	g, err := FromFunction(fn)
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	// b1 is already a real label, so the synthesized name gets a suffix
	require.Equal(t, "b1", g.Name(0))
	require.Equal(t, "b1.1", g.Name(1))
	require.Equal(t, "next", g.Name(2))

	require.Empty(t, g.Succs(0))
	require.Equal(t, []int{2}, g.Succs(1))
	require.Empty(t, g.Succs(2))

	require.Equal(t, NewSet(0), g.Reachable())
	require.Equal(t, []int{0}, g.ReversePostorder())
}

func TestMalformed(t *testing.T) {
	tests := []struct {
		name   string
		instrs []*ir.Instruction
		block  string
		label  string
	}{
		{"unknown target", []*ir.Instruction{irtest.Jmp("missing")}, "b0", "missing"},
		{"duplicate label", []*ir.Instruction{irtest.Label("L"), irtest.Const("a", 1), irtest.Label("L"), irtest.Ret()}, "L", "L"},
		{"jmp arity", []*ir.Instruction{{Op: ir.OpJmp, Labels: []string{"A", "B"}}, irtest.Label("A"), irtest.Label("B")}, "b0", ""},
		{"br arity", []*ir.Instruction{{Op: ir.OpBr, Args: []string{"c"}, Labels: []string{"A"}}, irtest.Label("A")}, "b0", ""},
		{"synthesized name is not a target", []*ir.Instruction{irtest.Ret(), irtest.Const("a", 1), irtest.Label("L"), irtest.Jmp("b1")}, "L", "b1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFunction(irtest.Func("bad", tt.instrs...))
			require.ErrorIs(t, err, ir.ErrMalformedProgram)

			var e *ir.Error
			require.True(t, errors.As(err, &e))
			require.Equal(t, "bad", e.Func)
			require.Equal(t, tt.block, e.Block)
			require.Equal(t, tt.label, e.Label)
		})
	}
}

func TestEmptyFunction(t *testing.T) {
	g, err := FromFunction(irtest.Func("empty"))
	require.NoError(t, err)
	require.Zero(t, g.Len())
	require.Empty(t, g.ReversePostorder())
	require.Zero(t, g.Reachable().Len())
	require.Empty(t, g.Instructions())
}

func TestBlockEditing(t *testing.T) {
	b := &Block{Instrs: []*ir.Instruction{
		irtest.Label("L"),
		irtest.Phi("x", []string{"a"}, []string{"P"}),
		irtest.Const("y", 1),
		irtest.Jmp("L"),
	}}
	require.Equal(t, "L", b.Label())
	require.Equal(t, ir.OpJmp, b.Terminator().Op)
	require.Len(t, b.Phis(), 1)

	b.InsertAtTop(irtest.Phi("z", []string{"c"}, []string{"P"}))
	require.Equal(t, "z", b.Instrs[2].Dest)
	require.Len(t, b.Phis(), 2)

	b.InsertBeforeTerminator(ir.Copy("w", "int", "y"))
	require.Equal(t, "w", b.Instrs[4].Dest)
	require.Equal(t, ir.OpJmp, b.Instrs[5].Op)

	require.Equal(t, 2, b.RemovePhis())
	require.Empty(t, b.Phis())
	require.Len(t, b.Instrs, 4)

	open := &Block{Instrs: []*ir.Instruction{irtest.Const("a", 1)}}
	require.Nil(t, open.Terminator())
	open.InsertBeforeTerminator(irtest.Const("b", 2))
	require.Equal(t, "b", open.Instrs[1].Dest)
	require.Empty(t, open.Label())
}

func TestInstructionsLabelsPhiPredecessors(t *testing.T) {
	fn := irtest.Func("f",
		irtest.Br("c", "A", "B"),
		irtest.Label("A"),
		irtest.Jmp("B"),
		irtest.Label("B"),
		irtest.Phi("x", []string{"p", "q"}, []string{"b0", "A"}),
		irtest.Ret("x"),
	)
	g, err := FromFunction(fn)
	require.NoError(t, err)

	out := g.Instructions()
	require.Len(t, out, len(fn.Instrs)+1)
	require.True(t, out[0].IsLabel())
	require.Equal(t, "b0", out[0].Label)

	// Without phis nothing is added
	g, err = FromFunction(irtest.Diamond())
	require.NoError(t, err)
	require.Len(t, g.Instructions(), len(irtest.Diamond().Instrs))
}

func TestSet(t *testing.T) {
	s := NewSet(3, 1)
	require.True(t, s.Add(2))
	require.False(t, s.Add(2))
	require.Equal(t, []int{1, 2, 3}, s.Sorted())

	c := s.Clone()
	c.Add(9)
	require.False(t, s.Has(9))
	require.False(t, s.Equal(c))

	require.Equal(t, NewSet(1, 3), s.Intersect(NewSet(1, 3, 7)))
	require.True(t, NewSet().Equal(Set{}))
}
