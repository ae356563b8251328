// Package optimizer - Peephole optimization pass
// Cleans up the copies and jumps that phi elimination leaves behind
package optimizer

import (
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
)

// PeepholeOptimize removes self copies and jumps to the next instruction
func PeepholeOptimize(fn *ir.Function) (*ir.Function, int, error) {
	logger.Debug("Running peephole optimizer", "function", fn.Name)

	insts, changes := optimizeInstSequence(fn.Instrs)
	out := &ir.Function{
		Name:   fn.Name,
		Args:   fn.Args,
		Type:   fn.Type,
		Instrs: insts,
	}
	return out, changes, nil
}

// optimizeInstSequence optimizes a flat instruction sequence
func optimizeInstSequence(insts []*ir.Instruction) ([]*ir.Instruction, int) {
	result := make([]*ir.Instruction, 0, len(insts))
	changes := 0

	for i, inst := range insts {
		// Pattern: x = id x  =>  (nothing)
		if isSelfCopy(inst) {
			logger.Debug("Peephole: eliminated self copy", "var", inst.Dest)
			changes++
			continue
		}

		// Pattern: jmp .L; .L:  =>  .L:
		if i+1 < len(insts) && jumpsTo(inst, insts[i+1]) {
			logger.Debug("Peephole: eliminated jump to next label", "label", inst.Labels[0])
			changes++
			continue
		}

		result = append(result, inst)
	}

	return result, changes
}

func isSelfCopy(inst *ir.Instruction) bool {
	return inst.Op == ir.OpID && len(inst.Args) == 1 && inst.Args[0] == inst.Dest
}

func jumpsTo(inst, next *ir.Instruction) bool {
	return inst.Op == ir.OpJmp && len(inst.Labels) == 1 &&
		next.IsLabel() && next.Label == inst.Labels[0]
}
