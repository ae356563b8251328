// Package cfg - Basic blocks and control flow graphs
// Design: Blocks are derived once from the flat instruction list and never
// reshaped afterwards. Node identity is the block's position.
package cfg

import "github.com/GriffinCanCode/bril-ssa/pkg/ir"

// Block is a maximal straight-line run: at most one leading label,
// at most one trailing terminator
type Block struct {
	Instrs []*ir.Instruction
}

// FormBlocks partitions a function body into basic blocks
func FormBlocks(instrs []*ir.Instruction) []*Block {
	var blocks []*Block
	var cur []*ir.Instruction

	for _, in := range instrs {
		switch {
		case in.IsTerminator():
			cur = append(cur, in)
			blocks = append(blocks, &Block{Instrs: cur})
			cur = nil
		case in.IsLabel():
			if len(cur) > 0 {
				blocks = append(blocks, &Block{Instrs: cur})
			}
			cur = []*ir.Instruction{in}
		default:
			cur = append(cur, in)
		}
	}

	if len(cur) > 0 {
		blocks = append(blocks, &Block{Instrs: cur})
	}
	return blocks
}

// Label returns the block's leading label, or ""
func (b *Block) Label() string {
	if len(b.Instrs) > 0 && b.Instrs[0].IsLabel() {
		return b.Instrs[0].Label
	}
	return ""
}

// Terminator returns the trailing terminator, or nil on fallthrough
func (b *Block) Terminator() *ir.Instruction {
	if n := len(b.Instrs); n > 0 && b.Instrs[n-1].IsTerminator() {
		return b.Instrs[n-1]
	}
	return nil
}

// Phis returns the run of phi instructions at the top of the block
func (b *Block) Phis() []*ir.Instruction {
	start := b.bodyStart()
	end := start
	for end < len(b.Instrs) && b.Instrs[end].IsPhi() {
		end++
	}
	return b.Instrs[start:end]
}

// InsertAtTop places in after the label and any phis already present
func (b *Block) InsertAtTop(in *ir.Instruction) {
	at := b.bodyStart() + len(b.Phis())
	b.insert(at, in)
}

// InsertBeforeTerminator appends in so that it runs before any control transfer
func (b *Block) InsertBeforeTerminator(in *ir.Instruction) {
	at := len(b.Instrs)
	if b.Terminator() != nil {
		at--
	}
	b.insert(at, in)
}

// RemovePhis drops every phi instruction from the block
func (b *Block) RemovePhis() int {
	kept := b.Instrs[:0]
	removed := 0
	for _, in := range b.Instrs {
		if in.IsPhi() {
			removed++
			continue
		}
		kept = append(kept, in)
	}
	b.Instrs = kept
	return removed
}

func (b *Block) bodyStart() int {
	if b.Label() != "" {
		return 1
	}
	return 0
}

func (b *Block) insert(at int, in *ir.Instruction) {
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[at+1:], b.Instrs[at:])
	b.Instrs[at] = in
}
