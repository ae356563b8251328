// Package ir implements the intermediate representation.
//
// Design: Flat three-address instructions in the Bril style. A function is an
// ordered instruction list; blocks and edges are derived from it (see pkg/cfg).
// Only control flow and phi mnemonics are interpreted, every other op is payload.
package ir

// Program is the top-level IR container
type Program struct {
	Functions []*Function `json:"functions"`
}

// Function is a named, ordered instruction sequence
type Function struct {
	Name   string         `json:"name"`
	Args   []Param        `json:"args,omitempty"`
	Type   any            `json:"type,omitempty"`
	Instrs []*Instruction `json:"instrs"`
}

// Param is a function parameter. Parameters are defined on entry.
type Param struct {
	Name string `json:"name"`
	Type any    `json:"type,omitempty"`
}

// Instruction is either a label marker or an operation.
// All fields are optional; which ones are set depends on Op.
type Instruction struct {
	Op     string   `json:"op,omitempty"`
	Dest   string   `json:"dest,omitempty"`
	Type   any      `json:"type,omitempty"`
	Args   []string `json:"args,omitempty"`
	Funcs  []string `json:"funcs,omitempty"`
	Value  any      `json:"value,omitempty"`
	Label  string   `json:"label,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Recognized mnemonics
const (
	OpJmp   = "jmp"
	OpBr    = "br"
	OpRet   = "ret"
	OpPhi   = "phi"
	OpID    = "id"
	OpConst = "const"
)

// Undefined names a value with no reaching definition on some incoming edge.
const Undefined = "__undefined"

// IsLabel reports whether the instruction only marks a block entry
func (in *Instruction) IsLabel() bool {
	return in.Op == "" && in.Label != ""
}

// IsTerminator reports whether the instruction ends a basic block
func (in *Instruction) IsTerminator() bool {
	switch in.Op {
	case OpJmp, OpBr, OpRet:
		return true
	}
	return false
}

// IsPhi reports whether the instruction is a phi node
func (in *Instruction) IsPhi() bool {
	return in.Op == OpPhi
}

// HasDest reports whether the instruction assigns a variable
func (in *Instruction) HasDest() bool {
	return in.Dest != ""
}

// Clone returns a deep copy. Value and Type are shared; they are never mutated.
func (in *Instruction) Clone() *Instruction {
	out := *in
	out.Args = cloneStrings(in.Args)
	out.Funcs = cloneStrings(in.Funcs)
	out.Labels = cloneStrings(in.Labels)
	return &out
}

// Clone returns a copy of the function with cloned instructions
func (fn *Function) Clone() *Function {
	out := &Function{
		Name:   fn.Name,
		Args:   append([]Param(nil), fn.Args...),
		Type:   fn.Type,
		Instrs: make([]*Instruction, len(fn.Instrs)),
	}
	for i, in := range fn.Instrs {
		out.Instrs[i] = in.Clone()
	}
	return out
}

// Function looks up a function by name
func (p *Program) Function(name string) *Function {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Copy builds `dest: typ = id src`
func Copy(dest string, typ any, src string) *Instruction {
	return &Instruction{Op: OpID, Dest: dest, Type: typ, Args: []string{src}}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
