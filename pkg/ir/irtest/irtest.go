// Package irtest builds small IR functions for tests.
package irtest

import (
	"fmt"
	"math/rand"

	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
)

// Func assembles a function from instructions
func Func(name string, instrs ...*ir.Instruction) *ir.Function {
	return &ir.Function{Name: name, Instrs: instrs}
}

// WithParams declares int parameters on fn and returns it
func WithParams(fn *ir.Function, names ...string) *ir.Function {
	for _, n := range names {
		fn.Args = append(fn.Args, ir.Param{Name: n, Type: "int"})
	}
	return fn
}

func Label(l string) *ir.Instruction {
	return &ir.Instruction{Label: l}
}

// Const builds `dest: int = const v`
func Const(dest string, v int) *ir.Instruction {
	return &ir.Instruction{Op: ir.OpConst, Dest: dest, Type: "int", Value: v}
}

// Op builds a value operation of type int
func Op(op, dest string, args ...string) *ir.Instruction {
	return &ir.Instruction{Op: op, Dest: dest, Type: "int", Args: args}
}

// Effect builds an operation without a destination, such as print
func Effect(op string, args ...string) *ir.Instruction {
	return &ir.Instruction{Op: op, Args: args}
}

func Jmp(l string) *ir.Instruction {
	return &ir.Instruction{Op: ir.OpJmp, Labels: []string{l}}
}

func Br(cond, t, f string) *ir.Instruction {
	return &ir.Instruction{Op: ir.OpBr, Args: []string{cond}, Labels: []string{t, f}}
}

func Ret(args ...string) *ir.Instruction {
	return &ir.Instruction{Op: ir.OpRet, Args: args}
}

// Phi builds `dest: int = phi args... labels...`
func Phi(dest string, args, labels []string) *ir.Instruction {
	return &ir.Instruction{Op: ir.OpPhi, Dest: dest, Type: "int", Args: args, Labels: labels}
}

// Diamond is the classic if/else: x is assigned on both arms and read at the join.
//
//	b0 -> left, right -> join
func Diamond() *ir.Function {
	return WithParams(Func("diamond",
		Br("cond", "left", "right"),
		Label("left"),
		Const("x", 1),
		Jmp("join"),
		Label("right"),
		Const("x", 2),
		Jmp("join"),
		Label("join"),
		Effect("print", "x"),
		Ret(),
	), "cond")
}

// Loop counts i from 0 to n.
//
//	b0 -> header -> body -> header -> exit
func Loop() *ir.Function {
	return WithParams(Func("loop",
		Const("i", 0),
		Const("one", 1),
		Label("header"),
		Op("lt", "c", "i", "n"),
		Br("c", "body", "exit"),
		Label("body"),
		Op("add", "i", "i", "one"),
		Jmp("header"),
		Label("exit"),
		Effect("print", "i"),
		Ret(),
	), "n")
}

var randomVars = []string{"a", "b", "c", "d"}

// Random builds a function of n labeled blocks B0..B<n-1> with random
// edges and random definitions and uses of a small set of variables.
// Some uses may have no reaching definition.
func Random(rng *rand.Rand, n int) *ir.Function {
	label := func(i int) string { return fmt.Sprintf("B%d", i) }
	pick := func() string { return randomVars[rng.Intn(len(randomVars))] }

	fn := Func(fmt.Sprintf("random%d", n))
	for i := 0; i < n; i++ {
		fn.Instrs = append(fn.Instrs, Label(label(i)))
		for k := rng.Intn(3); k > 0; k-- {
			if rng.Intn(2) == 0 {
				fn.Instrs = append(fn.Instrs, Const(pick(), rng.Intn(10)))
			} else {
				fn.Instrs = append(fn.Instrs, Op("add", pick(), pick(), pick()))
			}
		}

		switch r := rng.Intn(10); {
		case r < 3:
			fn.Instrs = append(fn.Instrs, Jmp(label(rng.Intn(n))))
		case r < 7:
			fn.Instrs = append(fn.Instrs, Br(pick(), label(rng.Intn(n)), label(rng.Intn(n))))
		case r < 8 || i == n-1:
			fn.Instrs = append(fn.Instrs, Ret())
		default:
			// fall through to the next block
		}
	}
	return fn
}
