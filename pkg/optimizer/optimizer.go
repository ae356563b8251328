// Package optimizer - Per-function pass pipeline over the middle-end
// Design: Every pass maps one function to a new one. Functions are
// processed independently; nothing is shared between them.
package optimizer

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
	"github.com/GriffinCanCode/bril-ssa/pkg/ssa"
)

// Pass transforms one function and reports how many changes it made
type Pass struct {
	Name string
	Run  func(fn *ir.Function) (*ir.Function, int, error)
}

// Config selects the passes to run, in order
type Config struct {
	Passes []string
	SSA    ssa.Options
	// OnUnresolved receives every use the ssa pass left without a reaching definition
	OnUnresolved func(fn string, u ssa.Unresolved)
}

// DefaultConfig converts to SSA form
func DefaultConfig() Config {
	return Config{Passes: []string{"ssa"}}
}

// LevelConfig maps an optimization level to a pass list:
// 0 runs nothing, 1 converts to SSA, 2 and above round-trips through SSA
func LevelConfig(level int) Config {
	switch {
	case level <= 0:
		return Config{}
	case level == 1:
		return DefaultConfig()
	default:
		return Config{Passes: []string{"ssa", "unssa", "peephole"}}
	}
}

// Lookup resolves the pass names of cfg
func Lookup(cfg Config) ([]Pass, error) {
	passes := make([]Pass, 0, len(cfg.Passes))
	for _, name := range cfg.Passes {
		switch strings.ToLower(name) {
		case "ssa":
			passes = append(passes, Pass{Name: "ssa", Run: toSSA(cfg)})
		case "unssa":
			passes = append(passes, Pass{Name: "unssa", Run: fromSSA})
		case "peephole":
			passes = append(passes, Pass{Name: "peephole", Run: PeepholeOptimize})
		default:
			return nil, fmt.Errorf("unknown pass %q", name)
		}
	}
	return passes, nil
}

// Run applies the configured passes to every function of prog
func Run(prog *ir.Program, cfg Config) (*ir.Program, error) {
	passes, err := Lookup(cfg)
	if err != nil {
		return nil, err
	}
	return Apply(prog, passes...)
}

// Apply runs passes over a copy of each function of prog
func Apply(prog *ir.Program, passes ...Pass) (*ir.Program, error) {
	logger.LogPhase("optimize")

	out := &ir.Program{Functions: make([]*ir.Function, 0, len(prog.Functions))}
	for _, fn := range prog.Functions {
		cur := fn.Clone()
		for _, p := range passes {
			next, changes, err := p.Run(cur)
			if err != nil {
				logger.LogError(p.Name, fn.Name, err)
				return nil, fmt.Errorf("pass %s failed for function %s: %w", p.Name, fn.Name, err)
			}
			logger.LogPass(p.Name, fn.Name, changes)
			cur = next
		}
		out.Functions = append(out.Functions, cur)
	}

	logger.LogPhaseComplete("optimize")
	return out, nil
}

func toSSA(cfg Config) func(*ir.Function) (*ir.Function, int, error) {
	return func(fn *ir.Function) (*ir.Function, int, error) {
		out, f, err := ssa.ToSSA(fn, cfg.SSA)
		if err != nil {
			return nil, 0, err
		}
		if cfg.OnUnresolved != nil {
			for _, u := range f.Unresolved {
				cfg.OnUnresolved(fn.Name, u)
			}
		}
		return out, countPhis(out), nil
	}
}

func fromSSA(fn *ir.Function) (*ir.Function, int, error) {
	phis := countPhis(fn)
	out, err := ssa.FromSSA(fn)
	if err != nil {
		return nil, 0, err
	}
	return out, phis, nil
}

func countPhis(fn *ir.Function) int {
	n := 0
	for _, in := range fn.Instrs {
		if in.IsPhi() {
			n++
		}
	}
	return n
}
