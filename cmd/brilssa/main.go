// Package main implements the brilssa binary.
//
// Philosophy: One subcommand per analysis. Bril JSON comes in on stdin,
// results go out on stdout, diagnostics go to stderr.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/GriffinCanCode/bril-ssa/pkg/cfg"
	"github.com/GriffinCanCode/bril-ssa/pkg/dataflow"
	"github.com/GriffinCanCode/bril-ssa/pkg/dom"
	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
	"github.com/GriffinCanCode/bril-ssa/pkg/logger"
	"github.com/GriffinCanCode/bril-ssa/pkg/optimizer"
	"github.com/GriffinCanCode/bril-ssa/pkg/ssa"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "cfg", "dom", "dataflow", "ssa", "unssa", "roundtrip", "opt":
		os.Exit(run(cmd, os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
	case "version":
		fmt.Printf("brilssa version %s\n", version)
	case "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage(os.Stderr)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `brilssa - SSA construction and analysis for Bril programs

Usage:
    brilssa cfg       < prog.json   Print blocks with predecessors and successors
    brilssa dom       < prog.json   Print dominators, dominator tree, frontiers and loops
    brilssa dataflow  < prog.json   Print per-block dataflow facts
    brilssa ssa       < prog.json   Convert to SSA form
    brilssa unssa     < prog.json   Replace phis with copies
    brilssa roundtrip < prog.json   Convert to SSA form and back
    brilssa opt       < prog.json   Run a pass pipeline
    brilssa version                 Show version
    brilssa help                    Show this help message

Options:
    -v                 Verbose output (debug logging)
    -log-format <fmt>  Log format: text or json (default: text)
    -log-file <file>   Append logs to file instead of stderr
    -a <analysis>      dataflow: defined or live (default: defined)
    -order <order>     dataflow: fifo, lifo or random (default: fifo)
    -seed <n>          dataflow: seed for -order random
    -algo <alg>        dom, ssa, roundtrip, opt: frontier algorithm, direct or cooper
    -strict            ssa, roundtrip, opt: fail on uses with no reaching definition
    -text              ssa, unssa, roundtrip, opt: print Bril text instead of JSON
    -O <level>         opt: 0 none, 1 ssa, 2 ssa+unssa+peephole (default: 2)
    -passes <list>     opt: comma-separated passes, overrides -O`)
}

// options holds every flag; each subcommand reads the ones it needs
type options struct {
	verbose   bool
	logFormat string
	logFile   string
	analysis  string
	order     string
	seed      int64
	algo      string
	strict    bool
	text      bool
	level     int
	passes    string
}

func parseFlags(cmd string, args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.verbose, "v", false, "verbose output")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format (text or json)")
	fs.StringVar(&opts.logFile, "log-file", "", "log file")
	fs.StringVar(&opts.analysis, "a", "defined", "dataflow analysis (defined or live)")
	fs.StringVar(&opts.order, "order", "fifo", "worklist order (fifo, lifo or random)")
	fs.Int64Var(&opts.seed, "seed", 1, "seed for random worklist order")
	fs.StringVar(&opts.algo, "algo", "direct", "frontier algorithm (direct or cooper)")
	fs.BoolVar(&opts.strict, "strict", false, "fail on unresolved definitions")
	fs.BoolVar(&opts.text, "text", false, "print Bril text")
	fs.IntVar(&opts.level, "O", 2, "optimization level")
	fs.StringVar(&opts.passes, "passes", "", "comma-separated pass list")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func initLogger(opts *options, stderr io.Writer) error {
	cfg := logger.DefaultConfig()
	cfg.Output = stderr
	cfg.Format = opts.logFormat
	cfg.LogFile = opts.logFile
	if opts.verbose {
		cfg.Level = logger.LevelDebug
	}
	return logger.Init(cfg)
}

// run executes one subcommand and returns the process exit code
func run(cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(cmd, args, stderr)
	if err != nil {
		return 2
	}
	if err := initLogger(opts, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer logger.Close()

	start := time.Now()
	logger.LogStart(append([]string{cmd}, args...))

	err = dispatch(cmd, opts, stdin, stdout, stderr)
	logger.LogComplete(err == nil, time.Since(start).String())
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(cmd string, opts *options, stdin io.Reader, stdout, stderr io.Writer) error {
	prog, err := ir.Decode(stdin)
	if err != nil {
		return err
	}

	switch cmd {
	case "cfg":
		return printCFG(stdout, prog)
	case "dom":
		alg, err := dom.ParseAlgorithm(opts.algo)
		if err != nil {
			return err
		}
		return printDom(stdout, prog, alg)
	case "dataflow":
		return printDataflow(stdout, prog, opts)
	case "ssa":
		return convertSSA(stdout, stderr, prog, opts)
	case "unssa":
		return optimize(stdout, stderr, prog, opts, optimizer.Config{Passes: []string{"unssa"}})
	case "roundtrip":
		return optimize(stdout, stderr, prog, opts, optimizer.Config{Passes: []string{"ssa", "unssa"}})
	case "opt":
		cfg := optimizer.LevelConfig(opts.level)
		if opts.passes != "" {
			cfg.Passes = strings.Split(opts.passes, ",")
		}
		return optimize(stdout, stderr, prog, opts, cfg)
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

func printCFG(w io.Writer, prog *ir.Program) error {
	for _, fn := range prog.Functions {
		g, err := cfg.FromFunction(fn)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "@%s\n", fn.Name)
		for id := 0; id < g.Len(); id++ {
			fmt.Fprintf(w, "  %s:\n", g.Name(id))
			fmt.Fprintf(w, "    preds: %s\n", names(g, g.Preds(id)))
			fmt.Fprintf(w, "    succs: %s\n", names(g, g.Succs(id)))
		}
	}
	return nil
}

func printDom(w io.Writer, prog *ir.Program, alg dom.Algorithm) error {
	for _, fn := range prog.Functions {
		f, err := ssa.Analyze(fn, alg)
		if err != nil {
			return err
		}
		g := f.Graph

		fmt.Fprintf(w, "@%s\n", fn.Name)
		fmt.Fprintln(w, "  dominators:")
		for id := 0; id < g.Len(); id++ {
			if !f.Doms.Reachable(id) {
				fmt.Fprintf(w, "    %s: unreachable\n", g.Name(id))
				continue
			}
			fmt.Fprintf(w, "    %s: %s\n", g.Name(id), names(g, f.Doms[id].Sorted()))
		}

		fmt.Fprintln(w, "  tree:")
		for _, id := range f.Tree.BreadthFirst() {
			fmt.Fprintf(w, "    %s%s\n", strings.Repeat("  ", f.Tree.Depth(id)), g.Name(id))
		}

		fmt.Fprintf(w, "  frontier (%s):\n", alg)
		for id := 0; id < g.Len(); id++ {
			fmt.Fprintf(w, "    %s: %s\n", g.Name(id), names(g, f.Frontier[id].Sorted()))
		}

		loops := optimizer.FindLoops(g, f.Doms)
		if len(loops) > 0 {
			fmt.Fprintln(w, "  loops:")
			for _, l := range loops {
				fmt.Fprintf(w, "    %s: %s\n", g.Name(l.Header), names(g, l.Body.Sorted()))
			}
		}
	}
	return nil
}

func printDataflow(w io.Writer, prog *ir.Program, opts *options) error {
	solve := dataflow.Defined
	switch opts.analysis {
	case "defined":
	case "live":
		solve = dataflow.Live
	default:
		return fmt.Errorf("unknown analysis %q", opts.analysis)
	}

	order, err := parseOrder(opts.order)
	if err != nil {
		return err
	}

	for _, fn := range prog.Functions {
		g, err := cfg.FromFunction(fn)
		if err != nil {
			return err
		}
		res, err := solve(g, dataflow.Options{Order: order, Seed: opts.seed})
		if err != nil {
			return ir.WithFunc(err, fn.Name)
		}
		logger.LogFixpoint(opts.analysis, fn.Name, res.Iterations)

		fmt.Fprintf(w, "@%s\n", fn.Name)
		for id := 0; id < g.Len(); id++ {
			fmt.Fprintf(w, "  %s:\n", g.Name(id))
			fmt.Fprintf(w, "    in:  %s\n", res.In[id])
			fmt.Fprintf(w, "    out: %s\n", res.Out[id])
		}
	}
	return nil
}

func parseOrder(s string) (dataflow.Order, error) {
	switch s {
	case "fifo", "":
		return dataflow.FIFO, nil
	case "lifo":
		return dataflow.LIFO, nil
	case "random":
		return dataflow.Random, nil
	}
	return dataflow.FIFO, fmt.Errorf("unknown worklist order %q", s)
}

// convertSSA reports uses with no reaching definition as warnings
func convertSSA(stdout, stderr io.Writer, prog *ir.Program, opts *options) error {
	ssaOpts, err := ssaOptions(opts)
	if err != nil {
		return err
	}

	report := warnUnresolved(stderr)
	out := &ir.Program{}
	for _, fn := range prog.Functions {
		converted, f, err := ssa.ToSSA(fn, ssaOpts)
		if err != nil {
			logger.LogError("ssa", fn.Name, err)
			return err
		}
		for _, u := range f.Unresolved {
			report(fn.Name, u)
		}
		out.Functions = append(out.Functions, converted)
	}
	return emit(stdout, out, opts.text)
}

// warnUnresolved prints a use with no reaching definition as a warning
func warnUnresolved(stderr io.Writer) func(fn string, u ssa.Unresolved) {
	return func(fn string, u ssa.Unresolved) {
		fmt.Fprintf(stderr, "warning: @%s: %s has no reaching definition\n", fn, u)
	}
}

func optimize(stdout, stderr io.Writer, prog *ir.Program, opts *options, cfg optimizer.Config) error {
	ssaOpts, err := ssaOptions(opts)
	if err != nil {
		return err
	}
	cfg.SSA = ssaOpts
	cfg.OnUnresolved = warnUnresolved(stderr)

	out, err := optimizer.Run(prog, cfg)
	if err != nil {
		return err
	}
	return emit(stdout, out, opts.text)
}

func ssaOptions(opts *options) (ssa.Options, error) {
	alg, err := dom.ParseAlgorithm(opts.algo)
	if err != nil {
		return ssa.Options{}, err
	}
	return ssa.Options{Frontier: alg, Strict: opts.strict}, nil
}

func emit(w io.Writer, prog *ir.Program, text bool) error {
	if text {
		_, err := io.WriteString(w, prog.String())
		return err
	}
	return ir.Encode(w, prog)
}

func names(g *cfg.Graph, ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = g.Name(id)
	}
	if len(parts) == 0 {
		return "∅"
	}
	return strings.Join(parts, " ")
}
