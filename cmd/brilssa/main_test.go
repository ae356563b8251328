package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/bril-ssa/pkg/ir"
)

const diamond = `{
  "functions": [{
    "name": "main",
    "args": [{"name": "cond", "type": "bool"}],
    "instrs": [
      {"op": "br", "args": ["cond"], "labels": ["left", "right"]},
      {"label": "left"},
      {"op": "const", "dest": "x", "type": "int", "value": 1},
      {"op": "jmp", "labels": ["join"]},
      {"label": "right"},
      {"op": "const", "dest": "x", "type": "int", "value": 2},
      {"op": "jmp", "labels": ["join"]},
      {"label": "join"},
      {"op": "print", "args": ["x"]},
      {"op": "ret"}
    ]
  }]
}`

const undefinedUse = `{"functions": [{"name": "main", "instrs": [{"op": "print", "args": ["y"]}]}]}`

func runCmd(t *testing.T, input string, cmd string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(cmd, args, strings.NewReader(input), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []string
		want []string
	}{
		{"cfg", "cfg", nil, []string{"@main", "  join:\n    preds: left right\n    succs: ∅"}},
		{"dom", "dom", []string{"-algo", "cooper"}, []string{
			"    join: b0 join",
			"frontier (cooper):",
			"    left: join",
			"  tree:\n    b0\n      left\n      right\n      join",
		}},
		{"defined", "dataflow", nil, []string{"  join:\n    in:  x\n    out: x"}},
		{"live", "dataflow", []string{"-a", "live", "-order", "random", "-seed", "7"}, []string{
			"  b0:\n    in:  cond\n    out: ∅",
			"  join:\n    in:  x\n    out: ∅",
		}},
		{"ssa", "ssa", []string{"-text"}, []string{"@main(cond: bool) {", "  x.2: int = phi x.0 x.1 .left .right;", "  print x.2;"}},
		{"opt", "opt", []string{"-text", "-passes", "ssa,unssa,peephole"}, []string{"  x.2: int = id x.1;\n.join:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCmd(t, diamond, tt.cmd, tt.args...)
			require.Equal(t, 0, code, errOut)
			for _, w := range tt.want {
				require.Contains(t, out, w)
			}
		})
	}
}

func TestRoundTripJSON(t *testing.T) {
	code, out, errOut := runCmd(t, diamond, "roundtrip")
	require.Equal(t, 0, code, errOut)

	prog, err := ir.Decode(strings.NewReader(out))
	require.NoError(t, err)
	fn := prog.Function("main")
	require.NotNil(t, fn)
	for _, in := range fn.Instrs {
		require.False(t, in.IsPhi())
	}
}

func TestUnresolvedReporting(t *testing.T) {
	code, out, errOut := runCmd(t, undefinedUse, "ssa", "-text")
	require.Equal(t, 0, code)
	require.Contains(t, errOut, "warning: @main: b0: use of y has no reaching definition")
	require.Contains(t, out, "print y;")

	code, _, errOut = runCmd(t, undefinedUse, "ssa", "-strict")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "error: unresolved definition: function main: block b0: variable y")
}

const partial = `{"functions": [{"name": "main", "instrs": [
  {"op": "br", "args": ["c"], "labels": ["L", "R"]},
  {"label": "L"},
  {"op": "const", "dest": "x", "type": "int", "value": 1},
  {"op": "jmp", "labels": ["J"]},
  {"label": "R"},
  {"op": "jmp", "labels": ["J"]},
  {"label": "J"},
  {"op": "print", "args": ["x", "y"]},
  {"op": "ret"}
]}]}`

func TestUnresolvedReportedByEveryConversion(t *testing.T) {
	want := []string{
		"warning: @main: b0: use of c has no reaching definition",
		"warning: @main: J: phi operand for x from R has no reaching definition",
		"warning: @main: J: use of y has no reaching definition",
	}

	for _, tt := range []struct {
		cmd  string
		args []string
	}{
		{"ssa", nil},
		{"roundtrip", nil},
		{"opt", nil},
		{"opt", []string{"-passes", "ssa,unssa"}},
	} {
		t.Run(strings.Join(append([]string{tt.cmd}, tt.args...), " "), func(t *testing.T) {
			code, _, errOut := runCmd(t, partial, tt.cmd, tt.args...)
			require.Equal(t, 0, code, errOut)
			for _, w := range want {
				require.Contains(t, errOut, w)
			}
		})
	}

	code, _, errOut := runCmd(t, partial, "roundtrip", "-strict")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "unresolved definition")
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cmd   string
		args  []string
		code  int
		want  string
	}{
		{"bad flag", diamond, "cfg", []string{"-nope"}, 2, "flag provided but not defined"},
		{"bad json", "{", "cfg", nil, 1, "decode program"},
		{"bad analysis", diamond, "dataflow", []string{"-a", "avail"}, 1, `unknown analysis "avail"`},
		{"bad order", diamond, "dataflow", []string{"-order", "stack"}, 1, `unknown worklist order "stack"`},
		{"bad algorithm", diamond, "dom", []string{"-algo", "fast"}, 1, `unknown frontier algorithm "fast"`},
		{"bad pass", diamond, "opt", []string{"-passes", "gvn"}, 1, `unknown pass "gvn"`},
		{"malformed", `{"functions": [{"name": "f", "instrs": [{"op": "jmp", "labels": ["x"]}]}]}`, "cfg", nil, 1,
			"malformed program: function f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCmd(t, tt.input, tt.cmd, tt.args...)
			require.Equal(t, tt.code, code)
			require.Contains(t, errOut, tt.want)
		})
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)
	for _, cmd := range []string{"cfg", "dom", "dataflow", "ssa", "unssa", "roundtrip", "opt"} {
		require.Contains(t, buf.String(), "brilssa "+cmd)
	}
}
