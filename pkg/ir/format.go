package ir

import (
	"fmt"
	"sort"
	"strings"
)

// String renders the instruction in Bril text syntax, without indentation
func (in *Instruction) String() string {
	if in.IsLabel() {
		return "." + in.Label + ":"
	}

	var sb strings.Builder
	if in.Dest != "" {
		sb.WriteString(in.Dest)
		if in.Type != nil {
			sb.WriteString(": ")
			sb.WriteString(FormatType(in.Type))
		}
		sb.WriteString(" = ")
	}
	sb.WriteString(in.Op)

	if in.Op == OpConst {
		fmt.Fprintf(&sb, " %v", in.Value)
	}
	for _, f := range in.Funcs {
		sb.WriteString(" @")
		sb.WriteString(f)
	}
	for _, a := range in.Args {
		sb.WriteString(" ")
		sb.WriteString(a)
	}
	for _, l := range in.Labels {
		sb.WriteString(" .")
		sb.WriteString(l)
	}
	sb.WriteString(";")
	return sb.String()
}

// String renders the function in Bril text syntax
func (fn *Function) String() string {
	var sb strings.Builder

	sb.WriteString("@")
	sb.WriteString(fn.Name)
	if len(fn.Args) > 0 {
		sb.WriteString("(")
		for i, p := range fn.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Name)
			sb.WriteString(": ")
			sb.WriteString(FormatType(p.Type))
		}
		sb.WriteString(")")
	}
	if fn.Type != nil {
		sb.WriteString(": ")
		sb.WriteString(FormatType(fn.Type))
	}
	sb.WriteString(" {\n")

	for _, in := range fn.Instrs {
		if !in.IsLabel() {
			sb.WriteString("  ")
		}
		sb.WriteString(in.String())
		sb.WriteString("\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

// String renders every function of the program
func (p *Program) String() string {
	var sb strings.Builder
	for i, fn := range p.Functions {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fn.String())
	}
	return sb.String()
}

// FormatType renders a Bril type: a base name or a parameterized map such as {"ptr": "int"}
func FormatType(t any) string {
	switch t := t.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"<"+FormatType(t[k])+">")
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
