package dataflow

import (
	"sort"
	"strings"
)

// VarSet is a set of variable names, the fact lattice of the bundled analyses
type VarSet map[string]struct{}

// NewVarSet returns a set holding names
func NewVarSet(names ...string) VarSet {
	s := make(VarSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s VarSet) Add(name string) { s[name] = struct{}{} }

func (s VarSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union returns a new set with the names of s and every other set
func (s VarSet) Union(others ...VarSet) VarSet {
	out := make(VarSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	for _, o := range others {
		for n := range o {
			out[n] = struct{}{}
		}
	}
	return out
}

// Minus returns the names of s not in o
func (s VarSet) Minus(o VarSet) VarSet {
	out := make(VarSet, len(s))
	for n := range s {
		if !o.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

func (s VarSet) Equal(o VarSet) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if !o.Has(n) {
			return false
		}
	}
	return true
}

// Sorted returns the names in ascending order
func (s VarSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// String prints "a, b, c", or ∅ for the empty set
func (s VarSet) String() string {
	if len(s) == 0 {
		return "∅"
	}
	return strings.Join(s.Sorted(), ", ")
}

// UnionAll is the merge function of the bundled analyses. No inputs yield ∅.
func UnionAll(facts []VarSet) VarSet {
	return VarSet{}.Union(facts...)
}
