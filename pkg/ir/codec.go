package ir

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads a program in Bril JSON form
func Decode(r io.Reader) (*Program, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var prog Program
	if err := dec.Decode(&prog); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return &prog, nil
}

// Encode writes a program in Bril JSON form
func Encode(w io.Writer, prog *Program) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(prog); err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	return nil
}
