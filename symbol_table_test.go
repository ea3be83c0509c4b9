package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestSymbolTableDefineIndices(t *testing.T) {
	s := NewSymbolTable()

	for i, name := range []string{"a", "b", "c"} {
		symbol, err := s.Define(name, "int", Field)
		be.Err(t, err, nil)
		be.Equal(t, symbol.Index(), MachineWord(i))
	}
	for i, name := range []string{"s1", "s2"} {
		symbol, err := s.Define(name, "boolean", Static)
		be.Err(t, err, nil)
		be.Equal(t, symbol.Index(), MachineWord(i))
	}
	symbol, err := s.Define("p", "Point", Arg)
	be.Err(t, err, nil)
	be.Equal(t, symbol.Index(), MachineWord(0))
	symbol, err = s.Define("l", "Array", Var)
	be.Err(t, err, nil)
	be.Equal(t, symbol.Index(), MachineWord(0))

	be.Equal(t, s.VarCount(Field), MachineWord(3))
	be.Equal(t, s.VarCount(Static), MachineWord(2))
	be.Equal(t, s.VarCount(Arg), MachineWord(1))
	be.Equal(t, s.VarCount(Var), MachineWord(1))
}

func TestSymbolTableRedefinition(t *testing.T) {
	tests := []struct {
		name        string
		first, then Kind
	}{
		{"field twice", Field, Field},
		{"static over field", Field, Static},
		{"arg twice", Arg, Arg},
		{"var over arg", Arg, Var},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSymbolTable()
			_, err := s.Define("x", "int", tt.first)
			be.Err(t, err, nil)

			_, err = s.Define("x", "char", tt.then)
			var definitionErr *DefinitionError
			be.True(t, errors.As(err, &definitionErr))
			be.Equal(t, definitionErr.Name, "x")
		})
	}
}

func TestSymbolTableShadowing(t *testing.T) {
	s := NewSymbolTable()
	_, err := s.Define("x", "int", Field)
	be.Err(t, err, nil)

	// Different scopes, so no conflict
	_, err = s.Define("x", "char", Var)
	be.Err(t, err, nil)

	be.Equal(t, s.KindOf("x"), Var)
	be.Equal(t, s.TypeOf("x"), "char")
	be.Equal(t, s.IndexOf("x"), MachineWord(0))

	s.StartSubroutine()
	be.Equal(t, s.KindOf("x"), Field)
	be.Equal(t, s.TypeOf("x"), "int")
}

func TestSymbolTableNotFound(t *testing.T) {
	s := NewSymbolTable()
	_, ok := s.Lookup("missing")
	be.True(t, !ok)
	be.Equal(t, s.KindOf("missing"), NoKind)
	be.Equal(t, s.TypeOf("missing"), "")
	be.Equal(t, s.IndexOf("missing"), MachineWord(-1))
}

func TestSymbolTableStartSubroutine(t *testing.T) {
	s := NewSymbolTable()
	_, err := s.Define("f", "int", Field)
	be.Err(t, err, nil)
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Define(name, "int", Arg)
		be.Err(t, err, nil)
	}
	_, err = s.Define("v", "int", Var)
	be.Err(t, err, nil)

	s.StartSubroutine()
	be.Equal(t, s.VarCount(Arg), MachineWord(0))
	be.Equal(t, s.VarCount(Var), MachineWord(0))
	be.Equal(t, s.VarCount(Field), MachineWord(1))

	symbol, err := s.Define("a", "int", Var)
	be.Err(t, err, nil)
	be.Equal(t, symbol.Index(), MachineWord(0))
	symbol, err = s.Define("z", "int", Arg)
	be.Err(t, err, nil)
	be.Equal(t, symbol.Index(), MachineWord(0))
}

func TestSymbolTableClearClassScope(t *testing.T) {
	s := NewSymbolTable()
	_, err := s.Define("f", "int", Field)
	be.Err(t, err, nil)
	_, err = s.Define("a", "int", Arg)
	be.Err(t, err, nil)

	s.Clear(ClassScope)
	_, ok := s.Lookup("f")
	be.True(t, !ok)
	_, ok = s.Lookup("a")
	be.True(t, !ok)
}

func TestKindSegment(t *testing.T) {
	be.Equal(t, Static.Segment(), StaticVMSegment)
	be.Equal(t, Field.Segment(), ThisVMSegment)
	be.Equal(t, Arg.Segment(), ArgumentVMSegment)
	be.Equal(t, Var.Segment(), LocalVMSegment)
	be.Equal(t, Field.Scope(), ClassScope)
	be.Equal(t, Var.Scope(), FunctionScope)
}
