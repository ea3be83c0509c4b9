package main

// Kind is the symbol-table category of a variable. It decides both the scope
// a name lives in and the segment a reference compiles to.
type Kind string

const (
	NoKind Kind = ""
	Static Kind = "static"
	Field  Kind = "field"
	Arg    Kind = "argument"
	Var    Kind = "var"
)

// Scope is ClassScope for Static and Field, FunctionScope for Arg and Var.
func (k Kind) Scope() Scope {
	switch k {
	case Static, Field:
		return ClassScope
	case Arg, Var:
		return FunctionScope
	}
	return InvalidScope
}

// Segment maps the kind onto the VM memory segment holding its values.
func (k Kind) Segment() VMSegmentType {
	switch k {
	case Static:
		return StaticVMSegment
	case Field:
		return ThisVMSegment
	case Arg:
		return ArgumentVMSegment
	case Var:
		return LocalVMSegment
	}
	return InvalidVMSegmentType
}

func (k Kind) String() string {
	if k == NoKind {
		return "none"
	}
	return string(k)
}

type Symbol struct {
	kind         Kind
	variableType string
	index        MachineWord
}

func (s Symbol) Kind() Kind {
	return s.kind
}

func (s Symbol) Type() string {
	return s.variableType
}

func (s Symbol) Index() MachineWord {
	return s.index
}
