package main

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

type VMSegmentType string

const (
	InvalidVMSegmentType VMSegmentType = ""
	ConstVMSegment       VMSegmentType = "constant"
	ArgumentVMSegment    VMSegmentType = "argument"
	LocalVMSegment       VMSegmentType = "local"
	StaticVMSegment      VMSegmentType = "static"
	ThisVMSegment        VMSegmentType = "this"
	ThatVMSegment        VMSegmentType = "that"
	PointerVMSegment     VMSegmentType = "pointer"
	TempVMSegment        VMSegmentType = "temp"
)

type VMOperation string

const (
	InvalidVMOperation VMOperation = ""
	AddVMOperation     VMOperation = "add"
	SubVMOperation     VMOperation = "sub"
	NegVMOperation     VMOperation = "neg"
	EqVMOperation      VMOperation = "eq"
	GtVMOperation      VMOperation = "gt"
	LtVMOperation      VMOperation = "lt"
	AndVMOperation     VMOperation = "and"
	OrVMOperation      VMOperation = "or"
	NotVMOperation     VMOperation = "not"
	MulVMOperation     VMOperation = "mul"
	DivVMOperation     VMOperation = "div"
)

// Runtime library routines the generated code relies on.
const (
	MultiplyFunction   = "Math.multiply"
	DivideFunction     = "Math.divide"
	AllocFunction      = "Memory.alloc"
	StringNewFunction  = "String.new"
	AppendCharFunction = "String.appendChar"
)

var (
	binaryOperations = map[string]VMOperation{
		"+": AddVMOperation,
		"-": SubVMOperation,
		"*": MulVMOperation,
		"/": DivVMOperation,
		"&": AndVMOperation,
		"|": OrVMOperation,
		"<": LtVMOperation,
		">": GtVMOperation,
		"=": EqVMOperation,
	}
	unaryOperations = map[string]VMOperation{
		"-": NegVMOperation,
		"~": NotVMOperation,
	}
)

// Formatting is kept free of state so the instruction syntax lives in one place.

func PushCommand(segment VMSegmentType, index MachineWord) string {
	return fmt.Sprintf("push %s %d", segment, index)
}

func PopCommand(segment VMSegmentType, index MachineWord) string {
	return fmt.Sprintf("pop %s %d", segment, index)
}

func LabelCommand(label string) string {
	return "label " + label
}

func GotoCommand(label string) string {
	return "goto " + label
}

func IfCommand(label string) string {
	return "if-goto " + label
}

func CallCommand(name string, nargs MachineWord) string {
	return "call " + name + " " + strconv.Itoa(int(nargs))
}

func FunctionCommand(name string, nlocals MachineWord) string {
	return "function " + name + " " + strconv.Itoa(int(nlocals))
}

func ArithmeticCommand(operation VMOperation) string {
	switch operation {
	case DivVMOperation:
		return CallCommand(DivideFunction, 2)
	case MulVMOperation:
		return CallCommand(MultiplyFunction, 2)
	default:
		return string(operation)
	}
}

// VMWriter collects instruction lines in emission order. Nothing reaches an
// io.Writer until WriteTo, so a failed compilation leaves no output behind.
type VMWriter struct {
	lines []string
}

func NewVMWriter() *VMWriter {
	return &VMWriter{}
}

func (w *VMWriter) WriteCommand(command string) {
	w.lines = append(w.lines, command)
}

func (w *VMWriter) WritePush(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(PushCommand(segment, index))
}

func (w *VMWriter) WritePop(segment VMSegmentType, index MachineWord) {
	w.WriteCommand(PopCommand(segment, index))
}

func (w *VMWriter) WriteStringConstant(constant string) {
	w.WritePush(ConstVMSegment, MachineWord(utf8.RuneCountInString(constant)))
	w.WriteCall(StringNewFunction, 1)
	for _, c := range constant {
		// appendChar returns the string, leaving it on the stack for the next one
		w.WritePush(ConstVMSegment, MachineWord(c))
		w.WriteCall(AppendCharFunction, 2)
	}
}

func (w *VMWriter) WriteKeywordConstant(keyword string) error {
	switch keyword {
	case "true":
		w.WritePush(ConstVMSegment, 1)
		w.WriteArithmetic(NegVMOperation)
	case "false", "null":
		w.WritePush(ConstVMSegment, 0)
	case "this":
		w.WritePush(PointerVMSegment, 0)
	default:
		return fmt.Errorf("invalid keyword constant %q", keyword)
	}
	return nil
}

func (w *VMWriter) WriteArithmetic(operation VMOperation) {
	w.WriteCommand(ArithmeticCommand(operation))
}

func (w *VMWriter) WriteBinaryOp(symbol string) error {
	operation, ok := binaryOperations[symbol]
	if !ok {
		return fmt.Errorf("invalid binary operator %q", symbol)
	}
	w.WriteArithmetic(operation)
	return nil
}

func (w *VMWriter) WriteUnaryOp(symbol string) error {
	operation, ok := unaryOperations[symbol]
	if !ok {
		return fmt.Errorf("invalid unary operator %q", symbol)
	}
	w.WriteArithmetic(operation)
	return nil
}

func (w *VMWriter) WriteLabel(label string) {
	w.WriteCommand(LabelCommand(label))
}

func (w *VMWriter) WriteGoto(label string) {
	w.WriteCommand(GotoCommand(label))
}

func (w *VMWriter) WriteIf(label string) {
	w.WriteCommand(IfCommand(label))
}

func (w *VMWriter) WriteCall(name string, nargs MachineWord) {
	w.WriteCommand(CallCommand(name, nargs))
}

func (w *VMWriter) WriteFunction(name string, nlocals MachineWord) {
	w.WriteCommand(FunctionCommand(name, nlocals))
}

func (w *VMWriter) WriteReturn() {
	w.WriteCommand("return")
}

func (w *VMWriter) Lines() []string {
	return w.lines
}

func (w *VMWriter) Reset() {
	w.lines = nil
}

// WriteTo writes every collected line followed by a newline.
func (w *VMWriter) WriteTo(out io.Writer) (int64, error) {
	return WriteLines(out, w.lines)
}

func WriteLines(out io.Writer, lines []string) (int64, error) {
	var written int64
	for _, line := range lines {
		n, err := io.WriteString(out, line+"\n")
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
