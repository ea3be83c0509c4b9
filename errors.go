package main

import (
	"errors"
	"fmt"
)

// ErrNoMoreTokens is returned by the tokenizer once the input is exhausted.
var ErrNoMoreTokens = errors.New("no more tokens")

// LexicalError reports input that none of the token patterns match.
type LexicalError struct {
	Line int
	Text string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("line %d: lexical error: cannot tokenize %q", e.Line, e.Text)
}

// SyntaxError reports a required token or category missing at a grammar point.
type SyntaxError struct {
	Line     int
	Expected string
	Found    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: syntax error: expected %s but found %s", e.Line, e.Expected, e.Found)
}

// DefinitionError reports a name defined twice in the same scope.
type DefinitionError struct {
	Name string
	Kind Kind
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition error: %s %q already defined in %s scope", e.Kind, e.Name, e.Kind.Scope())
}

// UndefinedError reports a variable reference that resolves in neither scope.
type UndefinedError struct {
	Line int
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("line %d: undefined variable %q", e.Line, e.Name)
}

// MisuseError reports a token accessor called on a token of another category.
type MisuseError struct {
	Accessor string
	Token    Token
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%s called on %s token %q", e.Accessor, e.Token.tokenType, e.Token.terminal)
}
