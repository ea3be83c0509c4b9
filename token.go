package main

import (
	"strconv"
)

type MachineWord int16

// MaxIntConstant is the largest integer literal a 16 bit word can hold.
const MaxIntConstant = 32767

type TokenType string

const (
	InvalidToken    TokenType = ""
	Keyword         TokenType = "keyword"
	SymbolToken     TokenType = "symbol"
	IntegerConstant TokenType = "integerConstant"
	StringConstant  TokenType = "stringConstant"
	Identifier      TokenType = "identifier"
)

type Token struct {
	tokenType TokenType
	terminal  string
	line      int
}

func NewToken(tokenType TokenType, terminal string, line int) Token {
	return Token{tokenType: tokenType, terminal: terminal, line: line}
}

func (t Token) Type() TokenType {
	return t.tokenType
}

func (t Token) Terminal() string {
	return t.terminal
}

func (t Token) Line() int {
	return t.line
}

// Is reports whether t is the keyword or symbol terminal.
func (t Token) Is(tokenType TokenType, terminal string) bool {
	return t.tokenType == tokenType && t.terminal == terminal
}

func (t Token) String() string {
	if t.tokenType == InvalidToken {
		return "end of input"
	}
	return string(t.tokenType) + " " + strconv.Quote(t.terminal)
}

func (t Token) accessor(name string, want TokenType) (string, error) {
	if t.tokenType != want {
		return "", &MisuseError{Accessor: name, Token: t}
	}
	return t.terminal, nil
}

func (t Token) Keyword() (string, error) {
	return t.accessor("Keyword", Keyword)
}

func (t Token) Symbol() (string, error) {
	return t.accessor("Symbol", SymbolToken)
}

func (t Token) Identifier() (string, error) {
	return t.accessor("Identifier", Identifier)
}

func (t Token) StringVal() (string, error) {
	return t.accessor("StringVal", StringConstant)
}

// IntVal parses the integer constant. The tokenizer already rejects values
// that do not fit a MachineWord.
func (t Token) IntVal() (MachineWord, error) {
	terminal, err := t.accessor("IntVal", IntegerConstant)
	if err != nil {
		return 0, err
	}
	word, err := strconv.Atoi(terminal)
	// < 0 as - is an operator
	if err != nil || word > MaxIntConstant || word < 0 {
		return 0, &LexicalError{Line: t.line, Text: terminal}
	}
	return MachineWord(word), nil
}
