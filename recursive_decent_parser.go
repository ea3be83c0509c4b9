package main

import (
	"errors"
	"io"
	"log"
	"strconv"
)

// TokenStream is the pull interface the engine parses from.
type TokenStream interface {
	Advance() (Token, error)
	Peek() (Token, error)
}

type EngineOptions struct {
	// Logger receives a trace of every grammar production. Nil discards it.
	Logger *log.Logger
}

// CompilationEngine parses one class in a single recursive-descent pass and
// emits VM code while it parses. It keeps no syntax tree.
type CompilationEngine struct {
	tokens  TokenStream
	writer  *VMWriter
	symbols *SymbolTable
	logger  *log.Logger

	className  string
	ifCount    int
	whileCount int
}

func NewCompilationEngine(options EngineOptions) *CompilationEngine {
	logger := options.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CompilationEngine{
		writer:  NewVMWriter(),
		symbols: NewSymbolTable(),
		logger:  logger,
	}
}

// CompileCode compiles the class read from r with a fresh engine.
func CompileCode(r io.Reader) ([]string, error) {
	return NewCompilationEngine(EngineOptions{}).Compile(r)
}

// Compile tokenizes r and compiles the single class it contains.
func (e *CompilationEngine) Compile(r io.Reader) ([]string, error) {
	return e.CompileTokens(NewTokenizer(r))
}

// CompileTokens compiles one class. Label counters and both symbol scopes
// restart on every call, so labels are unique per compiled file. On error no
// instructions are returned.
func (e *CompilationEngine) CompileTokens(tokens TokenStream) ([]string, error) {
	e.tokens = tokens
	e.symbols.Clear(ClassScope)
	e.writer.Reset()
	e.className = ""
	e.ifCount = 0
	e.whileCount = 0

	if err := e.compileClass(); err != nil {
		return nil, err
	}
	if trailing, err := e.peek(); err != nil {
		return nil, err
	} else if trailing.tokenType != InvalidToken {
		return nil, &SyntaxError{Line: trailing.line, Expected: "end of input", Found: trailing.String()}
	}

	lines := make([]string, len(e.writer.Lines()))
	copy(lines, e.writer.Lines())
	return lines, nil
}

// peek returns the lookahead token, or the zero Token at end of input.
func (e *CompilationEngine) peek() (Token, error) {
	token, err := e.tokens.Peek()
	if errors.Is(err, ErrNoMoreTokens) {
		return Token{}, nil
	}
	return token, err
}

func (e *CompilationEngine) peekIs(tokenType TokenType, terminals ...string) (bool, error) {
	token, err := e.peek()
	if err != nil {
		return false, err
	}
	if token.tokenType != tokenType {
		return false, nil
	}
	for _, terminal := range terminals {
		if token.terminal == terminal {
			return true, nil
		}
	}
	return false, nil
}

// expect consumes the next token and checks it with accept. A missing or
// rejected token is a SyntaxError naming expected.
func (e *CompilationEngine) expect(expected string, accept func(Token) bool) (Token, error) {
	token, err := e.tokens.Advance()
	if errors.Is(err, ErrNoMoreTokens) {
		return Token{}, &SyntaxError{Line: e.lastLine(), Expected: expected, Found: "end of input"}
	}
	if err != nil {
		return Token{}, err
	}
	if !accept(token) {
		return Token{}, &SyntaxError{Line: token.line, Expected: expected, Found: token.String()}
	}
	return token, nil
}

// skip consumes a token already inspected with peek.
func (e *CompilationEngine) skip() error {
	_, err := e.tokens.Advance()
	return err
}

func (e *CompilationEngine) lastLine() int {
	if lines, ok := e.tokens.(interface{ Line() int }); ok {
		return lines.Line()
	}
	return 0
}

func (e *CompilationEngine) expectSymbol(symbol string) error {
	_, err := e.expect(strconv.Quote(symbol), func(t Token) bool {
		return t.Is(SymbolToken, symbol)
	})
	return err
}

func (e *CompilationEngine) expectKeyword(keywords ...string) (string, error) {
	expected := "keyword"
	for i, keyword := range keywords {
		if i == 0 {
			expected += " "
		} else {
			expected += "|"
		}
		expected += keyword
	}
	token, err := e.expect(expected, func(t Token) bool {
		for _, keyword := range keywords {
			if t.Is(Keyword, keyword) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return "", err
	}
	return token.Keyword()
}

func (e *CompilationEngine) expectIdentifier(what string) (Token, error) {
	token, err := e.expect(what, func(t Token) bool {
		return t.tokenType == Identifier
	})
	if err != nil {
		return Token{}, err
	}
	if _, err := token.Identifier(); err != nil {
		return Token{}, err
	}
	return token, nil
}

// compileType accepts int, char, boolean, a class name and, for return
// types, void.
func (e *CompilationEngine) compileType(allowVoid bool) (string, error) {
	expected := "type"
	if allowVoid {
		expected = "type or void"
	}
	token, err := e.expect(expected, func(t Token) bool {
		switch {
		case t.tokenType == Identifier:
			return true
		case t.tokenType == Keyword:
			switch t.terminal {
			case "int", "char", "boolean":
				return true
			case "void":
				return allowVoid
			}
		}
		return false
	})
	return token.terminal, err
}

func (e *CompilationEngine) define(name Token, variableType string, kind Kind) error {
	symbol, err := e.symbols.Define(name.terminal, variableType, kind)
	if err != nil {
		return err
	}
	e.logger.Printf("Registered symbol %q: %s %s %d", name.terminal, symbol.kind, symbol.variableType, symbol.index)
	return nil
}

func (e *CompilationEngine) resolve(name Token) (Symbol, error) {
	symbol, ok := e.symbols.Lookup(name.terminal)
	if !ok {
		return Symbol{}, &UndefinedError{Line: name.line, Name: name.terminal}
	}
	return symbol, nil
}

func (e *CompilationEngine) compileClass() error {
	e.logger.Printf("Compiling class")
	if _, err := e.expectKeyword("class"); err != nil {
		return err
	}
	name, err := e.expectIdentifier("class name")
	if err != nil {
		return err
	}
	e.className = name.terminal
	if err := e.expectSymbol("{"); err != nil {
		return err
	}

	for {
		ok, err := e.peekIs(Keyword, "static", "field")
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := e.compileClassVarDec(); err != nil {
			return err
		}
	}

	for {
		ok, err := e.peekIs(Keyword, "constructor", "function", "method")
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := e.compileSubroutineDec(); err != nil {
			return err
		}
	}

	return e.expectSymbol("}")
}

// compileVarNames parses `name (, name)* ;` and defines each name.
func (e *CompilationEngine) compileVarNames(variableType string, kind Kind) (MachineWord, error) {
	var count MachineWord
	for {
		name, err := e.expectIdentifier("variable name")
		if err != nil {
			return count, err
		}
		if err := e.define(name, variableType, kind); err != nil {
			return count, err
		}
		count++

		more, err := e.peekIs(SymbolToken, ",")
		if err != nil {
			return count, err
		}
		if !more {
			break
		}
		if err := e.skip(); err != nil {
			return count, err
		}
	}
	return count, e.expectSymbol(";")
}

func (e *CompilationEngine) compileClassVarDec() error {
	e.logger.Printf("Compiling class var declaration")
	keyword, err := e.expectKeyword("static", "field")
	if err != nil {
		return err
	}
	kind := Static
	if keyword == "field" {
		kind = Field
	}
	variableType, err := e.compileType(false)
	if err != nil {
		return err
	}
	_, err = e.compileVarNames(variableType, kind)
	return err
}

func (e *CompilationEngine) compileSubroutineDec() error {
	e.logger.Printf("Compiling subroutine dec")
	e.symbols.StartSubroutine()

	subroutineKind, err := e.expectKeyword("constructor", "function", "method")
	if err != nil {
		return err
	}
	if _, err := e.compileType(true); err != nil {
		return err
	}
	name, err := e.expectIdentifier("subroutine name")
	if err != nil {
		return err
	}

	// The receiver always occupies argument 0 of a method
	if subroutineKind == "method" {
		if _, err := e.symbols.Define("this", e.className, Arg); err != nil {
			return err
		}
	}

	if err := e.expectSymbol("("); err != nil {
		return err
	}
	if err := e.compileParameterList(); err != nil {
		return err
	}
	if err := e.expectSymbol(")"); err != nil {
		return err
	}
	return e.compileSubroutineBody(subroutineKind, name.terminal)
}

func (e *CompilationEngine) compileParameterList() error {
	e.logger.Printf("Compiling param list")
	if empty, err := e.peekIs(SymbolToken, ")"); err != nil || empty {
		return err
	}
	for {
		variableType, err := e.compileType(false)
		if err != nil {
			return err
		}
		name, err := e.expectIdentifier("parameter name")
		if err != nil {
			return err
		}
		if err := e.define(name, variableType, Arg); err != nil {
			return err
		}

		more, err := e.peekIs(SymbolToken, ",")
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := e.skip(); err != nil {
			return err
		}
	}
}

func (e *CompilationEngine) compileSubroutineBody(subroutineKind, name string) error {
	e.logger.Printf("Compiling subroutine body %s.%s", e.className, name)
	if err := e.expectSymbol("{"); err != nil {
		return err
	}

	for {
		ok, err := e.peekIs(Keyword, "var")
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := e.compileVarDec(); err != nil {
			return err
		}
	}

	// Only now is the local count final
	e.writer.WriteFunction(e.className+"."+name, e.symbols.VarCount(Var))

	switch subroutineKind {
	case "constructor":
		e.writer.WritePush(ConstVMSegment, e.symbols.VarCount(Field))
		e.writer.WriteCall(AllocFunction, 1)
		e.writer.WritePop(PointerVMSegment, 0)
	case "method":
		e.writer.WritePush(ArgumentVMSegment, 0)
		e.writer.WritePop(PointerVMSegment, 0)
	}

	if err := e.compileStatements(); err != nil {
		return err
	}
	return e.expectSymbol("}")
}

func (e *CompilationEngine) compileVarDec() error {
	e.logger.Printf("Compiling var declaration")
	if _, err := e.expectKeyword("var"); err != nil {
		return err
	}
	variableType, err := e.compileType(false)
	if err != nil {
		return err
	}
	_, err = e.compileVarNames(variableType, Var)
	return err
}

func (e *CompilationEngine) compileStatements() error {
	e.logger.Printf("Compiling statements")
	for {
		token, err := e.peek()
		if err != nil {
			return err
		}
		if token.tokenType != Keyword {
			return nil
		}

		switch token.terminal {
		case "let":
			err = e.compileLetStatement()
		case "if":
			err = e.compileIfStatement()
		case "while":
			err = e.compileWhileStatement()
		case "do":
			err = e.compileDoStatement()
		case "return":
			err = e.compileReturnStatement()
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (e *CompilationEngine) compileLetStatement() error {
	e.logger.Printf("Compiling let statement")
	if _, err := e.expectKeyword("let"); err != nil {
		return err
	}
	name, err := e.expectIdentifier("variable name")
	if err != nil {
		return err
	}
	target, err := e.resolve(name)
	if err != nil {
		return err
	}

	indexed, err := e.peekIs(SymbolToken, "[")
	if err != nil {
		return err
	}
	if indexed {
		if err := e.skip(); err != nil {
			return err
		}
		if err := e.compileExpression(); err != nil {
			return err
		}
		if err := e.expectSymbol("]"); err != nil {
			return err
		}
	}

	if err := e.expectSymbol("="); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	if err := e.expectSymbol(";"); err != nil {
		return err
	}

	if !indexed {
		e.writer.WritePop(target.kind.Segment(), target.index)
		return nil
	}

	// The index is below the value on the stack; park the value so the
	// address can be computed into pointer 1 first.
	e.writer.WritePop(TempVMSegment, 0)
	e.writer.WritePush(target.kind.Segment(), target.index)
	e.writer.WriteArithmetic(AddVMOperation)
	e.writer.WritePop(PointerVMSegment, 1)
	e.writer.WritePush(TempVMSegment, 0)
	e.writer.WritePop(ThatVMSegment, 0)
	return nil
}

// compileConditionBlock compiles `( expression ) { statements }`, jumping to
// endLabel when the condition is false.
func (e *CompilationEngine) compileConditionBlock(endLabel string) error {
	if err := e.expectSymbol("("); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	if err := e.expectSymbol(")"); err != nil {
		return err
	}
	e.writer.WriteArithmetic(NotVMOperation)
	e.writer.WriteIf(endLabel)
	return e.compileBlock()
}

func (e *CompilationEngine) compileBlock() error {
	if err := e.expectSymbol("{"); err != nil {
		return err
	}
	if err := e.compileStatements(); err != nil {
		return err
	}
	return e.expectSymbol("}")
}

func (e *CompilationEngine) compileIfStatement() error {
	e.logger.Printf("Compiling if statement")
	if _, err := e.expectKeyword("if"); err != nil {
		return err
	}
	count := strconv.Itoa(e.ifCount)
	e.ifCount++
	ifEnd := "IF_END_" + count
	elseEnd := "ELSE_END_" + count

	if err := e.compileConditionBlock(ifEnd); err != nil {
		return err
	}

	hasElse, err := e.peekIs(Keyword, "else")
	if err != nil {
		return err
	}
	if !hasElse {
		e.writer.WriteLabel(ifEnd)
		return nil
	}

	if err := e.skip(); err != nil {
		return err
	}
	e.writer.WriteGoto(elseEnd)
	e.writer.WriteLabel(ifEnd)
	if err := e.compileBlock(); err != nil {
		return err
	}
	e.writer.WriteLabel(elseEnd)
	return nil
}

func (e *CompilationEngine) compileWhileStatement() error {
	e.logger.Printf("Compiling while statement")
	if _, err := e.expectKeyword("while"); err != nil {
		return err
	}
	count := strconv.Itoa(e.whileCount)
	e.whileCount++
	start := "WHILE_START_" + count
	end := "WHILE_END_" + count

	e.writer.WriteLabel(start)
	if err := e.compileConditionBlock(end); err != nil {
		return err
	}
	e.writer.WriteGoto(start)
	e.writer.WriteLabel(end)
	return nil
}

func (e *CompilationEngine) compileDoStatement() error {
	e.logger.Printf("Compiling do statement")
	if _, err := e.expectKeyword("do"); err != nil {
		return err
	}
	name, err := e.expectIdentifier("subroutine call")
	if err != nil {
		return err
	}
	if err := e.compileSubroutineCall(name); err != nil {
		return err
	}
	if err := e.expectSymbol(";"); err != nil {
		return err
	}
	// Every call returns a value; drop it
	e.writer.WritePop(TempVMSegment, 0)
	return nil
}

func (e *CompilationEngine) compileReturnStatement() error {
	e.logger.Printf("Compiling return statement")
	if _, err := e.expectKeyword("return"); err != nil {
		return err
	}
	bare, err := e.peekIs(SymbolToken, ";")
	if err != nil {
		return err
	}
	if bare {
		e.writer.WritePush(ConstVMSegment, 0)
	} else if err := e.compileExpression(); err != nil {
		return err
	}
	if err := e.expectSymbol(";"); err != nil {
		return err
	}
	e.writer.WriteReturn()
	return nil
}

// compileExpression applies binary operators strictly left to right; there
// is no precedence.
func (e *CompilationEngine) compileExpression() error {
	e.logger.Printf("Compiling expression")
	if err := e.compileTerm(); err != nil {
		return err
	}
	for {
		token, err := e.peek()
		if err != nil {
			return err
		}
		if token.tokenType != SymbolToken {
			return nil
		}
		if _, ok := binaryOperations[token.terminal]; !ok {
			return nil
		}
		if err := e.skip(); err != nil {
			return err
		}
		if err := e.compileTerm(); err != nil {
			return err
		}
		if err := e.writer.WriteBinaryOp(token.terminal); err != nil {
			return err
		}
	}
}

func (e *CompilationEngine) compileTerm() error {
	e.logger.Printf("Compiling term")
	token, err := e.expect("term", func(t Token) bool {
		switch t.tokenType {
		case IntegerConstant, StringConstant, Identifier:
			return true
		case Keyword:
			switch t.terminal {
			case "true", "false", "null", "this":
				return true
			}
		case SymbolToken:
			switch t.terminal {
			case "(", "-", "~":
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}

	switch token.tokenType {
	case IntegerConstant:
		value, err := token.IntVal()
		if err != nil {
			return err
		}
		e.writer.WritePush(ConstVMSegment, value)
	case StringConstant:
		value, err := token.StringVal()
		if err != nil {
			return err
		}
		e.writer.WriteStringConstant(value)
	case Keyword:
		keyword, err := token.Keyword()
		if err != nil {
			return err
		}
		return e.writer.WriteKeywordConstant(keyword)
	case SymbolToken:
		if token.terminal == "(" {
			if err := e.compileExpression(); err != nil {
				return err
			}
			return e.expectSymbol(")")
		}
		if err := e.compileTerm(); err != nil {
			return err
		}
		return e.writer.WriteUnaryOp(token.terminal)
	case Identifier:
		return e.compileIdentifierTerm(token)
	}
	return nil
}

// compileIdentifierTerm looks one token past the identifier to tell an
// indexed read, a call and a plain variable apart.
func (e *CompilationEngine) compileIdentifierTerm(name Token) error {
	next, err := e.peek()
	if err != nil {
		return err
	}

	switch {
	case next.Is(SymbolToken, "["):
		array, err := e.resolve(name)
		if err != nil {
			return err
		}
		if err := e.skip(); err != nil {
			return err
		}
		e.writer.WritePush(array.kind.Segment(), array.index)
		if err := e.compileExpression(); err != nil {
			return err
		}
		if err := e.expectSymbol("]"); err != nil {
			return err
		}
		e.writer.WriteArithmetic(AddVMOperation)
		e.writer.WritePop(PointerVMSegment, 1)
		e.writer.WritePush(ThatVMSegment, 0)
		return nil
	case next.Is(SymbolToken, "("), next.Is(SymbolToken, "."):
		return e.compileSubroutineCall(name)
	default:
		variable, err := e.resolve(name)
		if err != nil {
			return err
		}
		e.writer.WritePush(variable.kind.Segment(), variable.index)
		return nil
	}
}

// compileSubroutineCall compiles a call whose leading identifier has already
// been consumed. The callee and receiver are settled before any argument is
// pushed:
//
//	name(args)         method on the current object
//	variable.name(args) method on the object stored in variable
//	Class.name(args)    function or constructor, no receiver
func (e *CompilationEngine) compileSubroutineCall(name Token) error {
	e.logger.Printf("Compiling subroutine call %q", name.terminal)
	separator, err := e.expect(`"(" or "."`, func(t Token) bool {
		return t.Is(SymbolToken, "(") || t.Is(SymbolToken, ".")
	})
	if err != nil {
		return err
	}

	var (
		callee    string
		receivers MachineWord
	)
	if separator.terminal == "(" {
		callee = e.className + "." + name.terminal
		receivers = 1
		e.writer.WritePush(PointerVMSegment, 0)
	} else {
		member, err := e.expectIdentifier("subroutine name")
		if err != nil {
			return err
		}
		if err := e.expectSymbol("("); err != nil {
			return err
		}
		if object, ok := e.symbols.Lookup(name.terminal); ok {
			callee = object.variableType + "." + member.terminal
			receivers = 1
			e.writer.WritePush(object.kind.Segment(), object.index)
		} else {
			callee = name.terminal + "." + member.terminal
		}
	}

	nargs, err := e.compileExpressionList()
	if err != nil {
		return err
	}
	if err := e.expectSymbol(")"); err != nil {
		return err
	}
	e.writer.WriteCall(callee, nargs+receivers)
	return nil
}

func (e *CompilationEngine) compileExpressionList() (MachineWord, error) {
	e.logger.Printf("Compiling expression list")
	if empty, err := e.peekIs(SymbolToken, ")"); err != nil || empty {
		return 0, err
	}
	var count MachineWord
	for {
		if err := e.compileExpression(); err != nil {
			return count, err
		}
		count++

		more, err := e.peekIs(SymbolToken, ",")
		if err != nil || !more {
			return count, err
		}
		if err := e.skip(); err != nil {
			return count, err
		}
	}
}
