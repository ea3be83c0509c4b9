package main

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func tokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(strings.NewReader(source))
	be.Err(t, err, nil)
	return tokens
}

func terminals(tokens []Token) []string {
	var out []string
	for _, token := range tokens {
		out = append(out, token.terminal)
	}
	return out
}

func TestTokenizeCategories(t *testing.T) {
	tests := []struct {
		input     string
		tokenType TokenType
		terminal  string
	}{
		{"class", Keyword, "class"},
		{"return", Keyword, "return"},
		{"Main", Identifier, "Main"},
		{"_tmp1", Identifier, "_tmp1"},
		{"12345", IntegerConstant, "12345"},
		{`"hello world"`, StringConstant, "hello world"},
		{`""`, StringConstant, ""},
		{"~", SymbolToken, "~"},
		{"<", SymbolToken, "<"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			be.Equal(t, len(tokens), 1)
			be.Equal(t, tokens[0].Type(), tt.tokenType)
			be.Equal(t, tokens[0].Terminal(), tt.terminal)
		})
	}
}

func TestTokenizeKeywordPrefixIsIdentifier(t *testing.T) {
	tokens := tokenize(t, "done dog do classy this.x")
	be.Equal(t, terminals(tokens), []string{"done", "dog", "do", "classy", "this", ".", "x"})
	be.Equal(t, tokens[0].Type(), Identifier)
	be.Equal(t, tokens[2].Type(), Keyword)
	be.Equal(t, tokens[3].Type(), Identifier)
	be.Equal(t, tokens[4].Type(), Keyword)
}

func TestTokenizeWithoutWhitespace(t *testing.T) {
	tokens := tokenize(t, "let a[i]=x+1;")
	be.Equal(t, terminals(tokens), []string{"let", "a", "[", "i", "]", "=", "x", "+", "1", ";"})
}

func TestTokenizeComments(t *testing.T) {
	source := `// header
class /* inline */ Main /* a */ { /* b */
/* multi
   line */ field int x; // trailing
}`
	tokens := tokenize(t, source)
	be.Equal(t, terminals(tokens), []string{"class", "Main", "{", "field", "int", "x", ";", "}"})
	be.Equal(t, tokens[0].Line(), 2)
	be.Equal(t, tokens[3].Line(), 4)
	be.Equal(t, tokens[7].Line(), 5)
}

func TestTokenizeCommentMarkersInString(t *testing.T) {
	tokens := tokenize(t, `do Output.printString("a // b /* c */");`)
	be.Equal(t, len(tokens), 8)
	be.Equal(t, tokens[5].Type(), StringConstant)
	be.Equal(t, tokens[5].Terminal(), "a // b /* c */")
}

func TestTokenizeCommentAtEndOfInput(t *testing.T) {
	tokens := tokenize(t, "x // no newline")
	be.Equal(t, terminals(tokens), []string{"x"})
}

func TestTokenizeLexicalError(t *testing.T) {
	_, err := Tokenize(strings.NewReader("let x = 1;\nlet y = # 2;"))
	var lexicalErr *LexicalError
	be.True(t, errors.As(err, &lexicalErr))
	be.Equal(t, lexicalErr.Line, 2)
	be.Equal(t, lexicalErr.Text, "# 2;")
}

func TestTokenizeNonASCIIString(t *testing.T) {
	_, err := Tokenize(strings.NewReader(`let s = "café";`))
	var lexicalErr *LexicalError
	be.True(t, errors.As(err, &lexicalErr))
	be.Equal(t, lexicalErr.Text, "\"café\";")
}

func TestFilteredReaderSmallBuffer(t *testing.T) {
	reader := NewFilteredReader(strings.NewReader("a é /* c */ b // d\ne"))
	var out []byte
	buf := make([]byte, 1)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		be.Err(t, err, nil)
	}
	be.Equal(t, string(out), "a é   b \ne")
}

func TestTokenizeManyLines(t *testing.T) {
	source := strings.Repeat("let x = 1;\n", 5000)
	tokens := tokenize(t, source)
	be.Equal(t, len(tokens), 25000)
	be.Equal(t, tokens[len(tokens)-1].Line(), 5000)
}

func TestTokenizeLongLine(t *testing.T) {
	tokens := tokenize(t, strings.Repeat("x ", 40000))
	be.Equal(t, len(tokens), 40000)

	_, err := Tokenize(strings.NewReader(strings.Repeat("x", MaxLineLength+1)))
	be.Err(t, err, bufio.ErrTooLong)
	be.Err(t, err, "line 1: longer than")
}

func TestTokenizeIntegerRange(t *testing.T) {
	tokens := tokenize(t, "32767")
	value, err := tokens[0].IntVal()
	be.Err(t, err, nil)
	be.Equal(t, value, MachineWord(32767))

	_, err = Tokenize(strings.NewReader("32768"))
	var lexicalErr *LexicalError
	be.True(t, errors.As(err, &lexicalErr))
}

func TestTokenizeUnterminatedComment(t *testing.T) {
	_, err := Tokenize(strings.NewReader("class /* never closed\nfoo"))
	var lexicalErr *LexicalError
	be.True(t, errors.As(err, &lexicalErr))
	be.Equal(t, lexicalErr.Line, 1)
}

func TestTokenizerPeekAndAdvance(t *testing.T) {
	tokenizer := NewTokenizer(strings.NewReader("let x"))

	peeked, err := tokenizer.Peek()
	be.Err(t, err, nil)
	be.Equal(t, peeked.Terminal(), "let")

	// Peeking twice does not consume
	peeked, err = tokenizer.Peek()
	be.Err(t, err, nil)
	be.Equal(t, peeked.Terminal(), "let")

	token, err := tokenizer.Advance()
	be.Err(t, err, nil)
	be.Equal(t, token.Terminal(), "let")
	be.Equal(t, tokenizer.Token().Terminal(), "let")

	be.True(t, tokenizer.HasMoreTokens())
	token, err = tokenizer.Advance()
	be.Err(t, err, nil)
	be.Equal(t, token.Terminal(), "x")

	be.True(t, !tokenizer.HasMoreTokens())
	_, err = tokenizer.Advance()
	be.True(t, errors.Is(err, ErrNoMoreTokens))
}

func TestTokenAccessors(t *testing.T) {
	token := NewToken(Identifier, "count", 3)

	name, err := token.Identifier()
	be.Err(t, err, nil)
	be.Equal(t, name, "count")

	_, err = token.Keyword()
	var misuseErr *MisuseError
	be.True(t, errors.As(err, &misuseErr))
	be.Equal(t, misuseErr.Accessor, "Keyword")

	_, err = token.IntVal()
	be.True(t, errors.As(err, &misuseErr))
	_, err = token.Symbol()
	be.True(t, errors.As(err, &misuseErr))
	_, err = token.StringVal()
	be.True(t, errors.As(err, &misuseErr))
}
