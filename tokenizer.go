package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	keywordRegex         = regexp.MustCompile(`^(class|constructor|function|method|field|static|var|int|char|boolean|void|true|false|null|this|let|do|if|else|while|return)\b`)
	identifierRegex      = regexp.MustCompile(`^[a-zA-Z_]\w*`)
	integerConstantRegex = regexp.MustCompile(`^\d+`)
	stringConstantRegex  = regexp.MustCompile(`^"[\t !#-~]*"`)
	symbolRegex          = regexp.MustCompile(`^[\{\}\[\]\(\)\.\,\;\+\-\*\/\&\|\<\>\=\~]`)

	// Tried in order; KEYWORD before IDENTIFIER so reserved words win.
	tokenPatterns = []struct {
		regex     *regexp.Regexp
		tokenType TokenType
	}{
		{keywordRegex, Keyword},
		{identifierRegex, Identifier},
		{integerConstantRegex, IntegerConstant},
		{stringConstantRegex, StringConstant},
		{symbolRegex, SymbolToken},
	}
)

// FilteredReader strips // and /* */ comments from the underlying reader.
// Newlines inside block comments are kept so line numbers stay accurate, and
// comment markers inside string constants are left alone.
type FilteredReader struct {
	reader   *bufio.Reader
	inString bool
	// newlines swallowed by a block comment, still to be emitted
	pendingNewlines int
	line            int
	// bytes of a rune that did not fit in the last Read
	overflow []byte
}

func NewFilteredReader(r io.Reader) *FilteredReader {
	return &FilteredReader{reader: bufio.NewReader(r), line: 1}
}

func (r *FilteredReader) Read(b []byte) (int, error) {
	i := copy(b, r.overflow)
	r.overflow = r.overflow[i:]

	var encoded [utf8.UTFMax]byte
	for i < len(b) {
		char, err := r.nextRune()
		if err != nil {
			if errors.Is(err, io.EOF) && i > 0 {
				return i, nil
			}
			return i, err
		}
		// A rune that does not fit is finished by the next Read
		n := utf8.EncodeRune(encoded[:], char)
		written := copy(b[i:], encoded[:n])
		r.overflow = append(r.overflow, encoded[written:n]...)
		i += written
	}
	return i, nil
}

// nextRune returns the next rune with comments removed.
func (r *FilteredReader) nextRune() (rune, error) {
	if r.pendingNewlines > 0 {
		r.pendingNewlines--
		return '\n', nil
	}

	char, _, err := r.reader.ReadRune()
	if err != nil {
		return 0, err
	}

	switch {
	case r.inString:
		if char == '"' || char == '\n' {
			r.inString = false
		}
	case char == '"':
		r.inString = true
	case char == '/':
		next, _ := r.reader.Peek(1)
		if len(next) == 1 && next[0] == '/' {
			// Discard until newline character
			if _, err := r.reader.ReadString('\n'); err != nil {
				return 0, err
			}
			char = '\n'
		} else if len(next) == 1 && next[0] == '*' {
			r.reader.ReadRune()
			if err := r.skipBlockComment(); err != nil {
				return 0, err
			}
			// A comment separates tokens like whitespace does
			char = ' '
		}
	}

	if char == '\n' {
		r.line++
	}
	return char, nil
}

func (r *FilteredReader) skipBlockComment() error {
	startLine := r.line
	previous := rune(0)
	for {
		char, _, err := r.reader.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &LexicalError{Line: startLine, Text: "/* (unterminated comment)"}
			}
			return err
		}
		if char == '\n' {
			r.pendingNewlines++
		}
		if previous == '*' && char == '/' {
			r.line += r.pendingNewlines
			return nil
		}
		previous = char
	}
}

// Tokenizer is a forward-only token stream with one token of lookahead.
// Lines are tokenized lazily as tokens are pulled.
type Tokenizer struct {
	scanner *bufio.Scanner
	line    int
	pending []Token

	current   Token
	lookahead *Token
}

// MaxLineLength bounds a single source line, string constants included.
const MaxLineLength = 1 << 20

func NewTokenizer(r io.Reader) *Tokenizer {
	scanner := bufio.NewScanner(NewFilteredReader(r))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), MaxLineLength)
	scanner.Split(bufio.ScanLines)
	return &Tokenizer{scanner: scanner}
}

// matchToken tries every pattern in priority order against the start of text.
func matchToken(text string) (TokenType, string, bool) {
	for _, pattern := range tokenPatterns {
		if match := pattern.regex.FindString(text); match != "" {
			return pattern.tokenType, match, true
		}
	}
	return InvalidToken, "", false
}

// TokenizeLine splits one comment-free source line into tokens.
func TokenizeLine(text string, line int) ([]Token, error) {
	var tokens []Token
	remaining := strings.TrimLeftFunc(text, unicode.IsSpace)
	for remaining != "" {
		tokenType, match, ok := matchToken(remaining)
		if !ok {
			return nil, &LexicalError{Line: line, Text: remaining}
		}

		terminal := match
		switch tokenType {
		case StringConstant:
			terminal = match[1 : len(match)-1]
		case IntegerConstant:
			if _, err := NewToken(tokenType, match, line).IntVal(); err != nil {
				return nil, err
			}
		}
		tokens = append(tokens, NewToken(tokenType, terminal, line))
		remaining = strings.TrimLeftFunc(remaining[len(match):], unicode.IsSpace)
	}
	return tokens, nil
}

func (t *Tokenizer) next() (Token, error) {
	for len(t.pending) == 0 {
		if !t.scanner.Scan() {
			if err := t.scanner.Err(); errors.Is(err, bufio.ErrTooLong) {
				return Token{}, fmt.Errorf("line %d: longer than %d bytes: %w", t.line+1, MaxLineLength, err)
			} else if err != nil {
				return Token{}, err
			}
			return Token{}, ErrNoMoreTokens
		}
		t.line++
		tokens, err := TokenizeLine(t.scanner.Text(), t.line)
		if err != nil {
			return Token{}, err
		}
		t.pending = tokens
	}

	token := t.pending[0]
	t.pending = t.pending[1:]
	return token, nil
}

// Advance consumes and returns the next token. It returns ErrNoMoreTokens
// once the input is exhausted.
func (t *Tokenizer) Advance() (Token, error) {
	if t.lookahead != nil {
		t.current = *t.lookahead
		t.lookahead = nil
		return t.current, nil
	}
	token, err := t.next()
	if err != nil {
		return Token{}, err
	}
	t.current = token
	return token, nil
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	if t.lookahead == nil {
		token, err := t.next()
		if err != nil {
			return Token{}, err
		}
		t.lookahead = &token
	}
	return *t.lookahead, nil
}

// HasMoreTokens reports whether Advance would yield another token.
func (t *Tokenizer) HasMoreTokens() bool {
	_, err := t.Peek()
	return err == nil
}

// Token returns the most recently advanced token.
func (t *Tokenizer) Token() Token {
	return t.current
}

// Line is the last source line read.
func (t *Tokenizer) Line() int {
	return t.line
}

// Tokenize drains r into a token slice.
func Tokenize(r io.Reader) ([]Token, error) {
	tokenizer := NewTokenizer(r)
	var tokens []Token
	for {
		token, err := tokenizer.Advance()
		if errors.Is(err, ErrNoMoreTokens) {
			return tokens, nil
		}
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		tokens = append(tokens, token)
	}
}
