package tokens

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const punctChars = "!#$%&*+,-./:;<=>?@^|~\\'"

// Error is a lexical error.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// File is a lexed source file.
type File struct {
	Name   string
	Tokens []Token
	// Trailer holds the trivia after the last token.
	Trailer string
}

// Lexer turns source text into a token tree.
type Lexer struct {
	name   string
	src    string
	offset int
	line   int
	col    int
}

// NewLexer returns a lexer for src. name is used in positions only.
func NewLexer(name, src string) *Lexer {
	return &Lexer{name: name, src: src, line: 1, col: 1}
}

// Lex tokenizes src into a token tree.
func Lex(name, src string) (*File, error) {
	return NewLexer(name, src).Lex()
}

// LexString tokenizes src, discarding the trailing trivia. It is mostly
// useful for building invocations by hand.
func LexString(src string) ([]Token, error) {
	f, err := Lex("", src)
	if err != nil {
		return nil, err
	}
	return f.Tokens, nil
}

// Lex consumes the whole input.
func (l *Lexer) Lex() (*File, error) {
	toks, trailer, err := l.lexSequence(None, Pos{})
	if err != nil {
		return nil, err
	}
	return &File{Name: l.name, Tokens: toks, Trailer: trailer}, nil
}

func (l *Lexer) pos() Pos {
	return Pos{Filename: l.name, Offset: l.offset, Line: l.line, Column: l.col}
}

func (l *Lexer) errorf(p Pos, format string, args ...any) error {
	return &Error{Pos: p, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) eof() bool { return l.offset >= len(l.src) }

func (l *Lexer) peekRune(skip int) rune {
	off := l.offset
	for i := 0; i <= skip; i++ {
		if off >= len(l.src) {
			return -1
		}
		r, size := utf8.DecodeRuneInString(l.src[off:])
		if i == skip {
			return r
		}
		off += size
	}
	return -1
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col += size
	}
	return r
}

// lexSequence reads tokens until the closing character of delim, or until
// end of input when delim is None. It returns the trivia found before the
// closing delimiter.
func (l *Lexer) lexSequence(delim Delimiter, open Pos) ([]Token, string, error) {
	var toks []Token
	for {
		lead, err := l.skipTrivia()
		if err != nil {
			return nil, "", err
		}
		if l.eof() {
			if delim != None {
				return nil, "", l.errorf(open, "unclosed delimiter %s", delim)
			}
			return toks, lead, nil
		}

		start := l.pos()
		r := l.peekRune(0)
		switch r {
		case ')', '}', ']':
			if delim == None || string(r) != delim.Close() {
				return nil, "", l.errorf(start, "unexpected closing delimiter '%c'", r)
			}
			l.advance()
			return toks, lead, nil
		case '(', '{', '[':
			l.advance()
			d := delimiterOf(r)
			children, closeLead, err := l.lexSequence(d, start)
			if err != nil {
				return nil, "", err
			}
			end := l.pos()
			end.Offset--
			end.Column--
			toks = append(toks, Token{
				Kind:      Group,
				Delim:     d,
				Children:  children,
				Pos:       start,
				End:       end,
				Lead:      lead,
				CloseLead: closeLead,
			})
			continue
		}

		tok, err := l.lexLeaf(start)
		if err != nil {
			return nil, "", err
		}
		tok.Lead = lead
		toks = append(toks, tok)
	}
}

func delimiterOf(r rune) Delimiter {
	switch r {
	case '(':
		return Parenthesis
	case '{':
		return Brace
	default:
		return Bracket
	}
}

func (l *Lexer) skipTrivia() (string, error) {
	start := l.offset
	for !l.eof() {
		r := l.peekRune(0)
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekRune(1) == '/':
			for !l.eof() && l.peekRune(0) != '\n' {
				l.advance()
			}
		case r == '/' && l.peekRune(1) == '*':
			p := l.pos()
			l.advance()
			l.advance()
			closed := false
			for !l.eof() {
				if l.peekRune(0) == '*' && l.peekRune(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return "", l.errorf(p, "comment not terminated")
			}
		default:
			return l.src[start:l.offset], nil
		}
	}
	return l.src[start:l.offset], nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isPunctChar(r rune) bool {
	return r >= 0 && r < utf8.RuneSelf && strings.ContainsRune(punctChars, r)
}

func (l *Lexer) lexLeaf(start Pos) (Token, error) {
	r := l.peekRune(0)
	switch {
	case isIdentStart(r):
		return l.lexIdent(start)
	case unicode.IsDigit(r):
		return l.lexNumber(start), nil
	case r == '"':
		return l.lexQuoted(start)
	case r == '`':
		return l.lexBacktick(start)
	case r == '\'':
		if tok, ok, err := l.lexChar(start); ok || err != nil {
			return tok, err
		}
		l.advance()
		// A quote that does not start a character literal is a lifetime or
		// label marker and always binds to what follows.
		return Token{Kind: Punct, Text: "'", Spacing: Joint, Pos: start}, nil
	case isPunctChar(r):
		l.advance()
		sp := Alone
		if isPunctChar(l.peekRune(0)) {
			sp = Joint
		}
		return Token{Kind: Punct, Text: string(r), Spacing: sp, Pos: start}, nil
	}
	return Token{}, l.errorf(start, "unexpected character %q", r)
}

func (l *Lexer) lexIdent(start Pos) (Token, error) {
	for !l.eof() && isIdentPart(l.peekRune(0)) {
		l.advance()
	}
	text := l.src[start.Offset:l.offset]
	switch text {
	case "b", "c":
		switch l.peekRune(0) {
		case '"':
			return l.lexQuoted(start)
		case '\'':
			if tok, ok, err := l.lexChar(start); ok || err != nil {
				return tok, err
			}
		}
	case "r", "br", "cr":
		if r := l.peekRune(0); r == '"' || (r == '#' && l.rawHashesThenQuote()) {
			return l.lexRaw(start)
		}
	}
	return Token{Kind: Ident, Text: text, Pos: start}, nil
}

func (l *Lexer) rawHashesThenQuote() bool {
	for i := 0; ; i++ {
		switch l.peekRune(i) {
		case '#':
			continue
		case '"':
			return true
		default:
			return false
		}
	}
}

func (l *Lexer) lexNumber(start Pos) Token {
	for !l.eof() {
		r := l.peekRune(0)
		switch {
		case isIdentPart(r):
			l.advance()
		case r == '.' && unicode.IsDigit(l.peekRune(1)) && !strings.Contains(l.src[start.Offset:l.offset], "."):
			l.advance()
		case (r == '+' || r == '-') && l.afterExponent(start) && unicode.IsDigit(l.peekRune(1)):
			l.advance()
		default:
			return Token{Kind: Literal, Text: l.src[start.Offset:l.offset], Pos: start}
		}
	}
	return Token{Kind: Literal, Text: l.src[start.Offset:l.offset], Pos: start}
}

// afterExponent reports whether the number read so far ends in an exponent
// marker, so that a following sign belongs to the literal.
func (l *Lexer) afterExponent(start Pos) bool {
	text := strings.ToLower(l.src[start.Offset:l.offset])
	if text == "" {
		return false
	}
	last := text[len(text)-1]
	hex := strings.HasPrefix(text, "0x")
	if hex {
		return last == 'p'
	}
	return last == 'e'
}

// lexQuoted reads a double-quoted string with backslash escapes. A prefix
// such as b has already been consumed.
func (l *Lexer) lexQuoted(start Pos) (Token, error) {
	l.advance()
	for {
		if l.eof() {
			return Token{}, l.errorf(start, "string literal not terminated")
		}
		r := l.advance()
		if r == '\\' {
			if l.eof() {
				return Token{}, l.errorf(start, "string literal not terminated")
			}
			l.advance()
			continue
		}
		if r == '"' {
			break
		}
	}
	l.literalSuffix()
	return Token{Kind: Literal, Text: l.src[start.Offset:l.offset], Pos: start}, nil
}

func (l *Lexer) lexBacktick(start Pos) (Token, error) {
	l.advance()
	for {
		if l.eof() {
			return Token{}, l.errorf(start, "raw string literal not terminated")
		}
		if l.advance() == '`' {
			return Token{Kind: Literal, Text: l.src[start.Offset:l.offset], Pos: start}, nil
		}
	}
}

// lexRaw reads r"..." and r#"..."# style literals, the prefix already
// consumed.
func (l *Lexer) lexRaw(start Pos) (Token, error) {
	hashes := 0
	for l.peekRune(0) == '#' {
		l.advance()
		hashes++
	}
	l.advance() // opening quote
	closing := "\"" + strings.Repeat("#", hashes)
	for {
		if l.eof() {
			return Token{}, l.errorf(start, "raw string literal not terminated")
		}
		if strings.HasPrefix(l.src[l.offset:], closing) {
			for range closing {
				l.advance()
			}
			l.literalSuffix()
			return Token{Kind: Literal, Text: l.src[start.Offset:l.offset], Pos: start}, nil
		}
		l.advance()
	}
}

// lexChar reads a character literal. ok is false, with nothing consumed, when
// the quote does not start one.
func (l *Lexer) lexChar(start Pos) (tok Token, ok bool, err error) {
	switch {
	case l.peekRune(1) == '\\':
		l.advance()
		l.advance()
		for {
			if l.eof() || l.peekRune(0) == '\n' {
				return Token{}, true, l.errorf(start, "character literal not terminated")
			}
			if l.advance() == '\'' {
				break
			}
		}
	case l.peekRune(1) != -1 && l.peekRune(1) != '\'' && l.peekRune(2) == '\'':
		l.advance()
		l.advance()
		l.advance()
	default:
		return Token{}, false, nil
	}
	l.literalSuffix()
	return Token{Kind: Literal, Text: l.src[start.Offset:l.offset], Pos: start}, true, nil
}

// literalSuffix consumes a type suffix glued to a literal, as in "abc"suffix.
func (l *Lexer) literalSuffix() {
	if !isIdentStart(l.peekRune(0)) {
		return
	}
	for !l.eof() && isIdentPart(l.peekRune(0)) {
		l.advance()
	}
}
