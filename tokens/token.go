package tokens

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

const (
	Ident   Kind = iota // identifier or keyword
	Literal             // number, string or character literal
	Punct               // single punctuation character
	Group               // delimited token sequence
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Literal:
		return "literal"
	case Punct:
		return "punctuation"
	case Group:
		return "group"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Delimiter is the bracket style of a group.
type Delimiter int

const (
	None        Delimiter = iota // transparent, never written by hand
	Parenthesis                  // ( ... )
	Brace                        // { ... }
	Bracket                      // [ ... ]
)

// Open returns the opening character, or "" for None.
func (d Delimiter) Open() string {
	switch d {
	case Parenthesis:
		return "("
	case Brace:
		return "{"
	case Bracket:
		return "["
	}
	return ""
}

// Close returns the closing character, or "" for None.
func (d Delimiter) Close() string {
	switch d {
	case Parenthesis:
		return ")"
	case Brace:
		return "}"
	case Bracket:
		return "]"
	}
	return ""
}

func (d Delimiter) String() string {
	if d == None {
		return "none"
	}
	return "'" + d.Open() + "'"
}

// Spacing tells whether a punctuation token is immediately followed by
// another punctuation character.
type Spacing int

const (
	Alone Spacing = iota
	Joint
)

// Pos is a location in a source file.
type Pos struct {
	Filename string
	Offset   int // byte offset, starting at 0
	Line     int // starting at 1
	Column   int // byte column, starting at 1
}

// IsValid reports whether the position points into a file.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	s := p.Filename
	if p.IsValid() {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	if s == "" {
		s = "-"
	}
	return s
}

// Token is a node of a token tree. Leaves carry their source text in Text;
// groups carry their contents in Children.
type Token struct {
	Kind     Kind
	Text     string
	Spacing  Spacing   // punctuation only
	Delim    Delimiter // groups only
	Children []Token   // groups only
	Pos      Pos       // start of the token, or of the opening delimiter
	End      Pos       // closing delimiter of a group
	// Lead holds the whitespace and comments written before the token.
	Lead string
	// CloseLead holds the whitespace and comments before a group's
	// closing delimiter.
	CloseLead string
}

// NewIdent returns an identifier token.
func NewIdent(name string) Token {
	return Token{Kind: Ident, Text: name}
}

// NewPunct returns an Alone punctuation token.
func NewPunct(ch rune) Token {
	return Token{Kind: Punct, Text: string(ch)}
}

// NewLiteral returns a literal token with the given source text.
func NewLiteral(text string) Token {
	return Token{Kind: Literal, Text: text}
}

// NewGroup returns a group token wrapping children.
func NewGroup(delim Delimiter, children ...Token) Token {
	return Token{Kind: Group, Delim: delim, Children: children}
}

// IsIdent reports whether t is an identifier, and, if name is not empty,
// whether it is spelled name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && (name == "" || t.Text == name)
}

// IsPunct reports whether t is the Alone punctuation ch.
func (t Token) IsPunct(ch rune) bool {
	return t.Kind == Punct && t.Spacing == Alone && t.Text == string(ch)
}

// IsGroup reports whether t is a group with delimiter d.
func (t Token) IsGroup(d Delimiter) bool {
	return t.Kind == Group && t.Delim == d
}

// WithLead returns a copy of t whose leading trivia is lead.
func (t Token) WithLead(lead string) Token {
	t.Lead = lead
	return t
}

// Clone returns a deep copy of the token.
func (t Token) Clone() Token {
	if t.Kind == Group {
		t.Children = CloneAll(t.Children)
	}
	return t
}

// CloneAll returns a deep copy of ts.
func CloneAll(ts []Token) []Token {
	if ts == nil {
		return nil
	}
	out := make([]Token, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}

// Flatten splices the contents of transparent groups into the sequence.
func Flatten(ts []Token) []Token {
	out := make([]Token, 0, len(ts))
	for _, t := range ts {
		if t.Kind == Group && t.Delim == None {
			inner := Flatten(t.Children)
			if len(inner) > 0 && t.Lead != "" {
				inner[0].Lead = t.Lead + inner[0].Lead
			}
			out = append(out, inner...)
			continue
		}
		if t.Kind == Group {
			t.Children = Flatten(t.Children)
		}
		out = append(out, t)
	}
	return out
}

// Equal reports whether a and b hold the same tokens, ignoring positions and
// trivia. Transparent groups are compared by their contents.
func Equal(a, b []Token) bool {
	return equal(Flatten(a), Flatten(b))
}

func equal(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Text != y.Text || x.Delim != y.Delim {
			return false
		}
		if x.Kind == Punct && x.Spacing != y.Spacing {
			return false
		}
		if x.Kind == Group && !equal(x.Children, y.Children) {
			return false
		}
	}
	return true
}

// Describe renders ts compactly on a single line, ignoring trivia. It is
// meant for error messages and test failures.
func Describe(ts []Token) string {
	var sb strings.Builder
	describe(&sb, ts)
	return sb.String()
}

func describe(sb *strings.Builder, ts []Token) {
	for i, t := range ts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if t.Kind == Group {
			sb.WriteString(t.Delim.Open())
			describe(sb, t.Children)
			sb.WriteString(t.Delim.Close())
			continue
		}
		sb.WriteString(t.Text)
	}
}
