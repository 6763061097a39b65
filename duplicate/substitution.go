package duplicate

import (
	"fmt"

	"github.com/gnolang/dupl/tokens"
)

type partKind int

const (
	partTokens   partKind = iota // fixed tokens
	partArgument                 // the argument at index
	partGroup                    // a group around a nested substitution
)

type part struct {
	kind  partKind
	toks  []tokens.Token
	index int
	// lead is the trivia written before the parameter name.
	lead  string
	group tokens.Token // delimiter and trivia of the group, without children
	inner *Substitution
}

// Substitution is what a substitution identifier is replaced with. It takes
// a fixed number of arguments, each a token sequence.
type Substitution struct {
	argCount int
	parts    []part
}

func newSimpleSubstitution(ts []tokens.Token) *Substitution {
	return &Substitution{parts: []part{{kind: partTokens, toks: ts}}}
}

// NewSubstitution reads a substitution body from c. Every identifier equal to
// one of params refers to the argument at the same index.
func NewSubstitution(params []string, c *Cursor) (*Substitution, error) {
	s := &Substitution{argCount: len(params)}
	var run []tokens.Token
	flush := func() {
		if len(run) > 0 {
			s.parts = append(s.parts, part{kind: partTokens, toks: run})
			run = nil
		}
	}

	for {
		t, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		switch {
		case t.Kind == tokens.Ident && indexOf(params, t.Text) >= 0:
			flush()
			s.parts = append(s.parts, part{kind: partArgument, index: indexOf(params, t.Text), lead: t.Lead})
		case t.Kind == tokens.Group:
			flush()
			inner, err := NewSubstitution(params, t.Body)
			if err != nil {
				return nil, err
			}
			shell := t.Token
			shell.Children = nil
			s.parts = append(s.parts, part{kind: partGroup, group: shell, inner: inner})
		default:
			run = append(run, t.Token)
		}
	}
	flush()
	return s, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// ArgumentCount returns the number of arguments the substitution takes.
func (s *Substitution) ArgumentCount() int { return s.argCount }

// Apply produces the tokens of the substitution for args. Arguments are used
// verbatim. at is the position reported on an argument count mismatch.
func (s *Substitution) Apply(args [][]tokens.Token, at tokens.Pos) ([]tokens.Token, error) {
	if len(args) != s.argCount {
		return nil, newError(fmt.Sprintf("Expected %d substitution arguments but got %d", s.argCount, len(args))).
			WithPos(at)
	}

	var out []tokens.Token
	for _, p := range s.parts {
		switch p.kind {
		case partTokens:
			out = append(out, tokens.CloneAll(p.toks)...)
		case partArgument:
			arg := tokens.CloneAll(args[p.index])
			if len(arg) > 0 {
				arg[0].Lead = p.lead
			}
			out = append(out, arg...)
		case partGroup:
			inner, err := p.inner.Apply(args, at)
			if err != nil {
				return nil, err
			}
			g := p.group
			g.Children = inner
			out = append(out, g)
		}
	}
	return out, nil
}

// SubstitutesIdentifier returns the identifier the substitution consists of,
// if it is exactly one identifier and nothing else.
func (s *Substitution) SubstitutesIdentifier() (string, bool) {
	if len(s.parts) != 1 || s.parts[0].kind != partTokens {
		return "", false
	}
	toks := s.parts[0].toks
	if len(toks) != 1 || toks[0].Kind != tokens.Ident {
		return "", false
	}
	return toks[0].Text, true
}
