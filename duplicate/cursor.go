package duplicate

import (
	"github.com/gnolang/dupl/tokens"
)

type invocationKind int

const (
	duplicateInvocation invocationKind = iota
	substituteInvocation
)

// Token is a token produced by a Cursor. The contents of a group are read
// through Body, which expands nested invocations as it goes.
type Token struct {
	tokens.Token
	Body *Cursor
}

// Cursor iterates over a token tree. Nested invocations such as
// `duplicate!{[...] ...}` are expanded before they are produced, and
// transparent groups are spliced inline, so consumers only ever see final
// tokens and delimited groups.
//
// Methods that fail consume nothing.
type Cursor struct {
	raw     []tokens.Token
	next    int     // index of the next raw token
	pending []Token // produced but not yet consumed, front first
	opts    *options
	// scope, when set, is substituted into a nested invocation before it is
	// expanded.
	scope *scope
	// literal cursors never expand nested invocations.
	literal bool
	last    tokens.Pos // position of the last consumed token
	origin  tokens.Pos // reported when nothing better is known
}

// NewCursor returns a cursor over ts.
func NewCursor(ts []tokens.Token, opts ...Option) *Cursor {
	return newCursor(ts, newOptions(opts), nil, firstPos(ts))
}

func newCursor(ts []tokens.Token, o *options, sc *scope, origin tokens.Pos) *Cursor {
	return &Cursor{raw: ts, opts: o, scope: sc, origin: origin}
}

func firstPos(ts []tokens.Token) tokens.Pos {
	if len(ts) == 0 {
		return tokens.Pos{}
	}
	return ts[0].Pos
}

func (c *Cursor) child(ts []tokens.Token, origin tokens.Pos) *Cursor {
	return &Cursor{raw: ts, opts: c.opts, scope: c.scope, literal: c.literal, origin: origin}
}

func (c *Cursor) wrap(t tokens.Token) Token {
	origin := t.End
	if !origin.IsValid() {
		origin = t.Pos
	}
	return Token{Token: t, Body: c.child(t.Children, origin)}
}

// fetch moves one raw token, or one whole nested invocation, into pending.
func (c *Cursor) fetch() (bool, error) {
	if c.next >= len(c.raw) {
		return false, nil
	}
	t := c.raw[c.next]
	if t.Kind == tokens.Group {
		c.pending = append(c.pending, c.wrap(t))
		c.next++
		return true, nil
	}

	if t.Kind == tokens.Ident && !c.literal && c.next+1 < len(c.raw) {
		bang := c.raw[c.next+1]
		if kind, ok := c.opts.nestedKind(t.Text); ok && bang.IsPunct('!') && bang.Lead == "" {
			out, err := c.invokeNested(kind, bang)
			if err != nil {
				return false, err
			}
			c.next += 3
			spliced := tokens.Token{Kind: tokens.Group, Delim: tokens.None, Pos: t.Pos, Lead: t.Lead}
			c.pending = append(c.pending, Token{Token: spliced, Body: c.child(out, t.Pos)})
			return true, nil
		}
	}

	c.pending = append(c.pending, Token{Token: t})
	c.next++
	return true, nil
}

// invokeNested runs the invocation whose keyword and '!' are at c.next and
// returns its expansion.
func (c *Cursor) invokeNested(kind invocationKind, bang tokens.Token) ([]tokens.Token, error) {
	if c.next+2 >= len(c.raw) {
		return nil, newError("Expected '{', '[', or '('.").WithPos(bang.Pos)
	}
	g := c.raw[c.next+2]
	if g.Kind != tokens.Group || g.Delim == tokens.None {
		return nil, newError("Expected '{', '[', or '('.").WithPos(g.Pos)
	}

	children := g.Children
	if c.scope != nil {
		var err error
		children, err = c.scope.rewrite(children, c.opts)
		if err != nil {
			return nil, err
		}
	}

	body := newCursor(children, c.opts, nil, g.End)
	payload, _, err := body.NextGroup(tokens.Bracket)
	if err != nil {
		return nil, asError(err).WithHint(hintInvocationBrackets)
	}
	item := body.Remaining()

	if kind == substituteInvocation {
		return substitute(payload.Remaining(), item, c.opts)
	}
	return duplicate(payload.Remaining(), item, c.opts)
}

// front makes sure the next token to produce is pending[0] and returns it,
// or nil at the end of input.
func (c *Cursor) front() (*Token, error) {
	for {
		if len(c.pending) == 0 {
			ok, err := c.fetch()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			continue
		}

		head := &c.pending[0]
		if head.Kind != tokens.Group || head.Delim != tokens.None {
			return head, nil
		}

		inner, ok, err := head.Body.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			c.pending = c.pending[1:]
			continue
		}
		if head.Lead != "" {
			inner.Lead = head.Lead + inner.Lead
			head.Lead = ""
		}
		c.pending = append([]Token{inner}, c.pending...)
		return &c.pending[0], nil
	}
}

// Next consumes and returns the next token. ok is false at the end of input.
func (c *Cursor) Next() (t Token, ok bool, err error) {
	head, err := c.front()
	if err != nil || head == nil {
		return Token{}, false, err
	}
	t = *head
	c.pending = c.pending[1:]
	c.last = t.Pos
	return t, true, nil
}

// Peek returns the next token without consuming it. The Body of a peeked
// group must not be read.
func (c *Cursor) Peek() (t Token, ok bool, err error) {
	head, err := c.front()
	if err != nil || head == nil {
		return Token{}, false, err
	}
	return *head, true, nil
}

// PushFront makes t the next token to be produced.
func (c *Cursor) PushFront(t Token) {
	c.pending = append([]Token{t}, c.pending...)
}

// HasNext reports whether any token is left.
func (c *Cursor) HasNext() (bool, error) {
	head, err := c.front()
	return head != nil, err
}

// HasNextSemicolon reports whether the next token is a ';'.
func (c *Cursor) HasNextSemicolon() (bool, error) {
	head, err := c.front()
	if err != nil || head == nil {
		return false, err
	}
	return head.IsPunct(';'), nil
}

func (c *Cursor) endPos() tokens.Pos {
	if c.last.IsValid() {
		return c.last
	}
	return c.origin
}

func unexpected(msg string, pos tokens.Pos, expected string) *Error {
	err := newError(msg).WithPos(pos)
	if expected != "" {
		err.WithHint("Expected " + expected + ".")
	}
	return err
}

// ExtractSimple consumes the next token if it is not a group and pred
// accepts it. expected describes the wanted input for the error hint.
func (c *Cursor) ExtractSimple(pred func(tokens.Token) bool, expected string) (tokens.Token, error) {
	head, err := c.front()
	switch {
	case err != nil:
		return tokens.Token{}, err
	case head == nil:
		return tokens.Token{}, unexpected("Unexpected end of code.", c.endPos(), expected)
	case head.Kind == tokens.Group:
		return tokens.Token{}, unexpected("Unexpected delimiter.", head.Pos, expected)
	case !pred(head.Token):
		return tokens.Token{}, unexpected("Unexpected token.", head.Pos, expected)
	}
	t, _, _ := c.Next()
	return t.Token, nil
}

// ExtractIdentifier consumes the next token if it is an identifier.
func (c *Cursor) ExtractIdentifier(expected string) (tokens.Token, error) {
	return c.ExtractSimple(func(t tokens.Token) bool { return t.IsIdent("") }, expected)
}

// ExpectSimple is ExtractSimple discarding the token.
func (c *Cursor) ExpectSimple(pred func(tokens.Token) bool, expected string) error {
	_, err := c.ExtractSimple(pred, expected)
	return err
}

// ExpectComma consumes a ','.
func (c *Cursor) ExpectComma() error {
	return c.ExpectSimple(func(t tokens.Token) bool { return t.IsPunct(',') }, "','")
}

// ExpectSemicolon consumes a ';'.
func (c *Cursor) ExpectSemicolon() error {
	return c.ExpectSimple(func(t tokens.Token) bool { return t.IsPunct(';') }, "';'")
}

// NextGroup consumes the next token if it is a group delimited by want and
// returns a cursor over its contents along with the group itself. A want of
// tokens.None accepts any delimiter.
func (c *Cursor) NextGroup(want tokens.Delimiter) (*Cursor, tokens.Token, error) {
	msg := "Expected '{', '[', or '('."
	if want != tokens.None {
		msg = "Expected " + want.String() + "."
	}

	head, err := c.front()
	switch {
	case err != nil:
		return nil, tokens.Token{}, err
	case head == nil:
		return nil, tokens.Token{}, newError(msg).WithPos(c.endPos())
	case head.Kind != tokens.Group || (want != tokens.None && head.Delim != want):
		return nil, tokens.Token{}, newError(msg).WithPos(head.Pos)
	}
	t, _, _ := c.Next()
	return t.Body, t.Token, nil
}

// ProcessAll consumes the rest of the input, expanding every nested
// invocation at any depth.
func (c *Cursor) ProcessAll() ([]tokens.Token, error) {
	var out []tokens.Token
	for {
		t, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if t.Kind == tokens.Group {
			children, err := t.Body.ProcessAll()
			if err != nil {
				return nil, err
			}
			t.Token.Children = children
		}
		out = append(out, t.Token)
	}
}

// Remaining returns the unconsumed input without expanding anything that
// has not been expanded already.
func (c *Cursor) Remaining() []tokens.Token {
	var out []tokens.Token
	for _, t := range c.pending {
		if t.Body == nil {
			out = append(out, t.Token)
			continue
		}
		children := t.Body.Remaining()
		if t.Delim == tokens.None {
			if len(children) > 0 && t.Lead != "" {
				children[0].Lead = t.Lead + children[0].Lead
			}
			out = append(out, children...)
			continue
		}
		g := t.Token
		g.Children = children
		out = append(out, g)
	}
	return append(out, c.raw[c.next:]...)
}

// Clone returns an independent copy of the cursor.
func (c *Cursor) Clone() *Cursor {
	cp := *c
	cp.pending = make([]Token, len(c.pending))
	for i, t := range c.pending {
		if t.Body != nil {
			t.Body = t.Body.Clone()
		}
		cp.pending[i] = t
	}
	return &cp
}
