package expand

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gnolang/dupl/duplicate"
	"github.com/gnolang/dupl/tokens"
)

type invocation int

const (
	duplicateInvocation invocation = iota
	substituteInvocation
)

// Source expands every invocation in the template src and returns the
// expanded text. Code outside of invocations is reproduced as is. name is
// used in error positions.
//
// Two invocation forms are recognized:
//
//	duplicate!{ [payload] code... }
//	#[duplicate_item(payload)] item
//
// and their substitute counterparts. The item of an annotation extends up
// to and including its first brace group or ';', or up to the first blank
// line or the next annotation, whichever comes first.
func Source(name string, src []byte, config Config) ([]byte, error) {
	f, err := tokens.Lex(name, string(src))
	if err != nil {
		return nil, err
	}

	x := &expander{keywords: config.Keywords, opts: config.Options()}
	out, carry, err := x.expand(f.Tokens)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tokens.Fprint(&buf, out, carry+f.Trailer); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type expander struct {
	keywords KeywordConfig
	opts     []duplicate.Option
}

// expand replaces the invocations in ts by their expansion. The trivia in
// front of an invocation that expanded to nothing is returned as carry.
func (x *expander) expand(ts []tokens.Token) ([]tokens.Token, string, error) {
	out := make([]tokens.Token, 0, len(ts))
	carry := ""
	emit := func(res []tokens.Token, lead string) {
		lead = carry + lead
		if len(res) == 0 {
			carry = lead
			return
		}
		res[0].Lead = lead
		carry = ""
		out = append(out, res...)
	}

	for i := 0; i < len(ts); {
		kind, ok, err := x.callAt(ts, i)
		if err != nil {
			return nil, "", err
		}
		if ok {
			res, err := x.call(kind, ts[i], ts[i+2])
			if err != nil {
				return nil, "", err
			}
			emit(res, ts[i].Lead)
			i += 3
			continue
		}

		if kind, payload, ok := x.annotationAt(ts, i); ok {
			end := x.itemEnd(ts, i+2)
			res, err := x.run(kind, payload, ts[i+2:end], ts[i].Pos)
			if err != nil {
				return nil, "", err
			}
			// Copies may hold further annotations.
			res, rest, err := x.expand(res)
			if err != nil {
				return nil, "", err
			}
			emit(res, ts[i].Lead)
			carry += rest
			i = end
			continue
		}

		t := ts[i]
		if t.Kind == tokens.Group {
			children, rest, err := x.expand(t.Children)
			if err != nil {
				return nil, "", err
			}
			t.Children = children
			t.CloseLead = rest + t.CloseLead
		}
		emit([]tokens.Token{t}, t.Lead)
		i++
	}
	return out, carry, nil
}

func (x *expander) keyword(name string) (invocation, bool) {
	switch {
	case name == "":
		return 0, false
	case name == x.keywords.Duplicate:
		return duplicateInvocation, true
	case name == x.keywords.Substitute:
		return substituteInvocation, true
	}
	return 0, false
}

// callAt reports whether ts[i] starts a call-style invocation,
// `keyword!{...}`.
func (x *expander) callAt(ts []tokens.Token, i int) (invocation, bool, error) {
	if i+1 >= len(ts) || ts[i].Kind != tokens.Ident {
		return 0, false, nil
	}
	kind, ok := x.keyword(ts[i].Text)
	bang := ts[i+1]
	if !ok || !bang.IsPunct('!') || bang.Lead != "" {
		return 0, false, nil
	}
	if i+2 >= len(ts) || ts[i+2].Kind != tokens.Group || ts[i+2].Delim == tokens.None {
		pos := bang.Pos
		if i+2 < len(ts) {
			pos = ts[i+2].Pos
		}
		return 0, false, &duplicate.Error{Msg: "Expected '{', '[', or '('.", Pos: pos}
	}
	return kind, true, nil
}

// call expands a call-style invocation whose contents are body.
func (x *expander) call(kind invocation, keyword, body tokens.Token) ([]tokens.Token, error) {
	c := duplicate.NewCursor(body.Children, x.opts...)
	payload, _, err := c.NextGroup(tokens.Bracket)
	if err != nil {
		var e *duplicate.Error
		if errors.As(err, &e) {
			e.WithHint("Expected invocation within brackets: [...]")
			if !e.Pos.IsValid() {
				e.Pos = body.Pos
			}
		}
		return nil, err
	}
	return x.run(kind, payload.Remaining(), c.Remaining(), keyword.Pos)
}

// annotationAt reports whether ts[i] starts an annotation,
// `#[keyword(payload)]`, and returns its payload.
func (x *expander) annotationAt(ts []tokens.Token, i int) (invocation, []tokens.Token, bool) {
	if i+1 >= len(ts) || !ts[i].IsPunct('#') || !ts[i+1].IsGroup(tokens.Bracket) {
		return 0, nil, false
	}
	attr := ts[i+1].Children
	if len(attr) != 2 || attr[0].Kind != tokens.Ident || !attr[1].IsGroup(tokens.Parenthesis) {
		return 0, nil, false
	}

	switch name := attr[0].Text; {
	case name == "":
	case name == x.keywords.DuplicateItem:
		return duplicateInvocation, attr[1].Children, true
	case name == x.keywords.SubstituteItem:
		return substituteInvocation, attr[1].Children, true
	}
	return 0, nil, false
}

func (x *expander) run(kind invocation, payload, item []tokens.Token, at tokens.Pos) ([]tokens.Token, error) {
	var (
		res []tokens.Token
		err error
	)
	switch kind {
	case duplicateInvocation:
		res, err = duplicate.Duplicate(payload, item, x.opts...)
	case substituteInvocation:
		res, err = duplicate.Substitute(payload, item, x.opts...)
	}
	if err != nil {
		var e *duplicate.Error
		if errors.As(err, &e) && !e.Pos.IsValid() {
			e.Pos = at
		}
		return nil, err
	}
	return res, nil
}

// itemEnd returns the end of the item starting at ts[start].
func (x *expander) itemEnd(ts []tokens.Token, start int) int {
	for j := start; j < len(ts); j++ {
		if j > start {
			if _, _, ok := x.annotationAt(ts, j); ok || hasBlankLine(ts[j].Lead) {
				return j
			}
		}
		if ts[j].IsGroup(tokens.Brace) || ts[j].IsPunct(';') {
			return j + 1
		}
	}
	return len(ts)
}

func hasBlankLine(lead string) bool {
	lines := strings.Split(lead, "\n")
	if len(lines) < 3 {
		return false
	}
	for _, l := range lines[1 : len(lines)-1] {
		if strings.TrimSpace(l) == "" {
			return true
		}
	}
	return false
}
