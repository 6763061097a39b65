package duplicate

import (
	"strings"

	"github.com/gnolang/dupl/tokens"
)

// Duplicate expands a duplicate invocation. payload is the content of the
// invocation brackets and item the code to duplicate. The result is one
// substituted copy of item per substitution group, in order.
func Duplicate(payload, item []tokens.Token, opts ...Option) ([]tokens.Token, error) {
	return duplicate(payload, item, newOptions(opts))
}

// Substitute expands a substitute invocation: payload may only hold global
// substitutions and item is substituted once.
func Substitute(payload, item []tokens.Token, opts ...Option) ([]tokens.Token, error) {
	return substitute(payload, item, newOptions(opts))
}

// Apply substitutes item once per duplication of def.
func Apply(item []tokens.Token, def *DuplicationDefinition, opts ...Option) ([]tokens.Token, error) {
	return apply(item, def, newOptions(opts))
}

func duplicate(payload, item []tokens.Token, o *options) ([]tokens.Token, error) {
	def, err := parseInvocation(payload, o)
	if err != nil {
		return nil, err
	}
	return apply(item, def, o)
}

func substitute(payload, item []tokens.Token, o *options) ([]tokens.Token, error) {
	global, err := parseGlobalOnly(payload, o)
	if err != nil {
		return nil, err
	}
	return apply(item, &DuplicationDefinition{Global: global}, o)
}

func apply(item []tokens.Token, def *DuplicationDefinition, o *options) ([]tokens.Token, error) {
	if def == nil {
		def = &DuplicationDefinition{}
	}
	global := def.Global
	if global == nil {
		global = NewSubstitutionGroup()
	}
	if err := checkAmbiguity(&DuplicationDefinition{Global: global, Duplications: def.Duplications}); err != nil {
		return nil, err
	}

	groups := make([]*SubstitutionGroup, len(def.Duplications))
	for i, g := range def.Duplications {
		groups[i] = g.clone()
	}
	if err := disambiguateModule(item, global, groups, o); err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		groups = append(groups, NewSubstitutionGroup())
	}

	var out []tokens.Token
	for i, g := range groups {
		sc := &scope{global: global, local: g}
		copied, err := sc.substituteAll(newCursor(item, o, sc, firstPos(item)))
		if err != nil {
			return nil, err
		}
		if i > 0 && o.separator != "" && len(copied) > 0 && !strings.Contains(copied[0].Lead, "\n") {
			copied[0].Lead = o.separator + copied[0].Lead
		}
		out = append(out, copied...)
	}
	return out, nil
}

// scope is the pair of substitution groups used by one rewrite pass.
type scope struct {
	global *SubstitutionGroup
	local  *SubstitutionGroup
}

func (s *scope) lookup(ident tokens.Token) (*Substitution, bool, error) {
	local, inLocal := s.local.Lookup(ident.Text)
	global, inGlobal := s.global.Lookup(ident.Text)
	switch {
	case inLocal && inGlobal:
		return nil, false, newError("Multiple substitutions for identifier").WithPos(ident.Pos)
	case inLocal:
		return local, true, nil
	case inGlobal:
		return global, true, nil
	}
	return nil, false, nil
}

// rewrite substitutes ts without expanding nested invocations in it.
func (s *scope) rewrite(ts []tokens.Token, o *options) ([]tokens.Token, error) {
	c := newCursor(ts, o, s, firstPos(ts))
	c.literal = true
	return s.substituteAll(c)
}

// substituteAll rewrites everything c produces.
func (s *scope) substituteAll(c *Cursor) ([]tokens.Token, error) {
	out := []tokens.Token{}
	for {
		t, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}

		switch t.Kind {
		case tokens.Ident:
			sub, found, err := s.lookup(t.Token)
			if err != nil {
				return nil, err
			}
			if !found {
				out = append(out, t.Token)
				continue
			}
			replaced, err := s.applyAt(c, t.Token, sub)
			if err != nil {
				return nil, err
			}
			out = append(out, replaced...)
		case tokens.Group:
			children, err := s.substituteAll(t.Body)
			if err != nil {
				return nil, err
			}
			g := t.Token
			g.Children = children
			out = append(out, g)
		default:
			out = append(out, t.Token)
		}
	}
}

// applyAt replaces the identifier ident, reading its arguments from c when
// the substitution takes any.
func (s *scope) applyAt(c *Cursor, ident tokens.Token, sub *Substitution) ([]tokens.Token, error) {
	var args [][]tokens.Token
	at := ident.Pos
	if sub.ArgumentCount() > 0 {
		body, group, err := c.NextGroup(tokens.Parenthesis)
		if err != nil {
			return nil, err
		}
		at = group.Pos
		if args, err = s.arguments(body); err != nil {
			return nil, err
		}
	}

	out, err := sub.Apply(args, at)
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		out[0].Lead = ident.Lead
	}
	return out, nil
}

// arguments reads `[arg], [arg], ...` and substitutes each argument.
func (s *scope) arguments(c *Cursor) ([][]tokens.Token, error) {
	var args [][]tokens.Token
	for {
		body, _, err := c.NextGroup(tokens.Bracket)
		if err != nil {
			more, herr := c.HasNext()
			if herr != nil {
				return nil, herr
			}
			if more {
				return nil, asError(err).WithHint(hintBracketArguments)
			}
			return args, nil
		}

		arg, err := s.substituteAll(body)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		more, err := c.HasNext()
		if err != nil {
			return nil, err
		}
		if more {
			if err := c.ExpectComma(); err != nil {
				return nil, err
			}
		}
	}
}
