package duplicate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gnolang/dupl/tokens"
)

// ParseInvocation parses the payload of a duplicate invocation: optional
// global substitutions followed by short or verbose syntax.
func ParseInvocation(payload []tokens.Token, opts ...Option) (*DuplicationDefinition, error) {
	return parseInvocation(payload, newOptions(opts))
}

// ParseGlobalOnly parses the payload of a substitute invocation, which may
// only hold global substitutions.
func ParseGlobalOnly(payload []tokens.Token, opts ...Option) (*SubstitutionGroup, error) {
	return parseGlobalOnly(payload, newOptions(opts))
}

func parseInvocation(payload []tokens.Token, o *options) (*DuplicationDefinition, error) {
	c := newCursor(payload, o, nil, firstPos(payload))
	global, err := parseGlobalSubstitutions(c)
	if err != nil {
		return nil, err
	}
	def := &DuplicationDefinition{Global: global}

	more, err := c.HasNext()
	if err != nil {
		return nil, err
	}
	if !more && global.Len() > 0 {
		return def, nil
	}

	kind, err := classifySyntax(c)
	if err != nil {
		return nil, err
	}
	switch kind {
	case verboseSyntax:
		def.Duplications, err = parseVerbose(c)
	case shortSyntax:
		def.Duplications, err = parseShort(c)
	}
	if err != nil {
		return nil, err
	}
	if err := checkAmbiguity(def); err != nil {
		return nil, err
	}
	return def, nil
}

func parseGlobalOnly(payload []tokens.Token, o *options) (*SubstitutionGroup, error) {
	c := newCursor(payload, o, nil, firstPos(payload))
	global, err := parseGlobalSubstitutions(c)
	if err != nil {
		return nil, err
	}
	// Whatever is left did not parse as a global substitution, so parse it
	// again to report why.
	if more, err := c.HasNext(); err != nil {
		return nil, err
	} else if more {
		_, _, _, err := extractInlineSubstitution(c)
		if err == nil {
			err = newError("Expected ';'.").WithPos(c.endPos()).WithHint(hintGlobalSemicolon)
		}
		return nil, err
	}
	return global, nil
}

// checkAmbiguity rejects identifiers assigned both globally and per
// duplicate. All duplications share the same identifiers, so checking the
// first is enough.
func checkAmbiguity(def *DuplicationDefinition) error {
	if len(def.Duplications) == 0 {
		return nil
	}
	first := def.Duplications[0]
	for _, name := range first.Identifiers() {
		if _, ok := def.Global.Lookup(name); ok {
			return newError("Multiple substitutions for identifier").WithPos(first.Pos()).
				WithHint(fmt.Sprintf("'%s' is assigned both globally and in a substitution group.", name))
		}
	}
	return nil
}

// parseGlobalSubstitutions consumes leading `ident (params)? [sub];` entries.
// It stops, consuming nothing more, at the first entry of another shape.
// Failures inside an entry of the right shape are returned.
func parseGlobalSubstitutions(c *Cursor) (*SubstitutionGroup, error) {
	g := newSubstitutionGroup(c.origin)
	for {
		ident, sub, matched, err := extractInlineSubstitution(c)
		if err != nil {
			if matched {
				return nil, err
			}
			return g, nil
		}
		if err := g.Add(ident, sub); err != nil {
			return nil, err
		}

		more, err := c.HasNext()
		if err != nil {
			return nil, err
		}
		if more {
			if err := c.ExpectSemicolon(); err != nil {
				return nil, asError(err).WithHint(hintGlobalSemicolon)
			}
		}
	}
}

type syntaxKind int

const (
	shortSyntax syntaxKind = iota
	verboseSyntax
)

// classifySyntax decides which syntax the rest of the payload uses from its
// first token.
func classifySyntax(c *Cursor) (syntaxKind, error) {
	t, ok, err := c.Peek()
	switch {
	case err != nil:
		return 0, err
	case !ok:
		return 0, unexpected("Unexpected end of code.", c.endPos(), expectedInvocation)
	case t.Kind == tokens.Group:
		return verboseSyntax, nil
	case t.Kind == tokens.Ident:
		return shortSyntax, nil
	}
	return 0, unexpected("Unexpected token.", t.Pos, expectedInvocation)
}

// extractInlineSubstitution reads `ident (params)? [substitution]`. On
// failure everything read is put back. matched reports whether the input has
// that shape, in which case err is a failure within the entry, such as a
// broken nested invocation.
func extractInlineSubstitution(c *Cursor) (ident tokens.Token, sub *Substitution, matched bool, err error) {
	ident, err = c.ExtractIdentifier("a substitution identifier")
	if err != nil {
		return tokens.Token{}, nil, false, err
	}
	fail := func(matched bool, err error, back ...Token) (tokens.Token, *Substitution, bool, error) {
		for i := len(back) - 1; i >= 0; i-- {
			c.PushFront(back[i])
		}
		c.PushFront(Token{Token: ident})
		return tokens.Token{}, nil, matched, err
	}

	if _, _, err := c.Peek(); err != nil {
		return fail(true, err)
	}
	if params, paramTok, err := c.NextGroup(tokens.Parenthesis); err == nil {
		paramGroup := Token{Token: paramTok, Body: params}
		args, err := extractArgumentList(params.Clone())
		if err != nil {
			return fail(false, err, paramGroup)
		}
		if _, _, err := c.Peek(); err != nil {
			return fail(true, err, paramGroup)
		}
		body, bodyTok, err := c.NextGroup(tokens.Bracket)
		if err != nil {
			return fail(false, err, paramGroup)
		}
		sub, err := NewSubstitution(args, body.Clone())
		if err != nil {
			return fail(true, err, paramGroup, Token{Token: bodyTok, Body: body})
		}
		return ident, sub, true, nil
	}

	body, bodyTok, err := c.NextGroup(tokens.Bracket)
	if err != nil {
		return fail(false, newError("Expected '(' or '['.").WithPos(asError(err).Pos))
	}
	toks, err := body.Clone().ProcessAll()
	if err != nil {
		return fail(true, err, Token{Token: bodyTok, Body: body})
	}
	return ident, newSimpleSubstitution(toks), true, nil
}

// extractArgumentList reads a comma separated list of distinct parameter
// names.
func extractArgumentList(c *Cursor) ([]string, error) {
	var names []string
	for {
		more, err := c.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			return names, nil
		}

		ident, err := c.ExtractIdentifier("substitution identifier argument as identifier")
		if err != nil {
			return nil, err
		}
		if indexOf(names, ident.Text) >= 0 {
			return nil, newError("Duplicate substitution parameter").WithPos(ident.Pos).
				WithHint(fmt.Sprintf("'%s' is already a parameter of this substitution identifier.", ident.Text))
		}
		names = append(names, ident.Text)

		if more, err = c.HasNext(); err != nil {
			return nil, err
		}
		if more {
			if err := c.ExpectComma(); err != nil {
				return nil, err
			}
		}
	}
}

func parseVerbose(c *Cursor) ([]*SubstitutionGroup, error) {
	var (
		groups   []*SubstitutionGroup
		expected map[string]int
	)
	for {
		more, err := c.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			return groups, nil
		}

		body, groupTok, err := c.NextGroup(tokens.Bracket)
		if err != nil {
			return nil, asError(err).WithHint(hintVerboseGroup)
		}
		g, err := extractVerboseSubstitutions(body, groupTok, expected)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
		if expected == nil {
			expected = g.signature()
		}
	}
}

// extractVerboseSubstitutions reads the substitutions of one verbose group.
// Unless expected is nil, the group must assign exactly the identifiers in
// expected with the same argument counts.
func extractVerboseSubstitutions(c *Cursor, groupTok tokens.Token, expected map[string]int) (*SubstitutionGroup, error) {
	more, err := c.HasNext()
	if err != nil {
		return nil, err
	}
	if !more {
		return nil, newError("No substitution groups found.").WithPos(groupTok.Pos)
	}

	g := newSubstitutionGroup(groupTok.Pos)
	for more {
		semicolon, err := c.HasNextSemicolon()
		if err != nil {
			return nil, err
		}
		ident, sub, _, err := extractInlineSubstitution(c)
		if err != nil {
			e := asError(err)
			if semicolon {
				e.WithHint(hintVerboseSemicolon)
			}
			return nil, e
		}

		if expected != nil {
			count, known := expected[ident.Text]
			switch {
			case !known:
				hint := fmt.Sprintf("Unexpected substitution for: '%s'\n", ident.Text)
				if guess := closestIdentifier(ident.Text, expected); guess != "" {
					hint += fmt.Sprintf("Did you mean '%s'?\n", guess)
				}
				hint += hintVerboseIdentifiers
				return nil, newError("Unexpected substitution identifier.").WithPos(ident.Pos).WithHint(hint)
			case count != sub.ArgumentCount():
				return nil, newError("Wrong argument count for substitution identifier.").WithPos(ident.Pos).
					WithHint(hintVerboseArguments)
			}
		}
		if err := g.Add(ident, sub); err != nil {
			return nil, err
		}

		if more, err = c.HasNext(); err != nil {
			return nil, err
		}
	}

	var missing []string
	for name := range expected {
		if _, ok := g.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		hint := "Missing substitution for: '" + strings.Join(missing, "' '") + "'\n" + hintVerboseIdentifiers
		return nil, newError("Incomplete substitution group.").WithPos(groupTok.Pos).WithHint(hint)
	}
	return g, nil
}

// closestIdentifier suggests the expected identifier the user most likely
// meant, or "".
func closestIdentifier(name string, expected map[string]int) string {
	candidates := make([]string, 0, len(expected))
	for n := range expected {
		candidates = append(candidates, n)
	}
	sort.Strings(candidates)

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, cand := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(cand)); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

type shortDecl struct {
	ident  tokens.Token
	params []string
}

func parseShort(c *Cursor) ([]*SubstitutionGroup, error) {
	decls, err := shortIdentifiers(c)
	if err != nil {
		return nil, err
	}

	var groups []*SubstitutionGroup
	for {
		more, err := c.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}

		first, _, err := c.Peek()
		if err != nil {
			return nil, err
		}
		batch := newSubstitutionGroup(first.Pos)
		for _, d := range decls {
			hint := hintShortMissingBracket
			if semicolon, err := c.HasNextSemicolon(); err != nil {
				return nil, err
			} else if semicolon {
				hint = hintShortCount
			}

			body, _, err := c.NextGroup(tokens.Bracket)
			if err != nil {
				return nil, asError(err).WithHint(hint)
			}
			sub, err := NewSubstitution(d.params, body)
			if err != nil {
				return nil, err
			}
			if err := batch.Add(d.ident, sub); err != nil {
				return nil, err
			}
		}
		groups = append(groups, batch)

		t, more, err := c.Peek()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		if t.IsGroup(tokens.Bracket) {
			return nil, newError("Unexpected delimiter.").WithPos(t.Pos).WithHint(hintShortCount)
		}
		if err := c.ExpectSemicolon(); err != nil {
			return nil, err
		}
	}

	if len(groups) == 0 {
		return nil, newError("No substitution groups.").WithPos(c.endPos()).WithHint(hintShortNoGroups)
	}
	return groups, nil
}

// shortIdentifiers reads the `ident (params)? ... ;` row of short syntax.
func shortIdentifiers(c *Cursor) ([]shortDecl, error) {
	var decls []shortDecl
	for {
		expected := expectedInvocation
		if len(decls) > 0 {
			expected = "substitution_identifier or ';'"
		}
		t, err := c.ExtractSimple(func(t tokens.Token) bool {
			return t.IsIdent("") || (t.IsPunct(';') && len(decls) > 0)
		}, expected)
		if err != nil {
			return nil, err
		}
		if t.Kind != tokens.Ident {
			return decls, nil
		}

		var params []string
		if body, _, err := c.NextGroup(tokens.Parenthesis); err == nil {
			if params, err = extractArgumentList(body); err != nil {
				return nil, err
			}
		}
		decls = append(decls, shortDecl{ident: t, params: params})
	}
}
