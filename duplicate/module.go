package duplicate

import (
	"fmt"
	"unicode"

	"github.com/serenize/snaker"

	"github.com/gnolang/dupl/tokens"
)

// moduleName returns the name of item if it is a module-like declaration,
// `mod name { ... }`.
func moduleName(item []tokens.Token, o *options) (tokens.Token, bool) {
	if len(item) < 3 {
		return tokens.Token{}, false
	}
	if !item[0].IsIdent("") || !o.isModuleKeyword(item[0].Text) {
		return tokens.Token{}, false
	}
	if !item[1].IsIdent("") || !item[2].IsGroup(tokens.Brace) {
		return tokens.Token{}, false
	}
	return item[1], true
}

// disambiguateModule renames each duplicate of a module so that they do not
// collide. The name gets the snake_case value of the first substitution
// identifier that is a bare identifier in every group as suffix, and the
// renaming is added to groups as an ordinary substitution.
func disambiguateModule(item []tokens.Token, global *SubstitutionGroup, groups []*SubstitutionGroup, o *options) error {
	name, ok := moduleName(item, o)
	if !ok || len(groups) == 0 {
		return nil
	}
	if _, set := groups[0].Lookup(name.Text); set {
		return nil
	}
	if _, set := global.Lookup(name.Text); set {
		return nil
	}

	if !o.disambiguate {
		return newError(fmt.Sprintf("Duplicating the module '%s' without giving each duplicate a unique name.", name.Text)).
			WithPos(name.Pos).WithHint(hintModuleManual)
	}

	postfix, ok := findSimple(groups)
	if !ok {
		return newError("Was unable to find a suitable substitution identifier to postfix on the module's name.").
			WithPos(name.Pos).WithHint(hintModuleDisambiguation)
	}

	for _, g := range groups {
		sub, _ := g.Lookup(postfix)
		value, _ := sub.SubstitutesIdentifier()
		renamed := tokens.NewIdent(name.Text + "_" + snakeCase(value))
		renamed.Pos = name.Pos
		if err := g.add(name.Text, name.Pos, newSimpleSubstitution([]tokens.Token{renamed})); err != nil {
			return err
		}
	}
	return nil
}

// snakeCase converts an identifier to snake_case. A run of capitals is one
// word, so HTTPServer becomes http_server and IO becomes io. Runs are folded
// to a capitalized word before snaker splits at capitals.
func snakeCase(s string) string {
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if !unicode.IsUpper(rs[i]) {
			continue
		}
		j := i + 1
		for j < len(rs) && unicode.IsUpper(rs[j]) {
			j++
		}
		// the last capital before a lowercase letter starts the next word
		end := j
		if j-i > 1 && j < len(rs) && unicode.IsLower(rs[j]) {
			end = j - 1
		}
		for k := i + 1; k < end; k++ {
			rs[k] = unicode.ToLower(rs[k])
		}
		if i > 0 && rs[i-1] == '_' {
			rs[i] = unicode.ToLower(rs[i])
		}
		i = j - 1
	}
	return snaker.CamelToSnake(string(rs))
}

// findSimple returns the first identifier, in declaration order, whose
// substitution is a single bare identifier in every group.
func findSimple(groups []*SubstitutionGroup) (string, bool) {
outer:
	for _, name := range groups[0].Identifiers() {
		for _, g := range groups {
			sub, ok := g.Lookup(name)
			if !ok {
				continue outer
			}
			if _, simple := sub.SubstitutesIdentifier(); !simple {
				continue outer
			}
		}
		return name, true
	}
	return "", false
}
