package duplicate

import (
	"github.com/gnolang/dupl/tokens"
)

// SubstitutionGroup assigns substitutions to substitution identifiers. One
// group describes one duplicate.
type SubstitutionGroup struct {
	subs  map[string]*Substitution
	order []string
	pos   tokens.Pos
}

// NewSubstitutionGroup returns an empty group.
func NewSubstitutionGroup() *SubstitutionGroup {
	return newSubstitutionGroup(tokens.Pos{})
}

func newSubstitutionGroup(pos tokens.Pos) *SubstitutionGroup {
	return &SubstitutionGroup{subs: make(map[string]*Substitution), pos: pos}
}

// Add assigns s to the identifier ident. Assigning an identifier twice is an
// error.
func (g *SubstitutionGroup) Add(ident tokens.Token, s *Substitution) error {
	return g.add(ident.Text, ident.Pos, s)
}

func (g *SubstitutionGroup) add(name string, pos tokens.Pos, s *Substitution) error {
	if _, dup := g.subs[name]; dup {
		return newError("Substitution identifier assigned multiple substitutions").WithPos(pos)
	}
	g.subs[name] = s
	g.order = append(g.order, name)
	return nil
}

// Lookup returns the substitution of name.
func (g *SubstitutionGroup) Lookup(name string) (*Substitution, bool) {
	if g == nil {
		return nil, false
	}
	s, ok := g.subs[name]
	return s, ok
}

// Len returns the number of substitution identifiers.
func (g *SubstitutionGroup) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Identifiers returns the substitution identifiers in declaration order.
func (g *SubstitutionGroup) Identifiers() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.order...)
}

// Pos returns where the group was declared, when known.
func (g *SubstitutionGroup) Pos() tokens.Pos {
	if g == nil {
		return tokens.Pos{}
	}
	return g.pos
}

func (g *SubstitutionGroup) clone() *SubstitutionGroup {
	cp := newSubstitutionGroup(g.pos)
	for _, name := range g.order {
		cp.subs[name] = g.subs[name]
	}
	cp.order = append(cp.order, g.order...)
	return cp
}

// signature maps every identifier to its argument count.
func (g *SubstitutionGroup) signature() map[string]int {
	sig := make(map[string]int, len(g.order))
	for name, s := range g.subs {
		sig[name] = s.ArgumentCount()
	}
	return sig
}

// DuplicationDefinition is a parsed invocation.
type DuplicationDefinition struct {
	// Global substitutions apply to every duplicate.
	Global *SubstitutionGroup
	// Duplications holds one group per duplicate. Without any, the item is
	// substituted once using Global only.
	Duplications []*SubstitutionGroup
}
