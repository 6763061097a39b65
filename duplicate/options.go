package duplicate

// Option configures an expansion.
type Option func(*options)

type options struct {
	duplicateKeyword  string
	substituteKeyword string
	moduleKeywords    []string
	disambiguate      bool
	separator         string
}

func newOptions(opts []Option) *options {
	o := &options{
		duplicateKeyword:  "duplicate",
		substituteKeyword: "substitute",
		moduleKeywords:    []string{"mod"},
		disambiguate:      true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithNestedKeywords sets the identifiers that start nested invocations.
// An empty keyword disables that kind of nesting.
func WithNestedKeywords(duplicate, substitute string) Option {
	return func(o *options) {
		o.duplicateKeyword = duplicate
		o.substituteKeyword = substitute
	}
}

// WithModuleKeywords sets the keywords that introduce a module-like
// declaration, as in `mod name { ... }`.
func WithModuleKeywords(keywords ...string) Option {
	return func(o *options) {
		o.moduleKeywords = append([]string(nil), keywords...)
	}
}

// WithoutModuleDisambiguation turns off automatic renaming of duplicated
// modules. Duplicating a module then requires substituting its name.
func WithoutModuleDisambiguation() Option {
	return func(o *options) {
		o.disambiguate = false
	}
}

// WithCopySeparator makes sure every copy after the first starts on a new
// line by prefixing sep to its leading trivia when that has no line break.
func WithCopySeparator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

func (o *options) nestedKind(name string) (invocationKind, bool) {
	switch {
	case name == "":
		return 0, false
	case name == o.duplicateKeyword:
		return duplicateInvocation, true
	case name == o.substituteKeyword:
		return substituteInvocation, true
	}
	return 0, false
}

func (o *options) isModuleKeyword(name string) bool {
	for _, kw := range o.moduleKeywords {
		if kw == name {
			return true
		}
	}
	return false
}
