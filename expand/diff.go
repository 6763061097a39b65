package expand

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff from the current output file to the
// expansion, or "" when they are equal.
func (r Result) Diff() (string, error) {
	if !r.Changed {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(r.Previous)),
		B:        difflib.SplitLines(string(r.Content)),
		FromFile: r.Output,
		ToFile:   r.Output + " (expanded)",
		Context:  3,
	})
}
