// Package internal holds the support code of the dupl tool.
//
// Key components:
//
// Cache: remembers the expansion of every template between runs, so that a
// template is only expanded again once it, or the configuration it was
// expanded with, changed.
//
// Watcher: reports template files written under a set of directories, with
// bursts of writes to the same file reported once.
//
// SourceCode: a file split into lines, used to print the offending line of
// an error.
//
// Usage:
//
//	cache, err := internal.NewCache(".dupl-cache", ".dupl.yaml")
//	if err != nil {
//	    // handle error
//	}
//	if output, ok := cache.Get("ints.go.dup"); ok {
//	    // up to date
//	}
package internal
