// Package assert holds the small set of contract checks the core uses to
// reject programmer errors (bad configuration ratios, negative variances,
// mismatched scan lengths) per spec.md §7: these are asserted and the
// process aborts rather than attempting recovery, since they can only be
// caused by a caller violating the library's contract, not by external input.
package assert

import "fmt"

// That panics with a formatted message if cond is false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
