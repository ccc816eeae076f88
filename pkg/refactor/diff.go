package refactor

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a human-readable diff between the original and refactored
// snippets, with ANSI coloring for insertions and deletions.
func Diff(original, refactored string) string {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(original, refactored, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return dmp.DiffPrettyText(diffs)
}
