package branch

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// TrimMarker strips the markers `git branch` prefixes lines with (the
// current branch "*" and the linked worktree "+") along with surrounding
// whitespace.
func TrimMarker(line string) string {
	name := strings.TrimSpace(line)

	for _, marker := range []string{"* ", "+ "} {
		if strings.HasPrefix(name, marker) {
			return strings.TrimSpace(strings.TrimPrefix(name, marker))
		}
	}

	return name
}

// isPseudoBranch reports whether name is one of git's parenthesised
// placeholders such as "(HEAD detached at 1a2b3c4)" or "(no branch,
// rebasing feature)".
func isPseudoBranch(name string) bool {
	return strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")")
}

// Filter returns the branches of all eligible for a rebase onto target, in
// their original order. A branch is dropped if it is empty, equals target,
// is in except, or (when only is non-empty) is not in only. Entries of all
// may still carry `git branch` markers.
func Filter(all []string, target string, except, only []string) []string {
	exceptSet := mapset.NewThreadUnsafeSet(except...)
	onlySet := mapset.NewThreadUnsafeSet(only...)

	selected := make([]string, 0, len(all))
	for _, line := range all {
		name := TrimMarker(line)

		switch {
		case name == "", isPseudoBranch(name):
			continue

		case name == target:
			continue

		case exceptSet.Cardinality() > 0 && exceptSet.Contains(name):
			continue

		case onlySet.Cardinality() > 0 && !onlySet.Contains(name):
			continue
		}

		selected = append(selected, name)
	}

	return selected
}

// MergeExcept returns the ordered union of the persisted except list and
// the one given on the command line.
func MergeExcept(persisted, cli []string) []string {
	merged := make([]string, 0, len(persisted)+len(cli))
	merged = append(merged, persisted...)
	merged = append(merged, cli...)

	return dedupe(merged)
}
