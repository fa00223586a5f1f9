// Package branch turns user supplied branch lists and `git branch` output
// into the ordered selection of branches to rebase.
package branch

import (
	"encoding/json"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
)

// ListForm identifies which syntax a raw branch list was written in.
type ListForm uint8

const (
	// FormEmpty is a blank input.
	FormEmpty ListForm = iota

	// FormJSON is a JSON array of strings, e.g. '["br1", "br2"]'.
	FormJSON

	// FormDelimited is a comma and/or whitespace separated list, e.g.
	// 'br1,br2 br3'.
	FormDelimited
)

// String returns the form name.
func (f ListForm) String() string {
	switch f {
	case FormEmpty:
		return "empty"
	case FormJSON:
		return "json"
	case FormDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// List is a parsed branch list along with the syntax it was read from.
type List struct {
	Form  ListForm
	Names []string
}

// ParseList parses raw as a JSON array of strings, falling back to the
// delimited syntax when it is not one. Malformed input is never rejected,
// only reinterpreted. Names are de-duplicated keeping the first occurrence.
func ParseList(raw string) List {
	if strings.TrimSpace(raw) == "" {
		return List{Form: FormEmpty}
	}

	if names, ok := parseJSONList(raw); ok {
		return List{Form: FormJSON, Names: dedupe(names)}
	}

	return List{Form: FormDelimited, Names: dedupe(parseDelimitedList(raw))}
}

// Normalize returns just the names of ParseList(raw). The result is never
// nil.
func Normalize(raw string) []string {
	names := ParseList(raw).Names
	if names == nil {
		return []string{}
	}

	return names
}

func parseJSONList(raw string) ([]string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}

	var names []string
	if err := json.Unmarshal([]byte(trimmed), &names); err != nil {
		return nil, false
	}

	return names, true
}

func parseDelimitedList(raw string) []string {
	var names []string
	for _, piece := range strings.Split(raw, ",") {
		for _, field := range strings.FieldsFunc(piece, unicode.IsSpace) {
			if name := strings.TrimSpace(field); name != "" {
				names = append(names, name)
			}
		}
	}

	return names
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return []string{}
	}

	seen := mapset.NewThreadUnsafeSetWithSize[string](len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if seen.Add(name) {
			out = append(out, name)
		}
	}

	return out
}
