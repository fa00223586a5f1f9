// Package config persists the tool's small settings record: the default
// target branch and the set of branches that are never rebased.
package config

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultTarget is the target branch used until another one is set.
const DefaultTarget = "master"

// ErrEmptyBranch is returned when an empty name is given as the default
// target.
var ErrEmptyBranch = errors.New("branch name must not be empty")

// Config is the persisted settings record.
type Config struct {
	// Default is the fallback target branch.
	Default string `json:"default"`

	// Except holds branches excluded from every run, in insertion order
	// and without duplicates.
	Except []string `json:"except"`
}

// New returns the record used on first run.
func New() *Config {
	return &Config{
		Default: DefaultTarget,
		Except:  []string{},
	}
}

// normalize fills in missing fields so both are always present.
func (c *Config) normalize() {
	c.Default = strings.TrimSpace(c.Default)
	if c.Default == "" {
		c.Default = DefaultTarget
	}

	c.Except = unionOrdered(nil, c.Except)
}

// SetDefault replaces the default target branch.
func (c *Config) SetDefault(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyBranch
	}

	c.Default = name

	return nil
}

// AddExcept unions names into the except set and returns the ones that
// were not already present.
func (c *Config) AddExcept(names ...string) []string {
	existing := mapset.NewThreadUnsafeSet(c.Except...)

	c.Except = unionOrdered(c.Except, names)

	added := make([]string, 0, len(names))
	for _, name := range c.Except {
		if !existing.Contains(name) {
			added = append(added, name)
		}
	}

	return added
}

// RemoveExcept removes names from the except set and returns the ones that
// were actually present.
func (c *Config) RemoveExcept(names ...string) []string {
	drop := mapset.NewThreadUnsafeSet(names...)

	kept := make([]string, 0, len(c.Except))
	removed := make([]string, 0, len(names))
	for _, name := range c.Except {
		if drop.Contains(name) {
			removed = append(removed, name)

			continue
		}

		kept = append(kept, name)
	}

	c.Except = kept

	return removed
}

// JSON renders the record as a single line of JSON. c is not modified.
func (c *Config) JSON() (string, error) {
	out := Config{Default: c.Default, Except: c.Except}
	out.normalize()

	data, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "marshaling config")
	}

	return string(data), nil
}

// unionOrdered appends the names of extra missing from base, skipping
// blanks and duplicates. The result is never nil.
func unionOrdered(base, extra []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(base)+len(extra))

	for _, list := range [][]string{base, extra} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" || !seen.Add(name) {
				continue
			}

			out = append(out, name)
		}
	}

	return out
}
