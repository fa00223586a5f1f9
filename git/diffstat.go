package git

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	godiff "github.com/sourcegraph/go-diff/diff"
)

// ParseDiffStat counts files and added/deleted lines in a unified diff.
// Binary files count towards Files only.
func ParseDiffStat(diffText string) (*DiffStat, error) {
	stat := &DiffStat{}

	if strings.TrimSpace(diffText) == "" {
		return stat, nil
	}

	files, err := godiff.ParseMultiFileDiff([]byte(diffText))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse diff")
	}

	stat.Files = len(files)

	for _, f := range files {
		for _, h := range f.Hunks {
			for _, line := range bytes.Split(h.Body, []byte("\n")) {
				if len(line) == 0 {
					continue
				}

				switch line[0] {
				case '+':
					stat.Added++
				case '-':
					stat.Deleted++
				}
			}
		}
	}

	return stat, nil
}

// String renders the stat the way git's --shortstat does.
func (s *DiffStat) String() string {
	if s == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(plural(s.Files, "file") + " changed")
	b.WriteString(", " + plural(s.Added, "insertion") + "(+)")
	b.WriteString(", " + plural(s.Deleted, "deletion") + "(-)")

	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return strconv.Itoa(n) + " " + noun + "s"
}
