package output

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/roasbeef/rebase-branch/rebase"
)

// ResultOutput is the top-level JSON output structure for a run.
type ResultOutput struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Hints   []string `json:"hints,omitempty"`
	Pending []string `json:"pending,omitempty"`

	*rebase.Result
}

// FormatResultJSON writes res as indented JSON. runErr is the error the
// run returned, if any.
func FormatResultJSON(w io.Writer, res *rebase.Result, runErr error) error {
	output := ResultOutput{
		Success: runErr == nil,
		Result:  res,
		Pending: res.Pending(),
	}

	switch {
	case runErr != nil:
		output.Message = runErr.Error()
		output.Hints = errors.GetAllHints(runErr)

	case res.DryRun:
		output.Message = "Dry run completed"

	default:
		output.Message = "All completed"
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(output)
}
