package rebase

import (
	"github.com/roasbeef/rebase-branch/git"
)

// Status is the outcome for a single branch.
type Status string

const (
	StatusRebased Status = "rebased"
	StatusFailed  Status = "failed"
)

// BranchResult records what happened to one selected branch.
type BranchResult struct {
	Name   string        `json:"name"`
	Status Status        `json:"status"`
	Stat   *git.DiffStat `json:"stat,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Result summarizes a run.
type Result struct {
	// Target is the branch others were rebased onto.
	Target string `json:"target"`

	// Origin is the branch (or commit) checked out when the run started.
	Origin string `json:"origin"`

	// Selected is the filtered list of branches in rebase order.
	Selected []string `json:"selected"`

	// Branches holds one entry per branch attempted, in order. Branches
	// after a failure are not attempted.
	Branches []BranchResult `json:"branches"`

	// Restored is true if Origin was checked out again at the end.
	Restored bool `json:"restored"`

	// DryRun is true if nothing was changed.
	DryRun bool `json:"dry_run,omitempty"`
}

// Pending returns the selected branches that were never attempted.
func (r *Result) Pending() []string {
	if len(r.Branches) >= len(r.Selected) {
		return nil
	}

	return r.Selected[len(r.Branches):]
}

// EventKind identifies a progress event.
type EventKind uint8

const (
	// EventCheckoutTarget is sent before checking out the target Branch
	// to sync it.
	EventCheckoutTarget EventKind = iota

	// EventSync is sent before pulling Branch from its upstream.
	EventSync

	// EventCheckoutBack is sent before returning to the starting Branch
	// after the sync.
	EventCheckoutBack

	// EventSelected carries the filtered Branches.
	EventSelected

	// EventCheckout is sent before checking out Branch to rebase it.
	EventCheckout

	// EventRebased is sent after Branch was rebased onto Target.
	EventRebased

	// EventRebaseFailed is sent when rebasing Branch onto Target failed.
	EventRebaseFailed

	// EventRestored is sent after the starting Branch was checked out
	// again following a failure.
	EventRestored

	// EventCompleted is sent once every branch was rebased and the
	// starting Branch is checked out.
	EventCompleted
)

// Event is a progress notification from a run.
type Event struct {
	Kind     EventKind
	Branch   string
	Target   string
	Branches []string
	Stat     *git.DiffStat
}

// Reporter receives progress events as a run proceeds.
type Reporter interface {
	Report(Event)
}

// NopReporter discards all events.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Event) {}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

// Report implements Reporter.
func (f ReporterFunc) Report(e Event) {
	f(e)
}
