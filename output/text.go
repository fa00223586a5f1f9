package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/roasbeef/rebase-branch/rebase"
)

// separator is printed after each rebased branch.
const separator = "---------"

// TextReporter prints progress lines as a run proceeds.
type TextReporter struct {
	w     io.Writer
	theme Theme
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer, theme Theme) *TextReporter {
	return &TextReporter{w: w, theme: theme}
}

// Report implements rebase.Reporter.
func (r *TextReporter) Report(e rebase.Event) {
	t := r.theme

	switch e.Kind {
	case rebase.EventCheckoutTarget:
		fmt.Fprintln(r.w, t.Checkout.Render("checkout to "+e.Branch))

	case rebase.EventSync:
		fmt.Fprintf(r.w, "execute %s\n",
			t.Command.Render("git pull --rebase --autostash"))

	case rebase.EventCheckoutBack:
		fmt.Fprintf(r.w, "checkout back to %s\n", t.Branch.Render(e.Branch))

	case rebase.EventSelected:
		if len(e.Branches) == 0 {
			fmt.Fprintf(r.w, "No branches to rebase onto %s.\n",
				t.Branch.Render(e.Target))

			return
		}

		fmt.Fprintf(r.w, "%d branch(es) to rebase onto %s: %s\n",
			len(e.Branches), t.Branch.Render(e.Target),
			strings.Join(e.Branches, ", "))

	case rebase.EventCheckout:
		fmt.Fprintln(r.w, t.Checkout.Render(fmt.Sprintf(
			"[%s] --> checkout to %s", e.Branch, e.Branch,
		)))

	case rebase.EventRebased:
		line := fmt.Sprintf("[%s] --> rebase %s completed", e.Branch, e.Target)
		fmt.Fprint(r.w, t.Success.Render(line))
		if e.Stat != nil {
			fmt.Fprint(r.w, " ", t.Muted.Render("("+e.Stat.String()+")"))
		}
		fmt.Fprintln(r.w)
		fmt.Fprintf(r.w, "%s\n\n", separator)

	case rebase.EventRebaseFailed:
		fmt.Fprintln(r.w, t.Error.Render(fmt.Sprintf(
			"[%s] --> rebase %s failed", e.Branch, e.Target,
		)))

	case rebase.EventRestored:
		fmt.Fprintf(r.w, "checkout back to %s\n", t.Branch.Render(e.Branch))

	case rebase.EventCompleted:
		fmt.Fprintln(r.w, t.Banner.Render("~~~ All Completed ~~~"))
	}
}

var _ rebase.Reporter = (*TextReporter)(nil)

// FormatResultText writes a summary of a finished run. Progress lines are
// written by TextReporter; this adds what a reader needs after a failure
// or a dry run.
func FormatResultText(w io.Writer, res *rebase.Result, theme Theme) error {
	// The selection itself was already printed by TextReporter.
	if res.DryRun {
		fmt.Fprintf(w, "Dry run: nothing was changed. Current branch is %s.\n",
			theme.Branch.Render(res.Origin))

		return nil
	}

	pending := res.Pending()
	if len(pending) > 0 {
		fmt.Fprintf(w, "Not attempted: %s\n", strings.Join(pending, ", "))
	}

	if !res.Restored && res.Origin != "" {
		fmt.Fprintf(w, "You started on %s.\n", theme.Branch.Render(res.Origin))
	}

	return nil
}

// FormatFailure writes err followed by any hints attached to it.
func FormatFailure(w io.Writer, err error, theme Theme) {
	fmt.Fprintln(w, theme.Error.Render("Rebase failed,")+" "+
		theme.Hint.Render("please check for conflicts")+
		theme.Error.Render("."))

	for _, hint := range errors.GetAllHints(err) {
		for _, line := range strings.Split(hint, "\n") {
			fmt.Fprintln(w, theme.Hint.Render(line))
		}
	}

	fmt.Fprintf(w, "Details: %v\n", err)
}

// FormatError writes an error that carries no rebase hints, such as a
// config file failure or a bad flag.
func FormatError(w io.Writer, err error, theme Theme) {
	fmt.Fprintln(w, theme.Error.Render("Error:")+" "+err.Error())

	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(w, theme.Hint.Render(hint))
	}
}
