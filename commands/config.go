package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/roasbeef/rebase-branch/branch"
	"github.com/roasbeef/rebase-branch/config"
	"github.com/roasbeef/rebase-branch/output"
	"github.com/spf13/cobra"
)

// configHandler performs a config query or mutation and exits the run.
type configHandler func(
	w io.Writer, store *config.Store, persisted *config.Config, cfg Config,
) error

// loadConfig opens the store selected by cfg and reads the persisted
// record.
func loadConfig(cfg Config) (*config.Store, *config.Config, error) {
	store := config.NewStore(cfg.ConfigPath)

	persisted, err := store.Load()
	if err != nil {
		return nil, nil, errors.WithHintf(err,
			"Fix or remove %s, or point --config at another file.",
			store.Path)
	}

	cfg.Logger.Debug("loaded config", "path", store.Path,
		"default", persisted.Default, "except", persisted.Except)

	return store, persisted, nil
}

// configAction returns the handler for the first config flag that was
// given, in order of precedence, or nil when none was given.
func configAction(cmd *cobra.Command, flags rootFlags) configHandler {
	changed := cmd.Flags().Changed

	switch {
	case changed("set-default"):
		return setDefaultHandler(flags.setDefault)

	case flags.showDefault:
		return showDefault

	case changed("set-except"):
		return setExceptHandler(flags.setExcept)

	case changed("remove-except"):
		return removeExceptHandler(flags.removeExcept)

	case flags.showExcept:
		return showExcept

	case flags.showAll:
		return showAll

	default:
		return nil
	}
}

func setDefaultHandler(name string) configHandler {
	return func(w io.Writer, store *config.Store,
		persisted *config.Config, cfg Config) error {

		if err := persisted.SetDefault(name); err != nil {
			return errors.WithHint(err,
				"Pass a branch name, e.g. --set-default develop.")
		}

		if err := store.Save(persisted); err != nil {
			return err
		}

		if cfg.JSONOut {
			return writeConfigJSON(w, persisted)
		}

		theme := output.NewTheme(w, cfg.Color)
		fmt.Fprintf(w, "default branch has been set to %s\n",
			theme.Branch.Render(persisted.Default))

		return nil
	}
}

func showDefault(w io.Writer, _ *config.Store,
	persisted *config.Config, cfg Config) error {

	if cfg.JSONOut {
		return writeJSONLine(w, persisted.Default)
	}

	theme := output.NewTheme(w, cfg.Color)
	fmt.Fprintln(w, theme.Branch.Render(persisted.Default))

	return nil
}

func setExceptHandler(raw string) configHandler {
	return func(w io.Writer, store *config.Store,
		persisted *config.Config, cfg Config) error {

		added := persisted.AddExcept(branch.Normalize(raw)...)
		if err := store.Save(persisted); err != nil {
			return err
		}

		if cfg.JSONOut {
			return writeConfigJSON(w, persisted)
		}

		if len(added) == 0 {
			fmt.Fprintln(w, "except list unchanged")
		} else {
			fmt.Fprintf(w, "added to except list: %s\n",
				strings.Join(added, ", "))
		}

		return nil
	}
}

func removeExceptHandler(raw string) configHandler {
	return func(w io.Writer, store *config.Store,
		persisted *config.Config, cfg Config) error {

		removed := persisted.RemoveExcept(branch.Normalize(raw)...)
		if err := store.Save(persisted); err != nil {
			return err
		}

		if cfg.JSONOut {
			return writeConfigJSON(w, persisted)
		}

		if len(removed) == 0 {
			fmt.Fprintln(w, "except list unchanged")
		} else {
			fmt.Fprintf(w, "removed from except list: %s\n",
				strings.Join(removed, ", "))
		}

		return nil
	}
}

func showExcept(w io.Writer, _ *config.Store,
	persisted *config.Config, cfg Config) error {

	if cfg.JSONOut {
		return writeJSONLine(w, persisted.Except)
	}

	for _, name := range persisted.Except {
		fmt.Fprintln(w, name)
	}

	return nil
}

func showAll(w io.Writer, _ *config.Store,
	persisted *config.Config, _ Config) error {

	return writeConfigJSON(w, persisted)
}

// writeConfigJSON prints the whole record as a single JSON line.
func writeConfigJSON(w io.Writer, persisted *config.Config) error {
	line, err := persisted.JSON()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, line)

	return err
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding JSON output")
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
