package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

const (
	appName        = "git-rebase-branch"
	configFileName = "config.json"

	// PathEnv overrides the location of the config file.
	PathEnv = "GIT_REBASE_BRANCH_CONFIG"

	dirPermissions  = 0o755
	filePermissions = 0o644
)

// ErrConfigIO marks failures to read or write the config file.
var ErrConfigIO = errors.New("config file I/O failed")

// DefaultPath returns the config file location: $GIT_REBASE_BRANCH_CONFIG
// if set, otherwise config.json under the XDG config home.
func DefaultPath() string {
	if v := os.Getenv(PathEnv); v != "" {
		return v
	}

	return filepath.Join(configHome(), appName, configFileName)
}

// configHome returns $XDG_CONFIG_HOME or ~/.config.
func configHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("~", ".config")
	}

	return filepath.Join(home, ".config")
}

// Store reads and writes a Config at a fixed path.
type Store struct {
	Path string
}

// NewStore returns a Store for path, or for DefaultPath if path is empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}

	return &Store{Path: path}
}

// Load reads the config file. A missing file yields the first-run record.
func (s *Store) Load() (*Config, error) {
	//nolint:gosec // G304: path comes from the user's own flags/env
	data, err := os.ReadFile(s.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return New(), nil

	case err != nil:
		return nil, errors.Mark(
			errors.Wrapf(err, "reading config file %s", s.Path),
			ErrConfigIO,
		)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Mark(
			errors.Wrapf(err, "parsing config file %s", s.Path),
			ErrConfigIO,
		)
	}

	cfg.normalize()

	return cfg, nil
}

// Save rewrites the whole config file.
func (s *Store) Save(cfg *Config) error {
	cfg.normalize()

	if err := s.save(cfg); err != nil {
		return errors.Mark(err, ErrConfigIO)
	}

	return nil
}

func (s *Store) save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), dirPermissions); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), "config-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temp config file")
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(raw)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, filePermissions)
	}
	if err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "writing temp config file")
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrap(err, "renaming config file")
	}

	return nil
}
