package commands

import (
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// NewLogger constructs a *slog.Logger writing to w with the given level and
// format. Supported levels: debug, info, warn, error. Supported formats:
// text (default), json.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported log format %q", format),
			"Use --log-format text or --log-format json.",
		)
	}

	return slog.New(handler).With("component", "git-rebase-branch"), nil
}

func parseLevel(level string) (*slog.LevelVar, error) {
	var lvl slog.LevelVar

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "info":
		lvl.Set(slog.LevelInfo)
	case "warn", "warning", "":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported log level %q", level),
			"Use one of debug, info, warn or error.",
		)
	}

	return &lvl, nil
}
