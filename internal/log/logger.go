package log

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-kit/log/term"
	"github.com/mattn/go-isatty"

	"tank-tools/internal/config"
)

func levelColor(keyvals ...any) term.FgBgColor {
	for i := 0; i < len(keyvals)-1; i += 2 {
		if keyvals[i] != level.Key() {
			continue
		}

		switch keyvals[i+1] {
		case level.DebugValue():
			return term.FgBgColor{Fg: term.DarkBlue}
		case level.InfoValue():
			return term.FgBgColor{Fg: term.Default}
		case level.WarnValue():
			return term.FgBgColor{Fg: term.Yellow}
		case level.ErrorValue():
			return term.FgBgColor{Fg: term.Red}
		default:
			return term.FgBgColor{}
		}
	}

	return term.FgBgColor{}
}

// UseColor resolves a color mode (auto, always, never) for the file f
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func allowed(name string) level.Option {
	switch name {
	case "none":
		return level.AllowNone()
	case "error":
		return level.AllowError()
	case "info":
		return level.AllowInfo()
	case "debug":
		return level.AllowDebug()
	default:
		return level.AllowWarn()
	}
}

// New creates a leveled logger writing to w
func New(w io.Writer, cfg config.LogConfig, color bool) log.Logger {
	formatJSON := cfg.Format == "json"

	var logger log.Logger
	if color {
		if formatJSON {
			logger = term.NewLogger(w, log.NewJSONLogger, levelColor)
		} else {
			logger = term.NewLogger(w, log.NewLogfmtLogger, levelColor)
		}
	} else {
		if formatJSON {
			logger = log.NewJSONLogger(log.NewSyncWriter(w))
		} else {
			logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
		}
	}

	logger = level.NewFilter(logger, allowed(cfg.Level))

	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

// NewStderr creates the logger of a command, coloring when stderr is a
// terminal and the mode allows it
func NewStderr(cfg config.LogConfig) log.Logger {
	return New(os.Stderr, cfg, UseColor(cfg.Color, os.Stderr))
}

// NewNop returns a logger that discards everything
func NewNop() log.Logger {
	return log.NewNopLogger()
}
