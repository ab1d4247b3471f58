package herkulexd

import (
	"io"
	"log/slog"
	"regexp"

	"github.com/mdouchement/logger"
)

// NewLogger returns the text logger used by the herkulexd commands.
func NewLogger(w io.Writer, debug bool) logger.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := logger.NewSlogTextHandler(w, &logger.SlogTextOption{
		Level:            level,
		ForceColors:      true,
		ForceFormatting:  true,
		PrefixRE:         regexp.MustCompile(`^(\[.*?\])\s`),
		DisableTimestamp: true, // Provided by journalctl
	})
	return logger.WrapSlogHandler(h)
}
