package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"buildmsa/internal/manifest"
	"buildmsa/internal/pipeline"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// shouldColorize reports whether w is a terminal.
func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(value, color string, enabled bool) string {
	if !enabled || color == "" {
		return value
	}
	return color + value + ansiReset
}

func stageStatusColor(status string) string {
	switch status {
	case string(manifest.StatusCompleted):
		return ansiGreen
	case string(manifest.StatusFailed):
		return ansiRed
	case string(manifest.StatusRunning):
		return ansiYellow
	case pipeline.StatusUntracked:
		return ansiBlue
	default:
		return ""
	}
}

func checkColor(passed bool) string {
	if passed {
		return ansiGreen
	}
	return ansiRed
}

func passLabel(passed bool) string {
	if passed {
		return "OK"
	}
	return "FAIL"
}
