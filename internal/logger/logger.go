// Package logger provides session logging for the TUI. The terminal is owned
// by the interface, so log output goes to a file under the state directory.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to $XDG_STATE_HOME/usrgrp/usrgrp.log (fallback
// ~/.local/state). If the file cannot be opened, logging is discarded rather
// than corrupting the display.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	path := logPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.SetOutput(io.Discard)
		return l
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		l.SetOutput(io.Discard)
		return l
	}
	l.SetOutput(f)
	return l
}

// Discard returns a logger that drops everything; used by tests and by CLI
// commands that report to the terminal directly.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func logPath() string {
	root := os.Getenv("XDG_STATE_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "usrgrp.log"
		}
		root = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(root, "usrgrp", "usrgrp.log")
}
