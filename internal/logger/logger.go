// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger builds the logrus logger shared by the CLI and pipeline.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to w at the given level. An
// unrecognized level falls back to info. A nil w means stderr.
func New(levelStr string, w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
