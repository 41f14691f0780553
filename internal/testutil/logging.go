// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"log/slog"
)

// NewBufferLogger returns a logger writing to a fresh buffer, for code that
// takes an explicit *slog.Logger.
func NewBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}
