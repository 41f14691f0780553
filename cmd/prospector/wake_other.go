//go:build !darwin

package main

import "log/slog"

// systemWake returns a channel that never fires; wake notifications are
// only available on macOS.
func systemWake(*slog.Logger) <-chan struct{} {
	return nil
}
