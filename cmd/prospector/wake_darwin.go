//go:build darwin

package main

import (
	"log/slog"

	"github.com/prashantgupta24/mac-sleep-notifier/notifier"
)

// systemWake signals once per system wake so the device can be reopened.
func systemWake(logger *slog.Logger) <-chan struct{} {
	sleepCh := notifier.GetInstance().Start()
	wakeCh := make(chan struct{}, 1)
	go func() {
		for activity := range sleepCh {
			if activity.Type != notifier.Awake {
				continue
			}
			logger.Info("system wake detected")
			select {
			case wakeCh <- struct{}{}:
			default:
			}
		}
	}()
	return wakeCh
}
