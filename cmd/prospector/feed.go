package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/phinze/prospector/internal/config"
	"github.com/phinze/prospector/internal/feed"
)

// feedRetry is the delay before reopening a serial or websocket source.
const feedRetry = 2 * time.Second

// runFeed reads events from the configured source until ctx is done.
// Serial and websocket sources are reopened after every disconnect.
func runFeed(ctx context.Context, cfg config.Feed, post feed.PostFunc, logger *slog.Logger) {
	src, _ := feed.ParseSource(cfg.Source)
	logger = logger.With("source", src)

	if src == feed.SourceStdin {
		stats, err := feed.Read(ctx, os.Stdin, post, logger)
		if err != nil && ctx.Err() == nil {
			logger.Error("event feed failed", "error", err)
		}
		logger.Info("event feed ended", "posted", stats.Posted, "malformed", stats.Malformed, "dropped", stats.Dropped)
		return
	}

	for {
		var (
			stats feed.Stats
			err   error
		)
		switch src {
		case feed.SourceSerial:
			stats, err = readSerial(ctx, cfg.Serial, post, logger)
		case feed.SourceWebsocket:
			stats, err = feed.DialWebsocket(ctx, cfg.Websocket.URL, post, logger)
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("event feed disconnected", "error", err)
		} else {
			logger.Info("event feed closed", "posted", stats.Posted, "malformed", stats.Malformed)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(feedRetry):
		}
	}
}

func readSerial(ctx context.Context, cfg config.Serial, post feed.PostFunc, logger *slog.Logger) (feed.Stats, error) {
	port, err := feed.OpenSerial(feed.SerialConfig{Device: cfg.Device, Baud: cfg.Baud})
	if err != nil {
		return feed.Stats{}, err
	}
	defer port.Close()

	// Closing the port unblocks a pending read.
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer stop()

	logger.Info("serial feed opened", "device", cfg.Device)
	return feed.Read(ctx, port, post, logger)
}
