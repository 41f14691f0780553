// Package feed reads keyboard state events from a byte stream and posts them
// to the event loop.
//
// Events arrive as newline-delimited JSON, one object per line, over a
// serial link, a websocket, or stdin.
package feed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/phinze/prospector/internal/event"
)

// maxLine bounds a single encoded event.
const maxLine = 4096

// PostFunc hands a decoded event to the event loop. It must not block.
type PostFunc func(event.Event) bool

// Source names the transport an event feed arrives on.
type Source string

const (
	SourceSerial    Source = "serial"
	SourceWebsocket Source = "websocket"
	SourceStdin     Source = "stdin"
)

// ParseSource validates a config source name.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceSerial, SourceWebsocket, SourceStdin:
		return Source(s), nil
	default:
		return "", fmt.Errorf("unknown feed source %q", s)
	}
}

// Stats counts what a reader has seen.
type Stats struct {
	Posted    int
	Malformed int
	Dropped   int
}

// Read decodes events from r until EOF, a read error, or ctx is done.
// Malformed lines, including lines longer than maxLine, are logged and
// skipped. A clean EOF returns nil.
//
// Read does not interrupt a blocked r on cancellation; callers close the
// underlying port to unblock it.
func Read(ctx context.Context, r io.Reader, post PostFunc, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats Stats

	br := bufio.NewReaderSize(r, maxLine)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			stats.Malformed++
			logger.Warn("skipping oversized event line", "limit", maxLine)
			err = discardLine(br)
		} else if line = bytes.TrimRight(line, "\r\n"); len(line) > 0 {
			handleMessage(line, post, logger, &stats)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return stats, nil
		case ctx.Err() != nil:
			return stats, ctx.Err()
		default:
			return stats, fmt.Errorf("reading event feed: %w", err)
		}
	}
}

// discardLine consumes the rest of an over-long line through its newline.
func discardLine(br *bufio.Reader) error {
	for {
		_, err := br.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func handleMessage(msg []byte, post PostFunc, logger *slog.Logger, stats *Stats) {
	ev, err := event.Decode(msg)
	if err != nil {
		stats.Malformed++
		if errors.Is(err, event.ErrUnknownType) {
			logger.Debug("skipping unknown event", "error", err)
		} else {
			logger.Warn("skipping malformed event", "error", err, "line", string(msg))
		}
		return
	}
	if post(ev) {
		stats.Posted++
	} else {
		stats.Dropped++
	}
}
