package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
)

// DialWebsocket connects to a websocket event source and reads one event per
// text message until the connection closes or ctx is done.
func DialWebsocket(ctx context.Context, url string, post PostFunc, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats Stats

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return stats, fmt.Errorf("dialing event websocket %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger.Info("event websocket connected", "url", url)
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return stats, nil
			}
			return stats, fmt.Errorf("reading event websocket: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		handleMessage(msg, post, logger, &stats)
	}
}
