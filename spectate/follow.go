package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

type FollowConfig struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

var DefaultFollowConfig = FollowConfig{ConnectTimeout: 5 * time.Second, ReadTimeout: time.Minute}

// Follow connects to a spectate websocket and calls fn for every frame
// until ctx is done, the server closes the stream or fn returns an error.
func Follow(ctx context.Context, url string, cfg FollowConfig, fn func(Frame) error) error {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.ConnectTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		if cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			return fmt.Errorf("parse event: %w", err)
		}
		if event.Type != EventFrame {
			continue
		}
		var f Frame
		if err := json.Unmarshal(event.Data, &f); err != nil {
			return fmt.Errorf("parse frame: %w", err)
		}
		if err := fn(f); err != nil {
			return err
		}
	}
}
