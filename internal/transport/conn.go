package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/typeduel/internal/session"
	"github.com/DoyleJ11/typeduel/pkg/types"
)

// Conn is the single persistent connection a session owns. It is never
// shared across matches; teardown closes it and a fresh Conn is dialed on
// the next entry.
type Conn struct {
	ws  *websocket.Conn
	log *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Dial opens the per-player connection against the match server's base URL
// (http or https; the scheme is rewritten for the websocket endpoint).
func Dial(ctx context.Context, base, username string, log *zap.Logger) (*Conn, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/ws/" + url.PathEscape(username)

	ws, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}

	return &Conn{
		ws:   ws,
		log:  log,
		done: make(chan struct{}),
	}, nil
}

// Ready reports whether commands can still be sent.
func (c *Conn) Ready() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Send writes one command frame.
func (c *Conn) Send(ctx context.Context, cmd types.ClientCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return c.ws.Write(ctx, websocket.MessageText, payload)
}

// ReadPump decodes inbound frames into the session inbox until the
// connection drops or ctx is cancelled. Malformed or unknown messages are
// skipped; they never stop the pump. The pump always delivers a final
// Disconnected message so the session tears down exactly once.
func (c *Conn) ReadPump(ctx context.Context, inbox chan<- session.Msg) error {
	defer c.Close()

	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				inbox <- session.Disconnected{}
				return nil
			}
			if ctx.Err() != nil {
				inbox <- session.Disconnected{}
				return nil
			}
			select {
			case <-c.done:
				// Local Close raced the read; not a transport failure.
				inbox <- session.Disconnected{}
				return nil
			default:
			}
			inbox <- session.Disconnected{Err: err}
			return err
		}

		evt, err := types.DecodeServerEvent(data)
		if err != nil {
			if errors.Is(err, types.ErrUnknownEvent) {
				c.log.Debug("skipping unknown event", zap.Error(err))
			} else {
				c.log.Warn("skipping malformed event", zap.Error(err))
			}
			continue
		}
		inbox <- session.FromServer{Event: evt}
	}
}

// Close is idempotent.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
	})
}
