// Package stream is the streaming-transport side of the ingestion
// boundary: a reconnecting websocket client that feeds server events to
// the ingest adapter.
//
// All connection management lives here. The core never sees a transport
// error, only the connectivity flag flipping.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/solstice-sh/pulse/internal/constants"
	"github.com/solstice-sh/pulse/internal/ingest"
)

// frame is the wire shape of one server event.
type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client reads server events from the platform's event stream.
type Client struct {
	url     string
	adapter *ingest.Adapter
	dialer  *websocket.Dialer
}

// NewClient creates a stream client bound to an adapter.
func NewClient(url string, adapter *ingest.Adapter) *Client {
	return &Client{
		url:     url,
		adapter: adapter,
		dialer:  websocket.DefaultDialer,
	}
}

// Run connects and keeps reading until ctx is cancelled, reconnecting
// with capped exponential backoff after every drop.
func (c *Client) Run(ctx context.Context) {
	backoff := constants.StreamInitialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("Stream dial failed")
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		log.Info().Str("url", c.url).Msg("Stream connected")
		c.adapter.SetConnected(true)
		backoff = constants.StreamInitialBackoff

		c.readLoop(ctx, conn)

		c.adapter.SetConnected(false)
		conn.Close()
		log.Warn().Msg("Stream disconnected")

		if !sleep(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// readLoop reads frames until the connection drops or ctx is cancelled.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Warn().Err(err).Msg("Unparseable stream frame, dropping")
			continue
		}
		c.adapter.ApplyServerEvent(f.Type, f.Payload)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > constants.StreamMaxBackoff {
		d = constants.StreamMaxBackoff
	}
	return d
}

// sleep waits for d or until ctx is cancelled. Returns false on cancel.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
