package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Clients only listen, so inbound frames are small control traffic.
	maxInboundSize = 512

	// Events a session may fall behind by before it is dropped.
	sendQueueSize = 64
)

var (
	ErrClientClosed = errors.New("client is closed")
	ErrClientSlow   = errors.New("client send queue is full")
)

// Client is one browser session listening for ledger events on /ws
type Client struct {
	id          string
	workspaceID int32
	conn        *websocket.Conn
	queue       chan []byte
	done        chan struct{}
	closeOnce   sync.Once
}

// Attach registers a session for workspaceID and starts pumping events to
// it. The session ends when the peer goes away or the hub drops it.
func (h *Hub) Attach(conn *websocket.Conn, workspaceID int32) (*Client, error) {
	c := &Client{
		id:          uuid.NewString(),
		workspaceID: workspaceID,
		conn:        conn,
		queue:       make(chan []byte, sendQueueSize),
		done:        make(chan struct{}),
	}
	if err := h.Register(c); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go c.writeLoop()
	go func() {
		c.readLoop()
		h.Unregister(c)
		_ = c.Close()
	}()
	return c, nil
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) WorkspaceID() int32 {
	return c.workspaceID
}

// Send queues an encoded event without blocking
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.queue <- data:
		return nil
	default:
		return ErrClientSlow
	}
}

// Close ends the session. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// readLoop discards inbound frames and returns when the connection fails or
// stops answering pings
func (c *Client) readLoop() {
	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Int32("workspace_id", c.workspaceID).
					Msg("Realtime connection lost")
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case data := <-c.queue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Int32("workspace_id", c.workspaceID).
					Msg("Realtime write failed")
				_ = c.Close()
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}
