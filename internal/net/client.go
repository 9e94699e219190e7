package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Client is one spectator connection. Frames are queued by the game loop
// and written by a dedicated goroutine.
type Client struct {
	ID   uint64
	IP   string
	conn *websocket.Conn

	OutQueue chan []byte // writer goroutine reads from here

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func newClient(conn *websocket.Conn, id uint64, outSize int, log *zap.Logger) *Client {
	return &Client{
		ID:       id,
		IP:       conn.RemoteAddr().String(),
		conn:     conn,
		OutQueue: make(chan []byte, outSize),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("client", id)),
	}
}

// Start launches the reader and writer goroutines.
func (c *Client) Start() {
	go c.readLoop()
	go c.writeLoop()
}

// Send queues a frame. Non-blocking: if OutQueue is full the client is
// disconnected (backpressure).
func (c *Client) Send(data []byte) {
	if c.closed.Load() {
		return
	}
	select {
	case c.OutQueue <- data:
	default:
		c.log.Warn("feed queue full, dropping slow client")
		c.Close()
	}
}

// Close gracefully shuts down the client.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		c.conn.Close()
	})
}

func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

// readLoop only watches for the peer going away; spectators send nothing
// the game cares about.
func (c *Client) readLoop() {
	defer c.Close()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("feed read error", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop writes queued frames and keeps the connection alive with pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case data := <-c.OutQueue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !c.closed.Load() {
					c.log.Debug("feed write error", zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeCh:
			return
		}
	}
}
