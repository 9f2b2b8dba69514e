package ws

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 256
)

// Client is one websocket subscriber of the event stream. It only writes,
// inbound messages are read to detect the close and discarded.
type Client struct {
	Conn *websocket.Conn

	// Address filters the events by contract address, empty means all.
	Address  string
	Compress bool

	mutex  sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(conn *websocket.Conn, address string, compress bool) *Client {
	if conn == nil {
		return nil
	}

	return &Client{
		Conn:     conn,
		Address:  address,
		Compress: compress,
		send:     make(chan []byte, sendBuffer),
	}
}

func (c *Client) accept(address string) bool {
	return c.Address == "" || strings.EqualFold(c.Address, address)
}

// Write queues msg without blocking. It returns false if the client is too
// slow to keep up.
func (c *Client) Write(msg []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the writer and closes the connection. It is safe to call more
// than once.
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Run serves the connection until the peer goes away or Close is called.
func (c *Client) Run() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.runReader()
	}()

	c.runWriter(done)
	c.Conn.Close()
}

func (c *Client) runReader() {
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) runWriter(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case msg, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageType := websocket.TextMessage
			if c.Compress {
				compressed, err := Compress(msg)
				if err != nil {
					continue
				}

				msg = compressed
				messageType = websocket.BinaryMessage
			}

			if err := c.Conn.WriteMessage(messageType, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
