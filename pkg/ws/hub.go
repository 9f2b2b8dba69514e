package ws

import (
	"strconv"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync"
)

// Hub maintains the set of active clients and broadcasts messages to the
// clients.
type Hub struct {
	counter uint64
	clients *xsync.MapOf[string, *Client]
}

func NewHub() *Hub {
	return &Hub{clients: xsync.NewMapOf[*Client]()}
}

// Register adds the client and returns the function removing it.
func (h *Hub) Register(client *Client) func() {
	id := strconv.FormatUint(atomic.AddUint64(&h.counter, 1), 10)
	h.clients.Store(id, client)

	return func() {
		if c, ok := h.clients.LoadAndDelete(id); ok {
			c.Close()
		}
	}
}

// Broadcast sends msg to every client accepting address. Clients whose buffer
// is full are disconnected.
func (h *Hub) Broadcast(address string, msg []byte) int {
	sent := 0
	h.clients.Range(func(id string, client *Client) bool {
		if !client.accept(address) {
			return true
		}

		if client.Write(msg) {
			sent++
		} else if c, ok := h.clients.LoadAndDelete(id); ok {
			c.Close()
		}

		return true
	})

	return sent
}

func (h *Hub) Len() int {
	return h.clients.Size()
}
