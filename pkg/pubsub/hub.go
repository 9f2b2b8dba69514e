package pubsub

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync"
)

type subscription struct {
	topic   string
	handler SubscribeHandler
}

// Hub is an in-process Publisher. Handlers run synchronously in the publishing
// goroutine, so they must not block.
type Hub struct {
	counter       uint64
	subscriptions *xsync.MapOf[string, *subscription]
}

func NewHub() *Hub {
	return &Hub{subscriptions: xsync.NewMapOf[*subscription]()}
}

func (h *Hub) Publish(ctx context.Context, topic string, pack *Pack) error {
	now := time.Now()
	h.subscriptions.Range(func(_ string, sub *subscription) bool {
		if sub.topic == topic {
			sub.handler(ctx, pack, now)
		}
		return true
	})

	return nil
}

// Subscribe registers handler for every pack published on topic until the
// returned function is called.
func (h *Hub) Subscribe(topic string, handler SubscribeHandler) func() {
	id := h.nextID()
	h.subscriptions.Store(id, &subscription{topic: topic, handler: handler})
	return func() { h.subscriptions.Delete(id) }
}

// Once waits for the first pack on topic accepted by match. The channel
// receives at most one pack. Calling cancel releases the registration if
// nothing matched yet; timeouts are left to the caller.
func (h *Hub) Once(topic string, match func(*Pack) bool) (<-chan *Pack, func()) {
	id := h.nextID()
	c := make(chan *Pack, 1)

	h.subscriptions.Store(id, &subscription{
		topic: topic,
		handler: func(_ context.Context, pack *Pack, _ time.Time) {
			if !match(pack) {
				return
			}

			// LoadAndDelete guarantees a single delivery even if two packs
			// match concurrently.
			if _, ok := h.subscriptions.LoadAndDelete(id); ok {
				c <- pack
			}
		},
	})

	return c, func() { h.subscriptions.Delete(id) }
}

func (h *Hub) Len() int {
	return h.subscriptions.Size()
}

func (h *Hub) nextID() string {
	return strconv.FormatUint(atomic.AddUint64(&h.counter, 1), 10)
}
