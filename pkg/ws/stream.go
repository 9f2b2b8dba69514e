package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/questx-lab/raffle/pkg/logger"
	"github.com/questx-lab/raffle/pkg/pubsub"
)

// StreamTopic is the only topic clients can subscribe to.
const StreamTopic = "raffle"

type Subscriber interface {
	Subscribe(topic string, handler pubsub.SubscribeHandler) func()
}

// EventStream forwards every pack published on a topic to the websocket
// clients. The pack key is the contract address, the message is sent as is.
type EventStream struct {
	hub         *Hub
	logger      logger.Logger
	upgrader    websocket.Upgrader
	unsubscribe func()
}

func NewEventStream(logger logger.Logger, subscriber Subscriber, topic string) *EventStream {
	s := &EventStream{
		hub:    NewHub(),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	s.unsubscribe = subscriber.Subscribe(topic, func(_ context.Context, pack *pubsub.Pack, _ time.Time) {
		s.hub.Broadcast(string(pack.Key), pack.Msg)
	})

	return s
}

func (s *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if topic := query.Get("topic"); topic != "" && topic != StreamTopic {
		http.Error(w, "unknown topic", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("Cannot upgrade the connection: %v", err)
		return
	}

	client := NewClient(conn, query.Get("address"), query.Get("compress") == "true")
	unregister := s.hub.Register(client)
	defer unregister()

	s.logger.Debugf("Event stream client %s connected", r.RemoteAddr)
	client.Run()
	s.logger.Debugf("Event stream client %s disconnected", r.RemoteAddr)
}

// Close stops forwarding and disconnects every client.
func (s *EventStream) Close() {
	s.unsubscribe()
	s.hub.clients.Range(func(id string, client *Client) bool {
		s.hub.clients.Delete(id)
		client.Close()
		return true
	})
}

func (s *EventStream) Clients() int {
	return s.hub.Len()
}
