package live

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"ktvadmin/mq"
)

// AllTopics is the subscription that receives every event.
const AllTopics = "*"

var ErrHubStopped = errors.New("live hub stopped")

type Client struct {
	Send  chan []byte
	Topic string
}

type broadcastMsg struct {
	Topic string
	Data  []byte
}

// Hub fans events out to websocket clients grouped by topic. A topic is the
// part of the event type before the first dot, e.g. "booking" or "room".
type Hub struct {
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.topics[c.Topic] == nil {
				h.topics[c.Topic] = make(map[*Client]bool)
			}
			h.topics[c.Topic][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			h.deliver(m.Topic, m.Data)
			if m.Topic != AllTopics {
				h.deliver(AllTopics, m.Data)
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.topics {
				for c := range conns {
					h.drop(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// deliver skips slow clients; their send buffer is closed and they are removed.
func (h *Hub) deliver(topic string, data []byte) {
	for c := range h.topics[topic] {
		select {
		case c.Send <- data:
		default:
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *Client) {
	conns := h.topics[c.Topic]
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(h.topics, c.Topic)
	}
}

// Subscribe registers c unless the hub has stopped.
func (h *Hub) Subscribe(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) Unsubscribe(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients reports how many clients are subscribed to topic.
func (h *Hub) Clients(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// Emit makes the hub an mq.Emitter.
func (h *Hub) Emit(ctx context.Context, ev mq.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.broadcast <- broadcastMsg{Topic: TopicOf(ev.Type), Data: data}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Close() error {
	h.Stop()
	return nil
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func TopicOf(eventType string) string {
	topic, _, _ := strings.Cut(eventType, ".")
	return topic
}
