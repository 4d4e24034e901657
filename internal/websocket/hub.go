package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/logger"
)

const (
	TypeProfile  = "profile"
	TypeMessages = "messages"
)

// ProfileFeed streams a user's profile document.
type ProfileFeed interface {
	Subscribe(ctx context.Context, id string, listener func(*dto.ProfileResponse)) (func(), error)
}

// MessageFeed streams a user's unread reply count.
type MessageFeed interface {
	SubscribeUnread(ctx context.Context, userId string, listener func(*dto.UnreadCountResponse)) (func(), error)
}

// Envelope is the frame pushed to browsers.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Hub struct {
	// Registered clients map: identity key -> clients (multi-tab)
	clients map[string][]*Client

	// Feed subscriptions held while a key has at least one client
	subs map[string][]func()

	register   chan *Client
	unregister chan *Client

	// Closed once Run has returned
	done chan struct{}

	mu sync.RWMutex

	profiles ProfileFeed
	messages MessageFeed

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(profiles ProfileFeed, messages MessageFeed, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		subs:       make(map[string][]func()),
		profiles:   profiles,
		messages:   messages,
		logger:     log,
	}
}

// Run serves register and unregister requests until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			first := len(h.clients[client.IdentityKey]) == 0
			h.clients[client.IdentityKey] = append(h.clients[client.IdentityKey], client)
			h.mu.Unlock()

			if first {
				h.attach(ctx, client.IdentityKey)
			}
			h.logger.Info("HUB", "Client registered", map[string]interface{}{"identity_key": client.IdentityKey})

		case client := <-h.unregister:
			h.mu.Lock()
			last := false
			if clients, ok := h.clients[client.IdentityKey]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.IdentityKey] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.IdentityKey]) == 0 {
					delete(h.clients, client.IdentityKey)
					last = true
				}
			}
			var unsubs []func()
			if last {
				unsubs = h.subs[client.IdentityKey]
				delete(h.subs, client.IdentityKey)
			}
			h.mu.Unlock()

			// Unsubscribing waits for in-flight deliveries, which take h.mu.
			for _, unsub := range unsubs {
				unsub()
			}
			if last {
				h.logger.Info("HUB", "Client completely unregistered", map[string]interface{}{"identity_key": client.IdentityKey})
			}
		}
	}
}

// Register hands client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client. After shutdown it returns at once.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// attach subscribes the key's profile and message feeds.
func (h *Hub) attach(ctx context.Context, key string) {
	var unsubs []func()

	if unsub, err := h.profiles.Subscribe(ctx, key, func(p *dto.ProfileResponse) {
		h.Send(key, Envelope{Type: TypeProfile, Data: p})
	}); err != nil {
		h.logger.Error("HUB", "Profile feed subscribe failed", map[string]interface{}{"identity_key": key, "error": err.Error()})
	} else {
		unsubs = append(unsubs, unsub)
	}

	if unsub, err := h.messages.SubscribeUnread(ctx, key, func(c *dto.UnreadCountResponse) {
		h.Send(key, Envelope{Type: TypeMessages, Data: c})
	}); err != nil {
		h.logger.Error("HUB", "Message feed subscribe failed", map[string]interface{}{"identity_key": key, "error": err.Error()})
	} else {
		unsubs = append(unsubs, unsub)
	}

	h.mu.Lock()
	h.subs[key] = unsubs
	h.mu.Unlock()
}

// Send pushes one frame to every local client of key.
func (h *Hub) Send(key string, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[key] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("HUB", "Client Send buffer full, dropping message", map[string]interface{}{"identity_key": key})
		}
	}
}

// ClientCount reports how many connections key has on this instance.
func (h *Hub) ClientCount(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[key])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string][]func())
	for key, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, key)
	}
	h.mu.Unlock()

	for _, unsubs := range subs {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
