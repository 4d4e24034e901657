package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection under key, queues the initial frames and
// pumps until the peer goes away.
func ServeWs(hub *Hub, c *websocket.Conn, key string, initial ...Envelope) {
	client := NewClient(hub, key, c)
	for _, env := range initial {
		client.queue(env)
	}
	if !hub.Register(client) {
		c.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
