package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	idlePingInterval = 30 * time.Second
	writeWait        = 10 * time.Second
	sendBufferSize   = 16
)

// Client is one WebSocket connection. Outgoing messages are queued and written by writePump.
type Client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// enqueue - queues data for writing. A slow client loses the message instead of blocking the caller.
func (that *Client) enqueue(data []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

func (that *Client) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.send)
	}
}

// writePump - writes queued messages and pings the peer when nothing was written for a while.
func (that *Client) writePump(pingInterval time.Duration) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	lastWrite := time.Now()

	for {
		select {
		case msg, ok := <-that.send:
			if !ok {
				_ = that.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return nil
			}

			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}

			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < pingInterval {
				continue
			}

			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}

			lastWrite = time.Now()
		}
	}
}

// Hub maps player ids to their live connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Bind - routes messages for playerID to client. A reconnecting player replaces the old connection.
func (that *Hub) Bind(playerID string, client *Client) {
	that.mu.Lock()
	that.clients[playerID] = client
	that.mu.Unlock()
}

// Unbind - forgets every player routed to client and closes its queue.
func (that *Hub) Unbind(client *Client) []string {
	that.mu.Lock()
	var released []string
	for playerID, bound := range that.clients {
		if bound == client {
			delete(that.clients, playerID)
			released = append(released, playerID)
		}
	}
	that.mu.Unlock()

	client.close()

	return released
}

// SendTo - queues data for the player. It reports false when the player is not connected.
func (that *Hub) SendTo(playerID string, data []byte) bool {
	that.mu.RLock()
	client, ok := that.clients[playerID]
	that.mu.RUnlock()

	if !ok {
		return false
	}

	return client.enqueue(data)
}

func (that *Hub) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients)
}
