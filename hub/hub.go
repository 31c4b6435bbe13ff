// Package hub serves the control websocket: it broadcasts status snapshots
// of the running loop and accepts commands that queue actions or toggle the
// loop, so a UI can drive the bot without linking against it.
package hub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/internal"
)

// Snapshot is one status frame pushed to every connected client.
type Snapshot struct {
	Tick           uint64 `json:"tick"`
	State          string `json:"state"`
	PositionX      int    `json:"positionX"`
	PositionY      int    `json:"positionY"`
	HasPosition    bool   `json:"hasPosition"`
	Halting        bool   `json:"halting"`
	NormalAction   string `json:"normalAction,omitempty"`
	PriorityAction string `json:"priorityAction,omitempty"`
}

// Command is a request from a client, drained by the tick loop between
// ticks.
type Command struct {
	// Op is one of "halt", "resume", "reset" or "action".
	Op     string      `json:"op"`
	Action *ActionSpec `json:"action,omitempty"`
}

// ActionSpec describes an action to queue.
type ActionSpec struct {
	// Kind is one of "key", "move", "solve_rune", "familiars_swap",
	// "panic_town" or "panic_channel".
	Kind     string `json:"kind"`
	Key      string `json:"key,omitempty"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	HasPos   bool   `json:"hasPos"`
	Exact    bool   `json:"exact"`
	Count    uint32 `json:"count"`
	Priority bool   `json:"priority"`
	// Waits around key presses, in milliseconds as the UI thinks of them.
	WaitBeforeMillis uint32 `json:"waitBeforeMillis"`
	WaitAfterMillis  uint32 `json:"waitAfterMillis"`
}

const (
	clientSendBuffer = 16
	commandBuffer    = 64
)

// Hub tracks connected clients and fans snapshots out to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	commands chan Command
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The hub binds to loopback; the UI is a local process.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		commands: make(chan Command, commandBuffer),
	}
}

// Commands is the queue of pending client commands. The tick loop drains it
// non-blockingly between ticks.
func (h *Hub) Commands() <-chan Command {
	return h.commands
}

// Broadcast pushes a snapshot to every connected client. Clients too slow to
// keep up skip frames rather than stall the caller.
func (h *Hub) Broadcast(s Snapshot) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer internal.BufferPool.Put(buf)
	if err := json.NewEncoder(buf).Encode(s); err != nil {
		logrus.WithError(err).Warn("dropping unencodable snapshot")
		return
	}
	payload := make([]byte, buf.Len())
	copy(payload, buf.Bytes())

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// ServeHTTP upgrades a client connection and starts its pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("hub upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logrus.WithField("remote", conn.RemoteAddr()).Info("hub client connected")

	go h.writePump(c)
	go h.readPump(c)
}

// Listen serves the hub at addr until the listener fails.
func (h *Hub) Listen(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return http.ListenAndServe(addr, mux)
}

func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			break
		}
	}
	c.conn.Close()
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logrus.WithError(err).Warn("ignoring malformed hub command")
			continue
		}
		select {
		case h.commands <- cmd:
		default:
			logrus.Warn("hub command queue full, dropping command")
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	logrus.WithField("remote", c.conn.RemoteAddr()).Info("hub client disconnected")
}
