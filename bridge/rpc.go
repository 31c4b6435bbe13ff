package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout     = 200 * time.Millisecond
	redialCooldown   = 2 * time.Second
	handshakeTimeout = 3 * time.Second
)

// rpcCommand is the wire format understood by the injector service.
type rpcCommand struct {
	Op     string `json:"op"` // "key", "key_down", "key_up", "mouse"
	Key    string `json:"key,omitempty"`
	X      int    `json:"x,omitempty"`
	Y      int    `json:"y,omitempty"`
	Action string `json:"action,omitempty"`
}

// RPCKeySender forwards input commands to an external injector over a
// websocket. Sends are best-effort: a broken connection drops the command and
// schedules a redial, and the control loop corrects course from the next
// perception snapshot.
//
// Held keys are tracked in insertion order so ReleaseAll replays releases in
// the order the presses happened, matching how the client saw them.
type RPCKeySender struct {
	log *logrus.Entry
	url string

	mu       sync.Mutex
	conn     *websocket.Conn
	lastDial time.Time
	held     *orderedmap.OrderedMap[KeyKind, struct{}]
}

// NewRPCKeySender creates a sender dialing the given websocket URL lazily on
// first use.
func NewRPCKeySender(log *logrus.Logger, url string) *RPCKeySender {
	return &RPCKeySender{
		log:  log.WithField("bridge", "rpc"),
		url:  url,
		held: orderedmap.NewOrderedMap[KeyKind, struct{}](),
	}
}

func (s *RPCKeySender) Send(kind KeyKind) error {
	return s.write(rpcCommand{Op: "key", Key: kind.String()})
}

func (s *RPCKeySender) SendDown(kind KeyKind) error {
	s.mu.Lock()
	s.held.Set(kind, struct{}{})
	s.mu.Unlock()
	return s.write(rpcCommand{Op: "key_down", Key: kind.String()})
}

func (s *RPCKeySender) SendUp(kind KeyKind) error {
	s.mu.Lock()
	s.held.Delete(kind)
	s.mu.Unlock()
	return s.write(rpcCommand{Op: "key_up", Key: kind.String()})
}

func (s *RPCKeySender) SendMouse(x, y int, action MouseAction) error {
	name := "move"
	switch action {
	case MouseClick:
		name = "click"
	case MouseScroll:
		name = "scroll"
	}
	return s.write(rpcCommand{Op: "mouse", X: x, Y: y, Action: name})
}

func (s *RPCKeySender) AllKeysCleared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held.Len() == 0
}

// ReleaseAll releases every held key in press order.
func (s *RPCKeySender) ReleaseAll() {
	s.mu.Lock()
	keys := s.held.Keys()
	s.mu.Unlock()
	for _, k := range keys {
		_ = s.SendUp(k)
	}
}

// Close tears down the connection.
func (s *RPCKeySender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *RPCKeySender) write(cmd rpcCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		if time.Since(s.lastDial) < redialCooldown {
			return kerrNotConnected
		}
		s.lastDial = time.Now()
		dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
		conn, _, err := dialer.Dial(s.url, nil)
		if err != nil {
			s.log.WithError(err).Debug("injector dial failed")
			return err
		}
		s.conn = conn
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.log.WithError(err).Debug("injector write failed, dropping connection")
		_ = s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}
