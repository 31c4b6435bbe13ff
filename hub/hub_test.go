package hub

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(h)
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatal(err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	h := New()
	conn, cleanup := dialTestHub(t, h)
	defer cleanup()

	want := Snapshot{
		Tick:        120,
		State:       "idle",
		PositionX:   50,
		PositionY:   20,
		HasPosition: true,
	}
	waitForClients(t, h, 1)
	h.Broadcast(want)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("snapshot mangled: %+v", got)
	}
}

// waitForClients blocks until the hub tracks n clients; the upgrade handshake
// finishes asynchronously from the dialer's point of view.
func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.mu.Lock()
		count := len(h.clients)
		h.mu.Unlock()
		if count >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("hub never tracked %d clients", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClientCommandsAreQueued(t *testing.T) {
	h := New()
	conn, cleanup := dialTestHub(t, h)
	defer cleanup()

	cmd := Command{Op: "action", Action: &ActionSpec{Kind: "move", X: 10, Y: 20, HasPos: true}}
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-h.Commands():
		if got.Op != "action" || got.Action == nil || got.Action.X != 10 || got.Action.Y != 20 {
			t.Fatalf("command mangled: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command never reached the queue")
	}
}

func TestMalformedCommandIsIgnored(t *testing.T) {
	h := New()
	conn, cleanup := dialTestHub(t, h)
	defer cleanup()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(Command{Op: "halt"}); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-h.Commands():
		if got.Op != "halt" {
			t.Fatalf("expected the valid command to survive, got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid command never arrived")
	}
}

func TestSlowClientSkipsFrames(t *testing.T) {
	h := New()
	_, cleanup := dialTestHub(t, h)
	defer cleanup()
	waitForClients(t, h, 1)

	// Never read from the connection; broadcasts must not block the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < clientSendBuffer*4; i++ {
			h.Broadcast(Snapshot{Tick: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}
