package bridge

// MouseAction is the kind of mouse input to inject at a client-relative
// coordinate.
type MouseAction int

const (
	MouseMove MouseAction = iota
	MouseClick
	MouseScroll
)

// KeySender sends low-level input to the game client. Implementations must
// not block the tick loop: sends are fire-and-forget and failures are
// recovered by the next tick's perception, so callers are expected to ignore
// the returned error in the hot path.
type KeySender interface {
	// Send presses and releases kind.
	Send(kind KeyKind) error
	// SendUp releases kind if it is currently held.
	SendUp(kind KeyKind) error
	// SendDown presses and holds kind.
	SendDown(kind KeyKind) error
	// SendMouse performs a mouse action at the client-relative coordinate.
	SendMouse(x, y int, action MouseAction) error
	// AllKeysCleared reports whether no key is currently held down.
	AllKeysCleared() bool
}

// NopKeySender discards all input. Useful when running detection-only.
type NopKeySender struct{}

func (NopKeySender) Send(KeyKind) error                 { return nil }
func (NopKeySender) SendUp(KeyKind) error               { return nil }
func (NopKeySender) SendDown(KeyKind) error             { return nil }
func (NopKeySender) SendMouse(int, int, MouseAction) error { return nil }
func (NopKeySender) AllKeysCleared() bool               { return true }
