package bridge

// Recorded is a single input command captured by a Recorder.
type Recorded struct {
	Op    string // "send", "down", "up", "mouse"
	Key   KeyKind
	X, Y  int
	Mouse MouseAction
}

// Recorder is a KeySender test double capturing every command in order. It
// also tracks held keys so AllKeysCleared behaves like the real sender.
type Recorder struct {
	Commands []Recorded
	held     map[KeyKind]bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{held: make(map[KeyKind]bool)}
}

func (r *Recorder) Send(kind KeyKind) error {
	r.Commands = append(r.Commands, Recorded{Op: "send", Key: kind})
	return nil
}

func (r *Recorder) SendDown(kind KeyKind) error {
	r.held[kind] = true
	r.Commands = append(r.Commands, Recorded{Op: "down", Key: kind})
	return nil
}

func (r *Recorder) SendUp(kind KeyKind) error {
	delete(r.held, kind)
	r.Commands = append(r.Commands, Recorded{Op: "up", Key: kind})
	return nil
}

func (r *Recorder) SendMouse(x, y int, action MouseAction) error {
	r.Commands = append(r.Commands, Recorded{Op: "mouse", X: x, Y: y, Mouse: action})
	return nil
}

func (r *Recorder) AllKeysCleared() bool {
	return len(r.held) == 0
}

// Sent reports how many press-and-release commands were recorded for kind.
func (r *Recorder) Sent(kind KeyKind) int {
	n := 0
	for _, c := range r.Commands {
		if c.Op == "send" && c.Key == kind {
			n++
		}
	}
	return n
}

// Pressed reports whether kind was pressed down at any point.
func (r *Recorder) Pressed(kind KeyKind) bool {
	for _, c := range r.Commands {
		if c.Op == "down" && c.Key == kind {
			return true
		}
	}
	return false
}

// Released reports whether kind was released at any point.
func (r *Recorder) Released(kind KeyKind) bool {
	for _, c := range r.Commands {
		if c.Op == "up" && c.Key == kind {
			return true
		}
	}
	return false
}

// Reset clears the captured commands but keeps held-key state.
func (r *Recorder) Reset() {
	r.Commands = nil
}
