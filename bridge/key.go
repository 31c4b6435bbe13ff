package bridge

// KeyKind is an abstract key identifier understood by the input injector. It
// intentionally mirrors the keys the game client cares about rather than a
// full keyboard layout.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEsc
	KeyEnter
	KeyShift
	KeyCtrl
	KeyAlt
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyTilde
	KeyQuote
	KeySemicolon
	KeyComma
	KeyPeriod
	KeySlash
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
)

var keyNames = map[KeyKind]string{
	KeyNone: "none", KeyUp: "up", KeyDown: "down", KeyLeft: "left",
	KeyRight: "right", KeySpace: "space", KeyEsc: "esc", KeyEnter: "enter",
	KeyShift: "shift", KeyCtrl: "ctrl", KeyAlt: "alt",
	KeyA: "a", KeyB: "b", KeyC: "c", KeyD: "d", KeyE: "e", KeyF: "f",
	KeyG: "g", KeyH: "h", KeyI: "i", KeyJ: "j", KeyK: "k", KeyL: "l",
	KeyM: "m", KeyN: "n", KeyO: "o", KeyP: "p", KeyQ: "q", KeyR: "r",
	KeyS: "s", KeyT: "t", KeyU: "u", KeyV: "v", KeyW: "w", KeyX: "x",
	KeyY: "y", KeyZ: "z",
	KeyTilde: "`", KeyQuote: "'", KeySemicolon: ";", KeyComma: ",",
	KeyPeriod: ".", KeySlash: "/",
	KeyF1: "f1", KeyF2: "f2", KeyF3: "f3", KeyF4: "f4", KeyF5: "f5",
	KeyF6: "f6", KeyF7: "f7", KeyF8: "f8", KeyF9: "f9", KeyF10: "f10",
	KeyF11: "f11", KeyF12: "f12",
	KeyHome: "home", KeyEnd: "end", KeyPageUp: "pageup",
	KeyPageDown: "pagedown", KeyInsert: "insert", KeyDelete: "delete",
}

func (k KeyKind) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKey converts a profile key name back to a KeyKind.
func ParseKey(name string) (KeyKind, bool) {
	for k, n := range keyNames {
		if n == name {
			return k, true
		}
	}
	return KeyNone, false
}
