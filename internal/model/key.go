package model

// Key is a key press the orchestrator reacts to.
type Key int

const (
	KeyQuit Key = iota
	KeyDown
	KeyUp
	KeyLeft
	KeyRight
	KeyEnter
	KeyRestart
	KeyEsc
	KeySolution
	KeyHelp
)

var keyNames = [...]string{
	KeyQuit:     "q",
	KeyDown:     "j",
	KeyUp:       "k",
	KeyLeft:     "h",
	KeyRight:    "l",
	KeyEnter:    "enter",
	KeyRestart:  "r",
	KeyEsc:      "esc",
	KeySolution: "s",
	KeyHelp:     "?",
}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return "unknown"
	}
	return keyNames[k]
}
