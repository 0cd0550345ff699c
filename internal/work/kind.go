package work

// Kind classifies units of work, so whole groups can be stopped at once.
type Kind int

const (
	KindEditorOpen Kind = iota
	KindCompilation
	KindUI
	KindFileWatch
	KindLaunch
	KindCheck
)

func (k Kind) String() string {
	switch k {
	case KindEditorOpen:
		return "editor-open"
	case KindCompilation:
		return "compilation"
	case KindUI:
		return "ui"
	case KindFileWatch:
		return "file-watch"
	case KindLaunch:
		return "launch"
	case KindCheck:
		return "check"
	default:
		return "unknown"
	}
}
