package model

import (
	"slices"
	"strings"
)

// CheckStatus is the progress of one check of the current exercise.
type CheckStatus int

const (
	CheckPending CheckStatus = iota
	CheckRunning
	CheckChecking
	CheckPassed
	CheckFailed
	CheckRunFail
)

func (s CheckStatus) String() string {
	switch s {
	case CheckPending:
		return "pending"
	case CheckRunning:
		return "running"
	case CheckChecking:
		return "checking"
	case CheckPassed:
		return "passed"
	case CheckFailed:
		return "failed"
	case CheckRunFail:
		return "run failed"
	default:
		return "unknown"
	}
}

// Final reports whether no further event can change the status.
func (s CheckStatus) Final() bool {
	return s == CheckPassed || s == CheckFailed || s == CheckRunFail
}

// CheckState is the result of one check as far as it is known.
type CheckState struct {
	Check  Check
	Status CheckStatus
	Output []string
	// Diff is set for CheckFailed, Err for CheckRunFail.
	Diff string
	Err  string
}

// Screen is the page the UI displays.
type Screen int

const (
	ScreenList Screen = iota
	ScreenExo
	// ScreenSolution shows the solution file of the current exercise.
	ScreenSolution
	// ScreenHelp lists the key bindings, it returns to Previous.
	ScreenHelp
)

// CompileStatus is the state of the last compilation of the current exercise.
type CompileStatus int

const (
	CompileNone CompileStatus = iota
	CompileRunning
	CompileOK
	CompileFailed
)

// UIState is a snapshot of everything the UI renders. The orchestrator owns
// the state and sends copies, the UI never modifies it.
type UIState struct {
	Screen   Screen
	Exos     []Exo
	Selected int
	// Done is parallel to Exos and marks exercises solved before.
	Done []bool

	// set on ScreenExo
	Exo           *Exo
	Compile       CompileStatus
	CompileOutput []string
	Checks        []CheckState
	// Scroll is the first visible line of the compiler output or the check
	// results, see DetailLines.
	Scroll int

	// set on ScreenSolution
	Solution       []string
	SolutionScroll int

	// Previous is the screen ScreenHelp returns to.
	Previous Screen

	// Message is a one line status shown at the bottom.
	Message string
}

// Passed reports whether every check has passed.
func (s UIState) Passed() bool {
	if s.Compile != CompileOK {
		return false
	}
	for _, c := range s.Checks {
		if c.Status != CheckPassed {
			return false
		}
	}
	return true
}

// DetailLines returns the number of lines of the compiler output or of the
// check results with their diffs and errors.
func (s UIState) DetailLines() int {
	switch s.Compile {
	case CompileFailed:
		return len(s.CompileOutput)
	case CompileOK:
		n := 0
		for _, c := range s.Checks {
			n++
			switch c.Status {
			case CheckFailed:
				n += len(Lines(c.Diff))
			case CheckRunFail:
				n += len(Lines(c.Err))
			}
		}
		return n
	}
	return 0
}

// Lines splits s into lines, a trailing newline does not add an empty one.
func Lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Clone returns a deep copy safe to hand over to another goroutine.
func (s UIState) Clone() UIState {
	ret := s
	ret.Exos = slices.Clone(s.Exos)
	ret.Done = slices.Clone(s.Done)
	if s.Exo != nil {
		exo := *s.Exo
		ret.Exo = &exo
	}
	ret.CompileOutput = slices.Clone(s.CompileOutput)
	ret.Solution = slices.Clone(s.Solution)
	ret.Checks = make([]CheckState, len(s.Checks))
	for i, c := range s.Checks {
		c.Output = slices.Clone(c.Output)
		ret.Checks[i] = c
	}
	return ret
}
