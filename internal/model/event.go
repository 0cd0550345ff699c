package model

import (
	"fmt"
	"strconv"
)

// Event is a message sent by a unit of work to the orchestrator. All events
// travel over one stream; the orchestrator is the only consumer.
type Event interface {
	fmt.Stringer
	isEvent()
}

// KeyPressed is sent by the UI for every key it recognizes.
type KeyPressed struct {
	Key Key
}

// UIClosed reports the terminal UI ended on its own, Err is empty unless it
// failed.
type UIClosed struct {
	Err string
}

// EditorOpened reports the editor process has been started on File.
type EditorOpened struct {
	File string
}

// CouldNotOpenEditor reports the editor process failed to start.
type CouldNotOpenEditor struct {
	Err string
}

type CompilationStart struct{}

// CompilationOutputLine is one line of the compiler's stdout or stderr.
type CompilationOutputLine struct {
	Line string
}

type CompilationEnd struct {
	Success bool
}

// CouldNotStartCompilation reports the compiler binary failed to start.
type CouldNotStartCompilation struct {
	Err string
}

// RunStart reports the exercise binary has been started for check Index.
type RunStart struct {
	Index int
}

// RunOutputLine is one line printed by the exercise binary for check Index.
type RunOutputLine struct {
	Index int
	Line  string
}

// RunEnd reports the exercise binary for check Index has exited.
type RunEnd struct {
	Index    int
	Success  bool
	ExitCode int
	TimedOut bool
}

// RunFail reports the exercise binary for check Index failed to start.
type RunFail struct {
	Index int
	Err   string
}

// FileSaved is sent once per burst of writes to a watched file.
type FileSaved struct {
	Path string
}

// WatcherFailed reports a file watcher could not be set up.
type WatcherFailed struct {
	Path string
	Err  string
}

type OutputCheckPassed struct {
	Index int
}

// OutputCheckFailed carries a unified diff between expected and actual output.
type OutputCheckFailed struct {
	Index int
	Diff  string
}

func (KeyPressed) isEvent()               {}
func (UIClosed) isEvent()                 {}
func (EditorOpened) isEvent()             {}
func (CouldNotOpenEditor) isEvent()       {}
func (CompilationStart) isEvent()         {}
func (CompilationOutputLine) isEvent()    {}
func (CompilationEnd) isEvent()           {}
func (CouldNotStartCompilation) isEvent() {}
func (RunStart) isEvent()                 {}
func (RunOutputLine) isEvent()            {}
func (RunEnd) isEvent()                   {}
func (RunFail) isEvent()                  {}
func (FileSaved) isEvent()                {}
func (WatcherFailed) isEvent()            {}
func (OutputCheckPassed) isEvent()        {}
func (OutputCheckFailed) isEvent()        {}

func (e KeyPressed) String() string   { return "key pressed: " + e.Key.String() }
func (e UIClosed) String() string     { return "ui closed: " + e.Err }
func (e EditorOpened) String() string { return "editor opened: " + e.File }
func (e CouldNotOpenEditor) String() string {
	return "could not open editor: " + e.Err
}
func (CompilationStart) String() string { return "compilation start" }
func (e CompilationOutputLine) String() string {
	return "compilation output: " + e.Line
}
func (e CompilationEnd) String() string {
	return "compilation end: success=" + strconv.FormatBool(e.Success)
}
func (e CouldNotStartCompilation) String() string {
	return "could not start compilation: " + e.Err
}
func (e RunStart) String() string { return "run start: check " + strconv.Itoa(e.Index) }
func (e RunOutputLine) String() string {
	return fmt.Sprintf("run output: check %d: %s", e.Index, e.Line)
}
func (e RunEnd) String() string {
	return fmt.Sprintf("run end: check %d: success=%t exit=%d timeout=%t", e.Index, e.Success, e.ExitCode, e.TimedOut)
}
func (e RunFail) String() string {
	return fmt.Sprintf("run fail: check %d: %s", e.Index, e.Err)
}
func (e FileSaved) String() string { return "file saved: " + e.Path }
func (e WatcherFailed) String() string {
	return fmt.Sprintf("watcher failed: %s: %s", e.Path, e.Err)
}
func (e OutputCheckPassed) String() string {
	return "output check passed: check " + strconv.Itoa(e.Index)
}
func (e OutputCheckFailed) String() string {
	return "output check failed: check " + strconv.Itoa(e.Index)
}
