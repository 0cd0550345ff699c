package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/plx-project/plx/internal/check"
	"github.com/plx-project/plx/internal/model"
)

func (a *App) handle(ctx context.Context, ev model.Event) {
	switch ev := ev.(type) {
	case model.KeyPressed:
		a.onKey(ctx, ev.Key)
	case model.UIClosed:
		if ev.Err != "" {
			a.uiErr = fmt.Errorf("terminal ui: %s", ev.Err)
		}
		a.quit = true

	case model.EditorOpened:
		a.state.Message = "Opened " + filepath.Base(ev.File) + " in the editor"
	case model.CouldNotOpenEditor:
		a.state.Message = "Could not open the editor: " + ev.Err

	case model.FileSaved:
		if a.state.Exo == nil || !slices.Contains(a.state.Exo.Sources(), ev.Path) {
			return
		}
		slog.InfoContext(a.runCtx, "file saved, recompiling", "path", ev.Path)
		a.compile()
		a.state.Message = "Saved " + filepath.Base(ev.Path)
	case model.WatcherFailed:
		a.state.Message = fmt.Sprintf("Not watching %s: %s", filepath.Base(ev.Path), ev.Err)

	case model.CompilationStart:
		a.state.Compile = model.CompileRunning
		a.state.CompileOutput = nil
	case model.CompilationOutputLine:
		if a.state.Compile == model.CompileRunning {
			a.state.CompileOutput = append(a.state.CompileOutput, ev.Line)
		}
	case model.CompilationEnd:
		if a.state.Compile != model.CompileRunning {
			return
		}
		if !ev.Success {
			a.state.Compile = model.CompileFailed
			return
		}
		a.state.Compile = model.CompileOK
		a.launch()
	case model.CouldNotStartCompilation:
		a.compileFailed(errors.New(ev.Err))

	case model.RunStart:
		if c := a.check(ev.Index, model.CheckRunning); c != nil {
			c.Output = nil
		}
	case model.RunOutputLine:
		if c := a.check(ev.Index, model.CheckRunning); c != nil {
			c.Output = append(c.Output, ev.Line)
		}
	case model.RunEnd:
		c := a.check(ev.Index, model.CheckRunning)
		if c == nil {
			return
		}
		c.Status = model.CheckChecking
		if _, err := a.spawn(check.NewChecker(ev.Index, c.Check.Expected, strings.Join(c.Output, "\n"))); err != nil {
			c.Status = model.CheckRunFail
			c.Err = err.Error()
			a.checkDone()
		}
	case model.RunFail:
		if c := a.check(ev.Index, model.CheckRunning); c != nil {
			c.Status = model.CheckRunFail
			c.Err = ev.Err
			a.checkDone()
		}

	case model.OutputCheckPassed:
		if c := a.check(ev.Index, model.CheckChecking); c != nil {
			c.Status = model.CheckPassed
			a.checkDone()
		}
	case model.OutputCheckFailed:
		if c := a.check(ev.Index, model.CheckChecking); c != nil {
			c.Status = model.CheckFailed
			c.Diff = ev.Diff
			a.checkDone()
		}

	default:
		slog.WarnContext(ctx, "unknown event", "event", ev.String())
	}
}

// check returns check i of the current exercise if it is in status want.
// Events for any other check are stale.
func (a *App) check(i int, want model.CheckStatus) *model.CheckState {
	if a.state.Compile != model.CompileOK || i < 0 || i >= len(a.state.Checks) {
		return nil
	}
	c := &a.state.Checks[i]
	if c.Status != want {
		return nil
	}
	return c
}

func (a *App) onKey(ctx context.Context, k model.Key) {
	switch {
	case k == model.KeyQuit:
		a.quit = true
		return
	case k == model.KeyHelp && a.state.Screen != model.ScreenHelp:
		a.state.Previous = a.state.Screen
		a.state.Screen = model.ScreenHelp
		return
	}

	switch a.state.Screen {
	case model.ScreenList:
		a.onListKey(ctx, k)
	case model.ScreenExo:
		a.onExoKey(ctx, k)
	case model.ScreenSolution:
		switch k {
		case model.KeyDown:
			a.state.SolutionScroll = scroll(a.state.SolutionScroll, 1, len(a.state.Solution))
		case model.KeyUp:
			a.state.SolutionScroll = scroll(a.state.SolutionScroll, -1, len(a.state.Solution))
		case model.KeyLeft, model.KeyEsc, model.KeySolution:
			a.hideSolution()
		}
	case model.ScreenHelp:
		switch k {
		case model.KeyLeft, model.KeyEsc, model.KeyHelp:
			a.state.Screen = a.state.Previous
		}
	}
}

func (a *App) onListKey(ctx context.Context, k model.Key) {
	switch k {
	case model.KeyDown:
		if a.state.Selected < len(a.state.Exos)-1 {
			a.state.Selected++
		}
	case model.KeyUp:
		if a.state.Selected > 0 {
			a.state.Selected--
		}
	case model.KeyRight, model.KeyEnter:
		if len(a.state.Exos) > 0 {
			a.startExo(ctx, a.state.Selected)
		}
	}
}

func (a *App) onExoKey(ctx context.Context, k model.Key) {
	switch k {
	case model.KeyDown:
		a.state.Scroll = scroll(a.state.Scroll, 1, a.state.DetailLines())
	case model.KeyUp:
		a.state.Scroll = scroll(a.state.Scroll, -1, a.state.DetailLines())
	case model.KeyLeft, model.KeyEsc:
		a.leaveExo()
	case model.KeyRestart:
		a.compile()
		a.state.Message = ""
	case model.KeySolution:
		a.showSolution()
	case model.KeyRight:
		if a.state.Passed() && a.state.Selected < len(a.state.Exos)-1 {
			a.startExo(ctx, a.state.Selected+1)
		}
	}
}

// scroll moves offset by delta and keeps the last of n lines visible.
func scroll(offset, delta, n int) int {
	return max(0, min(offset+delta, n-1))
}
