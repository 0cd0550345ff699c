package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/plx-project/plx/internal/compiler"
	"github.com/plx-project/plx/internal/editor"
	"github.com/plx-project/plx/internal/launcher"
	"github.com/plx-project/plx/internal/log"
	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/watcher"
	"github.com/plx-project/plx/internal/work"
)

// startExo stops everything but the UI and starts exercise i: the editor on
// its main file, one watcher per file and the first compilation.
func (a *App) startExo(ctx context.Context, i int) {
	a.handler.CleanNonProtectedWorkers(work.KindUI)
	a.discardStale()

	exo := a.state.Exos[i]
	a.runCtx = log.ContextAttrs(ctx,
		slog.String("exo", exo.ID()),
		slog.String("run_id", uuid.NewString()),
	)
	slog.InfoContext(a.runCtx, "starting exercise", "dir", exo.Dir, "checks", len(exo.Checks))

	a.state.Screen = model.ScreenExo
	a.state.Selected = i
	a.state.Exo = &exo
	a.state.Solution = nil
	a.state.SolutionScroll = 0
	if a.editor != "" {
		a.state.Message = ""
	}

	if a.progress != nil {
		if err := a.progress.Start(exo.ID()); err != nil {
			slog.WarnContext(a.runCtx, "saving progress failed", "error", err)
		}
	}

	if !a.headless {
		a.openEditor(exo)
		if a.cfg.Watch.Enabled {
			for _, f := range exo.Sources() {
				a.spawn(watcher.New(f, a.cfg.Watch.Debounce))
			}
		}
	}
	a.compile()
}

// leaveExo goes back to the exercise list.
func (a *App) leaveExo() {
	a.handler.CleanNonProtectedWorkers(work.KindUI)
	a.discardStale()
	a.state.Screen = model.ScreenList
	a.state.Exo = nil
	a.state.Compile = model.CompileNone
	a.state.CompileOutput = nil
	a.state.Checks = nil
	a.state.Scroll = 0
	a.state.Solution = nil
	a.state.SolutionScroll = 0
	a.state.Message = ""
}

// showSolution reads the solution file of the current exercise. The
// compilation and the checks keep running meanwhile.
func (a *App) showSolution() {
	path := a.state.Exo.SolutionPath()
	if path == "" {
		a.state.Message = "No solution for this exercise"
		return
	}
	b, err := os.ReadFile(path)
	if err != nil {
		slog.WarnContext(a.runCtx, "reading solution failed", "error", err)
		a.state.Message = "Could not read the solution: " + err.Error()
		return
	}
	a.state.Screen = model.ScreenSolution
	a.state.Solution = model.Lines(string(b))
	a.state.SolutionScroll = 0
}

func (a *App) hideSolution() {
	a.state.Screen = model.ScreenExo
	a.state.Solution = nil
	a.state.SolutionScroll = 0
}

func (a *App) openEditor(exo model.Exo) {
	if a.editor == "" {
		return
	}
	file := exo.MainFile()
	if file == "" {
		return
	}
	o, err := editor.New(a.editor, file)
	if err != nil {
		a.state.Message = err.Error()
		return
	}
	a.spawn(o)
}

// compile stops the running compilation and check runs of the current
// exercise and starts a new compilation.
func (a *App) compile() {
	a.handler.StopWorkers(work.KindCompilation)
	a.handler.StopWorkers(work.KindLaunch)
	a.handler.StopWorkers(work.KindCheck)
	a.discardStale()

	exo := a.state.Exo
	a.state.Compile = model.CompileRunning
	a.state.CompileOutput = nil
	a.state.Scroll = 0
	a.state.Checks = make([]model.CheckState, len(exo.Checks))
	for i, c := range exo.Checks {
		a.state.Checks[i] = model.CheckState{Check: c, Status: model.CheckPending}
	}

	dir, err := compiler.BuildDir(a.cfg.BuildPath(a.project.Dir), *exo)
	if err != nil {
		a.compileFailed(err)
		return
	}
	a.binary = filepath.Join(dir, compiler.Target)

	files := exo.Sources()
	r, err := compiler.NewRunner(files, a.binary, a.cfg.Compile.Timeout)
	if err != nil {
		a.compileFailed(err)
		return
	}
	switch c := compiler.For(files); {
	case c == compiler.GCC && a.cfg.Compile.CC != "":
		r.WithPath(a.cfg.Compile.CC)
	case c == compiler.GXX && a.cfg.Compile.CXX != "":
		r.WithPath(a.cfg.Compile.CXX)
	}
	slog.DebugContext(a.runCtx, "compiling", "cmd", r.Command().String())
	if _, err := a.spawn(r); err != nil {
		a.compileFailed(err)
	}
}

func (a *App) compileFailed(err error) {
	slog.WarnContext(a.runCtx, "compilation not started", "error", err)
	a.state.Compile = model.CompileFailed
	a.state.CompileOutput = []string{err.Error()}
}

// launch starts one run of the compiled binary per check.
func (a *App) launch() {
	for i, c := range a.state.Exo.Checks {
		a.state.Checks[i].Status = model.CheckRunning
		a.state.Checks[i].Output = nil
		if _, err := a.spawn(launcher.New(i, a.binary, c.Args, a.cfg.Run.Timeout)); err != nil {
			a.state.Checks[i].Status = model.CheckRunFail
			a.state.Checks[i].Err = err.Error()
		}
	}
	a.checkDone()
}

func (a *App) spawn(unit work.Work) (work.ID, error) {
	id, err := a.handler.SpawnContext(a.runCtx, unit)
	if err != nil {
		slog.ErrorContext(a.runCtx, "spawning worker failed", "kind", unit.Kind().String(), "error", err)
	}
	return id, err
}

// discardStale drops buffered events of stopped compilation, launch and check
// units. It must be called right after those units were stopped and joined,
// before new ones are spawned. Other events are kept in order.
func (a *App) discardStale() {
	for {
		select {
		case ev := <-a.events:
			if stale(ev) {
				slog.DebugContext(a.runCtx, "dropping stale event", "event", ev.String())
				continue
			}
			a.pending = append(a.pending, ev)
		default:
			a.pending = slices.DeleteFunc(a.pending, stale)
			return
		}
	}
}

func stale(ev model.Event) bool {
	switch ev.(type) {
	case model.CompilationStart, model.CompilationOutputLine, model.CompilationEnd,
		model.CouldNotStartCompilation,
		model.RunStart, model.RunOutputLine, model.RunEnd, model.RunFail,
		model.OutputCheckPassed, model.OutputCheckFailed:
		return true
	}
	return false
}

// finished reports whether the current compilation and check run of the
// exercise is complete.
func (a *App) finished() bool {
	switch a.state.Compile {
	case model.CompileFailed:
		return true
	case model.CompileOK:
		for _, c := range a.state.Checks {
			if !c.Status.Final() {
				return false
			}
		}
		return true
	}
	return false
}

// checkDone records the result once every check has a final status.
func (a *App) checkDone() {
	if a.state.Compile != model.CompileOK || !a.finished() {
		return
	}
	passed := 0
	for _, c := range a.state.Checks {
		if c.Status == model.CheckPassed {
			passed++
		}
	}
	exo := a.state.Exo
	slog.InfoContext(a.runCtx, "checks done", "passed", passed, "total", len(a.state.Checks))
	if passed == len(a.state.Checks) {
		a.state.Done[a.state.Selected] = true
	}
	if a.progress != nil {
		if err := a.progress.Record(exo.ID(), passed, len(a.state.Checks)); err != nil {
			slog.WarnContext(a.runCtx, "saving progress failed", "error", err)
		}
	}
}
