// Package app is the orchestrator of plx. It owns the worker Handler and the
// UI state, consumes the event stream and decides which units of work to
// start or stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plx-project/plx/internal/config"
	"github.com/plx-project/plx/internal/editor"
	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/progress"
	"github.com/plx-project/plx/internal/ui"
	"github.com/plx-project/plx/internal/work"
)

// eventBuffer lets workers keep going while the orchestrator updates the state.
const eventBuffer = 256

type Option func(*App)

// Headless runs without UI, editor and file watchers.
func Headless() Option {
	return func(a *App) { a.headless = true }
}

// WithUIOptions passes options to the terminal UI program.
func WithUIOptions(opts ...tea.ProgramOption) Option {
	return func(a *App) { a.uiOpts = append(a.uiOpts, opts...) }
}

// WithProgress records check results in s and resumes the last exercise.
func WithProgress(s *progress.Store) Option {
	return func(a *App) { a.progress = s }
}

type App struct {
	cfg      config.Config
	project  model.Project
	headless bool
	uiOpts   []tea.ProgramOption
	progress *progress.Store
	editor   string

	events  chan model.Event
	pending []model.Event
	handler *work.Handler
	states  chan model.UIState

	state  model.UIState
	runCtx context.Context
	binary string
	quit   bool
	uiErr  error
}

// New creates the event stream and the worker Handler. Workers inherit ctx
// values, they are stopped when Run or Check returns.
func New(ctx context.Context, cfg config.Config, project model.Project, opts ...Option) *App {
	events := make(chan model.Event, eventBuffer)
	a := &App{
		cfg:     cfg,
		project: project,
		events:  events,
		handler: work.New(ctx, events),
		runCtx:  ctx,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.state = model.UIState{
		Screen: model.ScreenList,
		Exos:   project.Exos,
		Done:   make([]bool, len(project.Exos)),
	}
	if a.progress != nil {
		for i, exo := range project.Exos {
			a.state.Done[i] = a.progress.Get(exo.ID()).Status == progress.Done
		}
	}

	if !a.headless {
		a.states = make(chan model.UIState, 1)
		if cfg.OpenEditor {
			ed, err := editor.Default(cfg.Editor)
			if err != nil {
				slog.WarnContext(ctx, "editor disabled", "error", err)
				a.state.Message = err.Error()
			}
			a.editor = ed
		}
	}
	return a
}

// Run starts the terminal UI and dispatches events until the user quits, the
// UI ends or ctx is done. All workers are stopped before Run returns.
func (a *App) Run(ctx context.Context) error {
	if a.headless {
		return errors.New("app: Run needs the terminal UI, use Check for headless runs")
	}
	defer a.handler.Close()

	if _, err := a.handler.SpawnContext(ctx, ui.New(a.states, a.uiOpts...)); err != nil {
		return fmt.Errorf("starting ui: %w", err)
	}
	a.resume(ctx)
	a.publish()

	a.loop(ctx, func() bool { return a.quit })
	slog.DebugContext(ctx, "orchestrator stopped", "workers", a.handler.Len())
	return a.uiErr
}

// resume reopens the exercise the user worked on last.
func (a *App) resume(ctx context.Context) {
	if a.progress == nil || a.progress.Last() == "" {
		return
	}
	for i, exo := range a.state.Exos {
		if exo.ID() == a.progress.Last() {
			slog.InfoContext(ctx, "resuming exercise", "exo", exo.ID())
			a.startExo(ctx, i)
			return
		}
	}
}

// loop dispatches events until done reports true or ctx is done.
func (a *App) loop(ctx context.Context, done func() bool) {
	for !done() {
		ev, ok := a.next(ctx)
		if !ok {
			return
		}
		slog.DebugContext(ctx, "event", "event", ev.String())
		a.handle(ctx, ev)
		a.publish()
	}
}

func (a *App) next(ctx context.Context) (model.Event, bool) {
	if len(a.pending) > 0 {
		ev := a.pending[0]
		a.pending = a.pending[1:]
		return ev, true
	}
	select {
	case ev := <-a.events:
		return ev, true
	case <-ctx.Done():
		return nil, false
	}
}

// publish hands a copy of the state to the UI. Only the latest state
// matters, an older one still waiting is replaced.
func (a *App) publish() {
	if a.states == nil {
		return
	}
	s := a.state.Clone()
	select {
	case a.states <- s:
		return
	default:
	}
	select {
	case <-a.states:
	default:
	}
	select {
	case a.states <- s:
	default:
	}
}

// State returns a copy of the current state.
func (a *App) State() model.UIState {
	return a.state.Clone()
}
