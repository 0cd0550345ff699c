// Package ui renders the orchestrator state in the terminal and turns key
// presses into events.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
)

// UI is a unit of work running the terminal user interface. It re-renders
// on every state received and stops when the unit is stopped or the state
// channel is closed. Unless it was stopped it sends UIClosed, carrying the
// error if the terminal failed.
type UI struct {
	states <-chan model.UIState
	opts   []tea.ProgramOption
}

// New returns a UI rendering states. opts are passed to the bubbletea
// program, tests use them to replace the terminal.
func New(states <-chan model.UIState, opts ...tea.ProgramOption) *UI {
	return &UI{states: states, opts: opts}
}

func (u *UI) Kind() work.Kind { return work.KindUI }

func (u *UI) Run(ctx context.Context, events work.Sink) bool {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, u.opts...)
	p := tea.NewProgram(newView(ctx, events), opts...)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		for {
			select {
			case s, ok := <-u.states:
				if !ok {
					p.Quit()
					return
				}
				p.Send(stateMsg(s))
			case <-done:
				return
			}
		}
	})

	_, err := p.Run()
	close(done)
	wg.Wait()
	switch {
	case ctx.Err() != nil:
	case err != nil && !errors.Is(err, tea.ErrProgramKilled):
		slog.ErrorContext(ctx, "terminal ui failed", "error", err)
		events.Send(ctx, model.UIClosed{Err: err.Error()})
	default:
		events.Send(ctx, model.UIClosed{})
	}
	return true
}
