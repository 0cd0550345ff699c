// Package launcher runs a compiled exercise once per check.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/runner"
	"github.com/plx-project/plx/internal/work"
)

// Launcher is a unit of work running the exercise binary for one check.
// All events it sends are stamped with the index.
type Launcher struct {
	index int
	cmd   runner.Command
}

func New(index int, binary string, args []string, timeout time.Duration) *Launcher {
	return &Launcher{
		index: index,
		cmd: runner.Command{
			Path:    binary,
			Args:    args,
			Timeout: timeout,
		},
	}
}

func (l *Launcher) Kind() work.Kind { return work.KindLaunch }

func (l *Launcher) Run(ctx context.Context, events work.Sink) bool {
	p, err := runner.Start(ctx, l.cmd)
	if err != nil {
		slog.WarnContext(ctx, "launching exercise failed", "check", l.index, "error", err)
		events.Send(ctx, model.RunFail{Index: l.index, Err: err.Error()})
		return false
	}
	events.Send(ctx, model.RunStart{Index: l.index})

	res := p.Wait(func(line string) {
		events.Send(ctx, model.RunOutputLine{Index: l.index, Line: line})
	})
	if res.Canceled {
		return true
	}
	if res.TimedOut {
		events.Send(ctx, model.RunOutputLine{
			Index: l.index,
			Line:  fmt.Sprintf("killed after %s", l.cmd.Timeout),
		})
	}
	events.Send(ctx, model.RunEnd{
		Index:    l.index,
		Success:  res.Success(),
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
	})
	return true
}
