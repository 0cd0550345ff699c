// Package editor opens exercise files in the user's editor.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/runner"
	"github.com/plx-project/plx/internal/work"
)

var ErrNoEditor = errors.New("no editor configured: set editor in plx.yaml, $VISUAL or $EDITOR")

// Default returns the editor command: configured if not empty, otherwise
// $VISUAL, otherwise $EDITOR.
func Default(configured string) (string, error) {
	for _, e := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if strings.TrimSpace(e) != "" {
			return e, nil
		}
	}
	return "", ErrNoEditor
}

// Opener is a unit of work running the editor on one file until the editor
// exits or the unit is stopped.
type Opener struct {
	cmd  runner.Command
	file string
}

// New returns an Opener for file. The editor command may carry arguments,
// like "code --wait".
func New(editorCmd, file string) (*Opener, error) {
	fields := strings.Fields(editorCmd)
	if len(fields) == 0 {
		return nil, ErrNoEditor
	}
	args := append(fields[1:len(fields):len(fields)], file)
	return &Opener{
		cmd:  runner.Command{Path: fields[0], Args: args},
		file: file,
	}, nil
}

func (o *Opener) Kind() work.Kind { return work.KindEditorOpen }

func (o *Opener) Run(ctx context.Context, events work.Sink) bool {
	p, err := runner.Start(ctx, o.cmd)
	if err != nil {
		slog.WarnContext(ctx, "opening editor failed", "cmd", o.cmd.String(), "error", err)
		events.Send(ctx, model.CouldNotOpenEditor{Err: err.Error()})
		return false
	}
	events.Send(ctx, model.EditorOpened{File: o.file})

	res := p.Wait(nil)
	if !res.Success() && !res.Canceled {
		slog.WarnContext(ctx, "editor exited", "cmd", o.cmd.String(), "exit_code", res.ExitCode)
	}
	return true
}
