// Package compiler builds exercises with gcc or g++.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/runner"
	"github.com/plx-project/plx/internal/work"
)

var ErrNoSources = errors.New("no compilable source files")

// Target is the name of the binary produced in the build directory.
const Target = "target"

type Compiler int

const (
	GCC Compiler = iota
	GXX
)

// For picks g++ when any file is a C++ source, gcc otherwise.
func For(files []string) Compiler {
	for _, f := range files {
		switch filepath.Ext(f) {
		case ".cpp", ".cc":
			return GXX
		}
	}
	return GCC
}

func (c Compiler) String() string {
	return c.Cmd()
}

// Cmd returns the compiler binary name.
func (c Compiler) Cmd() string {
	if c == GXX {
		return "g++"
	}
	return "gcc"
}

func (c Compiler) extensions() []string {
	if c == GXX {
		return []string{".c", ".cpp", ".cc"}
	}
	return []string{".c"}
}

// Args returns the compiler arguments: absolute paths of files with an
// extension the compiler accepts followed by the output options.
func (c Compiler) Args(files []string, out string) ([]string, error) {
	var args []string
	for _, f := range files {
		if !slices.Contains(c.extensions(), filepath.Ext(f)) {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		args = append(args, abs)
	}
	if len(args) == 0 {
		return nil, ErrNoSources
	}
	return append(args, "-fdiagnostics-color=always", "-o", out), nil
}

// BuildDir creates and returns the directory for the build output of exo.
func BuildDir(base string, exo model.Exo) (string, error) {
	dir := filepath.Join(base, filepath.FromSlash(exo.ID()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating build directory: %w", err)
	}
	return dir, nil
}

// Runner is a unit of work compiling one exercise.
type Runner struct {
	cmd runner.Command
	out string
}

// NewRunner prepares the compilation of files into out.
func NewRunner(files []string, out string, timeout time.Duration) (*Runner, error) {
	c := For(files)
	args, err := c.Args(files, out)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cmd: runner.Command{
			Path:    c.Cmd(),
			Args:    args,
			Timeout: timeout,
		},
		out: out,
	}, nil
}

// WithPath overrides the compiler binary.
func (r *Runner) WithPath(path string) *Runner {
	r.cmd.Path = path
	return r
}

// Command returns the compiler invocation.
func (r *Runner) Command() runner.Command {
	return r.cmd
}

func (r *Runner) Kind() work.Kind { return work.KindCompilation }

func (r *Runner) Run(ctx context.Context, events work.Sink) bool {
	p, err := runner.Start(ctx, r.cmd)
	if err != nil {
		slog.WarnContext(ctx, "starting compiler failed", "cmd", r.cmd.String(), "error", err)
		events.Send(ctx, model.CouldNotStartCompilation{Err: err.Error()})
		return false
	}
	events.Send(ctx, model.CompilationStart{})

	res := p.Wait(func(line string) {
		events.Send(ctx, model.CompilationOutputLine{Line: line})
	})
	if res.Canceled {
		return true
	}
	if res.TimedOut {
		events.Send(ctx, model.CompilationOutputLine{Line: fmt.Sprintf("compilation timed out after %s", r.cmd.Timeout)})
	}
	slog.DebugContext(ctx, "compilation finished", "out", r.out, "success", res.Success())
	events.Send(ctx, model.CompilationEnd{Success: res.Success()})
	return true
}
