package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrNotStarted = errors.New("process not started")

const (
	maxLine   = 1 << 20
	waitDelay = 500 * time.Millisecond
)

// LineFunc receives every line a process prints, without the line ending.
// Lines of stdout and stderr are interleaved in arrival order, calls never
// overlap.
type LineFunc func(line string)

type Command struct {
	Path string
	Args []string
	// Env is appended to the environment of the current process.
	Env []string
	Dir string
	// Timeout kills the process when exceeded, zero means no limit.
	Timeout time.Duration
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

type Result struct {
	Path     string
	Args     []string
	Started  time.Time
	Stopped  time.Time
	State    *os.ProcessState
	ExitCode int
	// Canceled is set when the process was killed because the context
	// was canceled, TimedOut when Command.Timeout was exceeded.
	Canceled bool
	TimedOut bool
	Err      error
}

// Success reports whether the process ran to completion with exit code 0.
func (r Result) Success() bool {
	return r.Err == nil && !r.Canceled && !r.TimedOut && r.State != nil && r.ExitCode == 0
}

// Process is a started command whose output has not been consumed yet.
type Process struct {
	cmd    *exec.Cmd
	ctx    context.Context
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr io.ReadCloser
	result Result
}

// Start starts the process in its own process group. When ctx is done or the
// timeout expires the whole group is killed. An error wrapping ErrNotStarted
// is returned if the process could not be started. Wait must be called
// exactly once on the returned Process.
func Start(ctx context.Context, proto Command) (*Process, error) {
	var cancel context.CancelFunc
	if proto.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, proto.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	cmd := exec.CommandContext(ctx, proto.Path, proto.Args...)
	configure(cmd)
	cmd.Cancel = func() error {
		return terminate(cmd)
	}
	cmd.WaitDelay = waitDelay
	cmd.Dir = proto.Dir
	if len(proto.Env) > 0 {
		cmd.Env = append(os.Environ(), proto.Env...)
	}

	p := &Process{
		cmd:    cmd,
		ctx:    ctx,
		cancel: cancel,
		result: Result{
			Path: proto.Path,
			Args: append([]string(nil), proto.Args...),
		},
	}

	var err error
	p.stdout, err = cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrNotStarted, err)
	}
	p.stderr, err = cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrNotStarted, err)
	}

	p.result.Started = time.Now().UTC()
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrNotStarted, err)
	}
	slog.DebugContext(ctx, "process started", "cmd", proto.String(), "pid", cmd.Process.Pid)
	return p, nil
}

// Pid returns the process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Wait streams every output line to onLine, which may be nil, and waits for
// the process to exit.
func (p *Process) Wait(onLine LineFunc) Result {
	defer p.cancel()

	var mx sync.Mutex
	emit := func(line string) {
		if onLine == nil {
			return
		}
		mx.Lock()
		defer mx.Unlock()
		onLine(line)
	}

	var g errgroup.Group
	g.Go(func() error { return scan(p.stdout, emit) })
	g.Go(func() error { return scan(p.stderr, emit) })
	readErr := g.Wait()

	err := p.cmd.Wait()
	p.result.Stopped = time.Now().UTC()
	p.result.State = p.cmd.ProcessState
	p.result.ExitCode = -1
	if p.cmd.ProcessState != nil {
		p.result.ExitCode = p.cmd.ProcessState.ExitCode()
	}

	switch ctxErr := p.ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		p.result.TimedOut = true
	case ctxErr != nil:
		p.result.Canceled = true
	default:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			p.result.Err = err
		} else if readErr != nil {
			p.result.Err = fmt.Errorf("reading output: %w", readErr)
		}
	}

	slog.DebugContext(p.ctx, "process exited",
		"path", p.result.Path,
		"exit_code", p.result.ExitCode,
		"canceled", p.result.Canceled,
		"timed_out", p.result.TimedOut,
		"duration", p.result.Stopped.Sub(p.result.Started),
	)
	return p.result
}

// Run starts the process and waits for it. The error is non-nil only when
// the process could not be started.
func Run(ctx context.Context, proto Command, onLine LineFunc) (Result, error) {
	p, err := Start(ctx, proto)
	if err != nil {
		return Result{Path: proto.Path, Args: proto.Args, Err: err}, err
	}
	return p.Wait(onLine), nil
}

func scan(r io.Reader, emit LineFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	err := scanner.Err()
	if err != nil {
		// keep the pipe drained, the child must never block on a full pipe
		_, _ = io.Copy(io.Discard, r)
		if errors.Is(err, os.ErrClosed) {
			return nil
		}
	}
	return err
}
