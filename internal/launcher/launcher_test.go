package launcher_test

import (
	"os/exec"
	"testing"
	"time"

	"github.com/plx-project/plx/internal/launcher"
	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, l *launcher.Launcher) (bool, []model.Event) {
	t.Helper()
	events := make(chan model.Event, 64)
	ok := l.Run(t.Context(), work.NewSink(events))
	close(events)
	var got []model.Event
	for ev := range events {
		got = append(got, ev)
	}
	return ok, got
}

func TestLauncher(t *testing.T) {
	t.Parallel()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("skipped, binary sh not available: %v", err)
	}

	l := launcher.New(2, sh, []string{"-c", "echo hello $0; exit 1", "world"}, time.Minute)
	require.Equal(t, work.KindLaunch, l.Kind())

	ok, events := run(t, l)
	require.True(t, ok)
	require.Equal(t, []model.Event{
		model.RunStart{Index: 2},
		model.RunOutputLine{Index: 2, Line: "hello world"},
		model.RunEnd{Index: 2, Success: false, ExitCode: 1},
	}, events)
}

func TestLauncher_Timeout(t *testing.T) {
	t.Parallel()
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skipf("skipped, binary sleep not available: %v", err)
	}

	ok, events := run(t, launcher.New(0, sleep, []string{"30"}, 50*time.Millisecond))
	require.True(t, ok)
	require.Len(t, events, 3)
	require.Equal(t, model.RunStart{Index: 0}, events[0])
	require.Equal(t, model.RunOutputLine{Index: 0, Line: "killed after 50ms"}, events[1])
	end := events[2].(model.RunEnd)
	require.True(t, end.TimedOut)
	require.False(t, end.Success)
}

func TestLauncher_Fail(t *testing.T) {
	t.Parallel()
	ok, events := run(t, launcher.New(1, "/nonexistent/target", nil, 0))
	require.False(t, ok)
	require.Len(t, events, 1)
	fail := events[0].(model.RunFail)
	require.Equal(t, 1, fail.Index)
	require.NotEmpty(t, fail.Err)
}
