package compiler_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/plx-project/plx/internal/compiler"
	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	t.Parallel()
	require.Equal(t, compiler.GCC, compiler.For([]string{"main.c", "util.h"}))
	require.Equal(t, compiler.GXX, compiler.For([]string{"main.c", "list.cpp"}))
	require.Equal(t, compiler.GXX, compiler.For([]string{"main.cc"}))
	require.Equal(t, "gcc", compiler.GCC.Cmd())
	require.Equal(t, "g++", compiler.GXX.String())
}

func TestArgs(t *testing.T) {
	t.Parallel()
	files := []string{"/exo/main.c", "/exo/util.h", "/exo/list.cpp", "/exo/vec.cc", "/exo/README"}

	args, err := compiler.GCC.Args(files, "/build/target")
	require.NoError(t, err)
	require.Equal(t, []string{"/exo/main.c", "-fdiagnostics-color=always", "-o", "/build/target"}, args)

	args, err = compiler.GXX.Args(files, "/build/target")
	require.NoError(t, err)
	require.Equal(t, []string{
		"/exo/main.c", "/exo/list.cpp", "/exo/vec.cc",
		"-fdiagnostics-color=always", "-o", "/build/target",
	}, args)

	t.Run("relative paths are made absolute", func(t *testing.T) {
		args, err := compiler.GCC.Args([]string{"main.c"}, "target")
		require.NoError(t, err)
		require.True(t, filepath.IsAbs(args[0]))
		require.Equal(t, "main.c", filepath.Base(args[0]))
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := compiler.GCC.Args([]string{"util.h"}, "target")
		require.ErrorIs(t, err, compiler.ErrNoSources)
	})
}

func TestBuildDir(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	dir, err := compiler.BuildDir(base, model.Exo{Dir: "/proj/basics/hello", Skill: "basics"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "basics", "hello"), dir)
	require.DirExists(t, dir)
}

func compile(t *testing.T, source string) (bool, []model.Event) {
	t.Helper()
	if _, err := exec.LookPath("gcc"); err != nil {
		t.Skipf("skipped, binary gcc not available: %v", err)
	}
	dir := t.TempDir()
	main := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(main, []byte(source), 0o644))

	r, err := compiler.NewRunner([]string{main}, filepath.Join(dir, compiler.Target), time.Minute)
	require.NoError(t, err)
	require.Equal(t, work.KindCompilation, r.Kind())
	require.Equal(t, "gcc", r.Command().Path)

	events := make(chan model.Event, 1024)
	ok := r.Run(t.Context(), work.NewSink(events))
	close(events)
	var got []model.Event
	for ev := range events {
		got = append(got, ev)
	}
	return ok, got
}

func TestRunner(t *testing.T) {
	t.Parallel()
	ok, events := compile(t, "#include <stdio.h>\nint main(void) { puts(\"hi\"); return 0; }\n")
	require.True(t, ok)
	require.Equal(t, model.CompilationStart{}, events[0])
	require.Equal(t, model.CompilationEnd{Success: true}, events[len(events)-1])
}

func TestRunner_CompileError(t *testing.T) {
	t.Parallel()
	ok, events := compile(t, "int main(void) { return missing; }\n")
	require.True(t, ok)
	require.Equal(t, model.CompilationStart{}, events[0])
	require.Equal(t, model.CompilationEnd{Success: false}, events[len(events)-1])

	var out []string
	for _, ev := range events[1 : len(events)-1] {
		out = append(out, ev.(model.CompilationOutputLine).Line)
	}
	require.Contains(t, strings.Join(out, "\n"), "missing")
}

func TestRunner_NotStarted(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	r, err := compiler.NewRunner([]string{filepath.Join(dir, "main.c")}, filepath.Join(dir, compiler.Target), 0)
	require.NoError(t, err)
	r.WithPath(filepath.Join(dir, "no-such-gcc"))

	events := make(chan model.Event, 1)
	require.False(t, r.Run(t.Context(), work.NewSink(events)))
	require.IsType(t, model.CouldNotStartCompilation{}, <-events)
}
