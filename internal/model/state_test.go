package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plx-project/plx/internal/model"
)

func TestCheckStatus(t *testing.T) {
	t.Parallel()
	for _, s := range []model.CheckStatus{model.CheckPending, model.CheckRunning, model.CheckChecking} {
		require.False(t, s.Final(), s.String())
	}
	for _, s := range []model.CheckStatus{model.CheckPassed, model.CheckFailed, model.CheckRunFail} {
		require.True(t, s.Final(), s.String())
	}
	require.Equal(t, "run failed", model.CheckRunFail.String())
}

func TestUIState_Passed(t *testing.T) {
	t.Parallel()
	s := model.UIState{Compile: model.CompileOK}
	require.True(t, s.Passed())

	s.Checks = []model.CheckState{{Status: model.CheckPassed}, {Status: model.CheckChecking}}
	require.False(t, s.Passed())
	s.Checks[1].Status = model.CheckPassed
	require.True(t, s.Passed())

	s.Compile = model.CompileFailed
	require.False(t, s.Passed())
}

func TestUIState_Clone(t *testing.T) {
	t.Parallel()
	exo := model.Exo{Name: "hello"}
	s := model.UIState{
		Exos:          []model.Exo{exo},
		Done:          []bool{false},
		Exo:           &exo,
		CompileOutput: []string{"warning"},
		Checks:        []model.CheckState{{Output: []string{"hi"}}},
		Solution:      []string{"int main() {}"},
	}
	c := s.Clone()
	c.Exos[0].Name = "changed"
	c.Done[0] = true
	c.Exo.Name = "changed"
	c.CompileOutput[0] = "changed"
	c.Checks[0].Output[0] = "changed"
	c.Solution[0] = "changed"

	require.Equal(t, "hello", s.Exos[0].Name)
	require.False(t, s.Done[0])
	require.Equal(t, "hello", s.Exo.Name)
	require.Equal(t, "warning", s.CompileOutput[0])
	require.Equal(t, "hi", s.Checks[0].Output[0])
	require.Equal(t, "int main() {}", s.Solution[0])
}

func TestUIState_DetailLines(t *testing.T) {
	t.Parallel()
	s := model.UIState{Compile: model.CompileRunning, CompileOutput: []string{"a"}}
	require.Zero(t, s.DetailLines())

	s.Compile = model.CompileFailed
	s.CompileOutput = []string{"main.c:1: error", "  1 | int x", "    |      ^"}
	require.Equal(t, 3, s.DetailLines())

	s.Compile = model.CompileOK
	s.Checks = []model.CheckState{
		{Status: model.CheckPassed, Output: []string{"not counted"}},
		{Status: model.CheckFailed, Diff: "-a\n+b\n"},
		{Status: model.CheckRunFail, Err: "signal: killed"},
		{Status: model.CheckRunning},
	}
	require.Equal(t, 4+2+1, s.DetailLines())
}

func TestLines(t *testing.T) {
	t.Parallel()
	require.Nil(t, model.Lines(""))
	require.Nil(t, model.Lines("\n\n"))
	require.Equal(t, []string{"a", "", "b"}, model.Lines("a\n\nb\n"))
}

func TestKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, "q", model.KeyQuit.String())
	require.Equal(t, "esc", model.KeyEsc.String())
	require.Equal(t, "s", model.KeySolution.String())
	require.Equal(t, "?", model.KeyHelp.String())
	require.Equal(t, "unknown", model.Key(42).String())
}
