package ui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
)

func TestKeyFor(t *testing.T) {
	t.Parallel()
	var testCases = []struct {
		msg  tea.KeyMsg
		want model.Key
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, model.KeyQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, model.KeyQuit},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, model.KeyDown},
		{tea.KeyMsg{Type: tea.KeyDown}, model.KeyDown},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, model.KeyUp},
		{tea.KeyMsg{Type: tea.KeyUp}, model.KeyUp},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")}, model.KeyLeft},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}, model.KeyRight},
		{tea.KeyMsg{Type: tea.KeyEnter}, model.KeyEnter},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, model.KeyRestart},
		{tea.KeyMsg{Type: tea.KeyEsc}, model.KeyEsc},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}, model.KeySolution},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")}, model.KeyHelp},
	}
	for _, tc := range testCases {
		t.Run(tc.msg.String(), func(t *testing.T) {
			got, ok := keyFor(tc.msg)
			require.True(t, ok)
			require.Equal(t, tc.want, got)
		})
	}

	_, ok := keyFor(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.False(t, ok)
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	events := make(chan model.Event, 1)
	v := newView(t.Context(), work.NewSink(events))

	m, _ := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	require.Equal(t, model.KeyPressed{Key: model.KeyDown}, <-events)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.Empty(t, events)

	m, _ = m.Update(stateMsg(model.UIState{Message: "hello"}))
	require.Equal(t, "hello", m.(view).state.Message)

	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.Equal(t, 80, m.(view).width)
	require.Equal(t, 24, m.(view).height)
}

func TestView(t *testing.T) {
	t.Parallel()
	exos := []model.Exo{
		{Name: "hello", Skill: "basics"},
		{Name: "fizzbuzz", Skill: "loops"},
	}
	v := newView(t.Context(), work.NewSink(make(chan model.Event)))

	t.Run("list", func(t *testing.T) {
		v.state = model.UIState{Screen: model.ScreenList, Exos: exos, Selected: 1, Done: []bool{true, false}}
		out := v.View()
		require.Contains(t, out, "hello ✓")
		require.Contains(t, out, "hello")
		require.Contains(t, out, "fizzbuzz")
		require.Contains(t, out, "loops")
		require.Contains(t, out, "> ")
		require.NotContains(t, out, "restart")
	})

	t.Run("empty list", func(t *testing.T) {
		v.state = model.UIState{}
		require.Contains(t, v.View(), "No exercises found.")
	})

	t.Run("compile failed", func(t *testing.T) {
		v.state = model.UIState{
			Screen:        model.ScreenExo,
			Exo:           &exos[0],
			Compile:       model.CompileFailed,
			CompileOutput: []string{"main.c:1: error: expected ';'"},
		}
		out := v.View()
		require.Contains(t, out, "compilation failed")
		require.Contains(t, out, "expected ';'")
		require.Contains(t, out, "restart")
	})

	t.Run("checks", func(t *testing.T) {
		v.state = model.UIState{
			Screen:  model.ScreenExo,
			Exo:     &exos[0],
			Compile: model.CompileOK,
			Checks: []model.CheckState{
				{Check: model.Check{Name: "greets"}, Status: model.CheckPassed},
				{Check: model.Check{Name: "args", Args: []string{"-n", "3"}}, Status: model.CheckFailed, Diff: "-hello\n+hallo\n"},
				{Check: model.Check{Name: "crash"}, Status: model.CheckRunFail, Err: "exec format error"},
			},
			Message: "file saved",
		}
		out := v.View()
		require.Contains(t, out, "PASS greets")
		require.Contains(t, out, "FAIL args")
		require.Contains(t, out, "-n 3")
		require.Contains(t, out, "+hallo")
		require.Contains(t, out, "exec format error")
		require.Contains(t, out, "file saved")
		require.NotContains(t, out, "All checks passed")
	})

	t.Run("passed", func(t *testing.T) {
		v.state = model.UIState{
			Screen:  model.ScreenExo,
			Exo:     &exos[0],
			Compile: model.CompileOK,
			Checks:  []model.CheckState{{Check: model.Check{Name: "greets"}, Status: model.CheckPassed}},
		}
		require.Contains(t, v.View(), "All checks passed")
	})

	t.Run("solution", func(t *testing.T) {
		exo := model.Exo{Name: "week", Solution: "main.sol.cpp"}
		v.state = model.UIState{
			Screen:         model.ScreenSolution,
			Exo:            &exo,
			Solution:       []string{"#include <iostream>", "int main() {", "}"},
			SolutionScroll: 1,
		}
		out := v.View()
		require.Contains(t, out, "main.sol.cpp")
		require.Contains(t, out, "int main() {")
		require.NotContains(t, out, "#include")
		require.Contains(t, out, "1 more above")
		require.Contains(t, out, "esc back")
		require.NotContains(t, out, "restart")
	})

	t.Run("help", func(t *testing.T) {
		v.state = model.UIState{Screen: model.ScreenHelp, Previous: model.ScreenExo, Exo: &exos[0]}
		out := v.View()
		require.Contains(t, out, "Keys")
		require.Contains(t, out, "show or hide the solution")
		require.Contains(t, out, "esc back")
		require.NotContains(t, out, "PASS")
	})
}

func TestView_Scroll(t *testing.T) {
	t.Parallel()
	exo := model.Exo{Name: "broken"}
	var output []string
	for i := range 40 {
		output = append(output, fmt.Sprintf("main.c:%d: error %02d", i+1, i+1))
	}
	v := newView(t.Context(), work.NewSink(make(chan model.Event)))
	v.height = 20
	v.state = model.UIState{
		Screen:        model.ScreenExo,
		Exo:           &exo,
		Compile:       model.CompileFailed,
		CompileOutput: output,
	}

	out := v.View()
	require.Contains(t, out, "error 01")
	require.NotContains(t, out, "error 40")
	require.Contains(t, out, "29 more below")
	require.NotContains(t, out, "more above")
	require.LessOrEqual(t, lipgloss.Height(out), v.height)

	v.state.Scroll = 39
	out = v.View()
	require.Contains(t, out, "error 40")
	require.NotContains(t, out, "error 01")
	require.Contains(t, out, "39 more above")
	require.NotContains(t, out, "more below")

	// offsets past the end show the last line
	v.state.Scroll = 100
	require.Contains(t, v.View(), "error 40")
}
