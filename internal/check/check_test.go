package check_test

import (
	"context"
	"testing"

	"github.com/plx-project/plx/internal/check"
	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
	"github.com/stretchr/testify/require"
)

func TestOutput(t *testing.T) {
	t.Parallel()

	var testCases = []struct {
		scenario string
		expected string
		got      string
		then     bool
	}{
		{"identical", "hello\nworld\n", "hello\nworld\n", true},
		{"trailing space", "hello", "hello ", true},
		{"trailing whitespace and tabs on every line", "yoo\t\nhello\t", "yoo     \t\t  \nhello\t \n", true},
		{"trailing newline", "hello\n", "hello", true},
		{"trailing empty lines", "hello", "hello\n\n\n", true},
		{"crlf", "a\nb\n", "a\r\nb\r\n", true},
		{"both empty", "", "\n", true},
		{"extra word", "hello", "hello world", false},
		{"leading whitespace", "hey\nhello", "hey\n hello", false},
		{"empty line in between", "hello\nworld", "hello\n\nworld", false},
		{"missing line", "a\nb\nc", "a\nc", false},
		{"empty output", "hello", "", false},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			passed, diff := check.Output(tt.expected, tt.got)
			require.Equal(t, tt.then, passed)
			if passed {
				require.Empty(t, diff)
			} else {
				require.NotEmpty(t, diff)
			}
		})
	}
}

func TestOutput_Diff(t *testing.T) {
	t.Parallel()
	passed, diff := check.Output("a\nb\nc\n", "a\nB\nc\n")
	require.False(t, passed)
	require.Equal(t, `--- expected
+++ output
@@ -1,3 +1,3 @@
 a
-b
+B
 c
`, diff)
}

func TestChecker(t *testing.T) {
	t.Parallel()
	events := make(chan model.Event, 2)
	sink := work.NewSink(events)

	ok := check.NewChecker(0, "42\n", "42").Run(t.Context(), sink)
	require.True(t, ok)
	require.Equal(t, model.OutputCheckPassed{Index: 0}, <-events)

	c := check.NewChecker(3, "42\n", "41\n")
	require.Equal(t, work.KindCheck, c.Kind())
	require.True(t, c.Run(t.Context(), sink))
	failed := (<-events).(model.OutputCheckFailed)
	require.Equal(t, 3, failed.Index)
	require.Contains(t, failed.Diff, "-42")
	require.Contains(t, failed.Diff, "+41")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.True(t, check.NewChecker(1, "a", "b").Run(ctx, sink))
	require.Empty(t, events)
}
