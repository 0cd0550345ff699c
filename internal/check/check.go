// Package check compares the output of an exercise with the expected one.
package check

import (
	"context"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
)

// Output compares expected and got line by line. Trailing spaces and tabs
// of every line and trailing empty lines are ignored, leading whitespace and
// empty lines in between are not. When the outputs differ, diff is a
// unified diff from expected to got.
func Output(expected, got string) (passed bool, diff string) {
	want, have := lines(expected), lines(got)
	if slices.Equal(want, have) {
		return true, ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(want, "\n")),
		B:        difflib.SplitLines(strings.Join(have, "\n")),
		FromFile: "expected",
		ToFile:   "output",
		Context:  3,
	})
	if err != nil {
		diff = "--- expected\n" + expected + "\n+++ output\n" + got
	}
	return false, diff
}

func lines(s string) []string {
	ret := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range ret {
		ret[i] = strings.TrimRight(l, " \t")
	}
	for len(ret) > 0 && ret[len(ret)-1] == "" {
		ret = ret[:len(ret)-1]
	}
	return ret
}

// Checker is a unit of work comparing the output of check Index.
type Checker struct {
	index    int
	expected string
	got      string
}

func NewChecker(index int, expected, got string) *Checker {
	return &Checker{index: index, expected: expected, got: got}
}

func (c *Checker) Kind() work.Kind { return work.KindCheck }

func (c *Checker) Run(ctx context.Context, events work.Sink) bool {
	if ctx.Err() != nil {
		return true
	}
	passed, diff := Output(c.expected, c.got)
	if passed {
		events.Send(ctx, model.OutputCheckPassed{Index: c.index})
	} else {
		events.Send(ctx, model.OutputCheckFailed{Index: c.index, Diff: diff})
	}
	return true
}
