package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plx-project/plx/internal/config"
	"github.com/plx-project/plx/internal/model"
)

// Check compiles exo and runs all its checks without UI, editor or watchers.
// It returns the final state once every check has a result or the
// compilation failed. The returned error is only set when ctx ended first.
func Check(ctx context.Context, cfg config.Config, projectDir string, exo model.Exo) (model.UIState, error) {
	a := New(ctx, cfg, model.Project{Dir: projectDir, Exos: []model.Exo{exo}}, Headless())
	defer a.handler.Close()

	a.startExo(ctx, 0)
	a.loop(ctx, a.finished)
	if !a.finished() {
		return a.State(), fmt.Errorf("checking %s: %w", exo.ID(), context.Cause(ctx))
	}
	slog.DebugContext(ctx, "check finished", "exo", exo.ID(), "passed", a.state.Passed())
	return a.State(), nil
}
