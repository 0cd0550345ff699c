package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/plx-project/plx/internal/app"
	"github.com/plx-project/plx/internal/config"
	"github.com/plx-project/plx/internal/log"
	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/parallel"
	"github.com/plx-project/plx/internal/progress"
)

var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func loadProject(ctx context.Context, dir string) (model.Project, error) {
	project, err := model.LoadProject(ctx, afero.NewOsFs(), dir)
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range project.Problems {
		slog.WarnContext(ctx, "exercise skipped", "error", p)
	}
	return project, nil
}

func openProgress(project model.Project) (*progress.Store, error) {
	return progress.Open(afero.NewOsFs(), filepath.Join(project.Dir, config.StateDir))
}

func doTrain(cmd *cobra.Command, args []string) error {
	ctx := log.ContextAttrs(cmd.Context(), slog.Group("plx",
		slog.String("cmd", "train"),
		slog.Int("pid", os.Getpid()),
	))
	project, err := loadProject(ctx, projectDir(args))
	if err != nil {
		return err
	}
	store, err := openProgress(project)
	if err != nil {
		return err
	}

	a := app.New(ctx, cfg, project,
		app.WithProgress(store),
		app.WithUIOptions(tea.WithAltScreen()),
	)
	return a.Run(ctx)
}

func doCheck(cmd *cobra.Command, args []string) error {
	ctx := log.ContextAttrs(cmd.Context(), slog.Group("plx",
		slog.String("cmd", "check"),
		slog.String("check_id", uuid.NewString()),
	))
	project, err := loadProject(ctx, projectDir(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	i := 0
	for state, err := range parallel.Map(ctx, cfg.Jobs, project.Exos, func(ctx context.Context, exo model.Exo) (model.UIState, error) {
		return app.Check(ctx, cfg, project.Dir, exo)
	}) {
		exo := project.Exos[i]
		i++
		if err != nil {
			return err
		}
		if !state.Passed() {
			failed++
		}
		printReport(out, exo, state)
	}

	fmt.Fprintf(out, "\n%d/%d exercises passed\n", len(project.Exos)-failed, len(project.Exos))
	if failed > 0 {
		return errChecksFailed
	}
	return nil
}

func printReport(w io.Writer, exo model.Exo, state model.UIState) {
	passed := 0
	for _, c := range state.Checks {
		if c.Status == model.CheckPassed {
			passed++
		}
	}
	status := passStyle.Render("PASS")
	if !state.Passed() {
		status = failStyle.Render("FAIL")
	}
	fmt.Fprintf(w, "%s %s %s\n", status, exo.ID(), dimStyle.Render(fmt.Sprintf("(%d/%d)", passed, len(state.Checks))))

	if state.Compile == model.CompileFailed {
		fmt.Fprintln(w, indent("compilation failed"))
		fmt.Fprintln(w, indent(strings.Join(state.CompileOutput, "\n")))
		return
	}
	for _, c := range state.Checks {
		switch c.Status {
		case model.CheckFailed:
			fmt.Fprintln(w, indent(failStyle.Render("✗")+" "+c.Check.Name))
			fmt.Fprintln(w, indent(strings.TrimRight(c.Diff, "\n")))
		case model.CheckRunFail:
			fmt.Fprintln(w, indent(failStyle.Render("✗")+" "+c.Check.Name+": "+c.Err))
		}
	}
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

func doList(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd.Context(), projectDir(args))
	if err != nil {
		return err
	}
	store, err := openProgress(project)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, exo := range project.Exos {
		e := store.Get(exo.ID())
		mark := dimStyle.Render("·")
		switch e.Status {
		case progress.Done:
			mark = passStyle.Render("✓")
		case progress.InProgress:
			mark = dimStyle.Render(fmt.Sprintf("%d/%d", e.Passed, e.Total))
		}
		fmt.Fprintf(out, "%s %-30s %s\n", mark, exo.ID(), exo.Name)
	}
	for _, p := range project.Problems {
		fmt.Fprintf(out, "%s %s\n", failStyle.Render("!"), p)
	}
	return nil
}
