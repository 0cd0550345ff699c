package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plx-project/plx/internal/model"
	"github.com/plx-project/plx/internal/work"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	skillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// stateMsg delivers a new orchestrator snapshot to the bubbletea program.
type stateMsg model.UIState

type binding struct {
	key.Binding
	mapped model.Key
}

var bindings = []binding{
	{key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")), model.KeyQuit},
	{key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")), model.KeyDown},
	{key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")), model.KeyUp},
	{key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "back")), model.KeyLeft},
	{key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "open")), model.KeyRight},
	{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")), model.KeyEnter},
	{key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")), model.KeyRestart},
	{key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")), model.KeyEsc},
	{key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "solution")), model.KeySolution},
	{key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")), model.KeyHelp},
}

// screenKeys are the keys listed at the bottom of each screen.
var screenKeys = map[model.Screen][]model.Key{
	model.ScreenList:     {model.KeyQuit, model.KeyDown, model.KeyUp, model.KeyRight, model.KeyEnter, model.KeyHelp},
	model.ScreenExo:      {model.KeyQuit, model.KeyDown, model.KeyUp, model.KeyLeft, model.KeyRight, model.KeyRestart, model.KeySolution, model.KeyHelp},
	model.ScreenSolution: {model.KeyQuit, model.KeyDown, model.KeyUp, model.KeyEsc, model.KeyHelp},
	model.ScreenHelp:     {model.KeyQuit, model.KeyEsc},
}

// keyHelp describes the keys on the help page.
var keyHelp = []struct {
	keys string
	desc string
}{
	{"j/k", "move in the exercise list, scroll compiler output, check results and solution"},
	{"l/enter", "open the selected exercise"},
	{"l", "go to the next exercise once all checks passed"},
	{"h/esc", "go back"},
	{"r", "compile and run the checks again"},
	{"s", "show or hide the solution"},
	{"?", "show this help"},
	{"q", "quit"},
}

// keyFor maps a terminal key press to the key the orchestrator knows.
func keyFor(msg tea.KeyMsg) (model.Key, bool) {
	for _, b := range bindings {
		if key.Matches(msg, b.Binding) {
			return b.mapped, true
		}
	}
	return 0, false
}

type view struct {
	ctx     context.Context
	events  work.Sink
	state   model.UIState
	spinner spinner.Model
	width   int
	height  int
}

func newView(ctx context.Context, events work.Sink) view {
	return view{
		ctx:     ctx,
		events:  events,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (v view) Init() tea.Cmd {
	return v.spinner.Tick
}

// Update never quits on its own on a key press, the orchestrator decides and
// stops the unit.
func (v view) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		v.state = model.UIState(msg)
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case tea.KeyMsg:
		if k, ok := keyFor(msg); ok {
			v.events.Send(v.ctx, model.KeyPressed{Key: k})
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v view) View() string {
	var body string
	switch {
	case v.state.Screen == model.ScreenHelp:
		body = v.helpView()
	case v.state.Screen == model.ScreenSolution && v.state.Exo != nil:
		body = v.solutionView()
	case v.state.Screen == model.ScreenExo && v.state.Exo != nil:
		body = v.exoView()
	default:
		body = v.listView()
	}
	parts := []string{body}
	if v.state.Message != "" {
		parts = append(parts, detailStyle.Render(v.state.Message))
	}
	parts = append(parts, v.help())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v view) listView() string {
	lines := []string{titleStyle.Render("plx"), ""}
	if len(v.state.Exos) == 0 {
		lines = append(lines, detailStyle.Render("No exercises found."))
	}
	for i, exo := range v.state.Exos {
		cursor := "  "
		name := exo.Name
		if i == v.state.Selected {
			cursor = cursorStyle.Render("> ")
			name = cursorStyle.Render(name)
		}
		line := cursor + name
		if i < len(v.state.Done) && v.state.Done[i] {
			line += " " + passStyle.Render("✓")
		}
		if exo.Skill != "" {
			line += " " + skillStyle.Render(exo.Skill)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (v view) exoView() string {
	exo := v.state.Exo
	parts := []string{titleStyle.Render(exo.Name)}
	if exo.Instruction != "" {
		parts = append(parts, v.box(strings.TrimSpace(exo.Instruction)))
	}
	parts = append(parts, v.compileLine())
	head := lipgloss.JoinVertical(lipgloss.Left, parts...)

	var tail string
	if v.state.Passed() {
		tail = passStyle.Render("All checks passed, press l for the next exercise.")
	}
	if lines := v.details(); len(lines) > 0 {
		parts = append(parts, v.scrolled(lines, v.state.Scroll, lipgloss.Height(head)+lipgloss.Height(tail)))
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// details returns the scrollable part of the exercise screen, line by line.
// It has UIState.DetailLines lines.
func (v view) details() []string {
	switch v.state.Compile {
	case model.CompileFailed:
		return v.state.CompileOutput
	case model.CompileOK:
		var lines []string
		for i, c := range v.state.Checks {
			lines = append(lines, v.checkLine(i, c))
			var detail string
			switch c.Status {
			case model.CheckFailed:
				detail = c.Diff
			case model.CheckRunFail:
				detail = c.Err
			}
			for _, l := range model.Lines(detail) {
				lines = append(lines, "    "+detailStyle.Render(l))
			}
		}
		return lines
	}
	return nil
}

func (v view) solutionView() string {
	exo := v.state.Exo
	head := titleStyle.Render(exo.Name) + " " + skillStyle.Render(exo.Solution)
	if len(v.state.Solution) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, head, detailStyle.Render("The solution is empty."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, v.scrolled(v.state.Solution, v.state.SolutionScroll, lipgloss.Height(head)))
}

func (v view) helpView() string {
	lines := []string{titleStyle.Render("Keys"), ""}
	for _, h := range keyHelp {
		lines = append(lines, fmt.Sprintf("%s %s", cursorStyle.Render(fmt.Sprintf("%-8s", h.keys)), h.desc))
	}
	return strings.Join(lines, "\n")
}

// scrolled boxes lines starting at offset. When the terminal height is known
// only as many lines as fit below reserved lines of other content are shown.
func (v view) scrolled(lines []string, offset, reserved int) string {
	offset = max(0, min(offset, len(lines)-1))
	visible := lines[offset:]
	above, below := offset, 0
	if v.height > 0 {
		// border, help line and the more indicators
		room := max(1, v.height-reserved-6)
		if len(visible) > room {
			below = len(visible) - room
			visible = visible[:room]
		}
	}
	var out []string
	if above > 0 {
		out = append(out, helpStyle.Render(fmt.Sprintf("%d more above", above)))
	}
	out = append(out, v.box(strings.Join(visible, "\n")))
	if below > 0 {
		out = append(out, helpStyle.Render(fmt.Sprintf("%d more below", below)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func (v view) compileLine() string {
	switch v.state.Compile {
	case model.CompileRunning:
		return v.spinner.View() + " compiling"
	case model.CompileOK:
		return passStyle.Render("compiled")
	case model.CompileFailed:
		return failStyle.Render("compilation failed")
	default:
		return pendingStyle.Render("waiting for compilation")
	}
}

func (v view) checkLine(i int, c model.CheckState) string {
	name := c.Check.Name
	if name == "" {
		name = fmt.Sprintf("check %d", i+1)
	}
	var status string
	switch c.Status {
	case model.CheckPassed:
		status = passStyle.Render("PASS")
	case model.CheckFailed, model.CheckRunFail:
		status = failStyle.Render("FAIL")
	case model.CheckRunning, model.CheckChecking:
		status = v.spinner.View()
	default:
		status = pendingStyle.Render("....")
	}
	line := status + " " + name
	if len(c.Check.Args) > 0 {
		line += " " + detailStyle.Render(strings.Join(c.Check.Args, " "))
	}
	return line
}

func (v view) box(content string) string {
	style := boxStyle
	if v.width > 4 {
		style = style.Width(v.width - 2)
	}
	return style.Render(content)
}

func (v view) help() string {
	var hints []string
	for _, b := range bindings {
		if !slices.Contains(screenKeys[v.state.Screen], b.mapped) {
			continue
		}
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(hints, " • "))
}
