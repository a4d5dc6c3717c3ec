package tui

import (
	"context"

	"github.com/bobby-s-dev/countries-explorer/internal/search"
	"github.com/bobby-s-dev/countries-explorer/internal/services"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// searchSettled and weatherSettled only trigger a redraw; the session holds
// the state they refer to.
type searchSettled struct{}

type weatherSettled struct{}

// App is the root Bubble Tea model. It owns no search state of its own and
// renders whatever the session reports.
type App struct {
	session *services.Session
	logger  *zap.Logger
	ctx     context.Context

	input   textinput.Model
	spinner spinner.Model
	cursor  int
	width   int
}

func NewApp(ctx context.Context, session *services.Session, logger *zap.Logger) App {
	ti := textinput.New()
	ti.Placeholder = "Enter country name"
	ti.CharLimit = 64
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		session: session,
		logger:  logger,
		ctx:     ctx,
		input:   ti,
		spinner: sp,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case searchSettled:
		a.cursor = 0
		return a, nil

	case weatherSettled:
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return a, tea.Quit

	case "enter":
		// Enter always hides the weather panel, even with nothing to search.
		a.logger.Debug("Search submitted", zap.String("query", a.input.Value()))
		return a, waitFor(a.session.Submit(a.ctx), searchSettled{})

	case "ctrl+s":
		snap := a.session.Snapshot()
		if !snap.SortSelectorVisible {
			return a, nil
		}
		next := search.Descending
		if snap.Search.SortOrder == search.Descending {
			next = search.Ascending
		}
		_ = a.session.SetSortOrder(next)
		return a, nil

	case "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "down":
		if a.cursor < len(a.session.Snapshot().Visible)-1 {
			a.cursor++
		}
		return a, nil

	case "tab":
		visible := a.session.Snapshot().Visible
		if a.cursor >= len(visible) {
			return a, nil
		}
		country := visible[a.cursor]
		return a, waitFor(a.session.ToggleWeather(a.ctx, country.Capital, country.Code), weatherSettled{})
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before {
		a.session.SetQuery(after)
		a.clampCursor()
	}
	return a, cmd
}

func (a *App) clampCursor() {
	n := len(a.session.Snapshot().Visible)
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func waitFor(done <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-done
		return msg
	}
}
