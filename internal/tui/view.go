package tui

import (
	"fmt"
	"strings"

	"github.com/bobby-s-dev/countries-explorer/internal/models"
	"github.com/bobby-s-dev/countries-explorer/internal/search"
	"github.com/bobby-s-dev/countries-explorer/internal/services"
	"github.com/bobby-s-dev/countries-explorer/internal/weather"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	toggleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

var selectedCardStyle = cardStyle.Copy().BorderForeground(lipgloss.Color("33"))

func (a App) View() string {
	snap := a.session.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Countries Explorer"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Search Country"))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")

	if snap.SubmitEnabled {
		b.WriteString(hintStyle.Render("[enter] Search"))
	} else {
		b.WriteString(hintStyle.Render("[Search] " + search.MsgEnterName))
	}
	b.WriteString("\n\n")

	if snap.SortSelectorVisible {
		b.WriteString(labelStyle.Render("Sort by: "))
		b.WriteString(snap.Search.SortOrder.Label())
		b.WriteString(hintStyle.Render("  [ctrl+s] change"))
		b.WriteString("\n\n")
	}

	// Loading and error lines sit above whatever the last results show.
	if snap.Search.IsLoading {
		b.WriteString(a.spinner.View() + " " + search.MsgLoading)
		b.WriteString("\n")
	}
	if snap.Search.Error != "" {
		b.WriteString(errorStyle.Render("Error: " + snap.Search.Error))
		b.WriteString("\n")
	}

	switch {
	case len(snap.Visible) > 0 && snap.Search.Query != "":
		for i, country := range snap.Visible {
			b.WriteString(a.renderCard(country, snap, i == a.cursor))
			b.WriteString("\n")
		}
		b.WriteString(hintStyle.Render("[↑/↓] select  [tab] weather  [esc] quit"))
	case snap.Search.HasSearched:
		b.WriteString(search.MsgNoResults)
	default:
		b.WriteString(search.MsgEnterSearch)
	}
	b.WriteString("\n")

	return b.String()
}

func (a App) renderCard(c models.Country, snap services.Snapshot, selected bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(c.Name), c.Emoji)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Capital:"), c.CapitalOrNA())
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Region:"), c.Region())
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Languages:"), c.LanguageList())
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Currency:"), c.CurrencyOrNA())

	open := snap.Weather.ShowsFor(c)
	if open {
		b.WriteString("\n\n")
		b.WriteString(a.renderPanel(snap.Panel))
	}

	b.WriteString("\n")
	if open {
		b.WriteString(toggleStyle.Render("▲ Hide Weather Details"))
	} else {
		b.WriteString(toggleStyle.Render("▼ See Weather Details Below"))
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	if a.width > 4 {
		style = style.Width(a.width - 4)
	}
	return style.Render(b.String())
}

func (a App) renderPanel(p weather.PanelState) string {
	switch p.Status {
	case weather.StatusReady:
		s := p.Snapshot
		return fmt.Sprintf("%s\n%s %.1f °C\n%s %s",
			labelStyle.Render("Weather in "+s.LocationName+":"),
			labelStyle.Render("Temperature:"), s.TemperatureCelsius,
			labelStyle.Render("Conditions:"), s.ConditionText)
	case weather.StatusFailed:
		return errorStyle.Render(p.Message)
	default:
		return a.spinner.View() + " " + weather.LoadingMessage
	}
}
