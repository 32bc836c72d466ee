package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpPage lists every key binding.
type HelpPage struct {
	keys KeyMap
	help help.Model
}

// NewHelpPage creates the help page for keys.
func NewHelpPage(keys KeyMap) *HelpPage {
	h := help.New()
	h.ShowAll = true
	return &HelpPage{keys: keys, help: h}
}

func (p *HelpPage) ID() string    { return pageHelp }
func (p *HelpPage) Init() tea.Cmd { return nil }

func (p *HelpPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches(km, p.keys.ForceQuit):
		return tea.Quit, nil
	case key.Matches(km, p.keys.Help), key.Matches(km, p.keys.Escape), key.Matches(km, p.keys.Quit):
		return nil, &PageNav{PageID: pageDashboard}
	}
	return nil, nil
}

func (p *HelpPage) View(width, height int) string {
	p.help.Width = max(width-8, 20)

	header := lipgloss.NewStyle().
		Foreground(ColorBlue).
		Bold(true).
		Render("Keys")

	body := p.help.FullHelpView(p.keys.FullHelp())

	notes := helpStyle.Render("Refresh is available while paused. Errors pause fetching until dismissed.")
	footer := lipgloss.NewStyle().
		Foreground(ColorGray).
		Render("?/h/esc: back to dashboard")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlue).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", notes, footer))

	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
