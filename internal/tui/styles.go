package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorNavy  = lipgloss.Color("#1B2A49")
	ColorWhite = lipgloss.Color("#F5F5F5")
	ColorGray  = lipgloss.Color("245")
	ColorBlue  = lipgloss.Color("39")
	ColorGreen = lipgloss.Color("#44FF44")
	ColorAmber = lipgloss.Color("#FFAA00")
	ColorRed   = lipgloss.Color("#FF4444")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	chartTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)

	errorBannerStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorRed).
				Foreground(ColorRed).
				Padding(0, 1)
)

// streamPalette colors bars in the stream chart, cycling when there are
// more streams than colors.
var streamPalette = []lipgloss.Color{"39", "208", "201", "114", "220", "141", "203", "44"}

func streamStyle(i int) lipgloss.Style {
	c := streamPalette[i%len(streamPalette)]
	return lipgloss.NewStyle().Foreground(c).Background(c)
}
