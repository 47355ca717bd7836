package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chiefduck/ratewatch/internal/activity"
	"github.com/chiefduck/ratewatch/internal/notify"
)

var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorBlue).
			Padding(0, 1)

	companyStyle = lipgloss.NewStyle().Foreground(colorGray)

	avatarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	timestampStyle = lipgloss.NewStyle().Foreground(colorGray).Italic(true)

	toastStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	errorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

var icons = map[activity.Icon]string{
	activity.IconTrendUp: "↗",
	activity.IconClock:   "◷",
	activity.IconPhone:   "☎",
	activity.IconMail:    "✉",
}

func iconGlyph(i activity.Icon) string {
	if g, ok := icons[i]; ok {
		return g
	}
	return icons[activity.IconClock]
}

func toneColor(t activity.Tone) lipgloss.TerminalColor {
	switch t {
	case activity.ToneGreen:
		return colorGreen
	case activity.ToneYellow:
		return colorYellow
	case activity.ToneRed:
		return colorRed
	default:
		return colorGray
	}
}

func toastColor(t notify.Type) lipgloss.TerminalColor {
	switch t {
	case notify.TypeSuccess:
		return colorGreen
	case notify.TypeError:
		return colorRed
	case notify.TypeWarning:
		return colorYellow
	default:
		return colorBlue
	}
}
