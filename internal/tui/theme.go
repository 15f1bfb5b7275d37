package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/report"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorBrand   = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)

	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Background(colorSurface0).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorOverlay1).
				Background(colorMantle).
				Padding(0, 1)

	lockedTabStyle = inactiveTabStyle.Foreground(colorOverlay0).Strikethrough(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle).
			Padding(0, 2)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface2).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
	labelStyle  = lipgloss.NewStyle().Foreground(colorSubtext1)
	userStyle   = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)

	toastBase = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorMantle)
)

func toastStyle(sev notify.Severity) lipgloss.Style {
	switch sev {
	case notify.Success:
		return toastBase.Background(colorSuccess)
	case notify.Error:
		return toastBase.Background(colorError)
	case notify.Warning:
		return toastBase.Background(colorWarning)
	default:
		return toastBase.Background(colorInfo)
	}
}

func bandStyle(b report.Band) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch b {
	case report.Excellent:
		return s.Foreground(colorSuccess)
	case report.Good:
		return s.Foreground(colorTeal)
	case report.Moderate:
		return s.Foreground(colorWarning)
	case report.Poor:
		return s.Foreground(colorError)
	default:
		return s
	}
}

func toneStyle(t report.Tone) lipgloss.Style {
	switch t {
	case report.ToneSuccess:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case report.ToneDanger:
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorText)
	}
}

func levelStyle(level string) lipgloss.Style {
	switch level {
	case "high", "critical":
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case "medium", "moderate":
		return lipgloss.NewStyle().Foreground(colorPeach)
	default:
		return lipgloss.NewStyle().Foreground(colorYellow)
	}
}
