package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kiranshivaraju/keyconsole/internal/notice"
)

var (
	ColorPrimary  = lipgloss.Color("#7c3aed")
	ColorSuccess  = lipgloss.Color("#16a34a")
	ColorError    = lipgloss.Color("#dc2626")
	ColorWarning  = lipgloss.Color("#d97706")
	ColorDisabled = lipgloss.AdaptiveColor{Light: "250", Dark: "238"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	subtitleStyle = lipgloss.NewStyle().Faint(true)
	labelStyle    = lipgloss.NewStyle().Bold(true)
	panelStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(1, 2)
	cellStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(0, 2).Align(lipgloss.Center)
	activeLang    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Underline(true)
	inactiveLang  = lipgloss.NewStyle().Foreground(ColorDisabled)
	secretStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
)

var noticeStyles = map[notice.Kind]lipgloss.Style{
	notice.Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	notice.Error:   lipgloss.NewStyle().Foreground(ColorError),
	notice.Warning: lipgloss.NewStyle().Foreground(ColorWarning),
}

func renderNotice(n notice.Notice, ok bool) string {
	if !ok {
		return ""
	}
	return noticeStyles[n.Kind].Render(n.Text)
}
