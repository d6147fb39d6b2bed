package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

func renderSeparator(width int) string {
	if width < 1 {
		width = 1
	}
	return SeparatorStyle.Render(strings.Repeat("─", width))
}

// renderInputFrame draws a rounded box around an input view.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

// renderBadge draws a small colored label.
func renderBadge(text, hex string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex)).
		Render("[" + text + "]")
}

func renderStatus(text string, kind StatusKind) string {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle.Render(text)
	case StatusWarn:
		return StatusWarnStyle.Render(text)
	case StatusError:
		return StatusErrorStyle.Render("✗ " + text)
	default:
		return StatusInfoStyle.Render(text)
	}
}
