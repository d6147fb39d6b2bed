package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/mailcal/internal/config"
)

const AppName = "mailcal"

// LogoLines is the block-letter wordmark.
var LogoLines = []string{
	"█▀▄▀█ ▄▀█ █ █   █▀▀ ▄▀█ █  ",
	"█ ▀ █ █▀█ █ █▄▄ █▄▄ █▀█ █▄▄",
}

const CompactLogo = `mailcal ›`

const Tagline = "Mail & Calendar Dashboard"

var BannerColors = []lipgloss.Color{
	lipgloss.Color("#60A5FA"),
	lipgloss.Color("#A78BFA"),
	lipgloss.Color("#F472B6"),
}

var (
	PrimaryColor   = lipgloss.Color("#60A5FA")
	SecondaryColor = lipgloss.Color("#A78BFA")
	AccentColor    = lipgloss.Color("#34D399")

	SurfaceColor = lipgloss.Color("#1E293B")
	TextColor    = lipgloss.Color("#E2E8F0")
	MutedColor   = lipgloss.Color("#94A3B8")

	UnreadColor  = lipgloss.Color("#FDE68A")
	ReadColor    = lipgloss.Color("#64748B")
	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")
)

var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	ActiveTabStyle     lipgloss.Style
	InactiveTabStyle   lipgloss.Style
	UnreadItemStyle    lipgloss.Style
	ReadItemStyle      lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	SectionStyle       lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyTheme swaps in configured colors. Blank entries keep the default.
func ApplyTheme(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	ActiveTabStyle = lipgloss.NewStyle().
		Foreground(SurfaceColor).
		Background(PrimaryColor).
		Bold(true).
		Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	UnreadItemStyle = lipgloss.NewStyle().
		Foreground(UnreadColor).
		Bold(true)

	ReadItemStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	SectionStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(UnreadColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner renders the startup banner printed by the CLI.
func Banner(version string) string {
	lines := append([]string{}, LogoLines...)
	lines = append(lines, "")

	tagline := Tagline
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("%s %s", Tagline, version)
	}
	lines = append(lines, tagline)

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 3)

	return lipgloss.NewStyle().
		Width(60).
		Align(lipgloss.Center).
		Render(border.Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...)))
}
