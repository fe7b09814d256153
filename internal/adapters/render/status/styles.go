package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	job        lipgloss.Style
	detail     lipgloss.Style
	key        lipgloss.Style
	link       lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	warning    lipgloss.Style
	ongoing    lipgloss.Style
	success    lipgloss.Style
	failed     lipgloss.Style
	unknown    lipgloss.Style
	barBracket lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		job:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		key:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		link:       lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("159")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		ongoing:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		success:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		failed:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		unknown:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
