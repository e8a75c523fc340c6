package chat

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles collects the lipgloss styles used by the chat window.
type Styles struct {
	Status         lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Error          lipgloss.Style
	Notice         lipgloss.Style
	Prompt         lipgloss.Style
	Help           lipgloss.Style
}

// DefaultStyles builds the styles, dropping color entirely on terminals
// without color support.
func DefaultStyles() Styles {
	if termenv.ColorProfile() == termenv.Ascii {
		plain := lipgloss.NewStyle()
		return Styles{
			Status:         plain,
			UserLabel:      plain.Bold(true),
			AssistantLabel: plain.Bold(true),
			Error:          plain.Bold(true),
			Notice:         plain.Italic(true),
			Prompt:         plain,
			Help:           plain.Faint(true),
		}
	}

	return Styles{
		Status:         lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		UserLabel:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		AssistantLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		Error:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Notice:         lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Prompt:         lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Help:           lipgloss.NewStyle().Faint(true),
	}
}
