package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// resize lays the window out and (re)builds the markdown renderer for the
// new width.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 1
	statusHeight := 1
	helpHeight := 1
	vpHeight := height - inputHeight - statusHeight - helpHeight - 2
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.textinput.Width = width - 4

	m.refreshViewport()
}

// appendBlock adds one rendered block to the display.
func (m *Model) appendBlock(block string) {
	m.blocks = append(m.blocks, block)
}

// refreshViewport rebuilds the scrollback content and pins it to the
// bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, block := range m.blocks {
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	if m.streamBuf != "" {
		b.WriteString(m.styles.AssistantLabel.Render("Assistant: "))
		b.WriteString("\n")
		b.WriteString(m.streamBuf)
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// renderMarkdown renders assistant output with glamour when the terminal
// supports it, falling back to the raw text.
func (m *Model) renderMarkdown(content string) string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return content
	}

	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// View renders the whole window: status, scrollback, input, help.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var status string
	switch m.state {
	case stateProbing, stateBusy:
		status = m.spinner.View() + " " + m.status
	default:
		status = m.status
	}

	var b strings.Builder
	b.WriteString(m.styles.Status.Render(status))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Prompt.Render("> "))
	b.WriteString(m.textinput.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.helpLine()))
	return b.String()
}

func (m Model) helpLine() string {
	if m.state == stateKeyEntry {
		return "enter: submit key • ctrl+c: quit"
	}
	if m.state == stateBusy {
		return "esc: cancel • ctrl+c: quit"
	}
	return "enter: send • ctrl+l: clear display • ctrl+r: reset conversation • ctrl+c: quit"
}
