// Package chat provides the interactive terminal chat window.
//
// The Bubble Tea update loop is the single owner of all mutable state: the
// conversation, the display, and the in-flight request status. Workers
// report back exclusively through messages, never by touching the model.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/console/pkg/config"
	"github.com/papercomputeco/console/pkg/conversation"
	"github.com/papercomputeco/console/pkg/coordinator"
	"github.com/papercomputeco/console/pkg/llm"
	"github.com/papercomputeco/console/pkg/transcript"
)

const probeTimeout = 15 * time.Second

// Prober validates the provider credential with a lightweight capability
// call.
type Prober interface {
	Probe(ctx context.Context) error
}

// Backend bundles the provider-facing pieces built from one credential.
type Backend struct {
	Prober      Prober
	Coordinator *coordinator.Coordinator
}

// BackendFactory builds a Backend from a config. The TUI calls it again
// whenever the user enters a new key or the config is hot-reloaded.
type BackendFactory func(cfg config.Config) Backend

type state int

const (
	stateProbing state = iota
	stateKeyEntry
	stateReady
	stateBusy
)

// Model is the main model for the interactive chat window.
type Model struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    Styles

	// State
	state     state
	status    string
	width     int
	height    int
	ready     bool
	blocks    []string // rendered display blocks, oldest first
	streamBuf string   // partial streamed assistant text

	// Conversation and backend
	conv    *conversation.Conversation
	factory BackendFactory
	backend Backend
	cfg     config.Config
	events  <-chan coordinator.Event
	cancel  context.CancelFunc

	// Transcript recording (nil store disables it)
	store     transcript.Store
	sessionID string
	seq       int

	logger *zap.Logger
}

// Params wires a Model's collaborators.
type Params struct {
	Config  config.Config
	Factory BackendFactory
	Store   transcript.Store
	Logger  *zap.Logger
}

// NewModel creates the chat model. The credential probe starts from Init.
func NewModel(p Params) Model {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Enter your message..."
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		textinput: ti,
		spinner:   sp,
		styles:    DefaultStyles(),
		state:     stateProbing,
		status:    "Checking credentials...",
		conv:      conversation.New(p.Config.SystemPrompt),
		factory:   p.Factory,
		backend:   p.Factory(p.Config),
		cfg:       p.Config,
		store:     p.Store,
		logger:    p.Logger,
	}
	m.startSession()
	return m
}

// Init starts the credential probe.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.probeCmd(), m.spinner.Tick, textinput.Blink)
}

// probeMsg reports the credential probe outcome.
type probeMsg struct{ err error }

// coordEventMsg carries one coordinator event plus the channel to keep
// draining.
type coordEventMsg struct {
	ev coordinator.Event
	ch <-chan coordinator.Event
}

// ConfigReloadedMsg is sent from outside the program when the config file
// changes on disk.
type ConfigReloadedMsg struct {
	Config config.Config
}

func (m Model) probeCmd() tea.Cmd {
	prober := m.backend.Prober
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		return probeMsg{err: prober.Probe(ctx)}
	}
}

// waitForEvent blocks on the coordinator's event channel. It is re-issued
// after every fragment so events arrive one Update at a time, in order.
func waitForEvent(ch <-chan coordinator.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return coordEventMsg{ev: ev, ch: ch}
	}
}

// Update is the single place model state changes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.state != stateBusy && m.state != stateProbing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case probeMsg:
		return m.handleProbe(msg)

	case coordEventMsg:
		return m.handleCoordEvent(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg.Config)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "esc":
		// Cancel an in-flight request; the failure event does the cleanup.
		if m.state == stateBusy && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case "ctrl+l":
		m.clearDisplay()
		return m, nil

	case "ctrl+r":
		if m.state != stateReady {
			return m, nil
		}
		m.resetConversation()
		return m, nil

	case "enter":
		return m.handleSubmit()
	}

	if m.inputEnabled() {
		var cmd tea.Cmd
		m.textinput, cmd = m.textinput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textinput.Value())

	switch m.state {
	case stateKeyEntry:
		if text == "" {
			return m, nil
		}
		m.textinput.Reset()
		m.cfg.APIKey = text
		m.backend = m.factory(m.cfg)
		m.state = stateProbing
		m.status = "Checking credentials..."
		return m, tea.Batch(m.probeCmd(), m.spinner.Tick)

	case stateReady:
		// Blank submissions never reach the provider.
		if text == "" {
			return m, nil
		}
		if !m.conv.Propose(text) {
			return m, nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		var (
			events <-chan coordinator.Event
			err    error
		)
		if m.cfg.Stream {
			events, err = m.backend.Coordinator.SendStream(ctx, m.conv.Snapshot())
		} else {
			events, err = m.backend.Coordinator.Send(ctx, m.conv.Snapshot())
		}
		if err != nil {
			cancel()
			m.conv.Discard()
			m.appendBlock(m.styles.Error.Render("Error: " + err.Error()))
			return m, nil
		}

		m.textinput.Reset()
		m.textinput.Blur()
		m.appendBlock(m.styles.UserLabel.Render("You: ") + text)
		m.events = events
		m.cancel = cancel
		m.state = stateBusy
		m.status = "Thinking..."
		m.streamBuf = ""
		m.refreshViewport()
		return m, tea.Batch(waitForEvent(events), m.spinner.Tick)
	}

	return m, nil
}

func (m Model) handleProbe(msg probeMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("credential probe failed", zap.Error(msg.err))
		m.state = stateKeyEntry
		m.status = "API key rejected - enter a key to continue"
		m.textinput.Reset()
		m.textinput.Placeholder = "Enter your OpenAI API key..."
		m.textinput.EchoMode = textinput.EchoPassword
		m.textinput.Focus()
		return m, nil
	}

	m.logger.Info("credential probe succeeded")
	m.state = stateReady
	m.status = "Ready"
	m.textinput.Reset()
	m.textinput.Placeholder = "Enter your message..."
	m.textinput.EchoMode = textinput.EchoNormal
	m.textinput.Focus()
	return m, nil
}

func (m Model) handleCoordEvent(msg coordEventMsg) (tea.Model, tea.Cmd) {
	switch ev := msg.ev.(type) {
	case coordinator.Fragment:
		m.streamBuf += ev.Text
		m.status = "Streaming..."
		m.refreshViewport()
		return m, waitForEvent(msg.ch)

	case coordinator.Finished:
		m.finishExchange(ev.Content)
		return m, nil

	case coordinator.Failed:
		m.failExchange(ev.Err)
		return m, nil
	}

	return m, waitForEvent(msg.ch)
}

// finishExchange commits the completed exchange, records it, and replaces
// the streamed partial with the final rendered reply.
func (m *Model) finishExchange(content string) {
	pending, _ := m.conv.Pending()
	m.conv.Commit(llm.Message{Role: llm.RoleAssistant, Content: content})

	m.streamBuf = ""
	m.appendBlock(m.styles.AssistantLabel.Render("Assistant: ") + "\n" + m.renderMarkdown(content))
	m.recordExchange(pending.Content, content)

	m.events = nil
	m.cancel = nil
	m.state = stateReady
	m.status = "Ready"
	m.textinput.Focus()
	m.refreshViewport()
}

// failExchange rolls back the pending user turn. Fragments already shown
// stay on screen; the conversation history does not keep partial output.
func (m *Model) failExchange(err error) {
	m.conv.Discard()

	if m.streamBuf != "" {
		m.appendBlock(m.styles.AssistantLabel.Render("Assistant: ") + "\n" + m.streamBuf)
		m.streamBuf = ""
	}
	m.appendBlock(m.styles.Error.Render("Error: " + err.Error()))

	m.events = nil
	m.cancel = nil
	m.state = stateReady
	m.status = "Error - Ready to retry"
	m.textinput.Focus()
	m.refreshViewport()
}

func (m Model) handleConfigReload(cfg config.Config) (tea.Model, tea.Cmd) {
	// Apply only while idle; an in-flight request keeps its snapshot.
	if m.state == stateBusy {
		return m, nil
	}

	m.logger.Info("config reloaded",
		zap.String("model", cfg.Model),
		zap.Bool("stream", cfg.Stream),
	)

	key := m.cfg.APIKey
	if cfg.APIKey != "" {
		key = cfg.APIKey
	}
	cfg.APIKey = key

	m.cfg = cfg
	m.conv.SetSystemPrompt(cfg.SystemPrompt)
	if m.state == stateReady || m.state == stateKeyEntry {
		m.backend = m.factory(m.cfg)
	}
	return m, nil
}

// recordExchange writes the completed exchange to the transcript store.
// Storage failures are logged and otherwise ignored; the chat goes on.
func (m *Model) recordExchange(prompt, reply string) {
	if m.store == nil {
		return
	}

	e := transcript.Exchange{
		ID:        uuid.NewString(),
		SessionID: m.sessionID,
		Seq:       m.seq,
		Prompt:    prompt,
		Reply:     reply,
		Model:     m.cfg.Model,
		CreatedAt: time.Now(),
	}
	if err := m.store.AppendExchange(context.Background(), e); err != nil {
		m.logger.Error("failed to record exchange", zap.Error(err))
		return
	}
	m.seq++
}

// startSession opens a fresh transcript session.
func (m *Model) startSession() {
	m.sessionID = uuid.NewString()
	m.seq = 0
	if m.store == nil {
		return
	}

	s := transcript.Session{
		ID:           m.sessionID,
		Model:        m.cfg.Model,
		SystemPrompt: m.conv.Snapshot()[0].Content,
		StartedAt:    time.Now(),
	}
	if err := m.store.CreateSession(context.Background(), s); err != nil {
		m.logger.Error("failed to create transcript session", zap.Error(err))
	}
}

func (m *Model) clearDisplay() {
	m.blocks = nil
	m.refreshViewport()
}

func (m *Model) resetConversation() {
	m.conv.Reset()
	m.blocks = nil
	m.streamBuf = ""
	m.appendBlock(m.styles.Notice.Render("Conversation reset."))
	m.status = "Ready"
	m.startSession()
	m.refreshViewport()
}

func (m Model) inputEnabled() bool {
	return m.state == stateReady || m.state == stateKeyEntry
}

// Conversation exposes the underlying conversation for inspection.
func (m Model) Conversation() *conversation.Conversation {
	return m.conv
}
