package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"assistant/internal/domain"
)

// turn is one entry in the visible transcript. The transcript belongs to the
// front end; the pipeline keeps no cross-call state.
type turn struct {
	role string // "you", "assistant" or "error"
	text string
}

type answerMsg struct {
	answer domain.Answer
	err    error
}

// Model is the Bubble Tea model for the chat front end.
type Model struct {
	assistant  domain.Assistant
	input      textinput.Model
	viewport   viewport.Model
	transcript []turn
	status     string
	header     string
	waiting    bool
	ready      bool
}

// New creates a new chat model. The header line typically reports what was
// indexed at startup.
func New(assistant domain.Assistant, header string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the weather or the document"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		assistant: assistant,
		input:     ti,
		viewport:  vp,
		header:    header,
		status:    "Ready. Type a question and press Enter.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.transcript = append(m.transcript, turn{role: "error", text: msg.err.Error()})
			m.status = "Turn failed. Transcript preserved."
		} else {
			m.transcript = append(m.transcript, turn{role: "assistant", text: msg.answer.Text})
			m.status = "Answered via " + string(msg.answer.Route) + " path."
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.transcript = append(m.transcript, turn{role: "you", text: q})
				m.input.SetValue("")
				m.waiting = true
				m.status = "Thinking..."
				m.viewport.SetContent(m.renderTranscript())
				m.viewport.GotoBottom()
				return m, askCmd(m.assistant, q)
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func askCmd(assistant domain.Assistant, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := assistant.Answer(context.Background(), question)
		return answerMsg{answer: answer, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Weather & Document Assistant")
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.header)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + sub + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, t := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch t.role {
		case "you":
			b.WriteString(youStyle.Render("you: ") + t.text)
		case "error":
			b.WriteString(errorStyle.Render("error: " + t.text))
		default:
			b.WriteString(assistantStyle.Render("assistant: ") + t.text)
		}
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	youStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
