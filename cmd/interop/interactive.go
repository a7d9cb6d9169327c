package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/interop"
)

var selectedStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4"))

// messages visible at once in the message list
const listWindow = 14

type modelState int

const (
	stateSelectTarget modelState = iota
	stateSelectMessage
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	lib      *interop.Library
	targets  map[string]any
	names    []string
	matches  []dispatch.Message
	filter   textinput.Model
	args     textinput.Model
	result   string
	resType  string
	target   int
	selected int
	state    modelState
}

type sendResultMsg struct {
	err     error
	result  string
	resType string
}

func newInteractiveModel(lib *interop.Library, targets map[string]any) *interactiveModel {
	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.Placeholder = "message name"
	filter.Width = 40

	args := textinput.New()
	args.Prompt = "args: "
	args.Placeholder = "s32:1 text true"
	args.Width = 60

	m := &interactiveModel{
		lib:     lib,
		targets: targets,
		names:   targetNames(targets),
		filter:  filter,
		args:    args,
		state:   stateSelectTarget,
	}
	m.refilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd { return nil }

func (m *interactiveModel) refilter() {
	needle := strings.ToLower(m.filter.Value())
	m.matches = m.matches[:0]
	for _, msg := range dispatch.Messages() {
		if strings.Contains(strings.ToLower(msg.String()), needle) {
			m.matches = append(m.matches, msg)
		}
	}
	if m.selected >= len(m.matches) {
		m.selected = max(len(m.matches)-1, 0)
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateSelectTarget || m.state == stateShowResult {
				return m, tea.Quit
			}

		case "up":
			m.move(-1)
			return m, nil

		case "down":
			m.move(1)
			return m, nil

		case "enter":
			switch m.state {
			case stateSelectTarget:
				m.state = stateSelectMessage
				m.filter.Focus()
				return m, textinput.Blink
			case stateSelectMessage:
				if len(m.matches) == 0 {
					return m, nil
				}
				m.filter.Blur()
				m.args.SetValue("")
				m.args.Focus()
				m.state = stateInputArgs
				return m, textinput.Blink
			case stateInputArgs:
				m.args.Blur()
				return m, m.send
			case stateShowResult:
				m.reset()
				return m, nil
			}

		case "esc":
			switch m.state {
			case stateSelectMessage:
				m.filter.Blur()
				m.state = stateSelectTarget
			case stateInputArgs:
				m.args.Blur()
				m.filter.Focus()
				m.state = stateSelectMessage
			case stateShowResult:
				m.reset()
			}
			return m, nil
		}

	case sendResultMsg:
		m.result = msg.result
		m.resType = msg.resType
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectMessage:
		m.filter, cmd = m.filter.Update(msg)
		m.refilter()
	case stateInputArgs:
		m.args, cmd = m.args.Update(msg)
	}
	return m, cmd
}

func (m *interactiveModel) move(d int) {
	switch m.state {
	case stateSelectTarget:
		m.target = min(max(m.target+d, 0), len(m.names)-1)
	case stateSelectMessage:
		m.selected = min(max(m.selected+d, 0), max(len(m.matches)-1, 0))
	}
}

func (m *interactiveModel) reset() {
	m.result = ""
	m.resType = ""
	m.err = nil
	m.filter.Focus()
	m.state = stateSelectMessage
}

func (m *interactiveModel) send() tea.Msg {
	args, err := parseArgs(strings.Fields(m.args.Value()))
	if err != nil {
		return sendResultMsg{err: err}
	}
	recv := m.targets[m.names[m.target]]
	v, err := m.lib.Send(recv, m.matches[m.selected], args...)
	if err != nil {
		return sendResultMsg{err: err}
	}
	return sendResultMsg{result: formatValue(m.lib, v), resType: typeName(v)}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Interop Explorer"))
	if m.state != stateSelectTarget {
		b.WriteString(" ")
		b.WriteString(m.names[m.target])
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectTarget:
		b.WriteString("Select a receiver:\n\n")
		for i, name := range m.names {
			line := fmt.Sprintf("%-12s %s", name, typeStyle.Render(typeName(m.targets[name])))
			if i == m.target {
				b.WriteString(selectedStyle.Render("> " + name))
				b.WriteString(strings.TrimPrefix(line, name))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateSelectMessage:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		start := 0
		if m.selected >= listWindow {
			start = m.selected - listWindow + 1
		}
		end := min(start+listWindow, len(m.matches))
		for i := start; i < end; i++ {
			name := m.matches[i].String()
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + msgStyle.Render(name))
			}
			if m.matches[i].IsQuery() {
				b.WriteString(dimStyle.Render("  query"))
			}
			b.WriteString("\n")
		}
		if len(m.matches) == 0 {
			b.WriteString(dimStyle.Render("  no message matches"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d • ↑/↓ select • enter choose • esc back", len(m.matches), dispatch.MessageCount)))

	case stateInputArgs:
		b.WriteString(fmt.Sprintf("Sending %s\n\n", msgStyle.Render(m.matches[m.selected].String())))
		b.WriteString(m.args.View())
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("space separated, type:value or bare • enter send • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", msgStyle.Render(m.matches[m.selected].String())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(": " + m.resType))
		}
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(lib *interop.Library, targets map[string]any) error {
	p := tea.NewProgram(newInteractiveModel(lib, targets), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
