// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tellerui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/teller/lib/tui"
)

type field struct {
	label  string
	secret bool
	limit  int
}

// form is a vertical stack of labelled text inputs with one focused.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...field) form {
	built := form{}
	for _, definition := range fields {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = definition.limit
		if definition.secret {
			input.EchoMode = textinput.EchoPassword
			input.EchoCharacter = '•'
		}
		built.labels = append(built.labels, definition.label)
		built.inputs = append(built.inputs, input)
	}
	built.inputs[0].Focus()
	return built
}

func (f *form) value(index int) string {
	return strings.TrimSpace(f.inputs[index].Value())
}

func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) last() bool {
	return f.focus == len(f.inputs)-1
}

// clearSecrets empties every password input.
func (f *form) clearSecrets() {
	for index := range f.inputs {
		if f.inputs[index].EchoMode == textinput.EchoPassword {
			f.inputs[index].SetValue("")
		}
	}
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) view(theme tui.Theme, width int) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.FaintText)
	focusedLabel := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	labelWidth := 0
	for _, label := range f.labels {
		labelWidth = max(labelWidth, lipgloss.Width(label))
	}

	lines := make([]string, 0, len(f.inputs))
	for index := range f.inputs {
		style := labelStyle
		if index == f.focus {
			style = focusedLabel
		}
		f.inputs[index].Width = max(8, width-labelWidth-3)
		label := style.Width(labelWidth).Render(f.labels[index])
		lines = append(lines, label+"  "+f.inputs[index].View())
	}
	return strings.Join(lines, "\n")
}
