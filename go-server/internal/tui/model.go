// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package tui is the terminal rendition of the generator form.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
	"github.com/kbeqi/llms-generator/go-server/internal/directive"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

const (
	focusSite = iota
	focusContact
	focusFirstAgent
)

const helpText = "tab/shift+tab move • space toggle • ctrl+y copy • ctrl+s save • ctrl+r reset • esc quit"

// previewBuffer receives form text from the form's subscription and hands
// it to the viewport on the next update.
type previewBuffer struct {
	mu    sync.Mutex
	text  string
	dirty bool
}

func (p *previewBuffer) set(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text = text
	p.dirty = true
}

func (p *previewBuffer) take() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.dirty {
		return "", false
	}
	p.dirty = false
	return p.text, true
}

type Options struct {
	// OutputDir receives LLMs.txt on save. Empty means the working directory.
	OutputDir string
}

// Model is the bubbletea model for the form. Focus indexes the two text
// inputs first, then the catalog agents in order.
type Model struct {
	form    *directive.Form
	agents  []string
	inputs  []textinput.Model
	focus   int
	preview viewport.Model
	pending *previewBuffer
	outDir  string

	status    string
	statusErr bool
	quitting  bool

	width  int
	height int
	styles styles
}

func New(opts Options) Model {
	site := textinput.New()
	site.Placeholder = "https://example.com"
	site.Prompt = ""
	site.Focus()

	contact := textinput.New()
	contact.Placeholder = "webmaster@example.com"
	contact.Prompt = ""

	form := directive.NewForm()
	pending := &previewBuffer{}
	form.Subscribe(pending.set)
	vp := viewport.New(60, 12)
	vp.SetContent(form.Text())

	return Model{
		form:    form,
		agents:  catalog.Names(),
		inputs:  []textinput.Model{site, contact},
		preview: vp,
		pending: pending,
		outDir:  opts.OutputDir,
		styles:  defaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Form exposes the underlying form state.
func (m Model) Form() *directive.Form {
	return m.form
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.preview.Width = max(msg.Width-4, 20)
		m.preview.Height = max(msg.Height-len(m.agents)-12, 5)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "down":
			return m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m.setFocus(m.focus - 1)
		case "ctrl+y":
			m.copy()
			return m, nil
		case "ctrl+s":
			m.save()
			return m, nil
		case "ctrl+r":
			m.form.Reset()
			for i := range m.inputs {
				m.inputs[i].SetValue("")
			}
			m.setStatus("Reset to defaults", false)
			m.refresh()
			return m, nil
		case " ", "space", "enter":
			if m.focus >= focusFirstAgent {
				if err := m.form.Toggle(m.agents[m.focus-focusFirstAgent]); err != nil {
					m.setStatus(err.Error(), true)
				}
				m.refresh()
				return m, nil
			}
		}
	}

	if m.focus < focusFirstAgent {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		m.syncInputs()
		return m, cmd
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m Model) setFocus(i int) (tea.Model, tea.Cmd) {
	n := focusFirstAgent + len(m.agents)
	m.focus = (i%n + n) % n

	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m, cmd
}

// syncInputs pushes edited input values into the form. Unchanged values are
// skipped so cursor movement does not clear the copied indicator.
func (m *Model) syncInputs() {
	state := m.form.State()
	if v := m.inputs[focusSite].Value(); v != state.SiteURL {
		m.form.SetSiteURL(v)
	}
	if v := m.inputs[focusContact].Value(); v != state.Contact {
		m.form.SetContact(v)
	}
	m.refresh()
}

// refresh moves any text published by the form into the preview.
func (m *Model) refresh() {
	if text, ok := m.pending.take(); ok {
		m.preview.SetContent(text)
	}
}

func (m *Model) copy() {
	if m.form.Copy(clipboardWriteAll) {
		m.setStatus("Copied to clipboard", false)
		return
	}
	m.setStatus("Clipboard unavailable", true)
}

func (m *Model) save() {
	path, err := directive.WriteFile(m.outDir, m.form.Text())
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("Saved "+path, false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("LLMs.txt Generator"))
	b.WriteString("\n\n")

	labels := []string{"Site URL", "Contact email"}
	for i, in := range m.inputs {
		b.WriteString(m.label(labels[i], m.focus == i))
		b.WriteString("\n  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Label.Render("AI crawlers"))
	b.WriteString("\n")
	for i, name := range m.agents {
		b.WriteString(m.agentRow(name, m.focus == focusFirstAgent+i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "[%s]  %s\n", directive.CopyLabel(m.form.Copied()), m.styles.Label.Render(directive.Filename))
	b.WriteString(m.styles.Preview.Render(m.preview.View()))
	b.WriteString("\n")

	if m.status != "" {
		style := m.styles.Success
		if m.statusErr {
			style = m.styles.Error
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render(helpText))
	return b.String()
}

func (m Model) label(s string, focused bool) string {
	if focused {
		return m.styles.Focused.Render("> " + s)
	}
	return m.styles.Label.Render("  " + s)
}

func (m Model) agentRow(name string, focused bool) string {
	allow := m.form.Allowed(name)
	box := "[ ]"
	action := m.styles.Deny.Render(catalog.ActionLabel(allow))
	if allow {
		box = "[x]"
		action = m.styles.Allow.Render(catalog.ActionLabel(allow))
	}

	cursor := "  "
	nameText := fmt.Sprintf("%-16s", name)
	if focused {
		cursor = "> "
		nameText = m.styles.Focused.Render(nameText)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cursor, box, " ", nameText, action)
}
