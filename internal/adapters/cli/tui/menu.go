package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// MenuOption represents a menu choice
type MenuOption struct {
	Label string
	Value string
}

// DefaultMenuHint is shown below the options when no hint is given
const DefaultMenuHint = "(up/down to navigate, enter to select, q to quit)"

// MenuModel is the bubbletea model for a single-choice menu
type MenuModel struct {
	title    string
	hint     string
	options  []MenuOption
	cursor   int
	selected string
}

// NewMenuModel creates a new menu
func NewMenuModel(title string, options []MenuOption) MenuModel {
	return MenuModel{
		title:   title,
		hint:    DefaultMenuHint,
		options: options,
	}
}

// WithHint replaces the key help line, e.g. with a translated one
func (m MenuModel) WithHint(hint string) MenuModel {
	if hint != "" {
		m.hint = hint
	}
	return m
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.options) > 0 {
				m.selected = m.options[m.cursor].Value
			}
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		default:
			// Digits jump straight to an option, like the numbered prompts
			if n := msg.String(); len(n) == 1 && n[0] >= '1' && n[0] <= '9' {
				if i := int(n[0] - '1'); i < len(m.options) {
					m.cursor = i
					m.selected = m.options[i].Value
					return m, tea.Quit
				}
			}
		}
	}
	return m, nil
}

func (m MenuModel) View() string {
	var s strings.Builder
	fmt.Fprintf(&s, "? %s\n\n", m.title)

	for i, opt := range m.options {
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedStyle
		}
		fmt.Fprintf(&s, "%s%d. %s\n", cursor, i+1, style.Render(opt.Label))
	}

	s.WriteString("\n" + hintStyle.Render(m.hint) + "\n")
	return s.String()
}

// Selected returns the selected value, "" when the menu was cancelled
func (m MenuModel) Selected() string {
	return m.selected
}

// RunMenu displays the menu and returns the selection
func RunMenu(m MenuModel) (string, error) {
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	return finalModel.(MenuModel).Selected(), nil
}
