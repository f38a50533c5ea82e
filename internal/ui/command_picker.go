package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/store"
)

// commandItem implements list.Item for the Bubbles list component.
type commandItem struct {
	cmd store.Command
}

func (i commandItem) Title() string {
	return i.cmd.Title
}

func (i commandItem) Description() string {
	return i.cmd.Command + "  →  " + i.cmd.Profile
}

func (i commandItem) FilterValue() string {
	// Allow searching by title, command text, and profile
	return i.cmd.Title + " " + i.cmd.Command + " " + i.cmd.Profile
}

// CommandPickerModel is a Bubble Tea model for selecting a saved command.
type CommandPickerModel struct {
	list     list.Model
	selected *store.Command
	quitting bool
}

type commandPickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var commandPickerKeys = commandPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewCommandPickerModel creates a new command picker model.
func NewCommandPickerModel(commands []store.Command) CommandPickerModel {
	items := make([]list.Item, len(commands))
	for i, c := range commands {
		items[i] = commandItem{cmd: c}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color(string(ColorPrimary))).
		BorderForeground(lipgloss.Color(string(ColorSecondary)))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color(string(ColorMuted)))

	l := list.New(items, delegate, 0, 0)
	l.Title = "Select a command to run"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color(string(ColorPrimary))).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(string(ColorMuted)))

	return CommandPickerModel{list: l}
}

// Init implements tea.Model.
func (m CommandPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m CommandPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, commandPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(commandItem); ok {
				cmd := item.cmd
				m.selected = &cmd
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, commandPickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m CommandPickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the selected command, or nil if cancelled.
func (m CommandPickerModel) Selected() *store.Command {
	return m.selected
}

// PickCommand displays an interactive command picker and returns the
// selection. Returns nil if the user cancels (ESC/q/Ctrl+C).
func PickCommand(commands []store.Command) (*store.Command, error) {
	return PickCommandWithOutput(commands, os.Stdout, os.Stdin)
}

// PickCommandWithOutput displays the command picker using custom I/O.
func PickCommandWithOutput(commands []store.Command, output io.Writer, input io.Reader) (*store.Command, error) {
	if len(commands) == 0 {
		return nil, errors.New(errors.ErrStore, "No commands to pick from",
			"Save one first with 'sshdeck cmd add'.")
	}

	if len(commands) == 1 {
		return &commands[0], nil
	}

	model := NewCommandPickerModel(commands)

	p := tea.NewProgram(
		model,
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Command picker failed",
			"Run 'sshdeck run <title>' to skip the picker.")
	}

	if m, ok := finalModel.(CommandPickerModel); ok {
		return m.Selected(), nil
	}
	return nil, nil
}
