package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskweave/taskweave/pkg/task"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TaskListModel - Interactive task selection
// =============================================================================

// TaskListModel is the bubbletea model for picking one task from a list.
type TaskListModel struct {
	Title    string
	Tasks    []task.Task
	Cursor   int
	Selected *task.Task
	Height   int
	Offset   int
}

// NewTaskListModel creates a new task list model.
func NewTaskListModel(title string, tasks []task.Task) TaskListModel {
	return TaskListModel{
		Title:  title,
		Tasks:  tasks,
		Height: 15,
	}
}

func (m TaskListModel) Init() tea.Cmd {
	return nil
}

func (m TaskListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Tasks)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Tasks) > 0 {
				t := m.Tasks[m.Cursor]
				m.Selected = &t
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TaskListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Tasks) {
		end = len(m.Tasks)
	}

	for i := m.Offset; i < end; i++ {
		t := m.Tasks[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s  %s", cursor, renderTask(t), listDimStyle.Render(renderTaskRef(t)))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(cursor) + line[len(cursor):])
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Tasks))))

	return b.String()
}

// pickTask runs the interactive picker and returns the chosen task.
// The boolean result is false when the user quit without selecting.
func pickTask(title string, tasks []task.Task) (task.Task, bool, error) {
	if len(tasks) == 0 {
		return task.Task{}, false, nil
	}

	program := tea.NewProgram(NewTaskListModel(title, tasks))
	final, err := program.Run()
	if err != nil {
		return task.Task{}, false, err
	}

	model, ok := final.(TaskListModel)
	if !ok || model.Selected == nil {
		return task.Task{}, false, nil
	}
	return *model.Selected, true, nil
}
