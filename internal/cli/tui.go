package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/depcheck/pkg/audit"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// UpdateListModel - Interactive update selection
// =============================================================================

// UpdateListModel is the bubbletea model for picking which outdated
// packages to update. Every package starts checked.
type UpdateListModel struct {
	Records   []audit.Record
	Checked   []bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewUpdateListModel creates a selection over the outdated records.
func NewUpdateListModel(records []audit.Record) UpdateListModel {
	checked := make([]bool, len(records))
	for i := range checked {
		checked[i] = true
	}
	return UpdateListModel{
		Records: records,
		Checked: checked,
		Height:  15,
	}
}

func (m UpdateListModel) Init() tea.Cmd {
	return nil
}

func (m UpdateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Checked) > 0 {
				m.Checked[m.Cursor] = !m.Checked[m.Cursor]
			}
		case "a":
			all := !m.allChecked()
			for i := range m.Checked {
				m.Checked[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m UpdateListModel) allChecked() bool {
	for _, c := range m.Checked {
		if !c {
			return false
		}
	}
	return true
}

// Selection returns the checked records in report order, or nil if the
// user cancelled.
func (m UpdateListModel) Selection() []audit.Record {
	if !m.Confirmed {
		return nil
	}
	var out []audit.Record
	for i, r := range m.Records {
		if m.Checked[i] {
			out = append(out, r)
		}
	}
	return out
}

func (m UpdateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Updates"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ update  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Records))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[" + iconSuccess + "]"
		}
		rows = append(rows, []string{cursor + box, r.Name, cell(r.Installed), iconArrow, r.Latest})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Installed", "", "Latest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Records) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Checked[idx]:
				return listNormalStyle
			}
			return listDimStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d selected]", m.selectedCount(), len(m.Records))))

	return b.String()
}

func (m UpdateListModel) selectedCount() int {
	n := 0
	for _, c := range m.Checked {
		if c {
			n++
		}
	}
	return n
}

// selectUpdates runs the selection UI on the terminal and returns the chosen
// records. A cancelled selection returns nil without error.
func selectUpdates(ctx context.Context, records []audit.Record) ([]audit.Record, error) {
	p := tea.NewProgram(NewUpdateListModel(records), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run selection: %w", err)
	}
	return final.(UpdateListModel).Selection(), nil
}
