package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/citytour/pkg/core/route"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// CityListModel - Interactive start city selection
// =============================================================================

// cityRow is one selectable city with its edge counts.
type cityRow struct {
	City     route.City
	Outgoing int
	Incoming int
}

// CityListModel is the bubbletea model for interactive start city selection.
// Typing filters the list by name.
type CityListModel struct {
	rows     []cityRow
	visible  []int // indexes into rows matching the filter
	filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected *route.City
}

// NewCityListModel creates a city list for m.
func NewCityListModel(m *route.Matrix) CityListModel {
	cities := m.Cities()
	rows := make([]cityRow, len(cities))
	for i, c := range cities {
		rows[i] = cityRow{
			City:     c,
			Outgoing: len(m.Outgoing(c.ID)),
			Incoming: len(m.Incoming(c.ID)),
		}
	}
	model := CityListModel{rows: rows, Height: 15}
	model.applyFilter()
	return model
}

func (m CityListModel) Init() tea.Cmd {
	return nil
}

func (m CityListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.move(-1)
		case tea.KeyDown:
			m.move(1)
		case tea.KeyEnter:
			if len(m.visible) == 0 {
				return m, nil
			}
			c := m.rows[m.visible[m.Cursor]].City
			m.Selected = &c
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.filter != "" {
				r := []rune(m.filter)
				m.filter = string(r[:len(r)-1])
				m.applyFilter()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.filter += string(msg.Runes)
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the scroll window.
func (m *CityListModel) move(delta int) {
	m.Cursor = min(max(m.Cursor+delta, 0), max(len(m.visible)-1, 0))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *CityListModel) applyFilter() {
	needle := strings.ToLower(m.filter)
	m.visible = m.visible[:0]
	for i, r := range m.rows {
		if strings.Contains(strings.ToLower(r.City.Name), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m CityListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Start City"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  type to filter  esc quit"))
	b.WriteString("\n")
	if m.filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.filter))
	}
	b.WriteString("\n")

	end := min(m.Offset+m.Height, len(m.visible))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.rows[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(r.City.ID),
			r.City.Name,
			fmt.Sprint(r.Outgoing),
			fmt.Sprint(r.Incoming),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "City", "Out", "In").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			r := m.rows[m.visible[idx]]
			// a city without outgoing edges cannot start a tour
			usable := r.Outgoing > 0
			switch {
			case idx == m.Cursor && usable:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorDim).Bold(true)
			case !usable:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 3 || col == 4:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	pos := 0
	if len(m.visible) > 0 {
		pos = m.Cursor + 1
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", pos, len(m.visible))))

	return b.String()
}

// pickCity runs the picker and returns the chosen city. ok is false when the
// user quit without choosing.
func pickCity(m *route.Matrix) (route.City, bool, error) {
	final, err := tea.NewProgram(NewCityListModel(m)).Run()
	if err != nil {
		return route.City{}, false, err
	}
	sel := final.(CityListModel).Selected
	if sel == nil {
		return route.City{}, false, nil
	}
	return *sel, true, nil
}
