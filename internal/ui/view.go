package ui

import (
	"fmt"
	"strings"

	"tally/internal/sync"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	b.WriteString(m.viewItems())
	b.WriteString("\n")

	if m.mode == inputAdd || m.mode == inputEdit {
		prompt := "add: "
		if m.mode == inputEdit {
			prompt = "edit: "
		}
		b.WriteString(m.styles.prompt.Render(prompt) + m.input.View())
		b.WriteString("\n")
	}
	if m.mode == confirmDelete {
		b.WriteString(m.styles.status.Render("delete this item? (y/n)"))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) viewHeader() string {
	listName := m.engine.ListID()
	for _, l := range m.lists {
		if l.ID == listName && l.Name != "" {
			listName = l.Name
		}
	}

	completed, total := 0, len(m.items)
	for _, it := range m.items {
		if it.Completed {
			completed++
		}
	}

	header := m.styles.listName.Render(listName) +
		m.styles.mode.Render(fmt.Sprintf("  %d/%d done  [%s]", completed, total, m.engine.Mode()))

	if m.bulk.Running {
		busy := m.spinner.View() + " completing all"
		if m.bulk.Mode == sync.ModePush && m.bulk.Progress != nil {
			busy += fmt.Sprintf(" %d/%d", m.bulk.Progress.Completed, m.bulk.Progress.Total)
		}
		header += "  " + m.styles.busy.Render(busy)
	}
	return header
}

func (m Model) viewItems() string {
	if len(m.items) == 0 {
		return m.styles.mode.Render("  no items — press a to add one")
	}

	var b strings.Builder
	for i, it := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.selected.Render("> ")
		}

		box := "[ ]"
		if it.Completed {
			box = "[x]"
		}

		line := fmt.Sprintf("%s %s", box, it.Description)
		switch {
		case isProvisional(it.ID):
			line = m.styles.provisory.Render(line + " …")
		case it.Completed:
			line = m.styles.done.Render(line)
		case i == m.cursor:
			line = m.styles.selected.Render(line)
		default:
			line = m.styles.item.Render(line)
		}

		b.WriteString(cursor + line + "\n")
	}
	return b.String()
}
