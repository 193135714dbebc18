package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.snapshot()
		return m, tick()

	case engineChangedMsg:
		m.snapshot()
		// Keep the spinner alive: the tick scheduled at the keypress may
		// have arrived before the run was visible and been dropped.
		if m.bulk.Running {
			return m, tea.Batch(waitForWake(m.wake), m.spinner.Tick)
		}
		return m, waitForWake(m.wake)

	case opDoneMsg:
		m.snapshot()
		if m.bulk.Running {
			return m, m.spinner.Tick
		}
		return m, nil

	case listsLoadedMsg:
		m.lists = msg.lists
		for i, l := range m.lists {
			if l.ID == m.engine.ListID() {
				m.listIdx = i
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.bulk.Running {
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == inputAdd || m.mode == inputEdit {
			return m.updateInput(msg)
		}
		if m.mode == confirmDelete {
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		item, ok := m.selectedItem()
		if !ok || isProvisional(item.ID) {
			return m, nil
		}
		return m, m.engineCmd(func() error {
			return m.engine.ToggleCompleted(m.ctx, item.ID)
		})

	case key.Matches(msg, m.keys.Add):
		m.mode = inputAdd
		m.input.Placeholder = "new item"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		item, ok := m.selectedItem()
		if !ok || isProvisional(item.ID) {
			return m, nil
		}
		m.mode = inputEdit
		m.target = item.ID
		m.input.Placeholder = ""
		m.input.SetValue(item.Description)
		m.input.CursorEnd()
		m.input.Focus()
		m.engine.BeginEdit(item.ID)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.selectedItem()
		if !ok || isProvisional(item.ID) {
			return m, nil
		}
		// Destructive: ask before issuing the delete.
		m.mode = confirmDelete
		m.target = item.ID
		return m, nil

	case key.Matches(msg, m.keys.CompleteAll):
		return m, tea.Batch(
			m.spinner.Tick,
			m.engineCmd(func() error {
				return m.engine.CompleteAll(m.ctx)
			}),
		)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.engineCmd(func() error {
			return m.engine.Refresh(m.ctx)
		})

	case key.Matches(msg, m.keys.Sample):
		return m, m.engineCmd(func() error {
			return m.engine.GenerateSample(m.ctx)
		})

	case key.Matches(msg, m.keys.NextList):
		if len(m.lists) < 2 {
			return m, nil
		}
		m.listIdx = (m.listIdx + 1) % len(m.lists)
		next := m.lists[m.listIdx].ID
		m.cursor = 0
		return m, m.engineCmd(func() error {
			return m.engine.SetList(m.ctx, next)
		})
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == inputEdit {
			m.engine.EndEdit()
		}
		m.mode = inputNone
		m.input.Blur()
		return m, nil

	case "enter":
		value := m.input.Value()
		mode := m.mode
		target := m.target
		m.mode = inputNone
		m.input.Blur()
		if mode == inputAdd {
			return m, m.engineCmd(func() error {
				return m.engine.Create(m.ctx, value)
			})
		}
		return m, m.engineCmd(func() error {
			return m.engine.EditDescription(m.ctx, target, value)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := m.target
		m.mode = inputNone
		m.target = ""
		return m, m.engineCmd(func() error {
			return m.engine.Delete(m.ctx, target)
		})
	case "n", "N", "esc":
		m.mode = inputNone
		m.target = ""
	}
	return m, nil
}

// engineCmd runs an engine operation off the update loop. Errors are
// already captured on the status board, so the result message only
// triggers a fresh snapshot.
func (m Model) engineCmd(op func() error) tea.Cmd {
	return func() tea.Msg {
		_ = op()
		return opDoneMsg{}
	}
}
