package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tally/internal/todo"
)

// Async message types for Bubble Tea commands.

// tickMsg drives the periodic snapshot refresh of the view.
type tickMsg time.Time

// engineChangedMsg arrives whenever the sync engine reports a state
// change, so the view updates ahead of the next tick.
type engineChangedMsg struct{}

// opDoneMsg signals that an engine operation finished. Failures surface
// through the engine's status board, not through this message.
type opDoneMsg struct{}

// listsLoadedMsg carries the lists fetched at startup.
type listsLoadedMsg struct {
	lists []todo.List
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForWake(wake <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-wake
		return engineChangedMsg{}
	}
}
