package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tally/internal/sync"
	"tally/internal/todo"
)

// Options configure the TUI.
type Options struct {
	Context context.Context
	Engine  *sync.Engine
	// Wake receives a signal whenever the engine changes state outside a
	// user action (poll refresh, push event, reconnect).
	Wake  <-chan struct{}
	Theme string
}

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputEdit
	confirmDelete
)

// Model is the Bubble Tea model rendering store snapshots and bulk state.
// It never mutates items itself; every user intent is delegated to the
// engine through a command.
type Model struct {
	ctx    context.Context
	engine *sync.Engine
	wake   <-chan struct{}

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
	styles  styles

	items   []todo.Item
	bulk    sync.BulkState
	status  string
	lists   []todo.List
	listIdx int

	cursor int
	mode   inputMode
	target string // item id for edit/delete
	width  int
	height int
}

// New builds the model. The engine must already be started.
func New(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	m := Model{
		ctx:     opts.Context,
		engine:  opts.Engine,
		wake:    opts.Wake,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		input:   ti,
		styles:  newStyles(opts.Theme),
	}
	m.snapshot()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForWake(m.wake), m.loadLists())
}

// snapshot pulls the current engine state into the view.
func (m *Model) snapshot() {
	m.items = m.engine.Store().Items()
	m.bulk = m.engine.Bulk()
	if _, msg, ok := m.engine.Status().Message(); ok {
		m.status = msg
	} else {
		m.status = ""
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selectedItem() (todo.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return todo.Item{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) loadLists() tea.Cmd {
	return func() tea.Msg {
		lists, err := m.engine.Lists(m.ctx)
		if err != nil {
			return opDoneMsg{}
		}
		return listsLoadedMsg{lists: lists}
	}
}

func isProvisional(id string) bool {
	return strings.HasPrefix(id, "local-")
}
