package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	listName  lipgloss.Style
	mode      lipgloss.Style
	item      lipgloss.Style
	done      lipgloss.Style
	selected  lipgloss.Style
	provisory lipgloss.Style
	status    lipgloss.Style
	busy      lipgloss.Style
	help      lipgloss.Style
	prompt    lipgloss.Style
}

func newStyles(theme string) styles {
	accent := lipgloss.Color("12")
	dim := lipgloss.Color("8")
	warn := lipgloss.Color("9")
	busy := lipgloss.Color("11")
	if theme == "light" {
		accent = lipgloss.Color("4")
		dim = lipgloss.Color("7")
		warn = lipgloss.Color("1")
		busy = lipgloss.Color("3")
	}
	return styles{
		listName:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		mode:      lipgloss.NewStyle().Foreground(dim),
		item:      lipgloss.NewStyle(),
		done:      lipgloss.NewStyle().Foreground(dim).Strikethrough(true),
		selected:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		provisory: lipgloss.NewStyle().Italic(true).Foreground(dim),
		status:    lipgloss.NewStyle().Foreground(warn),
		busy:      lipgloss.NewStyle().Foreground(busy),
		help:      lipgloss.NewStyle().Foreground(dim),
		prompt:    lipgloss.NewStyle().Foreground(accent),
	}
}
