package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the TUI.
var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green

	editorFrameStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("8"))

	previewFrameStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				BorderLeft(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("6"))
)
