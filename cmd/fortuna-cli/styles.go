package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#4ECDC4")
	goodColor    = lipgloss.Color("#2ECC71")
	badColor     = lipgloss.Color("#FF6B6B")
	subtleColor  = lipgloss.Color("#666666")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	headerStyle = lipgloss.NewStyle().Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(subtleColor)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	goodStyle   = lipgloss.NewStyle().Foreground(goodColor)
	badStyle    = lipgloss.NewStyle().Foreground(badColor)
	subtleStyle = lipgloss.NewStyle().Foreground(subtleColor)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(badColor)
	totalStyle  = lipgloss.NewStyle().Bold(true)
)
