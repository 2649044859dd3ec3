package cmd

import "github.com/charmbracelet/lipgloss"

const (
	padding  = 4
	maxWidth = 60
	mp3Blue  = "#1f4e79"
	mp3Cyan  = "#7fd1e0"

	greenLight = "#56949f"
	greenDark  = "#9ccfd8"
)

var (
	accent = lipgloss.AdaptiveColor{Dark: greenDark, Light: greenLight}
	main   = lipgloss.AdaptiveColor{Dark: mp3Cyan, Light: mp3Blue}

	titleStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(main).
			Bold(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(accent)
)
