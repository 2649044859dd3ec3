package cmd

import "github.com/charmbracelet/bubbles/key"

type helpKeyMap struct {
	togglePlay key.Binding
	quit       key.Binding
	nextSong   key.Binding
}

var helpKeys = helpKeyMap{
	togglePlay: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space/p", "play/pause"),
	),
	quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "quit"),
	),
	nextSong: key.NewBinding(
		key.WithKeys("n", "down", "j"),
		key.WithHelp("n", "next song"),
	),
}

func (k helpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.togglePlay, k.nextSong, k.quit}
}

func (k helpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.togglePlay, k.nextSong},
		{k.quit},
	}
}
