package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"
	mp3dec "github.com/hajimehoshi/go-mp3"
)

// ==========================================
// =============== Messages =================
// ==========================================
// tickMsg is sent periodically to update the progress bar.
type tickMsg time.Time

// tickCmd is a helper function to create a tickMsg.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// controlsMsg is sent to control various things about the music player.
type controlsMsg int

const (
	start controlsMsg = iota
	stop
)

// sendControlsMsg is a helper function to create a controlsMsg.
func sendControlsMsg(msg controlsMsg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// changeSongMsg is sent to change the song.
type changeSongMsg int

const (
	next changeSongMsg = iota
	prev
)

// sendChangeSongMsg is a helper function to create a changeSongMsg.
func sendChangeSongMsg(msg changeSongMsg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// ==========================================
// ================ Models ==================
// ==========================================

// model holds the main state of the application.
type model struct {
	// filenames is a list of filenames to play.
	filenames []string
	// currentIndex is the index of the current song playing
	currentIndex int
	// mp3Player is the MP3 player
	mp3Player *mp3Player
	// ctx is the Oto context. There can only be one per process.
	ctx *oto.Context
}

// mp3Player handles playing one MP3 file and showing progress.
type mp3Player struct {
	// player is the Oto player, which does the actual playing of sound.
	player *oto.Player
	// decoder streams PCM out of the MP3 file.
	decoder *mp3dec.Decoder
	// startTime is the time when the song started playing.
	startTime time.Time
	// lastPauseTime is the time when the last pause started.
	lastPauseTime time.Time
	// totalPausedTime is the total time spent paused.
	totalPausedTime time.Duration
	// totalLength is the total length of the song.
	totalLength time.Duration
	// filename is the filename of the song being played.
	filename string
	// progress is the progress bubble model.
	progress progress.Model
	// paused is whether the song is paused.
	paused bool
}

// initialModel creates a new model with the given filenames.
func initialModel(filenames []string) *model {
	decoder := openDecoder(filenames[0])

	// Prepare an Oto context (this will use the default audio device).
	// go-mp3 always emits 16-bit stereo at the stream's samplerate.
	ctx, ready, err := oto.NewContext(
		&oto.NewContextOptions{
			SampleRate:   decoder.SampleRate(),
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
	if err != nil {
		panic("oto.NewContext failed: " + err.Error())
	}
	// Wait for the context to be ready
	<-ready

	m := &model{
		filenames:    filenames,
		currentIndex: 0,
		ctx:          ctx,
	}
	m.mp3Player = m.newMP3Player(filenames[0], decoder)
	return m
}

func openDecoder(filename string) *mp3dec.Decoder {
	f, err := os.Open(filename)
	if err != nil {
		logger.Fatalf("Error reading MP3 file: %v", err)
	}
	decoder, err := mp3dec.NewDecoder(f)
	if err != nil {
		logger.Fatalf("Error decoding MP3 file: %v", err)
	}
	return decoder
}

// newMP3Player creates a new MP3 player for the given filename.
func (m *model) newMP3Player(filename string, decoder *mp3dec.Decoder) *mp3Player {
	if decoder == nil {
		decoder = openDecoder(filename)
	}

	// Decoded output is 4 bytes per sample frame (16-bit stereo).
	totalLength := time.Duration(decoder.Length()/4/int64(decoder.SampleRate())) * time.Second

	prog := progress.New(progress.WithGradient(mp3Blue, mp3Cyan))
	prog.ShowPercentage = false
	prog.Width = maxWidth

	player := m.ctx.NewPlayer(decoder)
	return &mp3Player{
		filename:    filename,
		decoder:     decoder,
		progress:    prog,
		player:      player,
		totalLength: totalLength,
	}
}

// getPlayerProgress reports how far through the song playback is, 0 to 1.
func (p *mp3Player) getPlayerProgress() float64 {
	if p.totalLength == 0 {
		return 1.0
	}
	return p.currentSeconds() / p.totalLength.Seconds()
}

// currentSeconds reports the wall-clock play position, excluding pauses.
func (p *mp3Player) currentSeconds() float64 {
	if p.startTime.IsZero() {
		return 0
	}
	elapsed := time.Since(p.startTime) - p.totalPausedTime
	if p.paused {
		elapsed -= time.Since(p.lastPauseTime)
	}
	return elapsed.Seconds()
}

// ==========================================
// ================= Main ===================
// ==========================================
// startTUI is the main entry point for the TUI.
func startTUI(inputFiles []string) {
	p := tea.NewProgram(initialModel(inputFiles))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(sendControlsMsg(start))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// Handle terminal resizing
	case tea.WindowSizeMsg:
		m.mp3Player.progress.Width = msg.Width - padding*2 - 4
		if m.mp3Player.progress.Width > maxWidth {
			m.mp3Player.progress.Width = maxWidth
		}
		return m, nil

	// Handle key presses
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, helpKeys.quit):
			if m.mp3Player.player.IsPlaying() {
				m.mp3Player.player.Close()
			}
			return m, tea.Quit
		case key.Matches(msg, helpKeys.togglePlay):
			var cmd tea.Cmd
			if m.mp3Player.player.IsPlaying() {
				cmd = sendControlsMsg(stop)
			} else if m.mp3Player.player != nil {
				cmd = sendControlsMsg(start)
			}
			return m, cmd
		case key.Matches(msg, helpKeys.nextSong):
			return m, sendChangeSongMsg(next)
		}
	// Handle requests to change controls (play, pause, etc.)
	case controlsMsg:
		switch msg {
		case start:
			if !m.mp3Player.player.IsPlaying() {
				m.mp3Player.player.Play()
				m.mp3Player.paused = false

				// Account for time spent paused, if needed
				if m.mp3Player.startTime.IsZero() {
					m.mp3Player.startTime = time.Now()
				} else {
					m.mp3Player.totalPausedTime += time.Since(m.mp3Player.lastPauseTime)
					m.mp3Player.lastPauseTime = time.Time{} // Reset last pause time
				}
				// Now that we are definitely playing, start the progress bubble
				return m, tickCmd()
			}
		case stop:
			m.mp3Player.player.Pause()
			m.mp3Player.lastPauseTime = time.Now()
			m.mp3Player.paused = true
		}
	// Handle requests to change song (prev, next, etc.)
	case changeSongMsg:
		switch msg {
		case next:
			m = nextSong(m)
			return m, sendControlsMsg(start)
		}
	// Update the progress. This is called periodically, so also handle songs that are over.
	case tickMsg:
		// Check if the song is over, ignoring progress bubble status in case the song ended before it got to 100%.
		if !m.mp3Player.player.IsPlaying() && !m.mp3Player.paused {
			// Just go to the next song.
			return m, sendChangeSongMsg(next)
		}
		// If we're still playing, update accordingly
		if m.mp3Player.player.IsPlaying() {
			cmd := m.mp3Player.progress.SetPercent(m.mp3Player.getPlayerProgress())
			// Set new progress bar percent and keep ticking
			return m, tea.Batch(cmd, tickCmd())
		} else if m.mp3Player.progress.Percent() >= 1.0 {
			// Progress is at 100%, so song must be over.
			return m, tea.Batch(sendChangeSongMsg(next))
		}

	case progress.FrameMsg:
		progressModel, cmd := m.mp3Player.progress.Update(msg)
		m.mp3Player.progress = progressModel.(progress.Model)
		return m, cmd

	}
	return m, nil
}

// nextSong changes to the next song in the filenames list, wrapping around to 0 if needed.
func nextSong(m model) model {
	m.mp3Player.player.Close()

	// Select next song in filenames list, but wrap around to 0 if at end
	nextIndex := (m.currentIndex + 1) % len(m.filenames)
	nextFile := m.filenames[nextIndex]

	// Create a new MP3 player for the next song
	m.mp3Player = m.newMP3Player(nextFile, nil)
	m.currentIndex = nextIndex

	// Return the new MP3 player
	return m
}

// ==========================================
// ================= View ===================
// ==========================================
// View renders the current state of the application.
func (m model) View() string {
	pad := strings.Repeat(" ", 2)
	var help []string
	for _, binding := range helpKeys.ShortHelp() {
		help = append(help, fmt.Sprintf("'%s' to %s", binding.Help().Key, binding.Help().Desc))
	}
	statusLine := "Press " + strings.Join(help, ", ") + "."
	return fmt.Sprintf("\nPlaying: %s (index: %v)\n\n%s%s\n\n%s%s\n",
		m.mp3Player.filename, m.currentIndex, pad, m.mp3Player.progress.View(), pad, statusLine)
}
