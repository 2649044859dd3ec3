package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var minimal bool

var playCmd = &cobra.Command{
	Use:   "play <file/directories>",
	Short: "Play .mp3 audio file(s)",
	Long:  "Provide one or more MP3 files to play.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Input is one or more files or directories. Find all MP3 files, recursively.
		var allFiles []string
		for _, arg := range args {
			info, err := os.Stat(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error accessing %s: %v\n", arg, err)
				continue
			}
			if info.IsDir() {
				files, err := findAllMP3Files(arg)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error walking %s: %v\n", arg, err)
					continue
				}
				allFiles = append(allFiles, files...)
			} else if isValidMP3File(arg) {
				allFiles = append(allFiles, arg)
			}
		}
		if len(allFiles) == 0 {
			fmt.Println("No valid MP3 files found :(")
			return
		}
		if minimal {
			startMinimalPlayer(allFiles[0])
			return
		}
		startTUI(allFiles)
	},
}

// Recursive function to find all valid MP3 files
func findAllMP3Files(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isValidMP3File(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// isValidMP3File checks that the file starts with a parseable frame header,
// skipping anything an ID3 tag may prepend.
func isValidMP3File(path string) bool {
	if filepath.Ext(path) != ".mp3" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	info, err := probeStream(data)
	return err == nil && info.frames > 0
}

func init() {
	playCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "Play without the TUI, printing progress only")
	rootCmd.AddCommand(playCmd)
}
