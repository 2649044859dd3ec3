package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "gomp3",
	Short: "A simple MP3 utility.",
	Long:  "A CLI tool to encode, inspect and play MP3 audio files.",
	Run: func(cmd *cobra.Command, args []string) {
		// Display help when no subcommand is provided
		fmt.Println("Usage: gomp3 [command]")
		fmt.Println("Use 'gomp3 help' for a list of commands.")
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

var quiet bool
var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress command output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Increase command output")
}

func Execute() error {
	return rootCmd.Execute()
}
