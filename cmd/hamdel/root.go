package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagBaseURL string
	flagToken   string
)

var rootCmd = &cobra.Command{
	Use:   "hamdel",
	Short: "همدل — mental-health companion for students",
	Long:  "hamdel drives the همدل self-assessment companion from the terminal: questionnaires, daily trackers, support chat, and progress.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "collaborator base URL (overrides HAMDEL_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token-path", "", "path of the persisted access token")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
